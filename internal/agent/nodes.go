package agent

import (
	"context"
	"fmt"
	"strings"
)

// routeQuery classifies intent from the latest message. Shopping keywords
// dispatch retrieval; anything else is answered directly from model
// knowledge and ends the run. Exactly one of the two happens per call.
func (w *Workflow) routeQuery(ctx context.Context, s *State) (nodeResult, error) {
	content := strings.ToLower(s.Last().Content)
	for _, kw := range w.cfg.TriggerKeywords {
		if strings.Contains(content, strings.ToLower(kw)) {
			return nodeResult{dispatch: nodeRetriever}, nil
		}
	}

	answer, err := w.complete(ctx, fmt.Sprintf(assistantPrompt, s.Last().Content))
	if err != nil {
		return nodeResult{}, err
	}
	return nodeResult{
		append:   []Message{{Role: RoleAssistant, Content: answer}},
		dispatch: nodeEnd,
	}, nil
}

// retrieveDocuments queries the store with the latest message (the
// original question on first entry, the rewritten one after a rewrite)
// and appends the formatted context block. Read-only against the store.
func (w *Workflow) retrieveDocuments(ctx context.Context, s *State) (nodeResult, error) {
	r, err := w.handle(ctx)
	if err != nil {
		return nodeResult{}, err
	}

	rctx, cancel := w.callContext(ctx)
	defer cancel()
	docs, err := r.Retrieve(rctx, s.Last().Content, w.cfg.TopK)
	if err != nil {
		return nodeResult{}, wrapService("retrieve", err)
	}

	return nodeResult{
		append: []Message{{Role: RoleAssistant, Content: FormatDocuments(docs)}},
	}, nil
}

// gradeDocuments is the conditional edge out of retrieval. It mutates
// nothing: the verdict only picks the successor. Relevance is judged
// against Messages[0], deliberately the user's original wording even
// after rewrites; a rewrite only changes what the retriever searches for.
// Anything but an exact "yes" (trimmed, lowercased) routes to the
// rewriter, so an empty or malformed verdict degrades to a retry.
func (w *Workflow) gradeDocuments(ctx context.Context, s *State) (nodeID, error) {
	verdict, err := w.complete(ctx, fmt.Sprintf(graderPrompt, s.Question(), s.Last().Content))
	if err != nil {
		return nodeUnset, err
	}
	if strings.EqualFold(strings.TrimSpace(verdict), "yes") {
		return nodeGenerator, nil
	}
	return nodeRewriter, nil
}

// generateAnswer renders the product-assistant prompt over the graded
// context and the original question. Always terminal.
func (w *Workflow) generateAnswer(ctx context.Context, s *State) (nodeResult, error) {
	answer, err := w.complete(ctx, fmt.Sprintf(productBotPrompt, s.Last().Content, s.Question()))
	if err != nil {
		return nodeResult{}, err
	}
	return nodeResult{
		append: []Message{{Role: RoleAssistant, Content: answer}},
	}, nil
}

// rewriteQuestion asks for a more specific reformulation of the original
// question and appends it as the active query for the next router pass.
func (w *Workflow) rewriteQuestion(ctx context.Context, s *State) (nodeResult, error) {
	rewritten, err := w.complete(ctx, fmt.Sprintf(rewritePrompt, s.Question()))
	if err != nil {
		return nodeResult{}, err
	}
	return nodeResult{
		append: []Message{{Role: RoleUser, Content: rewritten}},
	}, nil
}
