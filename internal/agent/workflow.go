// Package agent implements the retrieval-augmented product assistant as
// a fixed workflow graph: a router classifies intent, a retriever pulls
// review context, a grader decides between answering and rewriting the
// question, and a bounded rewrite cycle feeds back into the router.
package agent

import (
	"context"
	"fmt"
	"sync"
)

// CompletionService produces text for a prompt. Implementations are
// stateless per call, must be safe for concurrent use, and report
// failures as ServiceError or ErrRateLimited.
type CompletionService interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Retriever returns the top-k documents ranked against a query. An empty
// result is not an error.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]Document, error)
}

// nodeID is the closed set of workflow states. The graph is fixed; there
// is no registration API.
type nodeID uint8

const (
	nodeUnset nodeID = iota
	nodeEnd
	nodeRouter
	nodeRetriever
	nodeGenerator
	nodeRewriter
)

func (n nodeID) String() string {
	switch n {
	case nodeEnd:
		return "end"
	case nodeRouter:
		return "router"
	case nodeRetriever:
		return "retriever"
	case nodeGenerator:
		return "generator"
	case nodeRewriter:
		return "rewriter"
	default:
		return "unset"
	}
}

// nodeResult is a node's output: messages to append plus, for nodes that
// route themselves, the next node. dispatch == nodeUnset defers to the
// edge table. Routing is carried here as a typed value, never as a
// sentinel string inside message content.
type nodeResult struct {
	append   []Message
	dispatch nodeID
}

type nodeFn func(ctx context.Context, s *State) (nodeResult, error)

// edge is one row of the static transition table. A conditional edge
// resolves the successor from post-node state and appends nothing.
type edge struct {
	to   nodeID
	cond func(ctx context.Context, s *State) (nodeID, error)
}

// Workflow drives one query through router → retriever → grader →
// generator/rewriter. An instance may be reused across runs: the only
// shared piece is the memoized retriever handle, so the handle must be
// safe for concurrent reads (the pgx-backed store is; otherwise use one
// instance per run).
type Workflow struct {
	cfg Config
	llm CompletionService

	nodes map[nodeID]nodeFn
	edges map[nodeID]edge

	open      func(context.Context) (Retriever, error)
	openOnce  sync.Once
	retriever Retriever
	openErr   error
}

// New builds a workflow. openRetriever runs once, on first retrieval, and
// the resulting handle lives as long as the instance. A failed open is
// memoized too; tear the instance down and build a new one to retry.
func New(cfg Config, llm CompletionService, openRetriever func(context.Context) (Retriever, error)) *Workflow {
	w := &Workflow{
		cfg:  cfg.withDefaults(),
		llm:  llm,
		open: openRetriever,
	}
	w.nodes = map[nodeID]nodeFn{
		nodeRouter:    w.routeQuery,
		nodeRetriever: w.retrieveDocuments,
		nodeGenerator: w.generateAnswer,
		nodeRewriter:  w.rewriteQuestion,
	}
	w.edges = map[nodeID]edge{
		nodeRetriever: {cond: w.gradeDocuments},
		nodeGenerator: {to: nodeEnd},
		nodeRewriter:  {to: nodeRouter},
	}
	return w
}

// NewWithRetriever builds a workflow around an already-open handle.
func NewWithRetriever(cfg Config, llm CompletionService, r Retriever) *Workflow {
	return New(cfg, llm, func(context.Context) (Retriever, error) { return r, nil })
}

func (w *Workflow) handle(ctx context.Context) (Retriever, error) {
	w.openOnce.Do(func() {
		w.retriever, w.openErr = w.open(ctx)
	})
	if w.openErr != nil {
		return nil, wrapService("open retriever", w.openErr)
	}
	return w.retriever, nil
}

// Run executes the workflow for one query and returns the content of the
// final assistant message. Errors from the backends propagate unretried;
// a spent rewrite budget returns a CycleLimitError.
func (w *Workflow) Run(ctx context.Context, query string) (string, error) {
	state := NewState(query)
	current := nodeRouter
	rewrites := 0

	for current != nodeEnd {
		fn, ok := w.nodes[current]
		if !ok {
			return "", fmt.Errorf("no node registered for %s", current)
		}
		res, err := fn(ctx, state)
		if err != nil {
			return "", fmt.Errorf("node %s: %w", current, err)
		}
		state.Append(res.append...)

		next := res.dispatch
		if next == nodeUnset {
			e, ok := w.edges[current]
			if !ok {
				return "", fmt.Errorf("no edge out of %s", current)
			}
			next = e.to
			if e.cond != nil {
				next, err = e.cond(ctx, state)
				if err != nil {
					return "", fmt.Errorf("edge from %s: %w", current, err)
				}
			}
		}

		// The rewrite loop is the graph's only cycle. Spending the budget
		// is a terminal transition of its own, not a crash path.
		if next == nodeRewriter {
			if rewrites >= w.cfg.MaxRewrites {
				return "", &CycleLimitError{Rewrites: rewrites}
			}
			rewrites++
		}
		current = next
	}

	return state.Last().Content, nil
}

// complete invokes the completion backend under the configured per-call
// deadline.
func (w *Workflow) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := w.callContext(ctx)
	defer cancel()
	out, err := w.llm.Complete(ctx, prompt)
	if err != nil {
		return "", wrapService("complete", err)
	}
	return out, nil
}

func (w *Workflow) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if w.cfg.CallTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, w.cfg.CallTimeout)
}
