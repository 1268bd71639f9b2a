package agent

// Prompt templates, rendered with fmt.Sprintf.
const (
	// assistantPrompt answers general questions without retrieval.
	assistantPrompt = "You are a helpful assistant. Answer the user's query based on your knowledge.\n" +
		"Question: %s\nAnswer:"

	// graderPrompt expects a bare yes/no verdict.
	graderPrompt = "You are a Grader. Given the question: %s and the documents: %s, " +
		"Are the documents relevant to the question? Answer yes or no."

	// productBotPrompt grounds the final answer in the retrieved reviews.
	productBotPrompt = "You are an expert product assistant for an e-commerce store.\n" +
		"Answer the user's question using only the product reviews and details below. " +
		"Mention prices and ratings when they are present. " +
		"If the context does not contain the answer, say so.\n\n" +
		"Context:\n%s\n\nQuestion: %s\nAnswer:"

	rewritePrompt = "Rewrite the question to be more specific: %s"
)
