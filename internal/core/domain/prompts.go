package domain

// DefaultRAGSystemPrompt describes a context-grounded support assistant that
// declines when the answer is absent from the context.
const DefaultRAGSystemPrompt = `You are a helpful AI assistant for customer support.
Answer questions based on the provided context from the knowledge base.
If the answer is not in the context, say so politely.
Be concise, helpful, and professional.`

// DefaultRAGUserTemplate frames the final user turn. The first %s is the
// context block, the second the question.
const DefaultRAGUserTemplate = `Context from knowledge base:
%s

User question: %s

Please answer the user's question based on the context above.`

// NoContextFound replaces the context block when retrieval returns nothing.
const NoContextFound = "No relevant context was found in the knowledge base."
