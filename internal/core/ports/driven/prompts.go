package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Unknown names return an error.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptRAGSystem is the default system prompt for grounded answers.
	// This prompt has no format placeholders.
	PromptRAGSystem = "rag_system"

	// PromptRAGUser wraps the context block and question in the final user turn.
	// The template expects two %s placeholders: context, then question.
	PromptRAGUser = "rag_user"
)
