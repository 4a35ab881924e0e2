// Package messages defines Bubbletea message types for the chat TUI.
package messages

import (
	"github.com/custodia-labs/sercha-kb/internal/core/domain"
)

// AnswerReceived carries a completed answer, or the failure, for Query.
type AnswerReceived struct {
	Query  string
	Answer *domain.Answer
	Err    error
}
