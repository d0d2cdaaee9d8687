package services

import "fmt"

// Validation failure codes surfaced to clients.
const (
	CodeInvalidInput    = "INVALID_INPUT"
	CodeQuestionTooLong = "QUESTION_TOO_LONG"
)

// ValidationError rejects client input before any pipeline stage runs.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError aborts an indexing run for an unknown document id.
type NotFoundError struct {
	DocumentID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("document %d not found", e.DocumentID)
}
