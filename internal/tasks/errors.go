package tasks

import (
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound indicates an unknown task id.
type ErrNotFound struct {
	TaskID uuid.UUID
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("task not found: %s", e.TaskID)
}

// ErrInvalidSource indicates a structurally invalid submission source.
type ErrInvalidSource struct {
	Source  string
	Message string
}

func (e *ErrInvalidSource) Error() string {
	return fmt.Sprintf("invalid source %q: %s", e.Source, e.Message)
}
