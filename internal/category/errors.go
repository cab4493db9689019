package category

import (
	"fmt"
	"strings"
)

// FieldError is a single validation failure at a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports schema mismatches with field-level detail.
type ValidationError struct {
	Category string
	Fields   []FieldError
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "validation failed for category %s:\n", e.Category)
	for i, fe := range e.Fields {
		fmt.Fprintf(&sb, "  %d. %s: %s\n", i+1, fe.Field, fe.Message)
	}
	return sb.String()
}
