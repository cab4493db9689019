package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"google.golang.org/api/googleapi"
)

// Class partitions model-call failures by how the invoker must react.
type Class int

// Failure classes.
const (
	// ClassQuota: usage/rate limit reached; fall back to the next variant
	// immediately, at most once per variant.
	ClassQuota Class = iota
	// ClassTransient: timeout or upstream hiccup; retry the same variant
	// once with backoff before falling back.
	ClassTransient
	// ClassPermanent: auth or invalid-request; fail immediately, no fallback.
	ClassPermanent
)

func (c Class) String() string {
	switch c {
	case ClassQuota:
		return "quota"
	case ClassTransient:
		return "transient"
	case ClassPermanent:
		return "permanent"
	}
	return "unknown"
}

// ModelError wraps a failed model call with its classification.
type ModelError struct {
	Variant Variant
	Class   Class
	Cause   error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model call failed (%s, %s): %v", e.Variant, e.Class, e.Cause)
}

func (e *ModelError) Unwrap() error {
	return e.Cause
}

// ParseError indicates the model returned text that does not contain valid
// JSON. It carries the raw response and the extracted candidate for logging;
// no repair is ever attempted.
type ParseError struct {
	Raw       string
	Candidate string
	Cause     error
}

func (e *ParseError) Error() string {
	if e.Candidate == "" {
		return fmt.Sprintf("parse error: no JSON candidate in model output (%d bytes)", len(e.Raw))
	}
	return fmt.Sprintf("parse error: invalid JSON candidate: %v", e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ErrVariantsExhausted is returned when every variant in the chain failed.
type ErrVariantsExhausted struct {
	Tried []Variant
	Last  error
}

func (e *ErrVariantsExhausted) Error() string {
	names := make([]string, len(e.Tried))
	for i, v := range e.Tried {
		names[i] = string(v)
	}
	return fmt.Sprintf("all model variants exhausted (tried %s): %v", strings.Join(names, ", "), e.Last)
}

func (e *ErrVariantsExhausted) Unwrap() error {
	return e.Last
}

// Classify maps a model-call error to a failure class. Unrecognized errors
// are treated as transient so they get exactly one bounded retry rather than
// an immediate hard failure.
func Classify(err error) Class {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 429:
			return ClassQuota
		case apiErr.Code >= 500:
			return ClassTransient
		case apiErr.Code == 400 || apiErr.Code == 401 || apiErr.Code == 403 || apiErr.Code == 404:
			return ClassPermanent
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ClassTransient
	}

	// The SDK sometimes surfaces quota exhaustion as a plain error string.
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "quota") || strings.Contains(msg, "resource_exhausted") || strings.Contains(msg, "rate limit") {
		return ClassQuota
	}
	if strings.Contains(msg, "api key") || strings.Contains(msg, "permission") || strings.Contains(msg, "invalid argument") {
		return ClassPermanent
	}

	return ClassTransient
}
