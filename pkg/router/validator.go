package router

import (
	"fmt"
	"strings"
)

// ValidationError represents a route table error.
type ValidationError struct {
	// Type is the error category
	Type ValidationErrorType

	// Message is the human-readable error message
	Message string

	// Path is the offending pattern, prefixed by its ancestors
	Path string

	// Details contains additional error-specific information
	Details string
}

func (e ValidationError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// ValidationErrorType categorizes validation errors.
type ValidationErrorType string

const (
	// ErrorDuplicateRoute indicates two siblings share a pattern.
	// Example: /:id and /:slug under the same parent
	ErrorDuplicateRoute ValidationErrorType = "DUPLICATE_ROUTE"

	// ErrorMalformedPattern indicates a path that cannot be parsed.
	ErrorMalformedPattern ValidationErrorType = "MALFORMED_PATTERN"

	// ErrorNodeReused indicates the same *RouteNode appears twice in the tree.
	ErrorNodeReused ValidationErrorType = "NODE_REUSED"

	// ErrorMissingComponent indicates a node without a component.
	ErrorMissingComponent ValidationErrorType = "MISSING_COMPONENT"
)

// MultiValidationError wraps multiple validation errors.
type MultiValidationError struct {
	Errors []ValidationError
}

func (e *MultiValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d route validation errors:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Has reports whether any contained error has type t.
func (e *MultiValidationError) Has(t ValidationErrorType) bool {
	for _, err := range e.Errors {
		if err.Type == t {
			return true
		}
	}
	return false
}
