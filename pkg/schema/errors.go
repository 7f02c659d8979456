package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports one option that failed validation.
type ValidationError struct {
	Key    string
	Reason string
	Value  any // offending value, nil when the option was absent
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("option %q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("option %q: %s (got %T)", e.Key, e.Reason, e.Value)
}

// AggregateError collects every failure from one Validate pass so callers
// can fix a config file in a single round trip.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, err.Error())
	}
	return b.String()
}

// ValidationErrors unpacks the individual failures when err came from
// Validate, or returns nil for any other error.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
