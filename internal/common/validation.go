package common

import (
	"sort"
	"strings"
)

// NonFieldErrorsKey collects messages that do not belong to a single field.
const NonFieldErrorsKey = "non_field_errors"

// ValidationError carries field-level messages for a rejected request.
// Keys are JSON field names, values are human readable messages.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError returns a ValidationError with one message on field.
func NewValidationError(field, msg string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, msg)
	return v
}

// Add appends msg to field.
func (v *ValidationError) Add(field, msg string) {
	if v.Fields == nil {
		v.Fields = make(map[string][]string)
	}
	v.Fields[field] = append(v.Fields[field], msg)
}

// Empty reports whether no messages were collected.
func (v *ValidationError) Empty() bool {
	return v == nil || len(v.Fields) == 0
}

// OrNil returns v as an error, or nil when it has no messages.
func (v *ValidationError) OrNil() error {
	if v.Empty() {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(v.Fields[k], "; "))
	}
	return "validation error: " + strings.Join(parts, ", ")
}
