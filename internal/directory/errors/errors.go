package errors

import (
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound     = fmt.Errorf("not found")
	ErrInvalidInput = fmt.Errorf("invalid input")
	ErrStorage      = fmt.Errorf("storage failure")
)

// ValidationError carries the per-field messages produced by the form
// validator. It matches ErrInvalidInput with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (v *ValidationError) Error() string {
	names := make([]string, 0, len(v.Fields))
	for name := range v.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("%s: %s", ErrInvalidInput, strings.Join(names, ", "))
}

func (v *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
