package lifecycle

import (
	"fmt"
	"sort"
	"strings"

	"github.com/diewo77/jurigo/internal/models"
	"github.com/diewo77/jurigo/validation"
)

// ValidationError reports input rejected before any store access.
type ValidationError struct {
	Op         string
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for f, code := range e.Violations {
		fields = append(fields, f+"="+code)
	}
	sort.Strings(fields)
	return fmt.Sprintf("%s: validation failed: %s", e.Op, strings.Join(fields, ", "))
}

func (e *ValidationError) Unwrap() error { return models.ErrValidation }

func newValidationError(op, field, code string) *ValidationError {
	return &ValidationError{Op: op, Violations: validation.Violations{field: code}}
}

// check returns a ValidationError when v is not empty.
func check(op string, v validation.Violations) error {
	if v.Empty() {
		return nil
	}
	return &ValidationError{Op: op, Violations: v}
}
