package validation

import (
	"net/mail"
	"strings"

	"github.com/google/uuid"
)

// Violations maps a JSON field name to a violation code.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add records code for field unless the field already has a violation.
func (v Violations) Add(field, code string) {
	if _, ok := v[field]; !ok {
		v[field] = code
	}
}

// Merge copies other into v, keeping existing entries.
func (v Violations) Merge(other Violations) {
	for field, code := range other {
		v.Add(field, code)
	}
}

// Violation codes.
const (
	CodeRequired      = "required"
	CodeInvalidEmail  = "invalid_email"
	CodeInvalidUUID   = "invalid_uuid"
	CodeInvalidChoice = "invalid_choice"
	CodeOutOfRange    = "out_of_range"
	CodeTooLong       = "too_long"
	CodeImmutable     = "immutable"
	CodeInvalid       = "invalid"
)

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, CodeRequired)
	}
}

// Email checks an address shape; empty values are left to Required.
func Email(field, value string, v Violations) {
	if value == "" {
		return
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value || !strings.Contains(value, "@") {
		v.Add(field, CodeInvalidEmail)
	}
}

func UUID(field, value string, v Violations) {
	if _, err := uuid.Parse(value); err != nil {
		v.Add(field, CodeInvalidUUID)
	}
}

// OneOf checks that value is one of allowed; empty values are left to Required.
func OneOf[T ~string](field string, value T, allowed []T, v Violations) {
	if value == "" {
		return
	}
	for _, a := range allowed {
		if a == value {
			return
		}
	}
	v.Add(field, CodeInvalidChoice)
}

func RangeInt(field string, val, minVal, maxVal int, v Violations) {
	if val < minVal || val > maxVal {
		v.Add(field, CodeOutOfRange)
	}
}

func RangeFloat(field string, val, minVal, maxVal float64, v Violations) {
	if val < minVal || val > maxVal {
		v.Add(field, CodeOutOfRange)
	}
}
