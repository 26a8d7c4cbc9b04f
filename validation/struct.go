package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// Struct runs the `validate` tags of s and returns violations keyed by
// JSON path ("email", "associates[1].share_percentage").
func Struct(s any) Violations {
	v := Violations{}
	err := instance().Struct(s)
	if err == nil {
		return v
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		v.Add("_", CodeInvalid)
		return v
	}
	for _, fe := range verrs {
		v.Add(fieldPath(fe), codeFor(fe.Tag()))
	}
	return v
}

func fieldPath(fe validator.FieldError) string {
	if _, rest, ok := strings.Cut(fe.Namespace(), "."); ok {
		return rest
	}
	return fe.Field()
}

func codeFor(tag string) string {
	switch tag {
	case "required", "required_with", "required_without":
		return CodeRequired
	case "email":
		return CodeInvalidEmail
	case "uuid", "uuid4":
		return CodeInvalidUUID
	case "oneof":
		return CodeInvalidChoice
	case "min", "max", "gte", "lte", "gt", "lt":
		return CodeOutOfRange
	default:
		return CodeInvalid
	}
}
