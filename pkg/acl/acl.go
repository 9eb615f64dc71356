// Package acl is the command/event anti-corruption layer: it validates
// externally supplied forms with go-playground/validator struct tags (the
// teacher's validation-tag style from pkg/incident, pkg/alert, pkg/apikey),
// then translates validated forms into immutable domain value objects with
// pure, infallible functions. Validators never produce value objects;
// translators never fail — the separation spec.md §4.7 requires.
package acl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is a package-level, concurrency-safe validator instance,
// matching internal/httpserver's validate.go.
var validate = validator.New(validator.WithRequiredStructEnabled())

// FieldError is a single field validation failure.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError aggregates the field errors rejected by Validate.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return strings.Join(parts, "; ")
}

// Validate runs struct-tag validation on v, returning a ValidationError
// listing every failing field, or nil if v passes.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return ValidationError{Errors: []FieldError{{Field: "", Message: err.Error()}}}
	}

	out := make([]FieldError, 0, len(ve))
	for _, fe := range ve {
		out = append(out, FieldError{Field: jsonFieldName(fe), Message: fieldErrorMessage(fe)})
	}
	return ValidationError{Errors: out}
}

func jsonFieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		ns = ns[idx+1:]
	}
	return toSnakeCase(ns)
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid UUID"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed on %q validation", fe.Tag())
	}
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + 32)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
