// Package validate wraps go-playground/validator with a field-level error
// type suitable for API responses.
package validate

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct validates a struct using its `validate` tags. Validation failures
// are returned as a *Error.
func Struct(s any) error {
	if err := validate.Struct(s); err != nil {
		var fieldErrs validator.ValidationErrors
		if ok := asValidationErrors(err, &fieldErrs); ok {
			return &Error{fields: fieldErrs}
		}
		return err
	}
	return nil
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	if ve, ok := err.(validator.ValidationErrors); ok {
		*target = ve
		return true
	}
	return false
}

// Error reports which required checkout fields are missing or malformed.
type Error struct {
	fields validator.ValidationErrors
}

func (e *Error) Error() string {
	msgs := make([]string, len(e.fields))
	for i, fe := range e.fields {
		msgs[i] = fmt.Sprintf("field %q %s", fe.Field(), msgForTag(fe))
	}
	return strings.Join(msgs, "; ")
}

// Fields returns a map of field names to human-readable problems.
func (e *Error) Fields() map[string]string {
	out := make(map[string]string, len(e.fields))
	for _, fe := range e.fields {
		out[fe.Field()] = msgForTag(fe)
	}
	return out
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
