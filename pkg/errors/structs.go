package errors

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator instance.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// FieldError is one failed struct field rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateStruct checks v's validate tags. On failure it returns an *Error
// with the given code whose message lists every failed field; the fields
// are also available through [FieldErrors].
func ValidateStruct(code Code, v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Wrap(code, err, "validation failed")
	}
	fields := make(fieldErrors, len(verrs))
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		fields[i] = FieldError{Field: fe.Namespace(), Message: translate(fe)}
		msgs[i] = fields[i].Message
	}
	return Wrap(code, fields, "%s", strings.Join(msgs, "; "))
}

// FieldErrors returns the failed fields carried by an error from
// [ValidateStruct].
func FieldErrors(err error) []FieldError {
	var fe fieldErrors
	if errors.As(err, &fe) {
		return fe
	}
	return nil
}

type fieldErrors []FieldError

func (f fieldErrors) Error() string {
	return fmt.Sprintf("%d invalid fields", len(f))
}

var messageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"gt":    "%s must be greater than %s",
	"lt":    "%s must be less than %s",
	"min":   "%s must be at least %s",
	"max":   "%s must be at most %s",
}

func translate(fe validator.FieldError) string {
	field := fe.Namespace()
	if tmpl, ok := messageWithParam[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, field, fe.Param())
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "unique":
		return field + " must not contain duplicates"
	}
	return fmt.Sprintf("%s failed %q", field, fe.Tag())
}
