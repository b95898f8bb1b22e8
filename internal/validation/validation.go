// Package validation turns untrusted request input into validated model
// values.  Every check produces a FieldError instead of failing fast, so a
// client receives all problems with a payload in one response.
package validation

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// FieldError describes one invalid input field.  Field uses the JSON or
// query parameter name.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is the structured result of a failed validation.  It implements
// error so it can travel through ordinary error returns.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation error: " + strings.Join(parts, "; ")
}

func (e *Errors) add(field, msg string) { *e = append(*e, FieldError{Field: field, Message: msg}) }

// orNil returns nil for an empty result so callers can write
// `if err := ...; err != nil`.
func (e Errors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

var (
	vOnce sync.Once
	v     *validator.Validate
)

// V returns the shared validator.  Struct field errors are reported under
// the name from the query or json tag.
func V() *validator.Validate {
	vOnce.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"query", "json"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return f.Name
		})
	})
	return v
}
