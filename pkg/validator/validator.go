// Package validator wraps go-playground/validator for the request
// payloads of the FlightDeck API. Field names in failures are reported
// as their JSON keys so handler error messages match what the client
// actually sent.
package validator

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	initOnce sync.Once
	instance *validator.Validate
)

// ValidationError is one failed rule on one payload field.
type ValidationError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param"`
}

// ValidationErrors aggregates every failed rule of a payload.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}

	parts := make([]string, len(v))
	for i, failure := range v {
		part := failure.Field + " failed on " + failure.Tag
		if failure.Param != "" {
			part += "=" + failure.Param
		}
		parts[i] = part
	}
	return strings.Join(parts, "; ")
}

// ValidateStruct checks s against its `validate` tags. A failure is
// returned as ValidationErrors so handlers can render per-field messages.
func ValidateStruct(s interface{}) error {
	err := shared().Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	failures := make(ValidationErrors, 0, len(ve))
	for _, fe := range ve {
		failures = append(failures, ValidationError{
			Field: fe.Field(),
			Tag:   fe.Tag(),
			Param: fe.Param(),
		})
	}
	return failures
}

func shared() *validator.Validate {
	initOnce.Do(func() {
		instance = validator.New()
		instance.RegisterTagNameFunc(jsonFieldName)
	})
	return instance
}

// jsonFieldName resolves a struct field to the key the client sent,
// falling back to the Go name for untagged fields.
func jsonFieldName(fld reflect.StructField) string {
	tag := fld.Tag.Get("json")
	if tag == "" {
		return fld.Name
	}

	name := tag
	if comma := strings.Index(name, ","); comma != -1 {
		name = name[:comma]
	}
	if name == "" || name == "-" {
		return fld.Name
	}
	return name
}
