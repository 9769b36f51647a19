package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	playground "github.com/go-playground/validator/v10"
)

// ErrValidation is matched by errors.Is for every ValidationErrors value.
var ErrValidation = errors.New("validation failed")

var (
	instance *playground.Validate
	initOnce sync.Once
)

func validate() *playground.Validate {
	initOnce.Do(func() {
		instance = playground.New(playground.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(jsonFieldName)
	})
	return instance
}

// jsonFieldName reports fields by their JSON name; "-" hides a field.
func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	default:
		return name
	}
}

// Struct validates v using its `validate` tags.
// Returns ValidationErrors when any rule fails, or nil.
func Struct(v any) error {
	err := validate().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs playground.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validator: %w", err)
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, fromFieldError(fe))
	}
	return out
}

func fromFieldError(fe playground.FieldError) ValidationError {
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}

	return ValidationError{
		Field:   field,
		Rule:    fe.Tag(),
		Message: message(fe),
	}
}

func message(fe playground.FieldError) string {
	collection := false
	switch fe.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		collection = true
	}

	switch fe.Tag() {
	case "required", "required_without", "required_with":
		return "is required"
	case "min", "gte":
		if collection {
			return fmt.Sprintf("must contain at least %s items", fe.Param())
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters long", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		if collection {
			return fmt.Sprintf("must not contain more than %s items", fe.Param())
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s", fe.Param())
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "email":
		return "must be a valid email address"
	default:
		return "is invalid"
	}
}
