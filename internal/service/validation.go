package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/dom/qa-assessment/internal/domain"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// maxbytes bounds the encoded length; bcrypt rejects inputs over 72 bytes
	// however few runes they hold.
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= n
	})
	return v
}

// Validate checks s against its validate tags and returns a
// *domain.ValidationError listing every failing field. prefix is
// prepended to each field path.
func Validate(s any, prefix ...string) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]domain.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, toFieldError(fe, prefix))
	}
	return domain.NewValidationError(fields...)
}

func toFieldError(fe validator.FieldError, prefix []string) domain.FieldError {
	path := append([]string{}, prefix...)
	// Namespace starts with the Go type name of the root struct.
	if parts := strings.Split(fe.Namespace(), "."); len(parts) > 1 {
		path = append(path, parts[1:]...)
	}

	switch fe.Tag() {
	case "required":
		// A nil pointer means the key was absent from the payload.
		if fe.Kind() == reflect.Ptr || fe.Kind() == reflect.Invalid {
			return domain.FieldError{
				Code:     "invalid_type",
				Expected: jsonKind(fe.Type()),
				Received: "undefined",
				Message:  "Required",
				Path:     path,
			}
		}
		return domain.FieldError{
			Code:    "too_small",
			Message: "String must contain at least 1 character(s)",
			Path:    path,
		}
	case "min":
		return domain.FieldError{
			Code:    "too_small",
			Message: fmt.Sprintf("String must contain at least %s character(s)", fe.Param()),
			Path:    path,
		}
	case "max":
		return domain.FieldError{
			Code:    "too_big",
			Message: fmt.Sprintf("String must contain at most %s character(s)", fe.Param()),
			Path:    path,
		}
	case "maxbytes":
		return domain.FieldError{
			Code:    "too_big",
			Message: fmt.Sprintf("String must contain at most %s byte(s)", fe.Param()),
			Path:    path,
		}
	default:
		return domain.FieldError{
			Code:    "custom",
			Message: fmt.Sprintf("failed on the '%s' rule", fe.Tag()),
			Path:    path,
		}
	}
}

// DecodeError converts a JSON type mismatch into a validation error so
// that {"favoriteBook": 123} is reported like any other invalid field.
// Other errors are returned unchanged.
func DecodeError(err error, prefix ...string) error {
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) {
		return err
	}

	path := append([]string{}, prefix...)
	if typeErr.Field != "" {
		path = append(path, strings.Split(typeErr.Field, ".")...)
	}

	received := typeErr.Value
	if received == "bool" {
		received = "boolean"
	}
	expected := jsonKind(typeErr.Type)

	return domain.NewValidationError(domain.FieldError{
		Code:     "invalid_type",
		Expected: expected,
		Received: received,
		Message:  fmt.Sprintf("Expected %s, received %s", expected, received),
		Path:     path,
	})
}

func jsonKind(t reflect.Type) string {
	if t == nil {
		return "unknown"
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Struct, reflect.Map:
		return "object"
	default:
		return t.Kind().String()
	}
}
