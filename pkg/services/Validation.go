package services

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

type FieldError struct {
	Field   string
	Message string
}

/*
ValidationError is returned before any store call when required input is
missing or malformed.
*/
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	messages := make([]string, 0, len(e.Fields))

	for _, f := range e.Fields {
		messages = append(messages, f.Message)
	}

	return strings.Join(messages, "; ")
}

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]

			if name == "" || name == "-" {
				return fld.Name
			}

			return name
		})
	})

	return validate
}

/*
ValidateStruct runs the validate tags on input and converts failures into a
*ValidationError with one readable message per field.
*/
func ValidateStruct(input any) error {
	var (
		validationErrors validator.ValidationErrors
	)

	err := getValidator().Struct(input)

	if err == nil {
		return nil
	}

	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("error validating input: %w", err)
	}

	result := &ValidationError{}

	for _, fe := range validationErrors {
		result.Fields = append(result.Fields, FieldError{
			Field:   fe.Field(),
			Message: fieldMessage(fe),
		})
	}

	return result
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "min":
		return fmt.Sprintf("%s is required", fe.Field())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

/*
ParseDisplayOrder turns a form value into a display order. Absent or
unparsable values are 0.
*/
func ParseDisplayOrder(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))

	if err != nil {
		return 0
	}

	return result
}
