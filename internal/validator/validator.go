// Package validator wraps go-playground/validator with the custom tags and
// field-level error shape the API returns.
package validator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var validate = func() *validator.Validate {
	v := validator.New()
	// slug: lowercase alphanumeric segments joined by single hyphens
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	return v
}()

// ValidationError describes one invalid field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is the error returned for an invalid struct
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	parts := make([]string, len(e))
	for i, err := range e {
		parts[i] = err.Field + " " + err.Message
	}
	return strings.Join(parts, "; ")
}

// Validate checks a struct against its validate tags and returns
// ValidationErrors describing every failing field
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   jsonFieldName(fe.Field()),
			Message: messageFor(fe),
		})
	}
	return out
}

// jsonFieldName lowercases the first rune, matching the camelCase json tags
func jsonFieldName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

func messageFor(fe validator.FieldError) string {
	isString := fe.Type().Kind().String() == "string"

	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "slug":
		return "must be a lowercase hyphenated slug"
	case "uuid":
		return "must be a valid UUID"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if isString {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	default:
		return "failed validation: " + fe.Tag()
	}
}
