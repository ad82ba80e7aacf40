package validators

import (
	"reflect"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var hasSpaces = regexp.MustCompile(`\s+`)

// New returns a validator with the project's custom tags registered.
func New() *validator.Validate {
	validate := validator.New()
	_ = validate.RegisterValidation("nospaces", NoWhiteSpaces)
	return validate
}

// NoWhiteSpaces returns false if the string contains any whitespace (rejecting the user input).
func NoWhiteSpaces(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}

	str := field.String()
	return !hasSpaces.MatchString(str)
}
