package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse abstracts all API error responses to the user.
//
// This interface does not implement `error`, since its only purpose
// is to be used for API responses and not for logging circumstances.
//
// In general, the whole ErrorResponse can be sent for serialization.
type ErrorResponse interface {
	// Code is the HTTP status code to be returned.
	Code() int
}

type APIError struct {
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (a *APIError) Code() int {
	return a.Status
}

type StructuredError struct {
	Errors map[string][]string `json:"errors"`
	Status int                 `json:"-"`
}

func (s *StructuredError) Code() int {
	return s.Status
}

func (s *StructuredError) Add(field, problem string) {
	s.Errors[field] = append(s.Errors[field], problem)
}

var (
	MalformedBodyError  = NewSimple(http.StatusBadRequest, "Malformed request body")
	InternalServerError = NewSimple(http.StatusInternalServerError, "Internal server error")

	/*
	 * Used for authentications
	 */
	// UnauthorizedError never says whether the token or the user behind it was the problem.
	UnauthorizedError        = NewSimple(http.StatusUnauthorized, "Invalid or expired credentials")
	CredentialsMismatchError = NewSimple(http.StatusUnauthorized, "Incorrect username or password")
	UserAlreadyExistsError   = NewSimple(http.StatusConflict, "User name is already taken")

	NoteNotOwnedError      = NewForbiddenError("You do not own this note")
	UserNotManageableError = NewForbiddenError("You may only modify your own account")
	AdminImmunityError     = NewForbiddenError("Administrators cannot be modified")
	NoteNotFoundError      = NewSimple(http.StatusNotFound, "Note not found")
	UserNotFoundError      = NewSimple(http.StatusNotFound, "User not found")
)

// FromValidationError maps validator failures to a per-field 400 response.
// Any other error is reported as a malformed body.
func FromValidationError(err error) ErrorResponse {
	var ve validator.ValidationErrors
	ok := errors.As(err, &ve)
	if !ok {
		return MalformedBodyError
	}

	problems := map[string][]string{}
	for _, fe := range ve {
		field := strings.ToLower(fe.Field())

		switch fe.Tag() {
		case "required":
			problems[field] = append(problems[field], "This field is required")
		case "min":
			problems[field] = append(problems[field], "Value is too short, min: "+fe.Param())
		case "max":
			problems[field] = append(problems[field], "Value is too long, max: "+fe.Param())
		case "gte":
			problems[field] = append(problems[field], "Value is too small, min: "+fe.Param())
		case "lte":
			problems[field] = append(problems[field], "Value is too large, max: "+fe.Param())
		case "nospaces":
			problems[field] = append(problems[field], "Value must not contain whitespace")

		default:
			problems[field] = append(problems[field], "Invalid value provided")
		}
	}

	return &StructuredError{
		Errors: problems,
		Status: http.StatusBadRequest,
	}
}

func NewSimple(status int, msg string, args ...any) *APIError {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return &APIError{Status: status, Message: msg}
}

func NewStructured(code int) *StructuredError {
	return &StructuredError{
		Errors: make(map[string][]string),
		Status: code,
	}
}

func NewForbiddenError(msg string) *APIError {
	return NewSimple(http.StatusForbidden, msg)
}

func NewInvalidParamTypeError(name, dataType string) *APIError {
	return NewSimple(http.StatusBadRequest, "Parameter '%s' has invalid type, expected: %s", name, dataType)
}
