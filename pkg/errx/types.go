package errx

import "net/http"

// Type represents the category of error
type Type string

const (
	// TypeInternal is an unexpected failure (storage down, signing broken).
	// Its message never reaches the caller.
	TypeInternal Type = "INTERNAL"

	// TypeValidation is a bad input the caller can correct and resend
	TypeValidation Type = "VALIDATION"

	// TypeAuthorization covers missing, forged or expired credentials
	TypeAuthorization Type = "AUTHORIZATION"

	// TypeNotFound represents resource not found errors
	TypeNotFound Type = "NOT_FOUND"

	// TypeConflict represents resource conflict errors
	TypeConflict Type = "CONFLICT"

	// TypeExternal is a failure reported by, or while talking to, a third party
	TypeExternal Type = "EXTERNAL"
)

// String returns the string representation of the error type
func (t Type) String() string {
	return string(t)
}

// HTTPStatus maps the type to its default HTTP status code
func (t Type) HTTPStatus() int {
	switch t {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeAuthorization:
		return http.StatusUnauthorized
	case TypeNotFound:
		return http.StatusNotFound
	case TypeConflict:
		return http.StatusConflict
	case TypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
