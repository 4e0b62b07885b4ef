package errx

import (
	"errors"
	"net/http"
)

const internalMessage = "Internal server error"

// HTTPErrorResponse represents a standard HTTP error response
type HTTPErrorResponse struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Type       string         `json:"type"`
	Details    map[string]any `json:"details,omitempty"`
	StatusCode int            `json:"status_code"`
}

// ToHTTPResponse converts any error into the response body sent to clients.
// Internal errors are reduced to a fixed message with no details so storage
// or signing failures never leak.
func ToHTTPResponse(err error) HTTPErrorResponse {
	var e *Error
	if !errors.As(err, &e) || e.Type == TypeInternal {
		return HTTPErrorResponse{
			Code:       string(TypeInternal),
			Message:    internalMessage,
			Type:       string(TypeInternal),
			StatusCode: http.StatusInternalServerError,
		}
	}

	return HTTPErrorResponse{
		Code:       e.Code,
		Message:    e.Message,
		Type:       string(e.Type),
		Details:    e.Details,
		StatusCode: e.HTTPStatus,
	}
}
