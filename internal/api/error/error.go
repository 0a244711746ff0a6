// Package error contains the API error envelope and its error codes.
package error

import (
	"encoding/json"
	"net/http"
)

// Error is the response body written for every rejected request.
// Fields carries field-keyed validation messages when the rejection
// was an itemized validation failure.
type Error struct {
	Code    ErrorCode           `json:"code"`
	Status  int                 `json:"-"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"fields,omitempty"`
	ErrorID string              `json:"error_id"`
}

func (e *Error) Error() string {
	return e.Message
}

func encode(w http.ResponseWriter, body *Error) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(body.Status)
	return json.NewEncoder(w).Encode(body)
}

// EncodeError writes an error response for the given code.
func EncodeError(w http.ResponseWriter, code ErrorCode, message, requestID string) error {
	return encode(w, &Error{
		Code:    code,
		Status:  code.StatusCode(),
		Message: message,
		ErrorID: requestID,
	})
}

// EncodeFieldErrors writes a validation_failed response with
// per-field messages.
func EncodeFieldErrors(w http.ResponseWriter, fields map[string][]string, requestID string) error {
	return encode(w, &Error{
		Code:    ValidationFailed,
		Status:  ValidationFailed.StatusCode(),
		Message: "validation failed",
		Fields:  fields,
		ErrorID: requestID,
	})
}

func EncodeInternalError(w http.ResponseWriter, requestID string) error {
	return EncodeError(w, InternalServerError, "internal server error", requestID)
}
