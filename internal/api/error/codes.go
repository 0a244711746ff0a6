package error

import "net/http"

type ErrorCode string

const (
	UnknownError        ErrorCode = "unknown_error"
	InternalServerError ErrorCode = "internal_server_error"
	BadRequest          ErrorCode = "bad_request"
	ValidationFailed    ErrorCode = "validation_failed"
	DuplicateRelation   ErrorCode = "duplicate_relation"
	NotFound            ErrorCode = "not_found"
	PermissionDenied    ErrorCode = "permission_denied"
	InvalidCredentials  ErrorCode = "invalid_credentials"
	InvalidAccessToken  ErrorCode = "invalid_access_token"
	ExpiredAccessToken  ErrorCode = "expired_access_token"
	EmailConflict       ErrorCode = "email_conflict"
	UsernameConflict    ErrorCode = "username_conflict"
	WeakPassword        ErrorCode = "weak_password"
)

var errorCodeToStatusCode = map[ErrorCode]int{
	UnknownError:        0, // No error code - unknown
	InternalServerError: http.StatusInternalServerError,
	BadRequest:          http.StatusBadRequest,
	ValidationFailed:    http.StatusBadRequest,
	DuplicateRelation:   http.StatusBadRequest,
	NotFound:            http.StatusNotFound,
	PermissionDenied:    http.StatusForbidden,
	InvalidCredentials:  http.StatusUnauthorized,
	InvalidAccessToken:  http.StatusUnauthorized,
	ExpiredAccessToken:  http.StatusUnauthorized,
	EmailConflict:       http.StatusConflict,
	UsernameConflict:    http.StatusConflict,
	WeakPassword:        http.StatusUnprocessableEntity,
}

func (ec ErrorCode) StatusCode() int {
	return errorCodeToStatusCode[ec]
}

func (ec ErrorCode) String() string {
	return string(ec)
}
