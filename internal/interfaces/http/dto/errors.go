package dto

import (
	"errors"
	"net/http"

	"github.com/agricred/intake/internal/domain/shared"
)

// General error codes
const (
	ErrCodeInternal   = "ERR_INTERNAL"
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	ErrCodeNotFound   = "ERR_NOT_FOUND"
	ErrCodeConflict   = "ERR_CONFLICT"
	ErrCodeTooLarge   = "ERR_REQUEST_TOO_LARGE"
	ErrCodeInvalid    = "INVALID_REQUEST"
)

// Intake error codes. They mirror the codes of the intake domain errors.
const (
	ErrCodeSessionNotFound     = "SESSION_NOT_FOUND"
	ErrCodeSubmissionNotFound  = "SUBMISSION_NOT_FOUND"
	ErrCodeUnknownStep         = "UNKNOWN_STEP"
	ErrCodeUnknownSection      = "UNKNOWN_SECTION"
	ErrCodeUnknownEvent        = "UNKNOWN_EVENT"
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
	ErrCodeNotAtFinalStep      = "NOT_AT_FINAL_STEP"
	ErrCodeAlreadySubmitted    = "ALREADY_SUBMITTED"
	ErrCodeInvalidDocumentType = "INVALID_DOCUMENT_TYPE"
	ErrCodeUnsupportedFile     = "UNSUPPORTED_FILE"
	ErrCodeDocumentTooLarge    = "DOCUMENT_TOO_LARGE"
	ErrCodeEmptyDocument       = "EMPTY_DOCUMENT"
	ErrCodeTooManySessions     = "TOO_MANY_SESSIONS"
	ErrCodeUploadsDisabled     = "UPLOADS_DISABLED"
	ErrCodeMissingSubmitter    = "MISSING_SUBMITTER"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeNotFound:   http.StatusNotFound,
	ErrCodeConflict:   http.StatusConflict,
	ErrCodeTooLarge:   http.StatusRequestEntityTooLarge,
	ErrCodeInvalid:    http.StatusBadRequest,

	shared.ErrAlreadyExists.Code: http.StatusConflict,

	ErrCodeSessionNotFound:    http.StatusNotFound,
	ErrCodeSubmissionNotFound: http.StatusNotFound,
	ErrCodeUnknownStep:        http.StatusNotFound,
	ErrCodeUnknownSection:     http.StatusNotFound,
	ErrCodeUnknownEvent:       http.StatusBadRequest,

	ErrCodeValidationFailed: http.StatusUnprocessableEntity,
	ErrCodeNotAtFinalStep:   http.StatusUnprocessableEntity,
	ErrCodeAlreadySubmitted: http.StatusConflict,

	ErrCodeInvalidDocumentType: http.StatusBadRequest,
	ErrCodeUnsupportedFile:     http.StatusUnsupportedMediaType,
	ErrCodeDocumentTooLarge:    http.StatusRequestEntityTooLarge,
	ErrCodeEmptyDocument:       http.StatusBadRequest,
	ErrCodeUploadsDisabled:     http.StatusServiceUnavailable,

	ErrCodeTooManySessions:  http.StatusServiceUnavailable,
	ErrCodeMissingSubmitter: http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorCode extracts the code and message of a domain error. The second
// result is false for errors that carry no domain code.
func ErrorCode(err error) (code, message string, ok bool) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code, domainErr.Message, true
	}
	return ErrCodeInternal, "An unexpected error occurred", false
}
