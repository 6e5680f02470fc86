package dto

import (
	"net/http"

	"github.com/proptax/backend/internal/domain/shared"
)

// Transport-level error codes. Domain codes from the shared package are
// passed through unchanged.
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeInvalidJSON  = "INVALID_JSON"
	ErrCodeMissingActor = "MISSING_ACTOR"
	ErrCodeTimeout      = "REQUEST_TIMEOUT"
	ErrCodeTooLarge     = "REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	shared.CodeNotFound: http.StatusNotFound,

	shared.CodeValidation:    http.StatusBadRequest,
	shared.CodeInvalidStatus: http.StatusBadRequest,

	// Fee schedule lookups fail on well-formed input the tariff cannot price
	shared.CodeScheduleAmbiguous: http.StatusUnprocessableEntity,
	shared.CodeScheduleNotFound:  http.StatusUnprocessableEntity,

	shared.CodeConcurrencyConflict: http.StatusConflict,
	shared.CodeAlreadyExists:       http.StatusConflict,

	shared.CodeInspectionFailed: http.StatusInternalServerError,
	shared.CodeDeletionFailed:   http.StatusInternalServerError,
	shared.CodeAuditWriteFailed: http.StatusInternalServerError,

	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeMissingActor: http.StatusBadRequest,
	ErrCodeTimeout:      http.StatusGatewayTimeout,
	ErrCodeTooLarge:     http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsClientError reports whether code maps to a 4xx status
func IsClientError(code string) bool {
	status := GetHTTPStatus(code)
	return status >= 400 && status < 500
}
