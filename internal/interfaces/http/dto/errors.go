package dto

import (
	"net/http"
	"strings"

	"github.com/mobidist/backend/internal/domain/shared"
)

// Transport-level error codes not produced by the domain layer
const (
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeValidation = "VALIDATION_FAILED"
)

// errorCodeHTTPStatus maps domain error codes to HTTP status codes
var errorCodeHTTPStatus = map[string]int{
	shared.CodeNotFound:            http.StatusNotFound,
	shared.CodeAlreadyExists:       http.StatusConflict,
	shared.CodeDuplicateTracking:   http.StatusConflict,
	shared.CodeConcurrencyConflict: http.StatusConflict,
	shared.CodeInvalidInput:        http.StatusBadRequest,
	shared.CodeInvalidState:        http.StatusUnprocessableEntity,
	shared.CodeInvalidTransition:   http.StatusUnprocessableEntity,
	shared.CodeReconciliation:      http.StatusUnprocessableEntity,
	shared.CodeThresholdExceeded:   http.StatusUnprocessableEntity,

	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status for an error code. Domain codes
// follow the INVALID_* convention for input problems, so unknown codes
// with that prefix map to 400 and everything else to 500.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
