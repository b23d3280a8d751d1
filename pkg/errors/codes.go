package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeRequestTooLarge    ErrorCode = "COMMON_014"
	ErrCodeRateLimited        ErrorCode = "COMMON_015"
	ErrCodeNotImplemented     ErrorCode = "COMMON_016"
)

// Aliases used at call sites.
const (
	CodeInternal       = ErrCodeInternal
	CodeInvalidParam   = ErrCodeBadRequest
	CodeNotFound       = ErrCodeNotFound
	CodeConflict       = ErrCodeConflict
	CodeNotImplemented = ErrCodeNotImplemented
	CodeCacheError     = ErrCodeCacheError
	CodeOK             = ErrorCode("OK")
	CodeUnknown        = ErrorCode("UNKNOWN")

	CodeQueryMalformed  = ErrCodeQueryMalformed
	CodeTargetMalformed = ErrCodeTargetMalformed
)

// Molecule Module Error Codes
const (
	ErrCodeMoleculeInvalidGraph     ErrorCode = "MOL_003"
	ErrCodeMoleculeNotFound         ErrorCode = "MOL_004"
	ErrCodeSubstructureSearchFailed ErrorCode = "MOL_012"
)

// Matching Engine Error Codes
const (
	ErrCodeQueryMalformed       ErrorCode = "MATCH_001"
	ErrCodeTargetMalformed      ErrorCode = "MATCH_002"
	ErrCodeAlgorithmUnsupported ErrorCode = "MATCH_003"
	ErrCodeModeUnsupported      ErrorCode = "MATCH_004"
	ErrCodeRootOutOfRange       ErrorCode = "MATCH_005"
	ErrCodeScreenLibraryEmpty   ErrorCode = "MATCH_006"
	ErrCodeScreenLibraryTooBig  ErrorCode = "MATCH_007"
	ErrCodeStereoMalformed      ErrorCode = "MATCH_008"
	ErrCodeGroupingMalformed    ErrorCode = "MATCH_009"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeRequestTooLarge:    http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:        http.StatusTooManyRequests,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeMoleculeInvalidGraph:     http.StatusBadRequest,
	ErrCodeMoleculeNotFound:         http.StatusNotFound,
	ErrCodeSubstructureSearchFailed: http.StatusInternalServerError,

	ErrCodeQueryMalformed:       http.StatusBadRequest,
	ErrCodeTargetMalformed:      http.StatusBadRequest,
	ErrCodeAlgorithmUnsupported: http.StatusBadRequest,
	ErrCodeModeUnsupported:      http.StatusBadRequest,
	ErrCodeRootOutOfRange:       http.StatusBadRequest,
	ErrCodeScreenLibraryEmpty:   http.StatusBadRequest,
	ErrCodeScreenLibraryTooBig:  http.StatusRequestEntityTooLarge,
	ErrCodeStereoMalformed:      http.StatusBadRequest,
	ErrCodeGroupingMalformed:    http.StatusBadRequest,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeUnauthorized:       "missing or invalid API key",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeCacheError:         "cache error",
	ErrCodeRequestTooLarge:    "request body too large",
	ErrCodeRateLimited:        "rate limit exceeded",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeMoleculeInvalidGraph:     "invalid molecule graph",
	ErrCodeMoleculeNotFound:         "molecule not found",
	ErrCodeSubstructureSearchFailed: "substructure search failed",

	ErrCodeQueryMalformed:       "malformed query graph",
	ErrCodeTargetMalformed:      "malformed target graph",
	ErrCodeAlgorithmUnsupported: "unsupported matching algorithm",
	ErrCodeModeUnsupported:      "unsupported matching mode",
	ErrCodeRootOutOfRange:       "root vertex out of range",
	ErrCodeScreenLibraryEmpty:   "screening library is empty",
	ErrCodeScreenLibraryTooBig:  "screening library exceeds the configured size",
	ErrCodeStereoMalformed:      "malformed stereo descriptor",
	ErrCodeGroupingMalformed:    "malformed component grouping",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
