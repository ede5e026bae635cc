package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error codes surfaced to the presentation layer
const (
	CodeUnknownIdentifier       = "UNKNOWN_IDENTIFIER"
	CodeValidation              = "VALIDATION_ERROR"
	CodeInvalidExchangeRate     = "INVALID_EXCHANGE_RATE"
	CodeInvalidTaxConfiguration = "INVALID_TAX_CONFIGURATION"
	CodeInvalidCatalog          = "INVALID_CATALOG"
	CodePersistenceReadCorrupt  = "PERSISTENCE_READ_CORRUPT"
	CodeEmptySaveRequest        = "EMPTY_SAVE_REQUEST"
	CodeHistoryNotFound         = "HISTORY_NOT_FOUND"
	CodeDatabase                = "DATABASE_ERROR"
	CodeQueue                   = "QUEUE_ERROR"
	CodeInvalidRequest          = "INVALID_REQUEST"
	CodeInternal                = "INTERNAL_ERROR"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code       string // Machine-readable error code
	Message    string // Human-readable error message
	StatusCode int    // HTTP status code
	Err        error  // Underlying error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (underlying: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code, message string, statusCode int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Err:        err,
	}
}

// As extracts an AppError from err, if any
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is an AppError carrying code
func HasCode(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// ErrUnknownIdentifier is returned when a catalog lookup misses
func ErrUnknownIdentifier(kind, id string) *AppError {
	return &AppError{
		Code:       CodeUnknownIdentifier,
		Message:    fmt.Sprintf("Unknown %s '%s'", kind, id),
		StatusCode: http.StatusNotFound,
		Err:        nil,
	}
}

// ErrValidation creates a validation error
func ErrValidation(field, reason string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    fmt.Sprintf("Validation failed for field '%s': %s", field, reason),
		StatusCode: http.StatusBadRequest,
		Err:        nil,
	}
}

// ErrInvalidExchangeRate creates an invalid exchange rate error
func ErrInvalidExchangeRate(rate float64) *AppError {
	return &AppError{
		Code:       CodeInvalidExchangeRate,
		Message:    fmt.Sprintf("Exchange rate must be greater than 0, got %g", rate),
		StatusCode: http.StatusBadRequest,
		Err:        nil,
	}
}

// ErrInvalidTaxConfiguration is returned when commercialization taxes plus
// target margin reach 100% of the selling price
func ErrInvalidTaxConfiguration(commercializationRate, targetMargin float64) *AppError {
	return &AppError{
		Code: CodeInvalidTaxConfiguration,
		Message: fmt.Sprintf("Commercialization rate (%.2f%%) plus target margin (%.2f%%) must stay below 100%%",
			commercializationRate, targetMargin),
		StatusCode: http.StatusUnprocessableEntity,
		Err:        nil,
	}
}

// ErrInvalidCatalog creates a catalog consistency error
func ErrInvalidCatalog(reason string, err error) *AppError {
	return &AppError{
		Code:       CodeInvalidCatalog,
		Message:    fmt.Sprintf("Invalid catalog: %s", reason),
		StatusCode: http.StatusUnprocessableEntity,
		Err:        err,
	}
}

// ErrPersistenceReadCorrupt creates an error for stored data that cannot be decoded
func ErrPersistenceReadCorrupt(key string, err error) *AppError {
	return &AppError{
		Code:       CodePersistenceReadCorrupt,
		Message:    fmt.Sprintf("Stored value under '%s' is corrupt", key),
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

// ErrEmptySaveRequest is returned when saving a quote with no items
func ErrEmptySaveRequest() *AppError {
	return &AppError{
		Code:       CodeEmptySaveRequest,
		Message:    "Quote has no items to save",
		StatusCode: http.StatusBadRequest,
		Err:        nil,
	}
}

// ErrHistoryNotFound creates a history entry not found error
func ErrHistoryNotFound(id int64) *AppError {
	return &AppError{
		Code:       CodeHistoryNotFound,
		Message:    fmt.Sprintf("Saved quote '%d' not found", id),
		StatusCode: http.StatusNotFound,
		Err:        nil,
	}
}

// ErrDatabaseOperation creates a database operation error
func ErrDatabaseOperation(operation string, err error) *AppError {
	return &AppError{
		Code:       CodeDatabase,
		Message:    fmt.Sprintf("Database operation '%s' failed", operation),
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

// ErrQueueOperation creates a queue operation error
func ErrQueueOperation(operation string, err error) *AppError {
	return &AppError{
		Code:       CodeQueue,
		Message:    fmt.Sprintf("Queue operation '%s' failed", operation),
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

// ErrInvalidRequest creates an invalid request error
func ErrInvalidRequest(message string, err error) *AppError {
	return &AppError{
		Code:       CodeInvalidRequest,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Err:        err,
	}
}

// ErrInternalServer creates an internal server error
func ErrInternalServer(message string, err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

// ErrorResponse represents an error response structure
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details for API responses
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ToErrorResponse converts an AppError to an ErrorResponse
func ToErrorResponse(err *AppError) ErrorResponse {
	return ErrorResponse{
		Error: ErrorDetail{
			Code:    err.Code,
			Message: err.Message,
		},
	}
}
