// Package errors defines the service error taxonomy and the JSON error
// surface returned to clients. Internal diagnostics (which gate rejected a
// candidate, which extraction stage failed) stay in the logs; clients only
// ever see the short localized message.
package errors

import (
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	CategoryClient   ErrorCategory = "client"
	CategoryServer   ErrorCategory = "server"
	CategoryExternal ErrorCategory = "external"
)

// Common error codes
const (
	// Client errors (4xx)
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeUnsupportedSource = "UNSUPPORTED_SOURCE"

	// Resolution pipeline errors
	CodeExtractionFailed  = "EXTRACTION_FAILED"
	CodeNoMatchFound      = "NO_MATCH_FOUND"
	CodeBadSourceMetadata = "BAD_SOURCE_METADATA"

	// Server / external errors
	CodeDownloadFailed = "DOWNLOAD_FAILED"
	CodeInternalError  = "INTERNAL_ERROR"
)

// AppError represents a structured application error
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Category   ErrorCategory  `json:"-"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause sets the underlying cause of the error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

// ErrorResponse is the JSON structure returned to clients
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// New creates a new AppError
func New(code string, message string, category ErrorCategory, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Category:   category,
		HTTPStatus: httpStatus,
	}
}

func BadRequest(message string) *AppError {
	return New(CodeInvalidRequest, message, CategoryClient, http.StatusBadRequest)
}

func UnsupportedSource(message string) *AppError {
	return New(CodeUnsupportedSource, message, CategoryClient, http.StatusBadRequest)
}

// ExtractionFailed is soft: callers fall through to the next extraction
// stage and only surface an error once every stage has failed.
func ExtractionFailed(stage string) *AppError {
	return New(CodeExtractionFailed, fmt.Sprintf("%s extraction failed", stage), CategoryExternal, http.StatusBadGateway)
}

func NoMatchFound(message string) *AppError {
	return New(CodeNoMatchFound, message, CategoryClient, http.StatusNotFound)
}

func BadSourceMetadata(message string) *AppError {
	return New(CodeBadSourceMetadata, message, CategoryClient, http.StatusNotFound)
}

func DownloadFailed(message string) *AppError {
	return New(CodeDownloadFailed, message, CategoryExternal, http.StatusNotFound)
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message, CategoryServer, http.StatusInternalServerError)
}

// WriteError writes an error response to the HTTP response writer
func WriteError(w http.ResponseWriter, err error) {
	var appErr *AppError

	switch e := err.(type) {
	case *AppError:
		appErr = e
	default:
		appErr = InternalError("an unexpected error occurred").WithCause(err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.HTTPStatus)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error: appErr.Message,
		Code:  appErr.Code,
	})
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// IsClientError returns true if the error is a client error
func IsClientError(err error) bool {
	appErr, ok := err.(*AppError)
	if !ok {
		return false
	}
	return appErr.Category == CategoryClient
}

// IsExternalError returns true if the error is an external service error
func IsExternalError(err error) bool {
	appErr, ok := err.(*AppError)
	if !ok {
		return false
	}
	return appErr.Category == CategoryExternal
}
