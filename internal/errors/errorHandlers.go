package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeBadRequest          ErrorType = "BAD_REQUEST"
	ErrorTypeUnauthorized        ErrorType = "UNAUTHORIZED"
	ErrorTypeNotFound            ErrorType = "NOT_FOUND"
	ErrorTypeRateLimited         ErrorType = "RATE_LIMITED"
	ErrorTypeServiceUnavailable  ErrorType = "SERVICE_UNAVAILABLE"
	ErrorTypeInternalServerError ErrorType = "INTERNAL_SERVER_ERROR"
)

// CustomError represents a custom error with associated HTTP status code and type
type CustomError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Internal   error
}

// Error implements the error interface
func (e *CustomError) Error() string {
	return e.Message
}

// newError creates a new CustomError
func newError(errType ErrorType, message string, statusCode int, internal error) *CustomError {
	return &CustomError{
		Type:       errType,
		Message:    message,
		StatusCode: statusCode,
		Internal:   internal,
	}
}

// New400Error creates a new bad request error
func New400Error(message string) *CustomError {
	return newError(ErrorTypeBadRequest, message, http.StatusBadRequest, nil)
}

// New401Error creates a new unauthorized error
func New401Error(message string) *CustomError {
	return newError(ErrorTypeUnauthorized, message, http.StatusUnauthorized, nil)
}

// New404Error creates a new not found error
func New404Error(message string) *CustomError {
	return newError(ErrorTypeNotFound, message, http.StatusNotFound, nil)
}

// New429Error creates a new rate limited error. Hitting the daily quota is an
// expected outcome, so these are never logged as faults.
func New429Error(message string) *CustomError {
	return newError(ErrorTypeRateLimited, message, http.StatusTooManyRequests, nil)
}

// New503Error creates a new service unavailable error for upstream failures
func New503Error(message string, internal error) *CustomError {
	return newError(ErrorTypeServiceUnavailable, message, http.StatusServiceUnavailable, internal)
}

// New500Error creates a new internal server error
func New500Error(internal error) *CustomError {
	return newError(ErrorTypeInternalServerError, "An unexpected error occurred", http.StatusInternalServerError, internal)
}

// HandleError handles the custom error and sends an appropriate JSON response
func HandleError(c *gin.Context, err error) {
	var customErr *CustomError
	var ok bool

	if customErr, ok = err.(*CustomError); !ok {
		customErr = New500Error(err)
	}

	// Log internal server errors
	if customErr.Type == ErrorTypeInternalServerError {
		log.Error().
			Err(customErr.Internal).
			Str("url", c.Request.URL.String()).
			Msg("Internal Server Error")
	}

	// Upstream failures are transient; log at warn so retries can be correlated
	if customErr.Type == ErrorTypeServiceUnavailable {
		log.Warn().
			Err(customErr.Internal).
			Str("url", c.Request.URL.String()).
			Msg("Upstream AI provider unavailable")
	}

	c.JSON(customErr.StatusCode, gin.H{"error": customErr.Message})
}
