package web

import (
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorCode represents standardized error codes for the API
type ErrorCode string

const (
	// Client Error Codes (4xx)
	ErrorCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrorCodeInvalidJSON      ErrorCode = "INVALID_JSON"
	ErrorCodeFaqNotFound      ErrorCode = "FAQ_NOT_FOUND"
	ErrorCodeFaqExists        ErrorCode = "FAQ_ALREADY_EXISTS"
	ErrorCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"

	// Server Error Codes (5xx)
	ErrorCodeInternalError        ErrorCode = "INTERNAL_ERROR"
	ErrorCodeEmbeddingUnavailable ErrorCode = "EMBEDDING_UNAVAILABLE"
)

// APIError represents a standardized API error response
type APIError struct {
	Error     string    `json:"error"`
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// SendError sends a standardized error response
func SendError(c *gin.Context, statusCode int, code ErrorCode, message string) {
	c.JSON(statusCode, &APIError{
		Error:     "Request failed",
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	})
}
