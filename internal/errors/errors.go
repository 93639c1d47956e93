package errors

import (
	"net/http"

	"codeberg.org/mise/server/internal/logger"
	"github.com/gin-gonic/gin"
)

// Error Handling Guidelines:
//
// For HTTP REST handlers:
//   - Use errors.InternalError(), errors.BadRequest(), etc. for failures
//     These functions handle both logging and HTTP response automatically
//   - Quota, pause and rate-limit refusals are expected outcomes: respond with
//     PaymentRequired() / TooManyRequests() and never log them as errors
//   - Never call both logger.ErrorErr() and errors.InternalError() for the same error
//
// For services/stores/internal packages:
//   - Return wrapped errors with context using fmt.Errorf("context: %w", err)
//   - Export sentinel errors for conditions the handler maps to a status code
//   - Do not log errors in non-handler code (avoid double logging)

// standard error codes
const (
	CodeUnauthorized    = "unauthorized"
	CodeForbidden       = "forbidden"
	CodeNotFound        = "not_found"
	CodeValidationError = "validation_error"
	CodeServerError     = "server_error"
	CodeBadRequest      = "bad_request"
	CodeTooManyRequests = "too_many_requests"
	CodeFetchFailed     = "fetch_failed"
	CodeExtraction      = "extraction_failed"
	CodeQuotaExceeded   = "quota_exceeded"
	CodeSystemPaused    = "system_limit"
)

// returns a 401 unauthorized error
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "authentication required"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
		Error:   CodeUnauthorized,
		Message: message,
	})
}

// returns a 403 forbidden error
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "permission denied"
	}

	c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
		Error:   CodeForbidden,
		Message: message,
	})
}

// returns a 404 not found error
func NotFound(c *gin.Context, resource string) {
	message := "resource not found"

	if resource != "" {
		message = resource + " not found"
	}

	c.JSON(http.StatusNotFound, ErrorResponse{
		Error:   CodeNotFound,
		Message: message,
	})
}

// returns a 400 bad request error
func BadRequest(c *gin.Context, message string, err error) {
	if message == "" {
		message = "invalid request"
	}

	response := ErrorResponse{
		Error:   CodeBadRequest,
		Message: message,
	}

	if err != nil {
		response.Details = sanitizeError(err)
	}

	c.JSON(http.StatusBadRequest, response)
}

// returns a 400 bad request error for binding/validation failures
func ValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   CodeValidationError,
		Message: "request validation failed",
		Details: sanitizeError(err),
	})
}

// returns a 400 when the source material could not be retrieved.
// the cause is logged at info level; the client only sees a generic message.
func FetchFailed(c *gin.Context, message string, err error) {
	if message == "" {
		message = "could not read content from that source"
	}

	logger.FromContext(c.Request.Context()).Info("fetch failed",
		"path", c.Request.URL.Path,
		"error", err,
	)

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   CodeFetchFailed,
		Message: message,
	})
}

// returns a 402 quota envelope
func PaymentRequired(c *gin.Context, body QuotaResponse) {
	if body.Error == "" {
		body.Error = CodeQuotaExceeded
	}

	c.JSON(http.StatusPaymentRequired, body)
}

// returns a 429 too many requests error
func TooManyRequests(c *gin.Context, message string) {
	if message == "" {
		message = "too many requests"
	}

	c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
		Error:   CodeTooManyRequests,
		Message: message,
	})
}

// returns a 500 when the model produced nothing usable
func ExtractionFailed(c *gin.Context, err error) {
	logger.FromContext(c.Request.Context()).Error("extraction failed",
		"path", c.Request.URL.Path,
		"user_id", c.GetString("user_id"),
		"error", err,
	)

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   CodeExtraction,
		Message: "we couldn't extract a recipe from that source",
	})
}

// returns a 500 internal server error
func InternalError(c *gin.Context, message string, err error) {
	if message == "" {
		message = "an error occurred"
	}

	// log full error server-side with context
	logger.FromContext(c.Request.Context()).Error(message,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"user_id", c.GetString("user_id"),
		"category", Category(err),
		"error", err,
	)

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   CodeServerError,
		Message: message,
		Details: sanitizeError(err),
	})
}
