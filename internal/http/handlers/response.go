// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response envelope shared by every endpoint. Lead
// routes answer {success:true, ...} or {success:false, code, error, ...};
// the site's forms read "success" first and show "error" verbatim, so error
// text must always be safe to display.
//
// Conventions:
//   - All error responses carry a stable `code` (see errors.go).
//   - `fail()` centralizes error formatting and logs 5xx responses with the
//     request-scoped logger. The underlying cause goes to the log only.
//
// Example error response:
//
//	HTTP/1.1 500 Internal Server Error
//	{
//	  "success": false,
//	  "code": "dispatch_failed",
//	  "error": "Failed to send message. Please try calling us directly at (240) 432-7489",
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/hvac-site-backend/internal/http/middleware"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	Success bool `json:"success" example:"false"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"validation_failed"`
	// Human-readable message (safe to show to users)
	Error string `json:"error" example:"Invalid form data"`
	// Field -> messages on validation failures; a string on configuration errors
	Details any `json:"details,omitempty" swaggertype:"object"`
	// Upstream explanation for reviews status errors
	Message string `json:"message,omitempty"`
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
}

// fail aborts the request with a structured error. Server errors (>=500)
// are logged with the request-scoped logger, including cause when non-nil.
func fail(c *gin.Context, status int, code, msg string, cause error) {
	failWith(c, status, ErrorResponse{Code: code, Error: msg}, cause)
}

// failWith is fail for envelopes that carry details or an upstream message.
func failWith(c *gin.Context, status int, resp ErrorResponse, cause error) {
	resp.Success = false
	resp.RequestID = c.Writer.Header().Get("X-Request-ID")

	if status >= http.StatusInternalServerError {
		ev := middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", resp.Code)
		if cause != nil {
			ev = ev.Err(cause)
		}
		ev.Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail() for router fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg, nil) }

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
