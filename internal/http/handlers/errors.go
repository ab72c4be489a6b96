// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes give the site's JavaScript a stable value to branch on; the
// human-readable "error" text next to them may change with the business
// profile (it embeds the phone number).
//
// Example response:
//
//	{
//	  "success": false,
//	  "code": "validation_failed",
//	  "error": "Invalid form data",
//	  "details": {"email": ["Please enter a valid email address"]},
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6"
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeRateLimited      = "rate_limited"
	ErrCodeInternal         = "internal_error"

	// Lead submissions:
	ErrCodeValidation = "validation_failed"
	ErrCodeDispatch   = "dispatch_failed"

	// Reviews proxy:
	ErrCodeReviewsNotConfigured = "reviews_not_configured"
	ErrCodeReviewsUpstream      = "reviews_upstream_status"
	ErrCodeReviewsUnavailable   = "reviews_unavailable"
)
