// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file gates the lead-capture routes with the fixed-window limiter from
// package ratelimit. Each route installs its own RateLimit handler with a
// KeyFunc; the emergency route namespaces its identifiers so its quota never
// mixes with contact traffic from the same client.
//
// Features:
//   - Identifier taken from forwarding headers (X-Forwarded-For, X-Real-IP)
//   - 429 with Retry-After and the caller's current quota in the body
//   - Seamless bypass for idempotent replays (when paired with IdempotencyValidator)
//
// Notes:
//   - The limiter is process-local. For horizontally scaled deployments,
//     put a shared counter behind ratelimit.Store.
//   - The limiter is intended for edge-level abuse control; it is not an
//     authorization mechanism.
package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/hvac-site-backend/internal/ratelimit"
)

// UnknownClient is the identifier used when no forwarding header is present.
const UnknownClient = "unknown"

// ctxKeyClientID caches the identifier computed for the current request.
const ctxKeyClientID = "rate.client"

// KeyFunc selects the identity used to key a rate-limit entry.
type KeyFunc func(*gin.Context) string

// KeyByForwardedFor returns a KeyFunc that uses the first address in
// X-Forwarded-For, then X-Real-IP, then UnknownClient. prefix is prepended
// verbatim (e.g. "emergency-").
//
// All clients without forwarding headers share the UnknownClient quota; the
// service is expected to run behind a proxy that sets them.
func KeyByForwardedFor(prefix string) KeyFunc {
	return func(c *gin.Context) string {
		return prefix + clientAddress(c)
	}
}

func clientAddress(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if xr := strings.TrimSpace(c.GetHeader("X-Real-IP")); xr != "" {
		return xr
	}
	return UnknownClient
}

// ClientID returns the identifier computed for this request by keyFn and
// caches it on the context, so idempotency and rate limiting agree on it.
func ClientID(c *gin.Context, keyFn KeyFunc) string {
	if v, ok := c.Get(ctxKeyClientID); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	id := keyFn(c)
	c.Set(ctxKeyClientID, id)
	return id
}

// IsRateBypass reports whether IdempotencyValidator marked this request for
// rate-limit bypass (i.e., it is a replay of a previously completed request).
func IsRateBypass(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyRateBypass) // set by IdempotencyValidator
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// RateLimit returns a Gin middleware that admits or denies the request
// against lim using the identifier produced by keyFn.
//
// Behavior:
//   - If IsRateBypass(c) is true (idempotent replay), limiting is skipped
//     and no request is recorded.
//   - Otherwise lim.IsRateLimited records the request. A denied request is
//     aborted with 429, a Retry-After header in whole seconds, and:
//
//	{
//	  "success":       false,
//	  "code":          "rate_limited",
//	  "error":         "<message>",
//	  "rateLimitInfo": {"limit":5,"remaining":0,"resetTime":1700000000000},
//	  "request_id":    "<uuid>"
//	}
func RateLimit(lim *ratelimit.Limiter, keyFn KeyFunc, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}

		route := c.FullPath()
		id := ClientID(c, keyFn)
		denied := lim.IsRateLimited(id)
		rateLimitTracked.Set(float64(lim.Stats().TrackedIdentifiers))

		if !denied {
			rateLimitDecisions.WithLabelValues(route, "admit").Inc()
			c.Next()
			return
		}

		rateLimitDecisions.WithLabelValues(route, "deny").Inc()
		info := lim.Info(id)
		c.Header("Retry-After", strconv.Itoa(info.RetryAfter(lim.Now())))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"success":       false,
			"code":          "rate_limited",
			"error":         message,
			"rateLimitInfo": info,
			"request_id":    c.Writer.Header().Get(requestIDHeader),
		})
	}
}
