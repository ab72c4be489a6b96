// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements idempotency support for the lead submission routes.
// A browser retrying a submit (double click, flaky mobile network) can send
// an Idempotency-Key header; when a successful submission with the same key
// was already recorded for the same route and client, the request is marked
// as a replay so the handler answers with the original success instead of
// dispatching notifications again.
//
// Downstream handlers can:
//   - read the key and its scope (IdempotencyTarget)
//   - detect replayed requests (IsReplay)
//   - rely on rate limiting being skipped for replays (internal flag)
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the request header carrying the idempotency key.
const HeaderIdempotencyKey = "Idempotency-Key"

// HeaderIdempotencyReplayed is set to "true" on responses served as replays.
const HeaderIdempotencyReplayed = "Idempotency-Replayed"

// Context keys used internally to stash idempotency state.
const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemScope  = "idem.scope"
	ctxKeyIdemReplay = "idem.replay" // bool: true when a stored success exists
	ctxKeyRateBypass = "rate.bypass" // bool: true to skip rate limiting
)

// GetIdempotencyKey returns the validated idempotency key stored in the Gin
// context by IdempotencyValidator. The second return value indicates presence.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IdempotencyTarget returns the (scope, clientID, key) tuple under which a
// successful outcome for this request should be recorded. ok is false when
// the request carried no valid key.
func IdempotencyTarget(c *gin.Context) (scope, clientID, key string, ok bool) {
	key, ok = GetIdempotencyKey(c)
	if !ok {
		return "", "", "", false
	}
	scope = c.GetString(ctxKeyIdemScope)
	clientID = c.GetString(ctxKeyClientID)
	return scope, clientID, key, true
}

// IsReplay reports whether the middleware found a previously completed
// submission for this request's key.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// IdempotencyOptions configures header validation behavior for
// IdempotencyValidator. TTL enforcement belongs to the lookup.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters. If nil, a conservative RFC7230-like
	// token pattern is used: ^[A-Za-z0-9._~\-:]+$
	Pattern *regexp.Regexp
}

// IdempotencyLookup answers whether a successful, still-valid submission
// exists for (scope, clientID, key) at the given time.
//
// Return an error only for lookup failures; they never block normal
// processing.
type IdempotencyLookup func(ctx context.Context, scope, clientID, key string, now time.Time) (exists bool, err error)

var defaultIdemPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// IdempotencyValidator validates the Idempotency-Key header (if present),
// stashes it with the route scope and client identifier, and consults lookup
// for a prior success. keyFn must be the same KeyFunc the route's RateLimit
// uses, so a replay is recognized under the identity it was recorded with.
//
// Behavior:
//   - If header is absent: the middleware is a no-op.
//   - If header fails validation: responds 400 with the error envelope.
//   - If lookup indicates a replay: sets replay + rate-bypass flags.
//   - Always invokes the next handler unless validation fails.
func IdempotencyValidator(opts IdempotencyOptions, keyFn KeyFunc, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultIdemPattern
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success":    false,
				"code":       "bad_idempotency_key",
				"error":      "invalid Idempotency-Key",
				"request_id": c.Writer.Header().Get(requestIDHeader),
			})
			return
		}

		scope := c.FullPath()
		clientID := ClientID(c, keyFn)
		c.Set(ctxKeyIdemKey, key)
		c.Set(ctxKeyIdemScope, scope)

		if lookup != nil {
			exists, err := lookup(c.Request.Context(), scope, clientID, key, time.Now().UTC())
			if err != nil {
				LoggerFrom(c).Warn().Err(err).Msg("idempotency lookup failed")
			}
			if exists {
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}

		c.Next()
	}
}
