// Package mailer sends transactional email through an external provider and
// renders the lead notification bodies.
//
// Senders deliver a fully built Email; they know nothing about leads. The
// Composer turns validated lead requests into Emails using the business
// profile it was constructed with.
package mailer

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by senders that have no provider credentials.
var ErrNotConfigured = errors.New("email service not configured")

// Tag is a provider-side label attached to an email for filtering.
type Tag struct {
	Name  string
	Value string
}

// Email is a single message ready for delivery. The sender supplies From.
type Email struct {
	To      []string
	ReplyTo string
	Subject string
	HTML    string
	Tags    []Tag
}

// Sender delivers one Email. Implementations must honour ctx cancellation
// and must not retry on their own.
type Sender interface {
	Send(ctx context.Context, e Email) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, e Email) error

// Send calls f(ctx, e).
func (f SenderFunc) Send(ctx context.Context, e Email) error { return f(ctx, e) }

// Disabled is a Sender used when no provider key is configured. Every send
// fails with ErrNotConfigured so lead submissions surface as dispatch
// failures instead of being silently dropped.
type Disabled struct{}

// Send always returns ErrNotConfigured.
func (Disabled) Send(context.Context, Email) error { return ErrNotConfigured }
