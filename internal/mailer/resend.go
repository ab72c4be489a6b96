package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v2"
	"golang.org/x/time/rate"
)

// emailsAPI is the subset of the Resend client used here.
type emailsAPI interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendSender delivers email through the Resend HTTP API.
//
// Sends are paced by a token bucket so a burst of submissions stays under
// the provider's per-second quota. Waiting for a token respects ctx.
type ResendSender struct {
	api     emailsAPI
	from    string
	limiter *rate.Limiter
}

// ResendConfig configures a ResendSender.
type ResendConfig struct {
	APIKey string
	From   string
	// RPS caps sends per second. Zero or negative disables pacing.
	RPS float64
}

// NewResendSender builds a sender backed by the Resend API.
func NewResendSender(cfg ResendConfig) (*ResendSender, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	client := resend.NewClient(cfg.APIKey)
	return newResendSenderWithAPI(client.Emails, cfg.From, cfg.RPS)
}

func newResendSenderWithAPI(api emailsAPI, from string, rps float64) (*ResendSender, error) {
	if from == "" {
		return nil, errors.New("resend: from address is required")
	}
	s := &ResendSender{api: api, from: from}
	if rps > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return s, nil
}

// Send delivers e. Provider errors are returned wrapped and unmodified; the
// caller decides what, if anything, reaches the end user.
func (s *ResendSender) Send(ctx context.Context, e Email) error {
	if len(e.To) == 0 {
		return errors.New("resend: no recipients")
	}
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("resend: pacing: %w", err)
		}
	}

	req := &resend.SendEmailRequest{
		From:    s.from,
		To:      e.To,
		Subject: e.Subject,
		Html:    e.HTML,
		ReplyTo: e.ReplyTo,
	}
	for _, t := range e.Tags {
		req.Tags = append(req.Tags, resend.Tag{Name: t.Name, Value: t.Value})
	}

	if _, err := s.api.SendWithContext(ctx, req); err != nil {
		return fmt.Errorf("resend: send %q: %w", e.Subject, err)
	}
	return nil
}
