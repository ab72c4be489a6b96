// Package services – Dispatcher
//
// The Dispatcher turns a validated lead into outbound email. Each lead kind
// maps to an ordered list of steps; steps run one after another and the
// first failure stops the chain, so a failed business notification never
// triggers a customer confirmation. Nothing is retried and nothing about the
// lead is stored.
//
// Emergency leads may additionally page the on-call technician. The page is
// best effort and happens only after the email chain succeeded.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/hvac-site-backend/internal/domain"
	"github.com/tbourn/hvac-site-backend/internal/mailer"
)

// DefaultDispatchTimeout bounds a whole dispatch when none is configured.
const DefaultDispatchTimeout = 10 * time.Second

// Pager notifies the on-call technician out of band.
type Pager interface {
	Page(ctx context.Context, subject, text string) error
}

// Dispatcher sends lead notifications.
type Dispatcher struct {
	// Sender delivers built emails.
	Sender mailer.Sender
	// Composer renders leads into emails.
	Composer *mailer.Composer
	// Pager is optional; nil disables on-call pages.
	Pager Pager
	// Timeout bounds one dispatch including every step. Zero uses
	// DefaultDispatchTimeout.
	Timeout time.Duration
}

// NewDispatcher constructs a Dispatcher with the default timeout.
func NewDispatcher(s mailer.Sender, c *mailer.Composer) *Dispatcher {
	return &Dispatcher{Sender: s, Composer: c, Timeout: DefaultDispatchTimeout}
}

// step builds and sends one email.
type step struct {
	name  string
	build func() (mailer.Email, error)
}

// SendContact delivers the business notification and then the customer
// confirmation.
func (d *Dispatcher) SendContact(ctx context.Context, req domain.ContactRequest) error {
	return d.run(ctx, domain.LeadContact, []step{
		{"business_notification", func() (mailer.Email, error) { return d.Composer.ContactNotification(req) }},
		{"customer_confirmation", func() (mailer.Email, error) { return d.Composer.ContactConfirmation(req) }},
	})
}

// SendEmergency delivers the single emergency alert, then pages on-call if
// a Pager is configured.
func (d *Dispatcher) SendEmergency(ctx context.Context, req domain.EmergencyRequest) error {
	err := d.run(ctx, domain.LeadEmergency, []step{
		{"emergency_alert", func() (mailer.Email, error) { return d.Composer.EmergencyAlert(req) }},
	})
	if err != nil {
		return err
	}
	d.page(ctx, req)
	return nil
}

// Send dispatches data according to kind. data must be the request type
// matching kind.
func (d *Dispatcher) Send(ctx context.Context, kind domain.LeadKind, data any) error {
	switch kind {
	case domain.LeadContact:
		if req, ok := data.(domain.ContactRequest); ok {
			return d.SendContact(ctx, req)
		}
	case domain.LeadEmergency:
		if req, ok := data.(domain.EmergencyRequest); ok {
			return d.SendEmergency(ctx, req)
		}
	}
	return fmt.Errorf("%w: %q with %T", ErrUnknownLead, kind, data)
}

func (d *Dispatcher) run(ctx context.Context, kind domain.LeadKind, steps []step) error {
	tr := otel.Tracer("services/Dispatcher")
	ctx, span := tr.Start(ctx, "Dispatch",
		trace.WithAttributes(
			attribute.String("lead.kind", string(kind)),
			attribute.Int("dispatch.steps", len(steps)),
		),
	)
	defer span.End()

	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultDispatchTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for _, s := range steps {
		email, err := s.build()
		if err == nil {
			err = d.Sender.Send(ctx, email)
		}
		if err != nil {
			emailsSent.WithLabelValues(string(kind), s.name, "error").Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, s.name)
			return fmt.Errorf("%w: %s: %w", ErrDispatch, s.name, err)
		}
		emailsSent.WithLabelValues(string(kind), s.name, "ok").Inc()
	}
	return nil
}

func (d *Dispatcher) page(ctx context.Context, req domain.EmergencyRequest) {
	if d.Pager == nil {
		return
	}
	// Detached from the request so a client disconnect does not cancel it.
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	subject := fmt.Sprintf("Emergency: %s", req.UrgencyLevel)
	if err := d.Pager.Page(pctx, subject, d.Composer.PageText(req)); err != nil {
		pagesSent.WithLabelValues("error").Inc()
		zerolog.Ctx(ctx).Warn().Err(err).Msg("on-call page failed")
		return
	}
	pagesSent.WithLabelValues("ok").Inc()
}
