package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tbourn/hvac-site-backend/internal/domain"
	"github.com/tbourn/hvac-site-backend/internal/mailer"
)

// ----- Fakes -----

type recordingSender struct {
	mu     sync.Mutex
	sent   []mailer.Email
	failAt int // 1-based send number to fail; 0 never fails
	err    error
	ctxs   []context.Context
}

func (s *recordingSender) Send(ctx context.Context, e mailer.Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctxs = append(s.ctxs, ctx)
	if s.failAt > 0 && len(s.sent)+1 == s.failAt {
		s.failAt = 0
		return s.err
	}
	s.sent = append(s.sent, e)
	return nil
}

type fakePager struct {
	calls   int
	subject string
	text    string
	err     error
}

func (p *fakePager) Page(_ context.Context, subject, text string) error {
	p.calls++
	p.subject, p.text = subject, text
	return p.err
}

func newTestDispatcher(s mailer.Sender) *Dispatcher {
	c := mailer.NewComposer(mailer.Business{Name: "Diaz Airflow Solutions Inc.", Phone: "(240) 432-7489"}, "inbox@example.com")
	return NewDispatcher(s, c)
}

var contactReq = domain.ContactRequest{
	Name:    "Jane Doe",
	Email:   "jane@example.com",
	Service: "AC Repair",
	Message: "The upstairs unit blows warm air",
}

var emergencyReq = domain.EmergencyRequest{
	Name:             "Luis",
	Phone:            "(240) 555-0101",
	Address:          "1 Main St, Rockville, MD",
	IssueDescription: "No heat and the furnace smells like gas",
	UrgencyLevel:     domain.UrgencyLevelCritical,
}

// ----- Tests -----

func TestSendContact_SendsNotificationThenConfirmation(t *testing.T) {
	s := &recordingSender{}
	d := newTestDispatcher(s)

	if err := d.SendContact(context.Background(), contactReq); err != nil {
		t.Fatalf("SendContact: %v", err)
	}
	if len(s.sent) != 2 {
		t.Fatalf("expected 2 emails, got %d", len(s.sent))
	}
	if got := s.sent[0].To; len(got) != 1 || got[0] != "inbox@example.com" {
		t.Fatalf("first email should go to the business inbox, got %v", got)
	}
	if got := s.sent[1].To; len(got) != 1 || got[0] != "jane@example.com" {
		t.Fatalf("second email should go to the submitter, got %v", got)
	}
	if s.sent[1].ReplyTo != "inbox@example.com" {
		t.Fatalf("confirmation reply-to = %q", s.sent[1].ReplyTo)
	}
}

func TestSendContact_FailFastSkipsConfirmation(t *testing.T) {
	providerErr := errors.New("resend: 500 internal_server_error")
	s := &recordingSender{failAt: 1, err: providerErr}
	d := newTestDispatcher(s)

	base := testutil.ToFloat64(emailsSent.WithLabelValues("contact", "customer_confirmation", "ok"))

	err := d.SendContact(context.Background(), contactReq)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, ErrDispatch) || !errors.Is(err, providerErr) {
		t.Fatalf("error should wrap ErrDispatch and the provider error, got %v", err)
	}
	if !strings.Contains(err.Error(), "business_notification") {
		t.Fatalf("error should name the failing step, got %v", err)
	}
	if len(s.ctxs) != 1 {
		t.Fatalf("confirmation must not be attempted after a failed notification; %d sends attempted", len(s.ctxs))
	}
	if got := testutil.ToFloat64(emailsSent.WithLabelValues("contact", "customer_confirmation", "ok")); got != base {
		t.Fatalf("confirmation counter moved: %v -> %v", base, got)
	}
}

func TestSendContact_ConfirmationFailureReportsFailure(t *testing.T) {
	s := &recordingSender{failAt: 2, err: errors.New("bounce")}
	d := newTestDispatcher(s)

	err := d.SendContact(context.Background(), contactReq)
	if !errors.Is(err, ErrDispatch) {
		t.Fatalf("expected ErrDispatch, got %v", err)
	}
	if len(s.sent) != 1 {
		t.Fatalf("business notification should have gone out, got %d", len(s.sent))
	}
}

func TestSendContact_NotConfigured(t *testing.T) {
	d := newTestDispatcher(mailer.Disabled{})
	err := d.SendContact(context.Background(), contactReq)
	if !errors.Is(err, ErrMailNotConfigured) || !errors.Is(err, ErrDispatch) {
		t.Fatalf("expected ErrDispatch wrapping ErrMailNotConfigured, got %v", err)
	}
}

func TestSendEmergency_SingleAlertAndPage(t *testing.T) {
	s := &recordingSender{}
	p := &fakePager{}
	d := newTestDispatcher(s)
	d.Pager = p

	if err := d.SendEmergency(context.Background(), emergencyReq); err != nil {
		t.Fatalf("SendEmergency: %v", err)
	}
	if len(s.sent) != 1 {
		t.Fatalf("expected exactly one email, got %d", len(s.sent))
	}
	if !strings.Contains(s.sent[0].Subject, "CRITICAL") {
		t.Fatalf("subject should carry the urgency level: %q", s.sent[0].Subject)
	}
	if p.calls != 1 || !strings.Contains(p.text, "(240) 555-0101") {
		t.Fatalf("expected one page with the customer phone, got calls=%d text=%q", p.calls, p.text)
	}
}

func TestSendEmergency_NoPageWhenEmailFails(t *testing.T) {
	s := &recordingSender{failAt: 1, err: errors.New("down")}
	p := &fakePager{}
	d := newTestDispatcher(s)
	d.Pager = p

	if err := d.SendEmergency(context.Background(), emergencyReq); !errors.Is(err, ErrDispatch) {
		t.Fatalf("expected ErrDispatch, got %v", err)
	}
	if p.calls != 0 {
		t.Fatalf("pager must not run when the alert failed")
	}
}

func TestSendEmergency_PageFailureIsIgnored(t *testing.T) {
	s := &recordingSender{}
	d := newTestDispatcher(s)
	d.Pager = &fakePager{err: errors.New("sns throttled")}

	if err := d.SendEmergency(context.Background(), emergencyReq); err != nil {
		t.Fatalf("page failure must not fail the dispatch: %v", err)
	}
}

func TestSend_RoutesByKind(t *testing.T) {
	s := &recordingSender{}
	d := newTestDispatcher(s)
	ctx := context.Background()

	if err := d.Send(ctx, domain.LeadContact, contactReq); err != nil {
		t.Fatalf("contact: %v", err)
	}
	if err := d.Send(ctx, domain.LeadEmergency, emergencyReq); err != nil {
		t.Fatalf("emergency: %v", err)
	}
	if len(s.sent) != 3 {
		t.Fatalf("expected 3 emails, got %d", len(s.sent))
	}

	if err := d.Send(ctx, domain.LeadEmergency, contactReq); !errors.Is(err, ErrUnknownLead) {
		t.Fatalf("mismatched payload should be rejected, got %v", err)
	}
	if err := d.Send(ctx, "quote", contactReq); !errors.Is(err, ErrUnknownLead) {
		t.Fatalf("unknown kind should be rejected, got %v", err)
	}
}

func TestDispatch_AppliesTimeout(t *testing.T) {
	s := &recordingSender{}
	d := newTestDispatcher(s)
	d.Timeout = 250 * time.Millisecond

	start := time.Now()
	if err := d.SendEmergency(context.Background(), emergencyReq); err != nil {
		t.Fatalf("SendEmergency: %v", err)
	}
	dl, ok := s.ctxs[0].Deadline()
	if !ok {
		t.Fatalf("send context should carry a deadline")
	}
	if dl.Sub(start) > time.Second {
		t.Fatalf("deadline too far out: %v", dl.Sub(start))
	}
}

func TestDispatch_SlowSenderHitsDeadline(t *testing.T) {
	slow := mailer.SenderFunc(func(ctx context.Context, _ mailer.Email) error {
		<-ctx.Done()
		return ctx.Err()
	})
	d := newTestDispatcher(slow)
	d.Timeout = 20 * time.Millisecond

	err := d.SendContact(context.Background(), contactReq)
	if !errors.Is(err, context.DeadlineExceeded) || !errors.Is(err, ErrDispatch) {
		t.Fatalf("expected deadline exceeded wrapped in ErrDispatch, got %v", err)
	}
}
