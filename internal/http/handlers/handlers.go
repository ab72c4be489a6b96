// Package handlers – wiring.
//
// Handlers are transport-thin: they decode the body, hand it to the form
// validator, call the notification dispatcher and translate the outcome into
// the response shapes the site's forms expect. Nothing about a submission is
// stored; the only persistence touched here is the idempotency record.
package handlers

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/hvac-site-backend/internal/domain"
)

//
// Service contracts (context-aware)
//

// FormValidator turns a decoded JSON body into a validated request.
//
// Implementations return *validation.Error when the input is structurally
// invalid; any other error is treated as unexpected.
type FormValidator interface {
	Contact(input any) (domain.ContactRequest, error)
	Emergency(input any) (domain.EmergencyRequest, error)
}

// Dispatcher delivers lead notifications.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type Dispatcher interface {
	// SendContact notifies the business and then confirms to the customer.
	SendContact(ctx context.Context, req domain.ContactRequest) error
	// SendEmergency sends the single emergency alert.
	SendEmergency(ctx context.Context, req domain.EmergencyRequest) error
}

// ReviewsService returns the cached or freshly fetched review summary.
type ReviewsService interface {
	Get(ctx context.Context) (domain.ReviewSummary, error)
}

// Messages holds the visitor-facing texts. Every text shown on a non-validation
// failure names the business phone so the visitor can still reach someone.
type Messages struct {
	ContactThrottled        string
	ContactDispatchFailed   string
	ContactUnexpected       string
	EmergencyThrottled      string
	EmergencyDispatchFailed string
	EmergencyUnexpected     string
}

// NewMessages renders the texts for the given business phone.
func NewMessages(phone string) Messages {
	return Messages{
		ContactThrottled:        "Too many requests. Please try again later.",
		ContactDispatchFailed:   fmt.Sprintf("Failed to send message. Please try calling us directly at %s", phone),
		ContactUnexpected:       fmt.Sprintf("An unexpected error occurred. Please try again or call %s", phone),
		EmergencyThrottled:      fmt.Sprintf("Too many emergency requests. Please call us directly at %s", phone),
		EmergencyDispatchFailed: fmt.Sprintf("Failed to send emergency request. Please call us immediately at %s", phone),
		EmergencyUnexpected:     fmt.Sprintf("An unexpected error occurred. Please call us immediately at %s", phone),
	}
}

// Options carries the non-service dependencies of Handlers.
type Options struct {
	// Phone is the business phone embedded in failure messages.
	Phone string
	// DB stores idempotency records. Nil disables recording.
	DB *gorm.DB
	// IdempotencyTTL is how long a recorded success is replayed.
	IdempotencyTTL time.Duration
}

//
// Handler wiring
//

// Handlers groups the lead and reviews endpoints.
type Handlers struct {
	validator  FormValidator
	dispatcher Dispatcher
	reviews    ReviewsService

	msgs    Messages
	db      *gorm.DB
	idemTTL time.Duration
}

// New constructs Handlers. reviews may be nil when the reviews route is not
// mounted.
func New(v FormValidator, d Dispatcher, reviews ReviewsService, opts Options) *Handlers {
	ttl := opts.IdempotencyTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Handlers{
		validator:  v,
		dispatcher: d,
		reviews:    reviews,
		msgs:       NewMessages(opts.Phone),
		db:         opts.DB,
		idemTTL:    ttl,
	}
}

// Messages returns the texts the handlers were built with. The router uses
// them for throttling and panic responses.
func (h *Handlers) Messages() Messages { return h.msgs }
