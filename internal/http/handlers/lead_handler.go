// Lead HTTP handlers.
//
// This file exposes the two lead-capture endpoints and their probes:
//   - POST /api/contact     (general contact form)
//   - GET  /api/contact     (liveness probe)
//   - POST /api/emergency   (emergency service request)
//   - GET  /api/emergency   (liveness probe)
//
// Throttling and Idempotency-Key validation run as route middleware before
// these handlers. A handler sees a request only once it was admitted.
//
// Idempotency:
// When the middleware found a recorded success for (route, client, key), the
// handler answers with the same success body and `Idempotency-Replayed: true`
// without validating or dispatching again.
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/hvac-site-backend/internal/domain"
	"github.com/tbourn/hvac-site-backend/internal/http/middleware"
	"github.com/tbourn/hvac-site-backend/internal/repo"
	"github.com/tbourn/hvac-site-backend/internal/validation"
)

//
// DTOs
//

// ContactResponse is returned when a contact submission was delivered.
type ContactResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Thank you! We'll contact you within 2 hours."`
}

// EmergencyResponse is returned when an emergency request was delivered.
type EmergencyResponse struct {
	Success           bool   `json:"success" example:"true"`
	Message           string `json:"message" example:"Emergency request received. A technician will call you within 5 minutes."`
	EstimatedResponse string `json:"estimatedResponse" example:"Under 2 hours"`
}

// StatusResponse is the liveness probe body of a lead route.
type StatusResponse struct {
	Status       string `json:"status" example:"ok"`
	Service      string `json:"service" example:"Contact Form API"`
	Version      string `json:"version" example:"1.0.0"`
	Priority     string `json:"priority,omitempty" example:"high"`
	ResponseTime string `json:"responseTime,omitempty" example:"< 5 minutes"`
}

const apiVersion = "1.0.0"

var (
	contactAccepted = ContactResponse{
		Success: true,
		Message: "Thank you! We'll contact you within 2 hours.",
	}
	emergencyAccepted = EmergencyResponse{
		Success:           true,
		Message:           "Emergency request received. A technician will call you within 5 minutes.",
		EstimatedResponse: "Under 2 hours",
	}
)

//
// Handlers
//

// PostContact godoc
// @ID          postContact
// @Summary     Submit the contact form
// @Description Validates the submission, emails the business and then a confirmation to the customer.
// @Description Rate limited per client address. Supports idempotency via the Idempotency-Key header.
// @Tags        Leads
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false  "Idempotency key for safe retries"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    domain.ContactRequest  true  "Contact form"
//
// @Success     200  {object}  handlers.ContactResponse  "Delivered"
// @Failure     400  {object}  handlers.ErrorResponse    "Invalid form data"
// @Failure     429  {object}  handlers.ErrorResponse    "Rate limited"
// @Failure     500  {object}  handlers.ErrorResponse    "Delivery failed"
// @Router      /contact [post]
func (h *Handlers) PostContact(c *gin.Context) {
	const kind = domain.LeadContact
	if h.replayed(c, kind, contactAccepted) {
		return
	}
	raw, decoded := h.decode(c, kind, h.msgs.ContactUnexpected)
	if !decoded {
		return
	}
	req, err := h.validator.Contact(raw)
	if err != nil {
		h.rejected(c, kind, err, h.msgs.ContactUnexpected)
		return
	}
	if err := h.dispatcher.SendContact(c.Request.Context(), req); err != nil {
		h.dispatchFailed(c, kind, err, h.msgs.ContactDispatchFailed)
		return
	}
	h.accept(c, kind, contactAccepted)
}

// ContactStatus godoc
// @ID       contactStatus
// @Summary  Contact API liveness
// @Tags     Leads
// @Produce  json
// @Success  200  {object}  handlers.StatusResponse
// @Router   /contact [get]
func (h *Handlers) ContactStatus(c *gin.Context) {
	ok(c, http.StatusOK, StatusResponse{
		Status:  "ok",
		Service: "Contact Form API",
		Version: apiVersion,
	})
}

// PostEmergency godoc
// @ID          postEmergency
// @Summary     Submit an emergency service request
// @Description Validates the request and sends one alert email to the business. No customer
// @Description confirmation is sent. Quota is tracked separately from the contact form.
// @Tags        Leads
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false  "Idempotency key for safe retries"
// @Param       body             body    domain.EmergencyRequest  true  "Emergency request"
//
// @Success     200  {object}  handlers.EmergencyResponse  "Delivered"
// @Failure     400  {object}  handlers.ErrorResponse      "Invalid form data"
// @Failure     429  {object}  handlers.ErrorResponse      "Rate limited"
// @Failure     500  {object}  handlers.ErrorResponse      "Delivery failed"
// @Router      /emergency [post]
func (h *Handlers) PostEmergency(c *gin.Context) {
	const kind = domain.LeadEmergency
	if h.replayed(c, kind, emergencyAccepted) {
		return
	}
	raw, decoded := h.decode(c, kind, h.msgs.EmergencyUnexpected)
	if !decoded {
		return
	}
	req, err := h.validator.Emergency(raw)
	if err != nil {
		h.rejected(c, kind, err, h.msgs.EmergencyUnexpected)
		return
	}
	if err := h.dispatcher.SendEmergency(c.Request.Context(), req); err != nil {
		h.dispatchFailed(c, kind, err, h.msgs.EmergencyDispatchFailed)
		return
	}
	h.accept(c, kind, emergencyAccepted)
}

// EmergencyStatus godoc
// @ID       emergencyStatus
// @Summary  Emergency API liveness
// @Tags     Leads
// @Produce  json
// @Success  200  {object}  handlers.StatusResponse
// @Router   /emergency [get]
func (h *Handlers) EmergencyStatus(c *gin.Context) {
	ok(c, http.StatusOK, StatusResponse{
		Status:       "ok",
		Service:      "Emergency Service API",
		Version:      apiVersion,
		Priority:     "high",
		ResponseTime: "< 5 minutes",
	})
}

//
// Helpers
//

// replayed answers a request whose key matched a recorded success.
func (h *Handlers) replayed(c *gin.Context, kind domain.LeadKind, body any) bool {
	if !middleware.IsReplay(c) {
		return false
	}
	leadSubmissions.WithLabelValues(string(kind), outcomeReplayed).Inc()
	c.Header(middleware.HeaderIdempotencyReplayed, "true")
	ok(c, http.StatusOK, body)
	return true
}

// decode reads the JSON body into a generic value. Unparseable bodies are
// unexpected, not validation failures.
func (h *Handlers) decode(c *gin.Context, kind domain.LeadKind, unexpected string) (any, bool) {
	var raw any
	if err := c.ShouldBindJSON(&raw); err != nil {
		leadSubmissions.WithLabelValues(string(kind), outcomeError).Inc()
		fail(c, http.StatusInternalServerError, ErrCodeInternal, unexpected, fmt.Errorf("decode %s body: %w", kind, err))
		return nil, false
	}
	return raw, true
}

// rejected reports a validator error: field details for invalid input, the
// generic text for anything else.
func (h *Handlers) rejected(c *gin.Context, kind domain.LeadKind, err error, unexpected string) {
	var ve *validation.Error
	if !errors.As(err, &ve) {
		leadSubmissions.WithLabelValues(string(kind), outcomeError).Inc()
		fail(c, http.StatusInternalServerError, ErrCodeInternal, unexpected, err)
		return
	}
	leadSubmissions.WithLabelValues(string(kind), outcomeInvalid).Inc()
	middleware.LoggerFrom(c).Info().
		Str("kind", string(kind)).
		Strs("fields", ve.Fields.Fields()).
		Msg("lead rejected")
	failWith(c, http.StatusBadRequest, ErrorResponse{
		Code:    ErrCodeValidation,
		Error:   "Invalid form data",
		Details: ve.Fields,
	}, nil)
}

// dispatchFailed logs the provider error and answers with the flattened text.
func (h *Handlers) dispatchFailed(c *gin.Context, kind domain.LeadKind, err error, msg string) {
	leadSubmissions.WithLabelValues(string(kind), outcomeFailed).Inc()
	fail(c, http.StatusInternalServerError, ErrCodeDispatch, msg, err)
}

// accept records the idempotency key, if any, and writes the success body.
func (h *Handlers) accept(c *gin.Context, kind domain.LeadKind, body any) {
	leadSubmissions.WithLabelValues(string(kind), outcomeAccepted).Inc()
	h.remember(c)
	middleware.LoggerFrom(c).Info().Str("kind", string(kind)).Msg("lead dispatched")
	ok(c, http.StatusOK, body)
}

// remember stores the success for replay. Best effort: the notification was
// already sent, so a storage failure only costs a possible duplicate later.
func (h *Handlers) remember(c *gin.Context) {
	scope, clientID, key, has := middleware.IdempotencyTarget(c)
	if !has || h.db == nil {
		return
	}
	_, err := repo.CreateIdempotency(c.Request.Context(), h.db, scope, clientID, key, http.StatusOK, h.idemTTL)
	if err != nil && !errors.Is(err, repo.ErrDuplicate) {
		middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency record failed")
	}
}
