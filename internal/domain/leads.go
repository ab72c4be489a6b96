// Package domain defines the lead-capture request shapes and the small set of
// persisted records (review cache, idempotency keys). Lead submissions
// themselves are never persisted: a validated request is handed to the
// dispatcher and discarded.
package domain

// Urgency is the optional self-reported priority of a contact request.
type Urgency string

const (
	UrgencyLow       Urgency = "low"
	UrgencyMedium    Urgency = "medium"
	UrgencyHigh      Urgency = "high"
	UrgencyEmergency Urgency = "emergency"
)

// UrgencyLevel is the required severity of an emergency request.
type UrgencyLevel string

const (
	UrgencyLevelUrgent   UrgencyLevel = "urgent"
	UrgencyLevelCritical UrgencyLevel = "critical"
)

// ContactRequest is a validated general contact form submission.
//
// Email is trimmed and lower-cased. Phone, PreferredTime and Urgency are
// empty when the submitter left them out.
type ContactRequest struct {
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone,omitempty"`
	Service       string  `json:"service"`
	Message       string  `json:"message"`
	PreferredTime string  `json:"preferredTime,omitempty"`
	Urgency       Urgency `json:"urgency,omitempty"`
}

// EmergencyRequest is a validated emergency service request.
type EmergencyRequest struct {
	Name             string       `json:"name"`
	Phone            string       `json:"phone"`
	Address          string       `json:"address"`
	IssueDescription string       `json:"issueDescription"`
	UrgencyLevel     UrgencyLevel `json:"urgencyLevel"`
}

// LeadKind names a submission category. It doubles as the rate-limit
// namespace and the metrics label.
type LeadKind string

const (
	LeadContact   LeadKind = "contact"
	LeadEmergency LeadKind = "emergency"
)

