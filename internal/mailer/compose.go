package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/hvac-site-backend/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"telHref": telHref,
}).ParseFS(templateFS, "templates/*.html"))

// Business is the company identity rendered into every email.
type Business struct {
	Name     string
	Phone    string
	Email    string
	Address  string
	Website  string
	Location *time.Location
}

// Composer renders lead requests into Emails.
type Composer struct {
	biz   Business
	inbox string
	now   func() time.Time
}

// NewComposer returns a Composer that addresses internal notifications to
// inbox. A nil Location renders timestamps in UTC.
func NewComposer(biz Business, inbox string) *Composer {
	if biz.Location == nil {
		biz.Location = time.UTC
	}
	return &Composer{
		biz:   biz,
		inbox: inbox,
		now:   time.Now,
	}
}

// WithClock returns a copy of c that stamps emails using now.
func (c *Composer) WithClock(now func() time.Time) *Composer {
	cp := *c
	cp.now = now
	return &cp
}

// Inbox returns the business recipient address.
func (c *Composer) Inbox() string { return c.inbox }

type contactView struct {
	Biz        Business
	Req        domain.ContactRequest
	Urgency    string
	ReceivedAt string
}

type emergencyView struct {
	Biz        Business
	Req        domain.EmergencyRequest
	Level      string
	ReceivedAt string
}

// ContactNotification is the internal email carrying every submitted field
// and the time the server received it.
func (c *Composer) ContactNotification(req domain.ContactRequest) (Email, error) {
	body, err := render("contact_notification.html", contactView{
		Biz:        c.biz,
		Req:        req,
		Urgency:    upper(string(req.Urgency)),
		ReceivedAt: c.stamp(),
	})
	if err != nil {
		return Email{}, err
	}
	return Email{
		To:      []string{c.inbox},
		ReplyTo: req.Email,
		Subject: fmt.Sprintf("New Contact Form: %s - %s", req.Service, req.Name),
		HTML:    body,
		Tags:    []Tag{{Name: "category", Value: string(domain.LeadContact)}},
	}, nil
}

// ContactConfirmation acknowledges receipt to the submitter and restates
// the emergency line. Replies go to the business inbox.
func (c *Composer) ContactConfirmation(req domain.ContactRequest) (Email, error) {
	body, err := render("contact_confirmation.html", contactView{Biz: c.biz, Req: req})
	if err != nil {
		return Email{}, err
	}
	return Email{
		To:      []string{req.Email},
		ReplyTo: c.inbox,
		Subject: "Thank You for Contacting " + c.biz.Name,
		HTML:    body,
		Tags:    []Tag{{Name: "category", Value: "confirmation"}},
	}, nil
}

// EmergencyAlert is the single high-urgency internal email for an emergency
// request, including the dispatch directive.
func (c *Composer) EmergencyAlert(req domain.EmergencyRequest) (Email, error) {
	level := upper(string(req.UrgencyLevel))
	body, err := render("emergency_alert.html", emergencyView{
		Biz:        c.biz,
		Req:        req,
		Level:      level,
		ReceivedAt: c.stamp(),
	})
	if err != nil {
		return Email{}, err
	}
	return Email{
		To:      []string{c.inbox},
		Subject: fmt.Sprintf("EMERGENCY SERVICE REQUEST - %s - IMMEDIATE ACTION REQUIRED", level),
		HTML:    body,
		Tags: []Tag{
			{Name: "category", Value: string(domain.LeadEmergency)},
			{Name: "urgency", Value: string(req.UrgencyLevel)},
		},
	}, nil
}

// PageText is the short plain-text summary used for on-call pages.
func (c *Composer) PageText(req domain.EmergencyRequest) string {
	return fmt.Sprintf("%s EMERGENCY: %s %s at %s. Call within 5 minutes.",
		upper(string(req.UrgencyLevel)), req.Name, req.Phone, req.Address)
}

func (c *Composer) stamp() string {
	return c.now().In(c.biz.Location).Format("Jan 2, 2006, 3:04:05 PM MST")
}

// upper builds a Caser per call; Casers are not safe to share.
func upper(s string) string {
	return cases.Upper(language.English).String(s)
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// telHref keeps the digits and a leading plus of a phone number for use in
// a tel: link.
func telHref(phone string) template.URL {
	var b strings.Builder
	for i, r := range phone {
		if (r >= '0' && r <= '9') || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	return template.URL("tel:" + b.String())
}
