// Package validation checks untrusted lead-form payloads and turns them into
// domain requests.
//
// Validation is total: every field rule runs independently and all failures
// are reported together as a field -> messages map, so a form can show every
// problem at once. A payload is either fully valid or rejected as a whole.
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tbourn/hvac-site-backend/internal/domain"
)

// FormField is the details key used when the payload is not a JSON object.
const FormField = "form"

var (
	personNameRE = regexp.MustCompile(`^[a-zA-Z\s'-]+$`)
	phoneRE      = regexp.MustCompile(`^[\d\s\-\+\(\)]{10,}$`)
)

// FieldErrors maps a JSON field name to the messages describing why it was
// rejected.
type FieldErrors map[string][]string

func (fe FieldErrors) add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// Fields returns the rejected field names in sorted order.
func (fe FieldErrors) Fields() []string {
	out := make([]string, 0, len(fe))
	for k := range fe {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Error is returned when a payload fails validation.
type Error struct {
	Fields FieldErrors
}

func (e *Error) Error() string {
	return "invalid form data: " + strings.Join(e.Fields.Fields(), ", ")
}

// Option customizes a Validator.
type Option func(*Validator)

// WithServiceCatalog restricts ContactRequest.Service to the given names.
// Without it the service only has to be non-empty.
func WithServiceCatalog(services []string) Option {
	return func(v *Validator) {
		if len(services) == 0 {
			return
		}
		v.catalog = make(map[string]struct{}, len(services))
		for _, s := range services {
			v.catalog[s] = struct{}{}
		}
	}
}

// Validator validates contact and emergency payloads. It is safe for
// concurrent use once constructed.
type Validator struct {
	v       *validator.Validate
	catalog map[string]struct{}
}

// New constructs a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
	for _, opt := range opts {
		opt(v)
	}

	// Report JSON names so errors line up with the submitted fields.
	v.v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
		return personNameRE.MatchString(fl.Field().String())
	})
	_ = v.v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRE.MatchString(fl.Field().String())
	})
	_ = v.v.RegisterValidation("catalog", func(fl validator.FieldLevel) bool {
		if v.catalog == nil {
			return true
		}
		_, ok := v.catalog[fl.Field().String()]
		return ok
	})
	return v
}

// contactForm mirrors ContactRequest with its field rules.
type contactForm struct {
	Name          string `json:"name" validate:"min=2,max=100,personname"`
	Email         string `json:"email" validate:"email"`
	Phone         string `json:"phone" validate:"omitempty,phone"`
	Service       string `json:"service" validate:"min=1,catalog"`
	Message       string `json:"message" validate:"min=10,max=1000"`
	PreferredTime string `json:"preferredTime"`
	Urgency       string `json:"urgency" validate:"omitempty,oneof=low medium high emergency"`
}

var contactFields = []field{
	{name: "name", required: true},
	{name: "email", required: true},
	{name: "phone"},
	{name: "service", required: true},
	{name: "message", required: true},
	{name: "preferredTime"},
	{name: "urgency"},
}

var contactMessages = messages{
	"name": {
		"min":        "Name must be at least 2 characters",
		"max":        "Name must be less than 100 characters",
		"personname": "Name can only contain letters, spaces, hyphens and apostrophes",
	},
	"email":   {"email": "Please enter a valid email address"},
	"phone":   {"phone": "Please enter a valid phone number"},
	"service": {"min": "Please select a service", "catalog": "Please select a service from the list"},
	"message": {
		"min": "Message must be at least 10 characters",
		"max": "Message must be less than 1000 characters",
	},
	"urgency": {"oneof": "Urgency must be one of: low, medium, high, emergency"},
}

// emergencyForm mirrors EmergencyRequest with its field rules.
type emergencyForm struct {
	Name             string `json:"name" validate:"min=2,max=100"`
	Phone            string `json:"phone" validate:"phone"`
	Address          string `json:"address" validate:"min=5"`
	IssueDescription string `json:"issueDescription" validate:"min=20"`
	UrgencyLevel     string `json:"urgencyLevel" validate:"oneof=urgent critical"`
}

var emergencyFields = []field{
	{name: "name", required: true},
	{name: "phone", required: true},
	{name: "address", required: true},
	{name: "issueDescription", required: true},
	{name: "urgencyLevel", required: true},
}

var emergencyMessages = messages{
	"name": {
		"min": "Name must be at least 2 characters",
		"max": "Name must be less than 100 characters",
	},
	"phone":            {"phone": "Valid phone number required"},
	"address":          {"min": "Address is required for emergency service"},
	"issueDescription": {"min": "Please describe the issue in detail"},
	"urgencyLevel":     {"oneof": "Urgency level must be one of: urgent, critical"},
}

// Contact validates a decoded JSON value as a contact request.
func (v *Validator) Contact(input any) (domain.ContactRequest, error) {
	vals, fe := extract(input, contactFields)
	if vals == nil {
		return domain.ContactRequest{}, &Error{Fields: fe}
	}

	form := contactForm{
		Name:          vals["name"],
		Email:         normalizeEmail(vals["email"]),
		Phone:         vals["phone"],
		Service:       vals["service"],
		Message:       vals["message"],
		PreferredTime: vals["preferredTime"],
		Urgency:       vals["urgency"],
	}
	v.check(&form, contactMessages, fe)
	if len(fe) > 0 {
		return domain.ContactRequest{}, &Error{Fields: fe}
	}

	return domain.ContactRequest{
		Name:          form.Name,
		Email:         form.Email,
		Phone:         form.Phone,
		Service:       form.Service,
		Message:       form.Message,
		PreferredTime: form.PreferredTime,
		Urgency:       domain.Urgency(form.Urgency),
	}, nil
}

// Emergency validates a decoded JSON value as an emergency request.
func (v *Validator) Emergency(input any) (domain.EmergencyRequest, error) {
	vals, fe := extract(input, emergencyFields)
	if vals == nil {
		return domain.EmergencyRequest{}, &Error{Fields: fe}
	}

	form := emergencyForm{
		Name:             vals["name"],
		Phone:            vals["phone"],
		Address:          vals["address"],
		IssueDescription: vals["issueDescription"],
		UrgencyLevel:     vals["urgencyLevel"],
	}
	v.check(&form, emergencyMessages, fe)
	if len(fe) > 0 {
		return domain.EmergencyRequest{}, &Error{Fields: fe}
	}

	return domain.EmergencyRequest{
		Name:             form.Name,
		Phone:            form.Phone,
		Address:          form.Address,
		IssueDescription: form.IssueDescription,
		UrgencyLevel:     domain.UrgencyLevel(form.UrgencyLevel),
	}, nil
}

// check runs the struct rules and merges failures into fe. Fields that
// already carry an error (missing or wrongly typed) keep only that error.
func (v *Validator) check(form any, msgs messages, fe FieldErrors) {
	err := v.v.Struct(form)
	if err == nil {
		return
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		fe.add(FormField, err.Error())
		return
	}

	pre := make(map[string]bool, len(fe))
	for k := range fe {
		pre[k] = true
	}
	for _, e := range verrs {
		if pre[e.Field()] {
			continue
		}
		fe.add(e.Field(), msgs.lookup(e.Field(), e.Tag()))
	}
}

type messages map[string]map[string]string

func (m messages) lookup(field, tag string) string {
	if byTag, ok := m[field]; ok {
		if msg, ok := byTag[tag]; ok {
			return msg
		}
	}
	return fmt.Sprintf("%s is invalid", field)
}

type field struct {
	name     string
	required bool
}

// extract pulls the known string fields out of a decoded JSON object. It
// returns nil values when input is not an object. Unknown keys are ignored.
func extract(input any, fields []field) (map[string]string, FieldErrors) {
	fe := FieldErrors{}
	obj, ok := input.(map[string]any)
	if !ok {
		fe.add(FormField, "Expected object, received "+jsonType(input))
		return nil, fe
	}

	vals := make(map[string]string, len(fields))
	for _, f := range fields {
		raw, present := obj[f.name]
		if !present {
			if f.required {
				fe.add(f.name, "Required")
			}
			continue
		}
		s, isStr := raw.(string)
		if !isStr {
			fe.add(f.name, "Expected string, received "+jsonType(raw))
			continue
		}
		vals[f.name] = s
	}
	return vals, fe
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, int, int64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// normalizeEmail trims and lower-cases before the syntax check so that
// "  USER@Example.COM " validates to "user@example.com".
func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
