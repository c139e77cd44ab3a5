// Package form describes the booking form and validates submitted values.
package form

import (
	"net/mail"
	"slices"
	"strings"
)

// Kind is the input type a field is rendered with.
type Kind string

const (
	KindText     Kind = "text"
	KindEmail    Kind = "email"
	KindTel      Kind = "tel"
	KindTextarea Kind = "textarea"
)

// Field is one input of the booking form.
type Field struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Kind        Kind   `json:"kind"`
	Required    bool   `json:"required"`
	Placeholder string `json:"placeholder,omitempty"`
	Rows        int    `json:"rows,omitempty"`
}

// Schema is an ordered list of fields.
type Schema struct {
	Fields []Field `json:"fields"`
}

// Field names of the booking form.
const (
	FirstName           = "firstName"
	LastName            = "lastName"
	Email               = "email"
	Phone               = "phone"
	DietaryRestrictions = "dietaryRestrictions"
	SpecialRequests     = "specialRequests"
)

// BookingForm returns the schema of the event booking form.
func BookingForm() Schema {
	return Schema{Fields: []Field{
		{Name: FirstName, Label: "First Name", Kind: KindText, Required: true},
		{Name: LastName, Label: "Last Name", Kind: KindText, Required: true},
		{Name: Email, Label: "Email", Kind: KindEmail, Required: true},
		{Name: Phone, Label: "Phone", Kind: KindTel, Required: true},
		{
			Name:        DietaryRestrictions,
			Label:       "Dietary Restrictions",
			Kind:        KindTextarea,
			Placeholder: "Please let us know about any allergies or dietary requirements",
			Rows:        3,
		},
		{
			Name:        SpecialRequests,
			Label:       "Special Requests",
			Kind:        KindTextarea,
			Placeholder: "Any special requests or questions?",
			Rows:        3,
		},
	}}
}

// ValidationError lists the problems found in a submission.
type ValidationError struct {
	Missing []string
	Invalid []string
	Unknown []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid fields: "+strings.Join(e.Invalid, ", "))
	}
	if len(e.Unknown) > 0 {
		parts = append(parts, "unknown fields: "+strings.Join(e.Unknown, ", "))
	}
	return strings.Join(parts, "; ")
}

// Validate checks values against the schema and returns the trimmed values
// that belong to it. Blank optional fields are dropped.
func (s Schema) Validate(values map[string]string) (map[string]string, error) {
	clean := make(map[string]string, len(s.Fields))
	verr := &ValidationError{}
	known := make(map[string]bool, len(s.Fields))

	for _, f := range s.Fields {
		known[f.Name] = true
		v := strings.TrimSpace(values[f.Name])
		if v == "" {
			if f.Required {
				verr.Missing = append(verr.Missing, f.Name)
			}
			continue
		}
		if f.Kind == KindEmail && !isValidEmail(v) {
			verr.Invalid = append(verr.Invalid, f.Name)
			continue
		}
		clean[f.Name] = v
	}
	for name := range values {
		if !known[name] {
			verr.Unknown = append(verr.Unknown, name)
		}
	}

	if len(verr.Missing) > 0 || len(verr.Invalid) > 0 || len(verr.Unknown) > 0 {
		slices.Sort(verr.Unknown)
		return nil, verr
	}
	return clean, nil
}

// isValidEmail accepts a bare address with a dotted domain.
func isValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	return at > 0 && strings.Contains(s[at+1:], ".")
}
