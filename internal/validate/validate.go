// Package validate checks form fields the way the contact form does:
// required, email, minimum length and URL rules over the trimmed value.
package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"go-chi-widgets/internal/notify"
)

// Field types with extra rules. Any other type only gets the generic rules.
const (
	TypeEmail = "email"
	TypeURL   = "url"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Field is one form input.
type Field struct {
	Name      string `json:"name"`
	Type      string `json:"type,omitempty"`
	Value     string `json:"value"`
	Required  bool   `json:"required,omitempty"`
	MinLength int    `json:"minlength,omitempty"`
}

// FieldResult is the outcome for one field. Message is empty when Valid.
type FieldResult struct {
	Name    string `json:"name"`
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// Validate applies the rules in order; when several fail, the last failing
// rule's message is reported.
func (f Field) Validate() FieldResult {
	value := strings.TrimSpace(f.Value)
	res := FieldResult{Name: f.Name, Valid: true}

	fail := func(msg string) {
		res.Valid = false
		res.Message = msg
	}

	if f.Required && value == "" {
		fail("This field is required")
	}

	if f.Type == TypeEmail && value != "" && !emailPattern.MatchString(value) {
		fail("Please enter a valid email address")
	}

	if f.MinLength > 0 && value != "" && utf8.RuneCountInString(value) < f.MinLength {
		fail(fmt.Sprintf("Must be at least %d characters", f.MinLength))
	}

	if f.Type == TypeURL && value != "" && !validURL(value) {
		fail("Please enter a valid URL")
	}

	return res
}

// validURL accepts absolute URLs with a scheme, the same inputs a browser's
// URL constructor accepts without a base.
func validURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" {
		return false
	}
	if u.Opaque == "" && u.Host == "" && (u.Scheme == "http" || u.Scheme == "https") {
		return false
	}
	return true
}

// Form is an ordered set of fields submitted together.
type Form struct {
	Fields []Field `json:"fields"`
}

// Outcome is the result of submitting a form.
type Outcome struct {
	Valid  bool          `json:"valid"`
	Fields []FieldResult `json:"fields"`
}

// Submit validates every field and notifies whether the form was accepted.
func (f Form) Submit(n notify.Notifier) Outcome {
	out := Outcome{Valid: true, Fields: make([]FieldResult, 0, len(f.Fields))}

	for _, field := range f.Fields {
		res := field.Validate()
		if !res.Valid {
			out.Valid = false
		}
		out.Fields = append(out.Fields, res)
	}

	if n != nil {
		if out.Valid {
			n.Notify("Form submitted successfully!", notify.Success)
		} else {
			n.Notify("Please fix the errors before submitting", notify.Error)
		}
	}
	return out
}
