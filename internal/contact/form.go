package contact

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"flight_atlas/internal/database"
)

// Field names, in display order
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldSubject = "subject"
	FieldMessage = "message"
)

// Fields lists the form fields in display order
var Fields = []string{FieldName, FieldEmail, FieldSubject, FieldMessage}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Form is a contact form submission
type Form struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// Value returns the value of a field by name
func (f Form) Value(field string) string {
	switch field {
	case FieldName:
		return f.Name
	case FieldEmail:
		return f.Email
	case FieldSubject:
		return f.Subject
	case FieldMessage:
		return f.Message
	}
	return ""
}

// Set assigns a field by name
func (f *Form) Set(field, value string) {
	switch field {
	case FieldName:
		f.Name = value
	case FieldEmail:
		f.Email = value
	case FieldSubject:
		f.Subject = value
	case FieldMessage:
		f.Message = value
	}
}

// ValidationErrors maps field names to inline messages
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return "invalid contact form: " + strings.Join(parts, "; ")
}

// Validate checks every field; the result is nil when the form is valid
func (f Form) Validate() ValidationErrors {
	errs := ValidationErrors{}
	if strings.TrimSpace(f.Name) == "" {
		errs[FieldName] = "Name is required"
	}
	email := strings.TrimSpace(f.Email)
	switch {
	case email == "":
		errs[FieldEmail] = "Email is required"
	case !emailPattern.MatchString(email):
		errs[FieldEmail] = "Email is invalid"
	}
	if strings.TrimSpace(f.Subject) == "" {
		errs[FieldSubject] = "Subject is required"
	}
	if strings.TrimSpace(f.Message) == "" {
		errs[FieldMessage] = "Message is required"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Outbox stores accepted submissions
type Outbox interface {
	Insert(msg *database.ContactMessage) (int64, error)
	Count() (int, error)
}

// Submitter validates forms and queues the valid ones
type Submitter struct {
	outbox Outbox
}

func NewSubmitter(outbox Outbox) *Submitter {
	return &Submitter{outbox: outbox}
}

// Submit returns ValidationErrors for an invalid form without touching the
// outbox.
func (s *Submitter) Submit(f Form) (int64, error) {
	if errs := f.Validate(); errs != nil {
		return 0, errs
	}
	id, err := s.outbox.Insert(&database.ContactMessage{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Subject: strings.TrimSpace(f.Subject),
		Message: f.Message,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to queue contact message: %w", err)
	}
	slog.Info("Queued contact message", "id", id, "subject", f.Subject)
	return id, nil
}

// Queued returns how many messages are waiting in the outbox
func (s *Submitter) Queued() (int, error) {
	n, err := s.outbox.Count()
	if err != nil {
		return 0, fmt.Errorf("failed to count queued messages: %w", err)
	}
	return n, nil
}
