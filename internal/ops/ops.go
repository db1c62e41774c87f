package ops

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/rolodex/internal/contact"
	"github.com/hpungsan/rolodex/internal/errors"
	"github.com/hpungsan/rolodex/internal/vcf"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
	MaxExportIDs     = 500
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// ContactSummary is the list view of a contact.
type ContactSummary struct {
	ID           string `json:"id"`
	DisplayName  string `json:"display_name"`
	PrimaryPhone string `json:"primary_phone,omitempty"`
	PrimaryEmail string `json:"primary_email,omitempty"`
	Company      string `json:"company,omitempty"`
	Starred      bool   `json:"starred,omitempty"`
	UpdatedAt    int64  `json:"updated_at"`
	DeletedAt    *int64 `json:"deleted_at,omitempty"`
}

// Summarize builds the list view of c.
func Summarize(c *contact.Contact) ContactSummary {
	s := ContactSummary{
		ID:          c.ID,
		DisplayName: c.DisplayName(),
		Starred:     c.Starred,
		UpdatedAt:   c.UpdatedAt,
		DeletedAt:   c.DeletedAt,
	}
	if len(c.PhoneNumbers) > 0 {
		s.PrimaryPhone = c.PhoneNumbers[0].Value
	}
	if len(c.Emails) > 0 {
		s.PrimaryEmail = c.Emails[0].Value
	}
	if c.Organization != nil {
		s.Company = c.Organization.Company
	}
	return s
}

// validateContact runs the model checks plus date parsing for the events the
// vCard encoder will emit.
func validateContact(c *contact.Contact) error {
	problems := contact.Validate(c)
	for i, e := range c.Events {
		if e.Type != contact.EventBirthday && e.Type != contact.EventAnniversary {
			continue
		}
		if strings.TrimSpace(e.Value) == "" {
			continue // already reported by contact.Validate
		}
		if _, err := vcf.ParseEventDate(e.Value); err != nil {
			problems = append(problems, contact.Problem{
				Field:   fmt.Sprintf("events[%d].value", i),
				Message: err.Error(),
			})
		}
	}
	if len(problems) > 0 {
		return errors.NewInvalidRequest(contact.FormatProblems(problems))
	}
	return nil
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
