package contact

import (
	"fmt"
	"slices"
	"strings"
)

// Problem is a single validation failure on a contact.
type Problem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validate checks a contact before it is persisted. Enum values must be one of
// the declared constants (empty is accepted and means the default category),
// and the contact must carry at least one identifying value.
//
// Export does not call Validate: the encoder maps unknown categories to their
// default labels so that older records still export.
func Validate(c *Contact) []Problem {
	var problems []Problem

	if c.DisplayName() == "" {
		problems = append(problems, Problem{
			Field:   "name",
			Message: "contact needs a name, nickname, company, email or phone number",
		})
	}

	for i, p := range c.PhoneNumbers {
		if strings.TrimSpace(p.Value) == "" {
			problems = append(problems, Problem{fmt.Sprintf("phone_numbers[%d].value", i), "must not be empty"})
		}
		if p.Type != "" && !slices.Contains(PhoneTypes, p.Type) {
			problems = append(problems, Problem{fmt.Sprintf("phone_numbers[%d].type", i), fmt.Sprintf("unknown phone type %q", p.Type)})
		}
	}

	for i, e := range c.Emails {
		if strings.TrimSpace(e.Value) == "" {
			problems = append(problems, Problem{fmt.Sprintf("emails[%d].value", i), "must not be empty"})
		}
		if e.Type != "" && !slices.Contains(EmailTypes, e.Type) {
			problems = append(problems, Problem{fmt.Sprintf("emails[%d].type", i), fmt.Sprintf("unknown email type %q", e.Type)})
		}
	}

	for i, a := range c.Addresses {
		if strings.TrimSpace(a.Value) == "" {
			problems = append(problems, Problem{fmt.Sprintf("addresses[%d].value", i), "must not be empty"})
		}
		if a.Type != "" && !slices.Contains(AddressTypes, a.Type) {
			problems = append(problems, Problem{fmt.Sprintf("addresses[%d].type", i), fmt.Sprintf("unknown address type %q", a.Type)})
		}
	}

	for i, e := range c.Events {
		if e.Type != "" && !slices.Contains(EventTypes, e.Type) {
			problems = append(problems, Problem{fmt.Sprintf("events[%d].type", i), fmt.Sprintf("unknown event type %q", e.Type)})
		}
		if strings.TrimSpace(e.Value) == "" {
			problems = append(problems, Problem{fmt.Sprintf("events[%d].value", i), "must not be empty"})
		}
	}

	for i, w := range c.Websites {
		if strings.TrimSpace(w) == "" {
			problems = append(problems, Problem{fmt.Sprintf("websites[%d]", i), "must not be empty"})
		}
	}

	return problems
}

// FormatProblems renders problems as a single line for error messages.
func FormatProblems(problems []Problem) string {
	parts := make([]string, len(problems))
	for i, p := range problems {
		parts[i] = p.Field + ": " + p.Message
	}
	return strings.Join(parts, "; ")
}
