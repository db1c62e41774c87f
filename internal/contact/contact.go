package contact

import "strings"

// PhoneType is the category of a phone number as recorded by the address book.
// Values outside the declared constants are legal and treated as "home" by
// label mapping.
type PhoneType string

const (
	PhoneHome    PhoneType = "home"
	PhoneMobile  PhoneType = "mobile"
	PhoneWork    PhoneType = "work"
	PhoneMain    PhoneType = "main"
	PhoneWorkFax PhoneType = "work_fax"
	PhoneHomeFax PhoneType = "home_fax"
	PhonePager   PhoneType = "pager"
	PhoneOther   PhoneType = "other"
)

// PhoneTypes lists every declared PhoneType.
var PhoneTypes = []PhoneType{
	PhoneHome, PhoneMobile, PhoneWork, PhoneMain,
	PhoneWorkFax, PhoneHomeFax, PhonePager, PhoneOther,
}

// EmailType is the category of an email address.
type EmailType string

const (
	EmailHome   EmailType = "home"
	EmailWork   EmailType = "work"
	EmailMobile EmailType = "mobile"
	EmailOther  EmailType = "other"
)

// EmailTypes lists every declared EmailType.
var EmailTypes = []EmailType{EmailHome, EmailWork, EmailMobile, EmailOther}

// AddressType is the category of a postal address.
type AddressType string

const (
	AddressHome  AddressType = "home"
	AddressWork  AddressType = "work"
	AddressOther AddressType = "other"
)

// AddressTypes lists every declared AddressType.
var AddressTypes = []AddressType{AddressHome, AddressWork, AddressOther}

// EventType is the kind of a dated event.
type EventType string

const (
	EventBirthday    EventType = "birthday"
	EventAnniversary EventType = "anniversary"
	EventOther       EventType = "other"
)

// EventTypes lists every declared EventType.
var EventTypes = []EventType{EventBirthday, EventAnniversary, EventOther}

// PhoneNumber is a single labelled phone number.
type PhoneNumber struct {
	Value string    `json:"value"`
	Type  PhoneType `json:"type"`
}

// Email is a single labelled email address.
type Email struct {
	Value string    `json:"value"`
	Type  EmailType `json:"type"`
}

// Event is a dated event. Value is "YYYY-MM-DD", or "--MM-DD" when the year
// is unknown.
type Event struct {
	Value string    `json:"value"`
	Type  EventType `json:"type"`
}

// Address is a postal address stored as a single free-text street value.
type Address struct {
	Value string      `json:"value"`
	Type  AddressType `json:"type"`
}

// Organization holds employer details. A nil *Organization means the contact
// has no organization at all.
type Organization struct {
	Company     string `json:"company"`
	JobPosition string `json:"job_position"`
}

// IsEmpty reports whether neither company nor job position is populated.
// A nil organization is empty.
func (o *Organization) IsEmpty() bool {
	return o == nil || (strings.TrimSpace(o.Company) == "" && strings.TrimSpace(o.JobPosition) == "")
}

// Thumbnail references the contact photo. Data holds already-encoded image
// bytes; when it is empty, URI is resolved by an image loader at export time.
type Thumbnail struct {
	URI  string `json:"uri,omitempty"`
	Data []byte `json:"data,omitempty"`
}

// IsEmpty reports whether the thumbnail carries neither bytes nor a reference.
func (t *Thumbnail) IsEmpty() bool {
	return t == nil || (len(t.Data) == 0 && strings.TrimSpace(t.URI) == "")
}

// Contact is a single address book entry.
type Contact struct {
	// ID is a ULID that uniquely identifies this contact
	ID string `json:"id"`

	Prefix     string `json:"prefix,omitempty"`
	FirstName  string `json:"first_name,omitempty"`
	MiddleName string `json:"middle_name,omitempty"`
	Surname    string `json:"surname,omitempty"`
	Suffix     string `json:"suffix,omitempty"`
	Nickname   string `json:"nickname,omitempty"`

	PhoneNumbers []PhoneNumber `json:"phone_numbers,omitempty"`
	Emails       []Email       `json:"emails,omitempty"`
	Events       []Event       `json:"events,omitempty"`
	Addresses    []Address     `json:"addresses,omitempty"`

	Notes        string        `json:"notes,omitempty"`
	Organization *Organization `json:"organization,omitempty"`
	Websites     []string      `json:"websites,omitempty"`
	Thumbnail    *Thumbnail    `json:"thumbnail,omitempty"`

	Starred bool `json:"starred,omitempty"`

	// CreatedAt is the Unix timestamp when the contact was created
	CreatedAt int64 `json:"created_at"`

	// UpdatedAt is the Unix timestamp when the contact was last updated
	UpdatedAt int64 `json:"updated_at"`

	// DeletedAt is the Unix timestamp for soft delete (nullable)
	DeletedAt *int64 `json:"deleted_at,omitempty"`
}

// FullName joins the populated name parts in display order.
func (c *Contact) FullName() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{c.Prefix, c.FirstName, c.MiddleName, c.Surname, c.Suffix} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// DisplayName returns the best human-readable label for the contact.
// Falls back through nickname, company, first email and first phone number.
func (c *Contact) DisplayName() string {
	if name := c.FullName(); name != "" {
		return name
	}
	if nick := strings.TrimSpace(c.Nickname); nick != "" {
		return nick
	}
	if c.Organization != nil {
		if company := strings.TrimSpace(c.Organization.Company); company != "" {
			return company
		}
	}
	for _, e := range c.Emails {
		if v := strings.TrimSpace(e.Value); v != "" {
			return v
		}
	}
	for _, p := range c.PhoneNumbers {
		if v := strings.TrimSpace(p.Value); v != "" {
			return v
		}
	}
	return ""
}

// SortKey is the normalized key contacts are listed by.
func (c *Contact) SortKey() string {
	return Normalize(c.DisplayName())
}
