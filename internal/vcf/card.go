package vcf

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/emersion/go-vcard"

	"github.com/hpungsan/rolodex/internal/contact"
)

// Version is the vCard version written by the encoder.
const Version = "4.0"

var (
	errNilContact = stderrors.New("contact is nil")
	errNoLoader   = stderrors.New("thumbnail reference given but no image loader configured")
)

// encodeContact builds and stages the vCard text of a single contact.
// A panic while building is reported as an error for that contact only.
func (e *Encoder) encodeContact(ctx context.Context, c *contact.Contact) (block []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			block = nil
			err = fmt.Errorf("panic while encoding contact: %v", r)
		}
	}()

	if c == nil {
		return nil, errNilContact
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	card, err := e.buildCard(ctx, c)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := writeCard(&buf, card); err != nil {
		return nil, fmt.Errorf("failed to stage card: %w", err)
	}
	return buf.Bytes(), nil
}

// buildCard maps a contact onto a vCard.
func (e *Encoder) buildCard(ctx context.Context, c *contact.Contact) (vcard.Card, error) {
	card := make(vcard.Card)
	card.SetValue(vcard.FieldVersion, Version)
	card.SetValue(vcard.FieldFormattedName, c.DisplayName())

	// N always carries all five components, empty or not.
	card.Set(vcard.FieldName, &vcard.Field{
		Value: joinComponents(c.Surname, c.FirstName, c.MiddleName, c.Prefix, c.Suffix),
	})

	if c.ID != "" {
		card.SetValue(vcard.FieldUID, c.ID)
	}
	if c.Nickname != "" {
		card.SetValue(vcard.FieldNickname, c.Nickname)
	}

	for _, p := range c.PhoneNumbers {
		card.Add(vcard.FieldTelephone, labelled(p.Value, PhoneLabel(p.Type)))
	}
	for _, m := range c.Emails {
		card.Add(vcard.FieldEmail, labelled(m.Value, EmailLabel(m.Type)))
	}

	for i, ev := range c.Events {
		var field string
		switch ev.Type {
		case contact.EventBirthday:
			field = vcard.FieldBirthday
		case contact.EventAnniversary:
			field = vcard.FieldAnniversary
		default:
			continue
		}
		d, err := ParseEventDate(ev.Value)
		if err != nil {
			return nil, fmt.Errorf("events[%d]: %w", i, err)
		}
		card.Add(field, &vcard.Field{Value: d.String()})
	}

	// The free-text street goes in the third ADR component; the other six
	// stay empty.
	for _, a := range c.Addresses {
		f := labelled("", AddressLabel(a.Type))
		f.Value = joinComponents("", "", a.Value, "", "", "", "")
		card.Add(vcard.FieldAddress, f)
	}

	if c.Notes != "" {
		card.SetValue(vcard.FieldNote, c.Notes)
	}

	if !c.Organization.IsEmpty() {
		card.Set(vcard.FieldOrganization, &vcard.Field{Value: joinComponents(c.Organization.Company)})
		card.SetValue(vcard.FieldTitle, c.Organization.JobPosition)
	}

	for _, site := range c.Websites {
		card.AddValue(vcard.FieldURL, site)
	}

	if !c.Thumbnail.IsEmpty() {
		photo, err := e.resolvePhoto(ctx, c.Thumbnail)
		if err != nil {
			return nil, fmt.Errorf("photo: %w", err)
		}
		card.Set(vcard.FieldPhoto, photoField(photo))
	}

	return card, nil
}

// resolvePhoto returns the thumbnail's inline bytes, or loads its reference.
func (e *Encoder) resolvePhoto(ctx context.Context, t *contact.Thumbnail) ([]byte, error) {
	if len(t.Data) > 0 {
		return t.Data, nil
	}
	if e.loader == nil {
		return nil, errNoLoader
	}
	data, err := e.loader.LoadImage(ctx, strings.TrimSpace(t.URI))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image %q is empty", t.URI)
	}
	return data, nil
}

func labelled(value string, label Label) *vcard.Field {
	return &vcard.Field{
		Value:  value,
		Params: vcard.Params{vcard.ParamType: {string(label)}},
	}
}
