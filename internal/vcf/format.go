package vcf

import (
	"bytes"
	stderrors "errors"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/emersion/go-vcard"
)

// maxLineOctets is the folding limit of RFC 6350 section 3.2, CRLF excluded.
const maxLineOctets = 75

var errMissingVersion = stderrors.New("vcard: VERSION field missing")

// structuredFields hold component lists whose parts were escaped with
// escapeComponent and joined with ';' when the card was built.
var structuredFields = map[string]bool{
	vcard.FieldName:         true,
	vcard.FieldAddress:      true,
	vcard.FieldOrganization: true,
}

// uriFields carry URI values, which are written without text escaping.
var uriFields = map[string]bool{
	vcard.FieldPhoto: true,
	vcard.FieldURL:   true,
}

var (
	textEscaper = strings.NewReplacer(
		`\`, `\\`,
		"\r\n", `\n`,
		"\n", `\n`,
		"\r", `\n`,
		",", `\,`,
	)
	componentEscaper = strings.NewReplacer(
		`\`, `\\`,
		"\r\n", `\n`,
		"\n", `\n`,
		"\r", `\n`,
		",", `\,`,
		";", `\;`,
	)
	lineBreakStripper = strings.NewReplacer("\r", "", "\n", "")
)

// escapeComponent escapes one component of a structured value (N, ADR, ORG)
// so that separators inside it are not read as component boundaries.
func escapeComponent(s string) string {
	return componentEscaper.Replace(s)
}

// joinComponents escapes each component and joins them into a structured
// value.
func joinComponents(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = escapeComponent(p)
	}
	return strings.Join(escaped, ";")
}

// writeCard serializes card as vCard text. VERSION comes right after BEGIN,
// then properties in name order, each folded at 75 octets.
func writeCard(buf *bytes.Buffer, card vcard.Card) error {
	version := card.Get(vcard.FieldVersion)
	if version == nil {
		return errMissingVersion
	}

	buf.WriteString("BEGIN:VCARD\r\n")
	writeFolded(buf, formatProperty(vcard.FieldVersion, version))

	keys := make([]string, 0, len(card))
	for k := range card {
		if !strings.EqualFold(k, vcard.FieldVersion) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, f := range card[k] {
			writeFolded(buf, formatProperty(k, f))
		}
	}

	buf.WriteString("END:VCARD\r\n")
	return nil
}

func formatProperty(name string, field *vcard.Field) string {
	var sb strings.Builder
	if field.Group != "" {
		sb.WriteString(field.Group)
		sb.WriteByte('.')
	}
	sb.WriteString(name)

	params := make([]string, 0, len(field.Params))
	for k := range field.Params {
		params = append(params, k)
	}
	sort.Strings(params)
	for _, k := range params {
		for _, v := range field.Params[k] {
			sb.WriteByte(';')
			sb.WriteString(k)
			sb.WriteByte('=')
			sb.WriteString(textEscaper.Replace(v))
		}
	}

	sb.WriteByte(':')
	switch {
	case structuredFields[name]:
		sb.WriteString(field.Value)
	case uriFields[name]:
		sb.WriteString(lineBreakStripper.Replace(field.Value))
	default:
		sb.WriteString(textEscaper.Replace(field.Value))
	}
	return sb.String()
}

// writeFolded writes one content line, continuing it on lines that start
// with a space. Multi-byte characters are never split.
func writeFolded(buf *bytes.Buffer, line string) {
	limit := maxLineOctets
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		buf.WriteString(line[:cut])
		buf.WriteString("\r\n ")
		line = line[cut:]
		limit = maxLineOctets - 1
	}
	buf.WriteString(line)
	buf.WriteString("\r\n")
}
