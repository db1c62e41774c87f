package vcf

import "github.com/hpungsan/rolodex/internal/contact"

// Label is the TYPE parameter value attached to a TEL, EMAIL or ADR field.
type Label string

const (
	LabelHome    Label = "HOME"
	LabelWork    Label = "WORK"
	LabelCell    Label = "CELL"
	LabelPref    Label = "PREF"
	LabelWorkFax Label = "WORK_FAX"
	LabelHomeFax Label = "HOME_FAX"
	LabelPager   Label = "PAGER"
	LabelMobile  Label = "MOBILE"
)

// PhoneLabel maps a phone category to its vCard label. Unknown categories map
// to HOME.
func PhoneLabel(t contact.PhoneType) Label {
	switch t {
	case contact.PhoneMobile:
		return LabelCell
	case contact.PhoneWork:
		return LabelWork
	case contact.PhoneMain:
		return LabelPref
	case contact.PhoneWorkFax:
		return LabelWorkFax
	case contact.PhoneHomeFax:
		return LabelHomeFax
	case contact.PhonePager:
		return LabelPager
	default:
		return LabelHome
	}
}

// EmailLabel maps an email category to its vCard label. Unknown categories map
// to HOME.
func EmailLabel(t contact.EmailType) Label {
	switch t {
	case contact.EmailWork:
		return LabelWork
	case contact.EmailMobile:
		return LabelMobile
	default:
		return LabelHome
	}
}

// AddressLabel maps an address category to its vCard label. Unknown categories
// map to HOME.
func AddressLabel(t contact.AddressType) Label {
	if t == contact.AddressWork {
		return LabelWork
	}
	return LabelHome
}
