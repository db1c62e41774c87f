package vcf

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDate is returned when an event value is not a recognizable date.
var ErrInvalidDate = stderrors.New("invalid event date")

// partialDatePrefix marks a date whose year is unknown ("--MM-DD").
const partialDatePrefix = "--"

// leapReferenceYear validates month/day pairs of partial dates so that
// "--02-29" is accepted.
const leapReferenceYear = 2000

// EventDate is a calendar date whose year may be unknown. Month is 1-based.
type EventDate struct {
	Year    int
	HasYear bool
	Month   time.Month
	Day     int
}

// ParseEventDate parses a stored event value.
//
// Accepted forms: "YYYY-MM-DD", "YYYYMMDD", RFC 3339 timestamps (the date part
// is kept), and the year-unknown forms "--MM-DD" and "--MMDD".
func ParseEventDate(s string) (EventDate, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return EventDate{}, fmt.Errorf("%w: empty value", ErrInvalidDate)
	}

	if rest, ok := strings.CutPrefix(s, partialDatePrefix); ok {
		return parsePartial(s, rest)
	}

	for _, layout := range []string{"2006-01-02", "20060102", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return EventDate{
				Year:    t.Year(),
				HasYear: true,
				Month:   t.Month(),
				Day:     t.Day(),
			}, nil
		}
	}

	return EventDate{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// parsePartial parses the "MM-DD" or "MMDD" remainder of a year-unknown date.
func parsePartial(original, rest string) (EventDate, error) {
	var monthStr, dayStr string
	switch {
	case len(rest) == 5 && rest[2] == '-':
		monthStr, dayStr = rest[:2], rest[3:]
	case len(rest) == 4:
		monthStr, dayStr = rest[:2], rest[2:]
	default:
		return EventDate{}, fmt.Errorf("%w: %q", ErrInvalidDate, original)
	}

	month, err := strconv.Atoi(monthStr)
	if err != nil {
		return EventDate{}, fmt.Errorf("%w: %q", ErrInvalidDate, original)
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return EventDate{}, fmt.Errorf("%w: %q", ErrInvalidDate, original)
	}

	if !validMonthDay(leapReferenceYear, month, day) {
		return EventDate{}, fmt.Errorf("%w: %q", ErrInvalidDate, original)
	}

	return EventDate{Month: time.Month(month), Day: day}, nil
}

// validMonthDay reports whether month/day exist in the given year.
func validMonthDay(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Month() == time.Month(month) && t.Day() == day
}

// String renders the date in vCard 4.0 basic format: "YYYYMMDD" for complete
// dates and "--MMDD" for dates without a year.
func (d EventDate) String() string {
	if d.HasYear {
		return fmt.Sprintf("%04d%02d%02d", d.Year, int(d.Month), d.Day)
	}
	return fmt.Sprintf("%s%02d%02d", partialDatePrefix, int(d.Month), d.Day)
}
