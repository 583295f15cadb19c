package format

import (
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"Jan 2, 2006",
}

// ParseDate accepts the date spellings used in the sheets.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FmtDate formats a sheet date for display. Unparseable input is returned trimmed.
func FmtDate(s string, lang string) string {
	t, ok := ParseDate(s)
	if !ok {
		return strings.TrimSpace(s)
	}
	switch strings.ToLower(lang) {
	case "vi":
		return t.Format("02/01/2006")
	default:
		return t.Format("Jan 2, 2006")
	}
}

// Countdown is the state of a drop countdown at a moment in time.
type Countdown struct {
	Target  time.Time
	Valid   bool
	Expired bool
}

// CountdownAt evaluates target (RFC 3339) at now.
func CountdownAt(target string, now time.Time) Countdown {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(target))
	if err != nil {
		return Countdown{}
	}
	return Countdown{Target: t, Valid: true, Expired: !now.Before(t)}
}

// Remaining splits d into whole days, hours, minutes and seconds.
func Remaining(d time.Duration) (days, hours, minutes, seconds int) {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return total / 86400, total % 86400 / 3600, total % 3600 / 60, total % 60
}
