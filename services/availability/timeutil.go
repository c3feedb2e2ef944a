package availability

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date wire format used across the engine.
const DateLayout = "2006-01-02"

// TimeToMinutes converts an "HH:MM" clock-face time to minutes from
// midnight. It is purely arithmetic and carries no timezone awareness.
func TimeToMinutes(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	for _, i := range [4]int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
		}
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	if h > 23 || m > 59 {
		return 0, fmt.Errorf("invalid time %q: out of range", s)
	}
	return h*60 + m, nil
}

// MinutesToTime converts minutes from midnight back to "HH:MM". It is the
// exact inverse of TimeToMinutes for all valid inputs.
func MinutesToTime(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// CurrentMinutesInTimezone resolves wall-clock "now" in the given IANA
// timezone as minutes from midnight. Same-day and past-slot decisions must
// route through this, never through an unzoned system clock.
func CurrentMinutesInTimezone(tz string, now time.Time) (int, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return 0, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	local := now.In(loc)
	return local.Hour()*60 + local.Minute(), nil
}

// TodayInTimezone resolves the current calendar date in the given IANA
// timezone.
func TodayInTimezone(tz string, now time.Time) (string, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return "", fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return now.In(loc).Format(DateLayout), nil
}

// ParseDate parses a "YYYY-MM-DD" date string.
func ParseDate(date string) (time.Time, error) {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", date)
	}
	return d, nil
}

// AbsoluteTime anchors a date and minutes-from-midnight offset in the given
// timezone and returns the absolute instant.
func AbsoluteTime(date string, minutes int, tz string) (time.Time, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	d, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	midnight := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	return midnight.Add(time.Duration(minutes) * time.Minute), nil
}
