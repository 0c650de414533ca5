package span

import (
	"fmt"
	"time"
)

// clockLayout is the "HH:MM" 24-hour layout used for every span key
const clockLayout = "15:04"

const minutesPerDay = 24 * 60

// ClockTime is a local time of day with minute resolution, stored as minutes
// since midnight (0..1439). It carries no date and no timezone.
type ClockTime int

// ParseClockTime parses a zero-padded "HH:MM" string
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return ClockTime(t.Hour()*60 + t.Minute()), nil
}

// MustParseClockTime is ParseClockTime for constants and tests
func MustParseClockTime(s string) ClockTime {
	c, err := ParseClockTime(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ClockTimeOf returns the time of day of t in t's own location
func ClockTimeOf(t time.Time) ClockTime {
	return ClockTime(t.Hour()*60 + t.Minute())
}

// Hour returns the hour component
func (c ClockTime) Hour() int {
	return int(c.normalize()) / 60
}

// Minute returns the minute component
func (c ClockTime) Minute() int {
	return int(c.normalize()) % 60
}

// Minutes returns the number of minutes since midnight
func (c ClockTime) Minutes() int {
	return int(c.normalize())
}

// Add moves the clock forward by d, truncated to the minute.
// Crossing midnight wraps around to the next day's time of day.
func (c ClockTime) Add(d time.Duration) ClockTime {
	return ClockTime(int(c) + int(d/time.Minute)).normalize()
}

// Sub returns the signed distance from o to c within the same day
func (c ClockTime) Sub(o ClockTime) time.Duration {
	return time.Duration(int(c)-int(o)) * time.Minute
}

// On places the clock time on the calendar day of date, in date's location
func (c ClockTime) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, c.Hour(), c.Minute(), 0, 0, date.Location())
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// MarshalText renders the "HH:MM" form
func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses the "HH:MM" form
func (c *ClockTime) UnmarshalText(b []byte) error {
	parsed, err := ParseClockTime(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c ClockTime) normalize() ClockTime {
	m := int(c) % minutesPerDay
	if m < 0 {
		m += minutesPerDay
	}
	return ClockTime(m)
}
