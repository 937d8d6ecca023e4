package core

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidPeriod is returned when a period token cannot be parsed as a
// calendar year-month. Callers must abort a calculation run before issuing
// any repository query when they see this error.
var ErrInvalidPeriod = errors.New("invalid period")

// Period identifies one calendar month.
type Period struct {
	Year  int
	Month time.Month
}

// ParsePeriod parses a "YYYY-MM" token into a Period.
// Any token that does not parse as a real year-month wraps ErrInvalidPeriod.
func ParsePeriod(token string) (Period, error) {
	t, err := time.Parse("2006-01", token)
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, token)
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}

// Start returns the first day of the period's month (UTC, midnight).
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last day of the period's month. Month length and leap
// years are handled by normalizing day 0 of the following month.
func (p Period) End() time.Time {
	return time.Date(p.Year, p.Month+1, 0, 0, 0, 0, 0, time.UTC)
}

// Contains reports whether the given date falls within the period.
func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && t.Month() == p.Month
}

// String returns the canonical "YYYY-MM" token.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// MarshalJSON encodes the period as its canonical token.
func (p Period) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// UnmarshalJSON decodes a "YYYY-MM" JSON string.
func (p *Period) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("%w: %s", ErrInvalidPeriod, b)
	}
	parsed, err := ParsePeriod(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
