// Package date provides a day-level-granularity calendar date, used
// throughout the ledger so that event ordering and window arithmetic (the
// superficial-loss 61-day window, in particular) never has to reason about
// time-of-day or timezones.
package date

import (
	"encoding/json"
	"fmt"
	"time"
)

// Format is the ISO-8601 textual representation used on the wire and in storage.
const Format = "2006-01-02"

// Date represents a calendar date with no time-of-day component.
type Date struct {
	y int
	m time.Month
	d int
}

// New returns a normalized Date for the given year, month, and day. Overflowing
// days/months (e.g. day 0, month 13) are normalized the way time.Date does.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// Today returns the current date in UTC.
func Today() Date { return New(time.Now().UTC().Date()) }

func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Year returns the year component of the date.
func (d Date) Year() int { return d.y }

// Month returns the month component of the date.
func (d Date) Month() time.Month { return d.m }

// Day returns the day-of-month component of the date.
func (d Date) Day() int { return d.d }

// Before reports whether d is strictly before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether d is strictly after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// Equal reports whether d and x represent the same calendar date.
func (d Date) Equal(x Date) bool { return d.y == x.y && d.m == x.m && d.d == x.d }

// AddDays returns a new Date offset by n days (n may be negative).
func (d Date) AddDays(n int) Date { return New(d.y, d.m, d.d+n) }

// Weekday returns the day of the week for the date.
func (d Date) Weekday() time.Weekday { return d.time().Weekday() }

// IsWeekend reports whether the date falls on a Saturday or Sunday.
func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// String formats the date in ISO-8601 (YYYY-MM-DD).
func (d Date) String() string { return d.time().Format(Format) }

// Parse parses a strict ISO-8601 (YYYY-MM-DD) date string.
func Parse(s string) (Date, error) {
	t, err := time.Parse(Format, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, want format %q: %w", s, Format, err)
	}
	return New(t.Date()), nil
}

// MarshalJSON implements json.Marshaler, encoding the date as an ISO-8601 string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler, decoding an ISO-8601 string.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
