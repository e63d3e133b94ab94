// Package localtime computes day, week and month boundaries in the application
// timezone. Boundaries never depend on the zone of the machine or client.
package localtime

import (
	"time"
	_ "time/tzdata"
)

// DefaultZone is the application timezone used when none is configured.
const DefaultZone = "Asia/Jakarta"

// jakartaOffset is used when the tz database cannot resolve DefaultZone.
var jakartaOffset = time.FixedZone("WIB", 7*60*60)

// LoadLocation resolves name, falling back to a fixed UTC+7 zone for DefaultZone.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		if name == DefaultZone {
			return jakartaOffset, nil
		}
		return nil, err
	}
	return loc, nil
}

// Default returns the DefaultZone location.
func Default() *time.Location {
	loc, _ := LoadLocation(DefaultZone)
	return loc
}

func orDefault(loc *time.Location) *time.Location {
	if loc == nil {
		return Default()
	}
	return loc
}

func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(orDefault(loc))
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay is the last representable instant of t's local day.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func StartOfMonth(t time.Time, loc *time.Location) time.Time {
	t = t.In(orDefault(loc))
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func EndOfMonth(t time.Time, loc *time.Location) time.Time {
	return StartOfMonth(t, loc).AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// Range is an inclusive interval of instants.
type Range struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t lies within the range, bounds included.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

// Day returns the bounds of the local day offset days away from now (negative is past).
func Day(now time.Time, offset int, loc *time.Location) Range {
	start := StartOfDay(now, loc).AddDate(0, 0, offset)
	return Range{From: start, To: start.AddDate(0, 0, 1).Add(-time.Nanosecond)}
}

// Today returns the bounds of now's local day.
func Today(now time.Time, loc *time.Location) Range {
	return Day(now, 0, loc)
}

// Month returns the bounds of now's local calendar month.
func Month(now time.Time, loc *time.Location) Range {
	return Range{From: StartOfMonth(now, loc), To: EndOfMonth(now, loc)}
}

// Trailing returns the rolling window [now-days, now].
func Trailing(now time.Time, days int) Range {
	return Range{From: now.AddDate(0, 0, -days), To: now}
}

// DateKey formats t as YYYY-MM-DD in the given zone.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(orDefault(loc)).Format("2006-01-02")
}
