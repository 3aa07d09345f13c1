// Package timeslot holds the wall-clock arithmetic shared by the
// availability store and the booking engine. Times are "HH:MM" strings and
// days are "YYYY-MM-DD" strings, both interpreted as UTC.
package timeslot

import (
	"fmt"
	"time"
)

const (
	DayLayout   = "2006-01-02"
	ClockLayout = "15:04"
)

// Minutes converts an "HH:MM" clock string to minutes since midnight.
func Minutes(clock string) (int, error) {
	t, err := time.Parse(ClockLayout, clock)
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", clock, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ValidClock reports whether clock is a well-formed "HH:MM" value.
func ValidClock(clock string) bool {
	_, err := Minutes(clock)
	return err == nil
}

// ValidDay reports whether day is a well-formed "YYYY-MM-DD" value.
func ValidDay(day string) bool {
	_, err := ParseDay(day)
	return err == nil
}

// Overlaps reports whether the half-open intervals [aStart,aEnd) and
// [bStart,bEnd) intersect. Touching boundaries do not overlap: 09:00-10:00
// and 10:00-11:00 are disjoint. Arguments must already be validated; a
// malformed clock here is a caller bug.
func Overlaps(aStart, aEnd, bStart, bEnd string) bool {
	a1, _ := Minutes(aStart)
	a2, _ := Minutes(aEnd)
	b1, _ := Minutes(bStart)
	b2, _ := Minutes(bEnd)
	return a1 < b2 && b1 < a2
}

// Generate expands [start,end) into slot start labels every step. Every
// start strictly before end gets a label; end <= start yields nothing.
func Generate(start, end string, step time.Duration) []string {
	s, err := Minutes(start)
	if err != nil {
		return nil
	}
	e, err := Minutes(end)
	if err != nil {
		return nil
	}

	stepMin := int(step.Minutes())
	if stepMin <= 0 {
		return nil
	}

	var slots []string
	for cur := s; cur < e; cur += stepMin {
		slots = append(slots, fmt.Sprintf("%02d:%02d", cur/60, cur%60))
	}
	return slots
}

// ParseDay parses a "YYYY-MM-DD" string to midnight UTC.
func ParseDay(day string) (time.Time, error) {
	t, err := time.Parse(DayLayout, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", day, err)
	}
	return t, nil
}

// Combine resolves a (day, clock) pair to its UTC instant.
func Combine(day, clock string) (time.Time, error) {
	d, err := ParseDay(day)
	if err != nil {
		return time.Time{}, err
	}
	m, err := Minutes(clock)
	if err != nil {
		return time.Time{}, err
	}
	return d.Add(time.Duration(m) * time.Minute), nil
}

// Today truncates now to its UTC calendar day.
func Today(now time.Time) time.Time {
	return now.UTC().Truncate(24 * time.Hour)
}
