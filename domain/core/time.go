package core

import (
	"time"
)

// DateRange is an inclusive calendar-date interval
type DateRange struct {
	From time.Time
	To   time.Time
}

// NewDateRange builds a range from two dates, truncated to midnight UTC
func NewDateRange(from, to time.Time) DateRange {
	return DateRange{From: Date(from), To: Date(to)}
}

// Contains reports whether t falls on or between the range bounds
func (r DateRange) Contains(t time.Time) bool {
	d := Date(t)
	return !d.Before(r.From) && !d.After(r.To)
}

// Date truncates t to its calendar day in UTC
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MustDate is a literal helper for fixed calendar bounds
func MustDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
