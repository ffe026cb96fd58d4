package domain

import "time"

// DateOnly truncates t to midnight UTC. Schedule dates are compared and
// stored at day granularity; time-of-day and zone never carry meaning.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsBusinessDay reports whether t falls on Monday through Friday.
// Public holidays are not modeled.
func IsBusinessDay(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}

// NextBusinessDay returns the earliest business day strictly after t.
// It always advances at least one calendar day.
func NextBusinessDay(t time.Time) time.Time {
	d := DateOnly(t).AddDate(0, 0, 1)
	for !IsBusinessDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// AddBusinessDays advances t by n business days. n must be non-negative;
// n == 0 returns the date unchanged.
func AddBusinessDays(t time.Time, n int) time.Time {
	d := DateOnly(t)
	for i := 0; i < n; i++ {
		d = NextBusinessDay(d)
	}
	return d
}

// BusinessDaysBetween counts the business days strictly between start and
// end, walking day by day. The count is negative when end precedes start.
func BusinessDaysBetween(start, end time.Time) int {
	s, e := DateOnly(start), DateOnly(end)
	if e.Before(s) {
		return -BusinessDaysBetween(e, s)
	}
	count := 0
	for d := s.AddDate(0, 0, 1); d.Before(e); d = d.AddDate(0, 0, 1) {
		if IsBusinessDay(d) {
			count++
		}
	}
	return count
}
