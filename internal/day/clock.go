package day

import "time"

// #region date-helpers
// DateLayout is the calendar-date key format for day records.
const DateLayout = "2006-01-02"

// DateOf returns the local calendar date key for t.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

// MinuteOf returns the local time-of-day for t at minute resolution, "HH:MM".
func MinuteOf(t time.Time) string {
	return t.Format("15:04")
}

// IsSunday reports whether t falls on a Sunday in local time.
func IsSunday(t time.Time) bool {
	return t.Weekday() == time.Sunday
}

// #endregion date-helpers
