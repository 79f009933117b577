package challenge

import (
	"fmt"
	"time"
)

// Timezone offsets are minutes east of UTC, bounded by the real-world
// range UTC-12..UTC+14.
const (
	minTZOffsetMinutes = -12 * 60
	maxTZOffsetMinutes = 14 * 60
)

// ValidateTZOffset returns minutes if it is a plausible timezone offset,
// otherwise fallback.
func ValidateTZOffset(minutes, fallback int) int {
	if minutes < minTZOffsetMinutes || minutes > maxTZOffsetMinutes {
		return fallback
	}
	return minutes
}

// TZOffsetOrFallback resolves a student's nullable declared offset.
func TZOffsetOrFallback(minutes *int, fallback int) int {
	if minutes == nil {
		return fallback
	}
	return ValidateTZOffset(*minutes, fallback)
}

// LocalDate converts a UTC instant into the calendar date the student
// experienced, as midnight UTC of that date. The offset is re-validated
// with fallback 0 before use.
func LocalDate(utc time.Time, tzOffsetMinutes int) time.Time {
	offset := ValidateTZOffset(tzOffsetMinutes, 0)
	local := utc.UTC().Add(time.Duration(offset) * time.Minute)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekID returns the ISO-8601 year-week identifier of the student's local
// date, formatted like "2026W06". ISO weeks start Monday; week 1 contains
// the year's first Thursday.
func WeekID(utc time.Time, tzOffsetMinutes int) string {
	year, week := LocalDate(utc, tzOffsetMinutes).ISOWeek()
	return fmt.Sprintf("%dW%02d", year, week)
}

// OfficialStartDate returns the program's Monday-aligned start: the launch
// date itself if it falls on Monday, otherwise the next Monday. Nil when no
// launch date is configured.
func OfficialStartDate(launch *time.Time) *time.Time {
	if launch == nil {
		return nil
	}
	start := time.Date(launch.Year(), launch.Month(), launch.Day(), 0, 0, 0, 0, time.UTC)
	if wd := start.Weekday(); wd != time.Monday {
		start = start.AddDate(0, 0, (int(time.Monday)-int(wd)+7)%7)
	}
	return &start
}

// IsTrainingWeek reports whether localDate falls before the official start.
// Without a launch date there is no training period.
func IsTrainingWeek(localDate time.Time, launch *time.Time) bool {
	start := OfficialStartDate(launch)
	if start == nil {
		return false
	}
	return localDate.Before(*start)
}
