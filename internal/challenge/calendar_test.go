package challenge

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestValidateTZOffset(t *testing.T) {
	tests := []struct {
		minutes  int
		fallback int
		want     int
	}{
		{0, 0, 0},
		{-720, 0, -720},  // UTC-12, lowest real offset
		{840, 0, 840},    // UTC+14, highest real offset
		{-721, 0, 0},     // below range
		{841, 0, 0},      // above range
		{100000, 60, 60}, // garbage falls back to caller's choice
	}

	for _, tt := range tests {
		got := ValidateTZOffset(tt.minutes, tt.fallback)
		if got != tt.want {
			t.Errorf("ValidateTZOffset(%d, %d) = %d, want %d", tt.minutes, tt.fallback, got, tt.want)
		}
	}
}

func TestTZOffsetOrFallback(t *testing.T) {
	if got := TZOffsetOrFallback(nil, 0); got != 0 {
		t.Errorf("TZOffsetOrFallback(nil, 0) = %d, want 0", got)
	}
	offset := 300
	if got := TZOffsetOrFallback(&offset, 0); got != 300 {
		t.Errorf("TZOffsetOrFallback(&300, 0) = %d, want 300", got)
	}
	bad := 5000
	if got := TZOffsetOrFallback(&bad, 0); got != 0 {
		t.Errorf("TZOffsetOrFallback(&5000, 0) = %d, want 0", got)
	}
}

func TestLocalDateAndWeekIDAroundMidnight(t *testing.T) {
	// A minute before UTC midnight: an hour east it is already the next
	// day, which also happens to be the next ISO week.
	utc := time.Date(2026, 2, 8, 23, 59, 0, 0, time.UTC)

	tests := []struct {
		offset   int
		wantDate time.Time
		wantWeek string
	}{
		{0, date(2026, 2, 8), "2026W06"},
		{60, date(2026, 2, 9), "2026W07"},
		{-60, date(2026, 2, 8), "2026W06"},
	}

	for _, tt := range tests {
		if got := LocalDate(utc, tt.offset); !got.Equal(tt.wantDate) {
			t.Errorf("LocalDate(%v, %d) = %v, want %v", utc, tt.offset, got, tt.wantDate)
		}
		if got := WeekID(utc, tt.offset); got != tt.wantWeek {
			t.Errorf("WeekID(%v, %d) = %q, want %q", utc, tt.offset, got, tt.wantWeek)
		}
	}
}

func TestWeekIDYearBoundary(t *testing.T) {
	// 2027-01-01 is a Friday: it belongs to the last ISO week of 2026.
	got := WeekID(time.Date(2027, 1, 1, 12, 0, 0, 0, time.UTC), 0)
	if got != "2026W53" {
		t.Errorf("WeekID(2027-01-01) = %q, want 2026W53", got)
	}

	// 2026-01-01 is a Thursday: week 1 of 2026.
	got = WeekID(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC), 0)
	if got != "2026W01" {
		t.Errorf("WeekID(2026-01-01) = %q, want 2026W01", got)
	}
}

func TestOfficialStartDate(t *testing.T) {
	if got := OfficialStartDate(nil); got != nil {
		t.Errorf("OfficialStartDate(nil) = %v, want nil", got)
	}

	// Monday launch starts the same day.
	monday := date(2026, 2, 9)
	if got := OfficialStartDate(&monday); !got.Equal(monday) {
		t.Errorf("OfficialStartDate(Monday) = %v, want %v", got, monday)
	}

	// Wednesday launch rolls forward to the next Monday.
	wednesday := date(2026, 2, 11)
	if got := OfficialStartDate(&wednesday); !got.Equal(date(2026, 2, 16)) {
		t.Errorf("OfficialStartDate(Wednesday) = %v, want 2026-02-16", got)
	}

	// Sunday launch rolls forward one day.
	sunday := date(2026, 2, 8)
	if got := OfficialStartDate(&sunday); !got.Equal(date(2026, 2, 9)) {
		t.Errorf("OfficialStartDate(Sunday) = %v, want 2026-02-09", got)
	}
}

func TestIsTrainingWeek(t *testing.T) {
	monday := date(2026, 2, 9)
	wednesday := date(2026, 2, 11)

	tests := []struct {
		name      string
		localDate time.Time
		launch    *time.Time
		want      bool
	}{
		{"day before Monday launch", date(2026, 2, 8), &monday, true},
		{"Monday launch day", date(2026, 2, 9), &monday, false},
		{"Wednesday launch, day before official start", date(2026, 2, 15), &wednesday, true},
		{"Wednesday launch, official start", date(2026, 2, 16), &wednesday, false},
		{"no launch date configured", date(2026, 2, 8), nil, false},
	}

	for _, tt := range tests {
		if got := IsTrainingWeek(tt.localDate, tt.launch); got != tt.want {
			t.Errorf("%s: IsTrainingWeek = %v, want %v", tt.name, got, tt.want)
		}
	}
}
