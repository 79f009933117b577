package challenge

import "testing"

func TestNormalizeScorePct(t *testing.T) {
	tests := []struct {
		score    int
		total    int
		quizType string
		want     int
	}{
		{4, 5, "multiple-choice", 80},
		{5, 5, "multiple-choice", 100},
		{0, 5, "multiple-choice", 0},
		{1, 0, "multiple-choice", 0},  // no questions clamps to 0
		{130, 10, "short_answer", 100}, // percentage-scored types clamp
		{-5, 10, "open-ended", 0},
		{85, 10, "open-ended", 85}, // raw percentage passes through
		{3, 5, "mixed", 60},
	}

	for _, tt := range tests {
		got := NormalizeScorePct(tt.score, tt.total, tt.quizType)
		if got != tt.want {
			t.Errorf("NormalizeScorePct(%d, %d, %q) = %d, want %d",
				tt.score, tt.total, tt.quizType, got, tt.want)
		}
	}
}

func TestCapActiveSeconds(t *testing.T) {
	tests := []struct {
		reported  int
		estimated int
		want      int
	}{
		{300, 100, 110}, // capped at estimate * slack
		{90, 100, 90},   // plausible report passes through
		{-1, 100, 0},    // negative becomes zero
		{50, 0, 0},      // no server-observed time means no credit
		{100, -20, 0},
	}

	for _, tt := range tests {
		got := CapActiveSeconds(tt.reported, tt.estimated, 1.1)
		if got != tt.want {
			t.Errorf("CapActiveSeconds(%d, %d, 1.1) = %d, want %d",
				tt.reported, tt.estimated, got, tt.want)
		}
	}
}

func TestMinPlausibleActiveSeconds(t *testing.T) {
	if got := MinPlausibleActiveSeconds(5, 10); got != 50 {
		t.Errorf("MinPlausibleActiveSeconds(5, 10) = %d, want 50", got)
	}
	if got := MinPlausibleActiveSeconds(-1, 10); got != 0 {
		t.Errorf("MinPlausibleActiveSeconds(-1, 10) = %d, want 0", got)
	}
}

func TestIsValidSession(t *testing.T) {
	tests := []struct {
		active    int
		questions int
		want      bool
	}{
		{180, 5, true},
		{179, 5, false},
		{180, 4, false},
		{3600, 50, true},
		{0, 0, false},
	}

	for _, tt := range tests {
		got := IsValidSession(tt.active, tt.questions, 180, 5)
		if got != tt.want {
			t.Errorf("IsValidSession(%d, %d, 180, 5) = %v, want %v",
				tt.active, tt.questions, got, tt.want)
		}
	}
}

func TestXPForFirstValidSession(t *testing.T) {
	if got := XPForFirstValidSession(true, 20); got != 20 {
		t.Errorf("XPForFirstValidSession(true, 20) = %d, want 20", got)
	}
	if got := XPForFirstValidSession(false, 20); got != 0 {
		t.Errorf("XPForFirstValidSession(false, 20) = %d, want 0", got)
	}
}
