package models

import "time"

// ── Core Challenge Rows ───────────────────────────────────

// ChallengeWeek is one student's aggregate for one ISO week. Created lazily
// on the first valid session of the week; is_training_week is fixed at
// creation time and never revised afterwards.
type ChallengeWeek struct {
	ID              int64     `json:"id"`
	StudentID       int64     `json:"student_id"`
	WeekID          string    `json:"week_id"`
	IndividualXP    int       `json:"individual_xp"`
	ActiveDaysCount int       `json:"active_days_count"`
	IsTrainingWeek  bool      `json:"is_training_week"`
	CreatedAt       time.Time `json:"created_at"`
}

// ChallengeDayActivity is one local calendar day inside a challenge week.
// best_score_pct tracks the best score across all sessions that day,
// including invalid ones; daily_xp only moves through the awarding step.
type ChallengeDayActivity struct {
	ID                  int64     `json:"id"`
	ChallengeWeekID     int64     `json:"challenge_week_id"`
	LocalDate           time.Time `json:"local_date"`
	DailyXP             int       `json:"daily_xp"`
	BestScorePct        int       `json:"best_score_pct"`
	QualityBonusApplied bool      `json:"quality_bonus_applied"`
	FirstQuizResultID   int64     `json:"first_quiz_result_id"`
	LastQuizResultID    int64     `json:"last_quiz_result_id"`
}

// ── Process Outcome ───────────────────────────────────────

// ChallengeOutcome is the structured, never-raising result of running one
// quiz session through the challenge engine. Callers treat it as advisory:
// their own primary write has already been committed before the hook runs.
type ChallengeOutcome struct {
	Applied   bool   `json:"applied"`
	Reason    string `json:"reason"`
	XPAwarded int    `json:"xp_awarded"`
	WeekID    string `json:"week_id,omitempty"`
	LocalDate string `json:"local_date,omitempty"`
}

// ── Weekly Status ─────────────────────────────────────────

const (
	ChallengeModeSoloContinuity = "solo_continuity"
	ChallengeModeCoop           = "coop"

	StatusContinuityCompleted  = "continuity_completed"
	StatusContinuityInProgress = "continuity_in_progress"
	StatusMissionCompleted     = "mission_completed"
	StatusMissionInProgress    = "mission_in_progress"
)

type WeeklyStatusResponse struct {
	WeekID            string             `json:"week_id"`
	IsTrainingWeek    bool               `json:"is_training_week"`
	Mode              string             `json:"mode"`
	Individual        IndividualProgress `json:"individual"`
	Team              *TeamProgress      `json:"team"`
	ContinuityMission *ContinuityMission `json:"continuity_mission,omitempty"`
	Partner           *PartnerProgress   `json:"partner"`
	Status            string             `json:"status"`
}

type IndividualProgress struct {
	XP             int            `json:"xp"`
	ActiveDays     int            `json:"active_days"`
	DailyBreakdown []DayBreakdown `json:"daily_breakdown"`
}

type DayBreakdown struct {
	Date         string `json:"date"`
	XP           int    `json:"xp"`
	BestScorePct int    `json:"best_score_pct"`
	QualityBonus bool   `json:"quality_bonus"`
}

type TeamProgress struct {
	PartnerName string      `json:"partner_name"`
	TeamXP      int         `json:"team_xp"`
	MissionBase MissionBase `json:"mission_base"`
}

type MissionBase struct {
	TargetDaysEach int  `json:"target_days_each"`
	StudentDays    int  `json:"student_days"`
	PartnerDays    int  `json:"partner_days"`
	Completed      bool `json:"completed"`
}

type ContinuityMission struct {
	TargetXP   int  `json:"target_xp"`
	TargetDays int  `json:"target_days"`
	Completed  bool `json:"completed"`
}

type PartnerProgress struct {
	XP         int `json:"xp"`
	ActiveDays int `json:"active_days"`
}
