package models

import "time"

// QuizResult is the primary record of a completed quiz attempt. It is
// persisted by its own committed write before the challenge engine runs.
type QuizResult struct {
	ID             int64     `json:"id"`
	StudentID      int64     `json:"student_id"`
	QuizType       string    `json:"quiz_type"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	ActiveSeconds  int       `json:"active_seconds"`
	CreatedAt      time.Time `json:"created_at"`
}

// ── Request Types ────────────────────────────────────────

type StartQuizSessionRequest struct {
	MaterialID *int64 `json:"material_id,omitempty"`
	QuizType   string `json:"quiz_type"`
}

type SubmitQuizResultRequest struct {
	QuizType       string `json:"quiz_type"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"total_questions"`
	ActiveSeconds  int    `json:"active_seconds"`
	SessionToken   string `json:"session_token"`
}

// ── Response Types ────────────────────────────────────────

type StartQuizSessionResponse struct {
	SessionToken     string `json:"session_token"`
	ExpiresInSeconds int    `json:"expires_in_seconds"`
}

type SubmitQuizResultResponse struct {
	Result    QuizResult       `json:"result"`
	Challenge ChallengeOutcome `json:"challenge"`
}

type QuizResultListResponse struct {
	Results []QuizResult `json:"results"`
}
