package challenge

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/study-app/backend/internal/config"
	"github.com/study-app/backend/internal/models"
)

// ErrNotFound is returned by repository lookups when the row does not exist.
var ErrNotFound = errors.New("challenge: not found")

// errRejected marks an expected in-transaction rejection so Transact rolls
// back without the outcome being reported as an infrastructure failure.
var errRejected = errors.New("challenge: rejected")

// ── Outcome Reason Codes ────────────────────────────────

const (
	ReasonApplied             = "applied"
	ReasonAlreadyAwardedToday = "already_awarded_today"

	ReasonFeatureDisabled       = "feature_disabled"
	ReasonTokenMissing          = "token_missing"
	ReasonTokenInvalid          = "token_invalid"
	ReasonTokenInvalidStudent   = "token_invalid_student"
	ReasonTokenStudentMismatch  = "token_student_mismatch"
	ReasonTokenQuizTypeMismatch = "token_quiz_type_mismatch"
	ReasonTokenMissingJTI       = "token_missing_jti"
	ReasonTokenInvalidIssuedAt  = "token_invalid_issued_at"

	ReasonDuplicateQuizResult = "duplicate_quiz_result"
	ReasonTokenReused         = "token_reused"
	ReasonSessionInvalid      = "session_invalid"
	ReasonStudentNotFound     = "student_not_found"
	ReasonQuizResultNotFound  = "quiz_result_not_found"
	ReasonHookError           = "hook_error"
)

// ── Repository Contract ─────────────────────────────────

// Tx is the set of persistence operations available inside one processing
// transaction. All exclusion is delegated to the store's unique constraints:
// the two marker inserts report whether this call claimed the row.
type Tx interface {
	// MarkQuizResultProcessed records the quiz result as run through the
	// engine. Returns false if it was already marked.
	MarkQuizResultProcessed(ctx context.Context, quizResultID int64) (bool, error)
	// ConsumeSessionToken spends a token jti. Returns false if it was
	// already consumed.
	ConsumeSessionToken(ctx context.Context, jti string) (bool, error)
	GetStudent(ctx context.Context, studentID int64) (*models.Student, error)
	GetQuizResult(ctx context.Context, quizResultID int64) (*models.QuizResult, error)
	GetOrCreateWeek(ctx context.Context, studentID int64, weekID string, training bool) (*models.ChallengeWeek, error)
	// TouchDayActivity get-or-creates the day row. When the row already
	// existed it raises best_score_pct to the max of old and new and
	// updates last_quiz_result_id. The bool reports whether this call
	// created the row, i.e. whether this was the first session of the day.
	TouchDayActivity(ctx context.Context, weekRowID int64, localDate time.Time, quizResultID int64, scorePct int) (*models.ChallengeDayActivity, bool, error)
	// AwardDailyXP applies the base award: day and week XP, the week's
	// active-day count, and the student's running total.
	AwardDailyXP(ctx context.Context, weekRowID, dayID, studentID int64, xp int) error
}

// Repository is the unit-of-work abstraction the service depends on, so it
// can be faked in tests without a real database. Transact runs fn inside a
// single transaction, committing on nil and rolling back on error.
type Repository interface {
	Transact(ctx context.Context, fn func(Tx) error) error
	GetStudent(ctx context.Context, studentID int64) (*models.Student, error)
	GetWeek(ctx context.Context, studentID int64, weekID string) (*models.ChallengeWeek, error)
	ListDayActivities(ctx context.Context, weekRowID int64) ([]models.ChallengeDayActivity, error)
}

// ── Service ─────────────────────────────────────────────

type Service struct {
	cfg    config.Challenge
	repo   Repository
	tokens *TokenService
	now    func() time.Time
}

func NewService(cfg config.Challenge, repo Repository, tokens *TokenService) *Service {
	return &Service{cfg: cfg, repo: repo, tokens: tokens, now: time.Now}
}

// ProcessSessionInput carries one completed quiz session into the engine.
// Everything except SessionToken is client-reported.
type ProcessSessionInput struct {
	QuizResultID   int64
	StudentID      int64
	QuizType       string
	Score          int
	TotalQuestions int
	ActiveSeconds  int
	SessionToken   string
}

func rejected(reason string) models.ChallengeOutcome {
	return models.ChallengeOutcome{Applied: false, Reason: reason}
}

// ProcessSession turns a completed quiz session into weekly progress. It
// never returns an error: every outcome, including infrastructure failure,
// is a structured result, because this engine is a best-effort side channel
// to a primary write that must succeed independently.
func (s *Service) ProcessSession(ctx context.Context, in ProcessSessionInput) models.ChallengeOutcome {
	if !s.cfg.Enabled {
		return rejected(ReasonFeatureDisabled)
	}
	if in.SessionToken == "" {
		return rejected(ReasonTokenMissing)
	}
	claims := s.tokens.Decode(in.SessionToken)
	if claims == nil {
		return rejected(ReasonTokenInvalid)
	}
	tokenStudentID, err := claims.ParseStudentID()
	if err != nil {
		return rejected(ReasonTokenInvalidStudent)
	}
	if tokenStudentID != in.StudentID {
		return rejected(ReasonTokenStudentMismatch)
	}
	if claims.QuizType != "" && claims.QuizType != in.QuizType {
		return rejected(ReasonTokenQuizTypeMismatch)
	}
	if strings.TrimSpace(claims.JTI) == "" {
		return rejected(ReasonTokenMissingJTI)
	}
	issuedAt, err := claims.IssuedAt()
	if err != nil {
		return rejected(ReasonTokenInvalidIssuedAt)
	}

	now := s.now().UTC()
	serverEstimated := int(now.Sub(issuedAt).Seconds())
	if serverEstimated < 0 {
		serverEstimated = 0
	}
	safeActive := CapActiveSeconds(in.ActiveSeconds, serverEstimated, s.cfg.ActiveTimeSlack)
	if safeActive >= s.cfg.MinActiveSeconds &&
		safeActive < MinPlausibleActiveSeconds(in.TotalQuestions, s.cfg.PerQuestionFloorSeconds) {
		log.Printf("[challenge] suspiciously fast session: student=%d quiz_result=%d active=%ds questions=%d",
			in.StudentID, in.QuizResultID, safeActive, in.TotalQuestions)
	}

	var out models.ChallengeOutcome
	err = s.repo.Transact(ctx, func(tx Tx) error {
		claimed, err := tx.MarkQuizResultProcessed(ctx, in.QuizResultID)
		if err != nil {
			return fmt.Errorf("mark quiz result processed: %w", err)
		}
		if !claimed {
			out = rejected(ReasonDuplicateQuizResult)
			return errRejected
		}

		consumed, err := tx.ConsumeSessionToken(ctx, claims.JTI)
		if err != nil {
			return fmt.Errorf("consume session token: %w", err)
		}
		if !consumed {
			out = rejected(ReasonTokenReused)
			return errRejected
		}

		if !IsValidSession(safeActive, in.TotalQuestions, s.cfg.MinActiveSeconds, s.cfg.MinQuestions) {
			// Commit anyway: an invalid session still burns the quiz
			// result marker and the jti, so it is not retryable.
			out = rejected(ReasonSessionInvalid)
			return nil
		}

		student, err := tx.GetStudent(ctx, in.StudentID)
		if errors.Is(err, ErrNotFound) {
			out = rejected(ReasonStudentNotFound)
			return errRejected
		}
		if err != nil {
			return fmt.Errorf("get student: %w", err)
		}

		result, err := tx.GetQuizResult(ctx, in.QuizResultID)
		if errors.Is(err, ErrNotFound) {
			out = rejected(ReasonQuizResultNotFound)
			return errRejected
		}
		if err != nil {
			return fmt.Errorf("get quiz result: %w", err)
		}

		offset := TZOffsetOrFallback(student.ExpectedTZOffset, 0)
		localDate := LocalDate(result.CreatedAt, offset)
		weekID := WeekID(result.CreatedAt, offset)
		training := IsTrainingWeek(localDate, s.cfg.LaunchDate)

		week, err := tx.GetOrCreateWeek(ctx, student.ID, weekID, training)
		if err != nil {
			return fmt.Errorf("get or create week %s: %w", weekID, err)
		}

		scorePct := NormalizeScorePct(in.Score, in.TotalQuestions, in.QuizType)
		day, firstOfDay, err := tx.TouchDayActivity(ctx, week.ID, localDate, in.QuizResultID, scorePct)
		if err != nil {
			return fmt.Errorf("touch day activity: %w", err)
		}

		xp := XPForFirstValidSession(firstOfDay, s.cfg.DailyBaseXP)
		if xp > 0 {
			if err := tx.AwardDailyXP(ctx, week.ID, day.ID, student.ID, xp); err != nil {
				return fmt.Errorf("award daily xp: %w", err)
			}
		}

		reason := ReasonAlreadyAwardedToday
		if xp > 0 {
			reason = ReasonApplied
		}
		out = models.ChallengeOutcome{
			Applied:   xp > 0,
			Reason:    reason,
			XPAwarded: xp,
			WeekID:    weekID,
			LocalDate: localDate.Format("2006-01-02"),
		}
		return nil
	})
	if err != nil && !errors.Is(err, errRejected) {
		log.Printf("[challenge] process session failed: quiz_result=%d student=%d: %v",
			in.QuizResultID, in.StudentID, err)
		return rejected(ReasonHookError)
	}
	return out
}

// GetWeeklyStatus builds the read model for the student's current local
// week. Absent week/day rows are valid zero-state; only an unknown student
// is an error (ErrNotFound).
func (s *Service) GetWeeklyStatus(ctx context.Context, studentID int64) (*models.WeeklyStatusResponse, error) {
	student, err := s.repo.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	offset := TZOffsetOrFallback(student.ExpectedTZOffset, 0)
	weekID := WeekID(now, offset)
	localDate := LocalDate(now, offset)
	training := IsTrainingWeek(localDate, s.cfg.LaunchDate)

	var individualXP, activeDays int
	breakdown := []models.DayBreakdown{}
	week, err := s.repo.GetWeek(ctx, studentID, weekID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get week %s: %w", weekID, err)
	}
	if week != nil {
		individualXP = week.IndividualXP
		activeDays = week.ActiveDaysCount
		// The stored flag was fixed at creation time and wins.
		training = week.IsTrainingWeek
		days, err := s.repo.ListDayActivities(ctx, week.ID)
		if err != nil {
			return nil, fmt.Errorf("list day activities: %w", err)
		}
		for _, d := range days {
			breakdown = append(breakdown, models.DayBreakdown{
				Date:         d.LocalDate.Format("2006-01-02"),
				XP:           d.DailyXP,
				BestScorePct: d.BestScorePct,
				QualityBonus: d.QualityBonusApplied,
			})
		}
	}

	resp := &models.WeeklyStatusResponse{
		WeekID:         weekID,
		IsTrainingWeek: training,
		Individual: models.IndividualProgress{
			XP:             individualXP,
			ActiveDays:     activeDays,
			DailyBreakdown: breakdown,
		},
	}

	if student.PartnerID == nil {
		resp.Mode = models.ChallengeModeSoloContinuity
		completed := individualXP >= s.cfg.SoloTargetXP && activeDays >= s.cfg.SoloTargetDays
		resp.ContinuityMission = &models.ContinuityMission{
			TargetXP:   s.cfg.SoloTargetXP,
			TargetDays: s.cfg.SoloTargetDays,
			Completed:  completed,
		}
		resp.Status = models.StatusContinuityInProgress
		if completed {
			resp.Status = models.StatusContinuityCompleted
		}
		return resp, nil
	}

	resp.Mode = models.ChallengeModeCoop
	var partnerName string
	var partnerXP, partnerDays int
	partner, err := s.repo.GetStudent(ctx, *student.PartnerID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get partner: %w", err)
	}
	if partner != nil {
		partnerName = partner.DisplayName()
		partnerWeek, err := s.repo.GetWeek(ctx, partner.ID, weekID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("get partner week %s: %w", weekID, err)
		}
		if partnerWeek != nil {
			partnerXP = partnerWeek.IndividualXP
			partnerDays = partnerWeek.ActiveDaysCount
		}
	}

	target := s.cfg.CoopTargetDaysEach
	// Both members must reach the target independently, not just their sum.
	completed := activeDays >= target && partnerDays >= target
	resp.Team = &models.TeamProgress{
		PartnerName: partnerName,
		TeamXP:      individualXP + partnerXP,
		MissionBase: models.MissionBase{
			TargetDaysEach: target,
			StudentDays:    activeDays,
			PartnerDays:    partnerDays,
			Completed:      completed,
		},
	}
	resp.Partner = &models.PartnerProgress{XP: partnerXP, ActiveDays: partnerDays}
	resp.Status = models.StatusMissionInProgress
	if completed {
		resp.Status = models.StatusMissionCompleted
	}
	return resp, nil
}
