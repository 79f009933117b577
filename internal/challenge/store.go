package challenge

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/study-app/backend/internal/models"
)

// Store implements Repository on Postgres. The idempotent markers are
// single INSERT ... ON CONFLICT DO NOTHING statements whose RowsAffected
// is the linearization point: of two concurrent calls, exactly one
// observes rows == 1.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Transact runs fn inside one transaction. Commit on nil, rollback on any
// error, including the service's expected-rejection sentinel.
func (s *Store) Transact(ctx context.Context, fn func(Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&storeTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ── Read Side ───────────────────────────────────────────

func (s *Store) GetStudent(ctx context.Context, studentID int64) (*models.Student, error) {
	return getStudent(ctx, s.db, studentID)
}

func (s *Store) GetWeek(ctx context.Context, studentID int64, weekID string) (*models.ChallengeWeek, error) {
	return getWeek(ctx, s.db, studentID, weekID)
}

func (s *Store) ListDayActivities(ctx context.Context, weekRowID int64) ([]models.ChallengeDayActivity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, challenge_week_id, local_date, daily_xp, best_score_pct,
		        quality_bonus_applied, first_quiz_result_id, last_quiz_result_id
		 FROM challenge_day_activities
		 WHERE challenge_week_id = $1
		 ORDER BY local_date ASC`,
		weekRowID,
	)
	if err != nil {
		return nil, fmt.Errorf("list day activities: %w", err)
	}
	defer rows.Close()

	var days []models.ChallengeDayActivity
	for rows.Next() {
		var d models.ChallengeDayActivity
		if err := rows.Scan(&d.ID, &d.ChallengeWeekID, &d.LocalDate, &d.DailyXP,
			&d.BestScorePct, &d.QualityBonusApplied, &d.FirstQuizResultID, &d.LastQuizResultID); err != nil {
			return nil, fmt.Errorf("scan day activity: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// ── Transactional Side ──────────────────────────────────

type storeTx struct {
	tx *sql.Tx
}

func (t *storeTx) MarkQuizResultProcessed(ctx context.Context, quizResultID int64) (bool, error) {
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO challenge_processed_quizzes (quiz_result_id) VALUES ($1)
		 ON CONFLICT (quiz_result_id) DO NOTHING`,
		quizResultID,
	)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	return rows == 1, err
}

func (t *storeTx) ConsumeSessionToken(ctx context.Context, jti string) (bool, error) {
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO challenge_consumed_quiz_sessions (jti) VALUES ($1)
		 ON CONFLICT (jti) DO NOTHING`,
		jti,
	)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	return rows == 1, err
}

func (t *storeTx) GetStudent(ctx context.Context, studentID int64) (*models.Student, error) {
	return getStudent(ctx, t.tx, studentID)
}

func (t *storeTx) GetQuizResult(ctx context.Context, quizResultID int64) (*models.QuizResult, error) {
	var r models.QuizResult
	err := t.tx.QueryRowContext(ctx,
		`SELECT id, student_id, quiz_type, score, total_questions, active_seconds, created_at
		 FROM quiz_results WHERE id = $1`,
		quizResultID,
	).Scan(&r.ID, &r.StudentID, &r.QuizType, &r.Score, &r.TotalQuestions, &r.ActiveSeconds, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get quiz result: %w", err)
	}
	return &r, nil
}

func (t *storeTx) GetOrCreateWeek(ctx context.Context, studentID int64, weekID string, training bool) (*models.ChallengeWeek, error) {
	// The conflict clause keeps is_training_week fixed at creation time.
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO challenge_weeks (student_id, week_id, is_training_week)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (student_id, week_id) DO NOTHING`,
		studentID, weekID, training,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert week: %w", err)
	}
	return getWeek(ctx, t.tx, studentID, weekID)
}

func (t *storeTx) TouchDayActivity(ctx context.Context, weekRowID int64, localDate time.Time, quizResultID int64, scorePct int) (*models.ChallengeDayActivity, bool, error) {
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO challenge_day_activities
		     (challenge_week_id, local_date, best_score_pct, first_quiz_result_id, last_quiz_result_id)
		 VALUES ($1, $2, $3, $4, $4)
		 ON CONFLICT (challenge_week_id, local_date) DO NOTHING`,
		weekRowID, localDate, scorePct, quizResultID,
	)
	if err != nil {
		return nil, false, fmt.Errorf("upsert day activity: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}
	created := rows == 1

	if !created {
		_, err := t.tx.ExecContext(ctx,
			`UPDATE challenge_day_activities
			 SET best_score_pct = GREATEST(best_score_pct, $3), last_quiz_result_id = $4
			 WHERE challenge_week_id = $1 AND local_date = $2`,
			weekRowID, localDate, scorePct, quizResultID,
		)
		if err != nil {
			return nil, false, fmt.Errorf("update day activity: %w", err)
		}
	}

	var d models.ChallengeDayActivity
	err = t.tx.QueryRowContext(ctx,
		`SELECT id, challenge_week_id, local_date, daily_xp, best_score_pct,
		        quality_bonus_applied, first_quiz_result_id, last_quiz_result_id
		 FROM challenge_day_activities
		 WHERE challenge_week_id = $1 AND local_date = $2`,
		weekRowID, localDate,
	).Scan(&d.ID, &d.ChallengeWeekID, &d.LocalDate, &d.DailyXP,
		&d.BestScorePct, &d.QualityBonusApplied, &d.FirstQuizResultID, &d.LastQuizResultID)
	if err != nil {
		return nil, false, fmt.Errorf("get day activity: %w", err)
	}
	return &d, created, nil
}

func (t *storeTx) AwardDailyXP(ctx context.Context, weekRowID, dayID, studentID int64, xp int) error {
	if _, err := t.tx.ExecContext(ctx,
		`UPDATE challenge_day_activities SET daily_xp = daily_xp + $2 WHERE id = $1`,
		dayID, xp,
	); err != nil {
		return fmt.Errorf("add day xp: %w", err)
	}
	if _, err := t.tx.ExecContext(ctx,
		`UPDATE challenge_weeks
		 SET individual_xp = individual_xp + $2, active_days_count = active_days_count + 1
		 WHERE id = $1`,
		weekRowID, xp,
	); err != nil {
		return fmt.Errorf("add week xp: %w", err)
	}
	if _, err := t.tx.ExecContext(ctx,
		`UPDATE students SET challenge_xp = challenge_xp + $2, updated_at = NOW() WHERE id = $1`,
		studentID, xp,
	); err != nil {
		return fmt.Errorf("add student xp: %w", err)
	}
	return nil
}

// ── Shared Queries ──────────────────────────────────────

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func getStudent(ctx context.Context, q rowQuerier, studentID int64) (*models.Student, error) {
	var s models.Student
	err := q.QueryRowContext(ctx,
		`SELECT id, email, name, partner_id, expected_tz_offset, challenge_xp, created_at, updated_at
		 FROM students WHERE id = $1`,
		studentID,
	).Scan(&s.ID, &s.Email, &s.Name, &s.PartnerID, &s.ExpectedTZOffset, &s.ChallengeXP, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	return &s, nil
}

func getWeek(ctx context.Context, q rowQuerier, studentID int64, weekID string) (*models.ChallengeWeek, error) {
	var w models.ChallengeWeek
	err := q.QueryRowContext(ctx,
		`SELECT id, student_id, week_id, individual_xp, active_days_count, is_training_week, created_at
		 FROM challenge_weeks WHERE student_id = $1 AND week_id = $2`,
		studentID, weekID,
	).Scan(&w.ID, &w.StudentID, &w.WeekID, &w.IndividualXP, &w.ActiveDaysCount, &w.IsTrainingWeek, &w.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get week: %w", err)
	}
	return &w, nil
}
