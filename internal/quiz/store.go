package quiz

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/study-app/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// SaveResult persists a quiz result and fills in its id and timestamp.
// This is the caller's primary write; it commits before the challenge
// hook ever runs.
func (s *Store) SaveResult(ctx context.Context, r *models.QuizResult) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO quiz_results (student_id, quiz_type, score, total_questions, active_seconds)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		r.StudentID, r.QuizType, r.Score, r.TotalQuestions, r.ActiveSeconds,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return fmt.Errorf("save quiz result: %w", err)
	}
	return nil
}

func (s *Store) ListRecentResults(ctx context.Context, studentID int64, limit int) ([]models.QuizResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, student_id, quiz_type, score, total_questions, active_seconds, created_at
		 FROM quiz_results
		 WHERE student_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		studentID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list quiz results: %w", err)
	}
	defer rows.Close()

	var results []models.QuizResult
	for rows.Next() {
		var r models.QuizResult
		if err := rows.Scan(&r.ID, &r.StudentID, &r.QuizType, &r.Score,
			&r.TotalQuestions, &r.ActiveSeconds, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan quiz result: %w", err)
		}
		results = append(results, r)
	}
	if results == nil {
		results = []models.QuizResult{}
	}
	return results, rows.Err()
}
