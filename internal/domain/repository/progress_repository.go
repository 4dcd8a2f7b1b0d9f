package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/domain/model"
)

type ProgressRepository interface {
	// GetProgress returns (nil, nil) when the user never attempted the problem.
	GetProgress(ctx context.Context, userID, problemID string) (*model.UserProblemProgress, error)
	UpsertProgress(ctx context.Context, p *model.UserProblemProgress) error
}

type pgProgressRepository struct {
	db *sql.DB
}

func NewPgProgressRepository(db *sql.DB) ProgressRepository {
	return &pgProgressRepository{db: db}
}

func (r *pgProgressRepository) GetProgress(ctx context.Context, userID, problemID string) (*model.UserProblemProgress, error) {
	query := `SELECT user_id, problem_id, is_solved, is_attempted, total_attempts, first_solved_at, last_attempted_at
	          FROM user_problem_progress WHERE user_id = $1 AND problem_id = $2`
	p := &model.UserProblemProgress{}
	err := r.db.QueryRowContext(ctx, query, userID, problemID).Scan(
		&p.UserID, &p.ProblemID, &p.IsSolved, &p.IsAttempted, &p.TotalAttempts, &p.FirstSolvedAt, &p.LastAttemptedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("pgProgressRepository.GetProgress: %w", err)
	}
	return p, nil
}

// UpsertProgress writes the row computed by the caller. The conflict branch
// ORs is_solved and keeps an existing first_solved_at, so the latch holds even
// when two writers race.
func (r *pgProgressRepository) UpsertProgress(ctx context.Context, p *model.UserProblemProgress) error {
	query := `INSERT INTO user_problem_progress (user_id, problem_id, is_solved, is_attempted, total_attempts, first_solved_at, last_attempted_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          ON CONFLICT (user_id, problem_id) DO UPDATE SET
	              is_solved = user_problem_progress.is_solved OR EXCLUDED.is_solved,
	              is_attempted = TRUE,
	              total_attempts = EXCLUDED.total_attempts,
	              first_solved_at = COALESCE(user_problem_progress.first_solved_at, EXCLUDED.first_solved_at),
	              last_attempted_at = EXCLUDED.last_attempted_at`
	_, err := r.db.ExecContext(ctx, query, p.UserID, p.ProblemID, p.IsSolved, p.IsAttempted, p.TotalAttempts, p.FirstSolvedAt, p.LastAttemptedAt)
	if err != nil {
		return fmt.Errorf("pgProgressRepository.UpsertProgress: %w", err)
	}
	return nil
}
