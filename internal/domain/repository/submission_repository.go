package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/common"
	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/domain/model"
	"github.com/jackc/pgx/v5/pgconn"
)

type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, sub *model.Submission) error
	GetSubmissionByID(ctx context.Context, id string) (*model.Submission, error)
	// UpdateSubmissionResult writes the verdict columns of a pending row.
	UpdateSubmissionResult(ctx context.Context, sub *model.Submission) error
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

const submissionColumns = `id, problem_id, user_id, language, code, status, runtime_ms, memory_mb,
       passed_test_cases, total_test_cases, failed_test_case_index, error_message, submitted_at, judged_at`

func (r *pgSubmissionRepository) CreateSubmission(ctx context.Context, s *model.Submission) error {
	query := `INSERT INTO submissions (id, problem_id, user_id, language, code, status, passed_test_cases, total_test_cases, submitted_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, query, s.ID, s.ProblemID, s.UserID, s.Language, s.Code, s.Status, s.PassedTestCases, s.TotalTestCases, s.SubmittedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("submission %s already exists: %w", s.ID, common.ErrConflict)
		}
		return fmt.Errorf("pgSubmissionRepository.CreateSubmission: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) GetSubmissionByID(ctx context.Context, id string) (*model.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	s := &model.Submission{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.ProblemID, &s.UserID, &s.Language, &s.Code, &s.Status, &s.RuntimeMs, &s.MemoryMb,
		&s.PassedTestCases, &s.TotalTestCases, &s.FailedTestCaseIndex, &s.ErrorMessage, &s.SubmittedAt, &s.JudgedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSubmissionRepository.GetSubmissionByID: %w", err)
	}
	return s, nil
}

func (r *pgSubmissionRepository) UpdateSubmissionResult(ctx context.Context, s *model.Submission) error {
	// Guarded on status so a finalized row is never rewritten.
	query := `UPDATE submissions SET
                status = $1, runtime_ms = $2, memory_mb = $3, passed_test_cases = $4, total_test_cases = $5,
                failed_test_case_index = $6, error_message = $7, judged_at = $8
              WHERE id = $9 AND status = $10`
	res, err := r.db.ExecContext(ctx, query,
		s.Status, s.RuntimeMs, s.MemoryMb, s.PassedTestCases, s.TotalTestCases,
		s.FailedTestCaseIndex, s.ErrorMessage, s.JudgedAt, s.ID, model.StatusPending)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.UpdateSubmissionResult: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.UpdateSubmissionResult rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("submission %s is not pending: %w", s.ID, common.ErrConflict)
	}
	return nil
}
