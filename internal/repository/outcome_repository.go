package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/RubachokBoss/plagiarism-checker/similarity-client/internal/models"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

type OutcomeRepository interface {
	Save(ctx context.Context, outcome *models.Outcome) error
	ListByQuestion(ctx context.Context, questionID string, limit int) ([]models.Outcome, error)
	Ping(ctx context.Context) error
}

type outcomeRepository struct {
	*PostgresRepository
}

func NewOutcomeRepository(db *sql.DB, logger zerolog.Logger) OutcomeRepository {
	return &outcomeRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

func (r *outcomeRepository) Save(ctx context.Context, outcome *models.Outcome) error {
	query := `
		INSERT INTO outcomes (
			id, session_id, kind, student_id, question_id, language,
			success, severity, message, submission_id, chunk_count,
			match_count, max_similarity, decision, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		outcome.ID,
		outcome.SessionID,
		outcome.Kind,
		nullString(outcome.StudentID),
		outcome.QuestionID,
		outcome.Language,
		outcome.Success,
		outcome.Severity,
		outcome.Message,
		nullString(outcome.SubmissionID.String()),
		outcome.ChunkCount,
		outcome.MatchCount,
		outcome.MaxSimilarity,
		nullString(outcome.Decision.String()),
		outcome.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			r.logger.Error().
				Str("code", string(pqErr.Code)).
				Str("detail", pqErr.Detail).
				Msg("Postgres rejected outcome")
		}
		return fmt.Errorf("failed to save outcome: %w", err)
	}

	return nil
}

func (r *outcomeRepository) ListByQuestion(ctx context.Context, questionID string, limit int) ([]models.Outcome, error) {
	query := `
		SELECT
			id, session_id, kind, COALESCE(student_id, ''), question_id, language,
			success, severity, message, COALESCE(submission_id, ''), chunk_count,
			match_count, max_similarity, COALESCE(decision, ''), created_at
		FROM outcomes
		WHERE question_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, questionID, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	outcomes := []models.Outcome{}
	for rows.Next() {
		var o models.Outcome
		err := rows.Scan(
			&o.ID,
			&o.SessionID,
			&o.Kind,
			&o.StudentID,
			&o.QuestionID,
			&o.Language,
			&o.Success,
			&o.Severity,
			&o.Message,
			&o.SubmissionID,
			&o.ChunkCount,
			&o.MatchCount,
			&o.MaxSimilarity,
			&o.Decision,
			&o.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		outcomes = append(outcomes, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outcomes: %w", err)
	}

	return outcomes, nil
}

// ClampLimit лимит выдачи истории в пределах [1, MaxHistoryLimit]
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	default:
		return limit
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
