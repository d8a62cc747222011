package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizmaster/internal/domain"
)

// ResultStore persists completed attempts in the quiz_results table.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

func (s *ResultStore) SaveResult(ctx context.Context, c domain.Completion) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO quiz_results (session_id, user_name, topic, score_percent, timed_out, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (session_id) DO NOTHING`,
		c.SessionID, c.UserName, c.Result.Topic, c.Result.ScorePercent, c.Result.TimedOut, c.CompletedAt)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (s *ResultStore) GetResult(ctx context.Context, sessionID string) (domain.Completion, error) {
	var c domain.Completion
	err := s.pool.QueryRow(ctx, `
		SELECT session_id, user_name, topic, score_percent, timed_out, completed_at
		FROM quiz_results WHERE session_id=$1`, sessionID).
		Scan(&c.SessionID, &c.UserName, &c.Result.Topic, &c.Result.ScorePercent, &c.Result.TimedOut, &c.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Completion{}, domain.ErrResultNotFound
	}
	if err != nil {
		return domain.Completion{}, fmt.Errorf("load result: %w", err)
	}
	c.CompletedAt = c.CompletedAt.UTC()
	return c, nil
}
