package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"quizmaster/internal/domain"
)

// ResultStore keeps completed attempts in a local SQLite file.
type ResultStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the schema.
func Open(path string) (*ResultStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &ResultStore{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *ResultStore) Close() error {
	return s.db.Close()
}

func (s *ResultStore) createTables() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS quiz_results (
		session_id TEXT PRIMARY KEY,
		user_name TEXT NOT NULL,
		topic TEXT NOT NULL,
		score_percent INTEGER NOT NULL,
		timed_out INTEGER NOT NULL DEFAULT 0,
		completed_at DATETIME NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("create quiz_results: %w", err)
	}
	return nil
}

func (s *ResultStore) SaveResult(ctx context.Context, c domain.Completion) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO quiz_results (session_id, user_name, topic, score_percent, timed_out, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.SessionID, c.UserName, c.Result.Topic, c.Result.ScorePercent, c.Result.TimedOut, c.CompletedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (s *ResultStore) GetResult(ctx context.Context, sessionID string) (domain.Completion, error) {
	var (
		c           domain.Completion
		completedAt time.Time
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, user_name, topic, score_percent, timed_out, completed_at
		 FROM quiz_results WHERE session_id = ?`, sessionID).
		Scan(&c.SessionID, &c.UserName, &c.Result.Topic, &c.Result.ScorePercent, &c.Result.TimedOut, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Completion{}, domain.ErrResultNotFound
	}
	if err != nil {
		return domain.Completion{}, fmt.Errorf("load result: %w", err)
	}
	c.CompletedAt = completedAt.UTC()
	return c, nil
}
