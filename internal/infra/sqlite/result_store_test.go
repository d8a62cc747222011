package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"quizmaster/internal/domain"
)

func TestResultStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	ctx := context.Background()

	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	want := domain.Completion{
		SessionID:   "s1",
		UserName:    "Alice",
		Result:      domain.SessionResult{ScorePercent: 60, TimedOut: true, Topic: "Go"},
		CompletedAt: time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
	}
	if err := store.SaveResult(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	// duplicate completions are ignored
	if err := store.SaveResult(ctx, want); err != nil {
		t.Fatalf("save twice: %v", err)
	}
	store.Close()

	store, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()

	got, err := store.GetResult(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.CompletedAt.Equal(want.CompletedAt) || got.Result != want.Result || got.UserName != want.UserName {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if _, err := store.GetResult(ctx, "missing"); !errors.Is(err, domain.ErrResultNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
