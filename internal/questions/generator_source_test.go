package questions

import (
	"context"
	"errors"
	"testing"

	"quizmaster/internal/domain"
)

type stubGenerator struct {
	content string
	err     error
}

func (g stubGenerator) Generate(context.Context, string, domain.Difficulty, int) (string, error) {
	return g.content, g.err
}

func TestGeneratorSourceClassifiesFailures(t *testing.T) {
	ctx := context.Background()

	_, err := NewGeneratorSource(stubGenerator{err: errors.New("quota")}).FetchQuestions(ctx, "Go", domain.DifficultyEasy, 2)
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	_, err = NewGeneratorSource(stubGenerator{content: "sure, here you go"}).FetchQuestions(ctx, "Go", domain.DifficultyEasy, 2)
	if !errors.Is(err, domain.ErrMalformedResponse) {
		t.Fatalf("expected malformed response, got %v", err)
	}

	qs, err := NewGeneratorSource(stubGenerator{content: validPayload}).FetchQuestions(ctx, "Go", domain.DifficultyEasy, 2)
	if err != nil || len(qs) != 2 {
		t.Fatalf("expected two questions, got %d (%v)", len(qs), err)
	}
}
