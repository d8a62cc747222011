package questions

import (
	"context"

	"quizmaster/internal/domain"
)

// GeneratorSource calls a Generator in-process and validates its output the
// same way HTTPSource validates a remote payload.
type GeneratorSource struct {
	generator Generator
}

func NewGeneratorSource(gen Generator) *GeneratorSource {
	return &GeneratorSource{generator: gen}
}

func (s *GeneratorSource) FetchQuestions(ctx context.Context, topic string, difficulty domain.Difficulty, count int) ([]domain.Question, error) {
	content, err := s.generator.Generate(ctx, topic, difficulty, count)
	if err != nil {
		return nil, domain.NewTransportError(err)
	}
	return ParseQuestions(content)
}
