package questions

import (
	"context"
	"fmt"
	"strings"

	"quizmaster/internal/domain"
)

// StaticSource serves questions from an in-memory bank keyed by topic (useful for tests/offline play).
type StaticSource struct {
	bank map[string][]domain.Question
}

func NewStaticSource(bank map[string][]domain.Question) *StaticSource {
	normalized := make(map[string][]domain.Question, len(bank))
	for topic, qs := range bank {
		normalized[strings.ToLower(strings.TrimSpace(topic))] = qs
	}
	return &StaticSource{bank: normalized}
}

// FetchQuestions returns up to count questions; difficulty is ignored.
func (s *StaticSource) FetchQuestions(_ context.Context, topic string, _ domain.Difficulty, count int) ([]domain.Question, error) {
	qs, ok := s.bank[strings.ToLower(strings.TrimSpace(topic))]
	if !ok {
		return nil, domain.NewTransportError(fmt.Errorf("no offline questions for topic %q", topic))
	}
	if count > 0 && count < len(qs) {
		qs = qs[:count]
	}
	return append([]domain.Question(nil), qs...), nil
}

// Topics lists the bank's topics.
func (s *StaticSource) Topics() []string {
	out := make([]string, 0, len(s.bank))
	for t := range s.bank {
		out = append(out, t)
	}
	return out
}

// SampleBank provides a minimal set of questions; swap it for a generator-backed source in production.
func SampleBank() map[string][]domain.Question {
	return map[string][]domain.Question{
		"golang": {
			{Text: "Which keyword starts a goroutine?", Options: []string{"async", "go", "spawn", "thread"}, CorrectAnswerIndex: 1},
			{Text: "What is the zero value of a map?", Options: []string{"an empty map", "nil", "0", "undefined"}, CorrectAnswerIndex: 1},
			{Text: "Which statement runs when the surrounding function returns?", Options: []string{"finally", "ensure", "defer", "after"}, CorrectAnswerIndex: 2},
			{Text: "How does a type implement an interface?", Options: []string{"implements keyword", "embedding the interface", "annotations", "having the method set"}, CorrectAnswerIndex: 3},
			{Text: "What does len return for a nil slice?", Options: []string{"0", "-1", "it panics", "nil"}, CorrectAnswerIndex: 0},
		},
		"javascript": {
			{Text: "What does 'var' declare?", Options: []string{"A block-scoped variable", "A function-scoped variable", "A constant", "A class"}, CorrectAnswerIndex: 1},
			{Text: "What is typeof null?", Options: []string{"null", "undefined", "object", "number"}, CorrectAnswerIndex: 2},
			{Text: "Which method creates a new array with transformed items?", Options: []string{"forEach", "map", "reduce", "some"}, CorrectAnswerIndex: 1},
			{Text: "Which operator checks equality without coercion?", Options: []string{"==", "=", "===", "!="}, CorrectAnswerIndex: 2},
			{Text: "What does Promise.all reject with?", Options: []string{"the first rejection", "all rejections", "undefined", "nothing"}, CorrectAnswerIndex: 0},
		},
		"python": {
			{Text: "Which type is immutable?", Options: []string{"list", "dict", "set", "tuple"}, CorrectAnswerIndex: 3},
			{Text: "What keyword defines a generator value?", Options: []string{"return", "yield", "emit", "give"}, CorrectAnswerIndex: 1},
			{Text: "What does len({}) return?", Options: []string{"0", "1", "None", "an error"}, CorrectAnswerIndex: 0},
			{Text: "Which statement handles exceptions?", Options: []string{"catch", "rescue", "except", "handle"}, CorrectAnswerIndex: 2},
			{Text: "What is the result of 7 // 2?", Options: []string{"3.5", "3", "4", "1"}, CorrectAnswerIndex: 1},
		},
	}
}
