package app

import (
	"math"

	"quizmaster/internal/domain"
)

// DefaultTimeBudget is the countdown, in seconds, a session gets once questions arrive.
const DefaultTimeBudget = 120

// NewSessionState returns the Loading state for a freshly started attempt.
func NewSessionState(topic string, difficulty domain.Difficulty) domain.SessionState {
	return domain.SessionState{
		Topic:      topic,
		Difficulty: difficulty,
		Phase:      domain.PhaseLoading,
	}
}

// Begin moves Loading -> Ready with every slot unanswered. A non-positive
// budget falls back to DefaultTimeBudget.
func Begin(st domain.SessionState, questions []domain.Question, budgetSeconds int) (domain.SessionState, error) {
	if st.Phase != domain.PhaseLoading {
		return st, wrongPhase("begin")
	}
	if budgetSeconds <= 0 {
		budgetSeconds = DefaultTimeBudget
	}
	next := st
	next.Questions = append([]domain.Question(nil), questions...)
	next.Answers = make([]int, len(questions))
	for i := range next.Answers {
		next.Answers[i] = domain.Unanswered
	}
	next.CurrentIndex = 0
	next.RemainingSeconds = budgetSeconds
	next.Phase = domain.PhaseReady
	next.ErrorMessage = ""
	return next, nil
}

// Fail moves Loading -> Failed and retains nothing but the message.
func Fail(st domain.SessionState, message string) (domain.SessionState, error) {
	if st.Phase != domain.PhaseLoading {
		return st, wrongPhase("fail")
	}
	return domain.SessionState{
		Topic:        st.Topic,
		Difficulty:   st.Difficulty,
		Phase:        domain.PhaseFailed,
		ErrorMessage: message,
	}, nil
}

// SelectAnswer overwrites one slot; re-selecting is never rejected.
func SelectAnswer(st domain.SessionState, questionIndex, optionIndex int) (domain.SessionState, error) {
	if st.Phase != domain.PhaseReady {
		return st, wrongPhase("select answer")
	}
	if questionIndex < 0 || questionIndex >= len(st.Questions) {
		return st, &domain.ValidationError{Op: "select answer", Err: domain.ErrQuestionOutOfRange}
	}
	if optionIndex < 0 || optionIndex >= len(st.Questions[questionIndex].Options) {
		return st, &domain.ValidationError{Op: "select answer", Err: domain.ErrOptionOutOfRange}
	}
	next := st
	next.Answers = append([]int(nil), st.Answers...)
	next.Answers[questionIndex] = optionIndex
	return next, nil
}

// Navigate moves the cursor by one, clamped at both ends.
func Navigate(st domain.SessionState, dir domain.Direction) (domain.SessionState, error) {
	if st.Phase != domain.PhaseReady {
		return st, wrongPhase("navigate")
	}
	next := st
	switch dir {
	case domain.DirectionPrev:
		if next.CurrentIndex > 0 {
			next.CurrentIndex--
		}
	case domain.DirectionNext:
		if next.CurrentIndex < len(next.Questions)-1 {
			next.CurrentIndex++
		}
	default:
		return st, &domain.ValidationError{Op: "navigate", Err: domain.ErrInvalidDirection}
	}
	return next, nil
}

// Tick decrements the countdown. The returned result is non-nil only on the
// tick that reaches zero; every other phase is left untouched.
func Tick(st domain.SessionState) (domain.SessionState, *domain.SessionResult) {
	if st.Phase != domain.PhaseReady {
		return st, nil
	}
	next := st
	if next.RemainingSeconds > 0 {
		next.RemainingSeconds--
	}
	if next.RemainingSeconds > 0 {
		return next, nil
	}
	next.Phase = domain.PhaseSubmitted
	return next, &domain.SessionResult{
		ScorePercent: Score(next.Questions, next.Answers),
		TimedOut:     true,
		Topic:        next.Topic,
	}
}

// Submit is the manual submit; it requires every question to be answered.
func Submit(st domain.SessionState) (domain.SessionState, domain.SessionResult, error) {
	if st.Phase != domain.PhaseReady {
		return st, domain.SessionResult{}, wrongPhase("submit")
	}
	if !st.AllAnswered() {
		return st, domain.SessionResult{}, &domain.ValidationError{Op: "submit", Err: domain.ErrNotAllAnswered}
	}
	next := st
	next.Phase = domain.PhaseSubmitted
	return next, domain.SessionResult{
		ScorePercent: Score(next.Questions, next.Answers),
		TimedOut:     false,
		Topic:        next.Topic,
	}, nil
}

// Score returns round(100 * correct / total), or 0 for an empty quiz.
func Score(questions []domain.Question, answers []int) int {
	if len(questions) == 0 {
		return 0
	}
	correct := 0
	for i, q := range questions {
		if i < len(answers) && answers[i] == q.CorrectAnswerIndex {
			correct++
		}
	}
	return int(math.Round(100 * float64(correct) / float64(len(questions))))
}

func wrongPhase(op string) error {
	return &domain.ValidationError{Op: op, Err: domain.ErrWrongPhase}
}
