package domain

import (
	"fmt"
	"strings"
	"time"
)

// Unanswered marks an answer slot the user has not filled yet.
const Unanswered = -1

// OptionsPerQuestion is the fixed option count of a generated question.
const OptionsPerQuestion = 4

// Question models an MCQ question with exactly one correct option.
type Question struct {
	Text               string   `json:"question"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"answer"`
}

// Difficulty is the requested question difficulty.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty normalizes raw input into a Difficulty.
func ParseDifficulty(raw string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(raw))); d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, nil
	}
	return "", &ValidationError{Op: "parse difficulty", Err: ErrInvalidDifficulty}
}

// Phase is the coarse lifecycle stage of a quiz session.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseReady
	PhaseSubmitted
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseSubmitted:
		return "submitted"
	case PhaseFailed:
		return "failed"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Direction moves the current question cursor.
type Direction string

const (
	DirectionPrev Direction = "prev"
	DirectionNext Direction = "next"
)

// SessionState is a snapshot of one quiz attempt. Answers is parallel to Questions.
type SessionState struct {
	Topic            string     `json:"topic"`
	Difficulty       Difficulty `json:"difficulty"`
	Questions        []Question `json:"questions"`
	Answers          []int      `json:"answers"`
	CurrentIndex     int        `json:"currentIndex"`
	RemainingSeconds int        `json:"remainingSeconds"`
	Phase            Phase      `json:"phase"`
	ErrorMessage     string     `json:"error,omitempty"`
}

// AllAnswered reports whether every slot holds a selected option.
func (s SessionState) AllAnswered() bool {
	for _, a := range s.Answers {
		if a == Unanswered {
			return false
		}
	}
	return true
}

// AnsweredCount is the number of filled slots.
func (s SessionState) AnsweredCount() int {
	n := 0
	for _, a := range s.Answers {
		if a != Unanswered {
			n++
		}
	}
	return n
}

// SessionResult is derived from a submitted session and handed off to the results side.
type SessionResult struct {
	ScorePercent int    `json:"scorePercent"`
	TimedOut     bool   `json:"timedOut"`
	Topic        string `json:"topic"`
}

// Completion is the record persisted once a session has been scored.
type Completion struct {
	SessionID   string        `json:"sessionId"`
	UserName    string        `json:"userName"`
	Result      SessionResult `json:"result"`
	CompletedAt time.Time     `json:"completedAt"`
}
