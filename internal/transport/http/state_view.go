package http

import "quizmaster/internal/domain"

type questionView struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   *int     `json:"answer,omitempty"`
}

// stateView is what a client sees of a session. Correct answers are only
// included once the attempt is submitted.
type stateView struct {
	Topic            string            `json:"topic"`
	Difficulty       domain.Difficulty `json:"difficulty"`
	Questions        []questionView    `json:"questions"`
	Answers          []int             `json:"answers"`
	AnsweredCount    int               `json:"answeredCount"`
	CurrentIndex     int               `json:"currentIndex"`
	RemainingSeconds int               `json:"remainingSeconds"`
	Phase            domain.Phase      `json:"phase"`
	Error            string            `json:"error,omitempty"`
}

func newStateView(st domain.SessionState) stateView {
	reveal := st.Phase == domain.PhaseSubmitted
	questions := make([]questionView, len(st.Questions))
	for i, q := range st.Questions {
		questions[i] = questionView{Question: q.Text, Options: q.Options}
		if reveal {
			answer := q.CorrectAnswerIndex
			questions[i].Answer = &answer
		}
	}
	return stateView{
		Topic:            st.Topic,
		Difficulty:       st.Difficulty,
		Questions:        questions,
		Answers:          st.Answers,
		AnsweredCount:    st.AnsweredCount(),
		CurrentIndex:     st.CurrentIndex,
		RemainingSeconds: st.RemainingSeconds,
		Phase:            st.Phase,
		Error:            st.ErrorMessage,
	}
}
