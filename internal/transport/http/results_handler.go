package http

import (
	"net/http"
	"time"

	"quizmaster/internal/app"
)

type resultView struct {
	SessionID    string    `json:"sessionId"`
	UserName     string    `json:"userName"`
	Topic        string    `json:"topic"`
	ScorePercent int       `json:"scorePercent"`
	TimedOut     bool      `json:"timedOut"`
	Passed       bool      `json:"passed"`
	CompletedAt  time.Time `json:"completedAt"`
}

// ResultsHandler serves GET /api/results/{id}.
type ResultsHandler struct {
	service *app.QuizService
}

func NewResultsHandler(service *app.QuizService) *ResultsHandler {
	return &ResultsHandler{service: service}
}

func (h *ResultsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Result(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resultView{
		SessionID:    c.SessionID,
		UserName:     c.UserName,
		Topic:        c.Result.Topic,
		ScorePercent: c.Result.ScorePercent,
		TimedOut:     c.Result.TimedOut,
		Passed:       h.service.Passed(c.Result),
		CompletedAt:  c.CompletedAt,
	})
}
