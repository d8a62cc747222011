package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"quizmaster/internal/domain"
	"quizmaster/internal/logger"
	"quizmaster/internal/questions"
)

// GeneratorHandler serves POST /api/interview-question. The response body is a
// JSON string holding the question document, which is what questions.HTTPSource reads.
type GeneratorHandler struct {
	generator questions.Generator
	log       *logger.Logger
}

func NewGeneratorHandler(gen questions.Generator, log *logger.Logger) *GeneratorHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &GeneratorHandler{generator: gen, log: log}
}

type generateRequest struct {
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
}

func (h *GeneratorHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if strings.TrimSpace(req.Topic) == "" || strings.TrimSpace(req.Difficulty) == "" || req.Count <= 0 {
		writeError(w, http.StatusBadRequest, "Missing required fields: topic, difficulty, count")
		return
	}
	difficulty, err := domain.ParseDifficulty(req.Difficulty)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	content, err := h.generator.Generate(r.Context(), strings.TrimSpace(req.Topic), difficulty, req.Count)
	if err != nil {
		h.log.Error("generate questions failed", "topic", req.Topic, "difficulty", difficulty, "error", err)
		writeError(w, http.StatusInternalServerError, "Error generating interview questions")
		return
	}
	writeJSON(w, http.StatusOK, content)
}

func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
