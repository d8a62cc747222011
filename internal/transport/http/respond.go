package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"quizmaster/internal/domain"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrResultNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

var errUnsupportedMessage = errors.New("unsupported message type")

func errInvalidPayload(op string) error {
	return &domain.ValidationError{Op: op, Err: errors.New("invalid payload")}
}
