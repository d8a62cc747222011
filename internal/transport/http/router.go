package http

import (
	"context"
	"net/http"
	"strconv"

	"quizmaster/internal/app"
	"quizmaster/internal/domain"
	"quizmaster/internal/logger"
	"quizmaster/internal/questions"
)

// RouterConfig collects what the HTTP surface needs. Generator is optional:
// without it the generation endpoint is not mounted. LiveSessions, when set,
// backs /healthz with a count of live sessions.
type RouterConfig struct {
	Service           *app.QuizService
	Profiles          *Profiles
	Generator         questions.Generator
	DefaultDifficulty domain.Difficulty
	LiveSessions      func(context.Context) (int, error)
	Log               *logger.Logger
}

func NewRouter(cfg RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", healthz(cfg.LiveSessions, cfg.Log))
	mux.HandleFunc("/ws", NewWSHandler(cfg.Service, cfg.Profiles, cfg.DefaultDifficulty, cfg.Log).ServeWS)
	mux.Handle("GET /api/results/{id}", NewResultsHandler(cfg.Service))
	if cfg.Profiles != nil {
		mux.HandleFunc("GET /api/profile", cfg.Profiles.ServeGet)
		mux.HandleFunc("POST /api/profile", cfg.Profiles.ServeSave)
	}
	if cfg.Generator != nil {
		mux.Handle("POST /api/interview-question", NewGeneratorHandler(cfg.Generator, cfg.Log))
	}
	return mux
}

func healthz(live func(context.Context) (int, error), log *logger.Logger) http.HandlerFunc {
	if log == nil {
		log = logger.Nop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if live != nil {
			n, err := live(r.Context())
			if err != nil {
				log.Warn("health check failed", "error", err)
				http.Error(w, "session store unavailable", http.StatusServiceUnavailable)
				return
			}
			w.Header().Set("X-Live-Sessions", strconv.Itoa(n))
		}
		_, _ = w.Write([]byte("ok"))
	}
}
