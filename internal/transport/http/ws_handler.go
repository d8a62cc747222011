package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"quizmaster/internal/app"
	"quizmaster/internal/domain"
	"quizmaster/internal/logger"
)

type WSHandler struct {
	service           *app.QuizService
	profiles          *Profiles
	defaultDifficulty domain.Difficulty
	log               *logger.Logger
	upgrader          websocket.Upgrader
}

// NewWSHandler wires quiz sessions to websockets. profiles may be nil, in
// which case the user name comes from the "name" query parameter only.
func NewWSHandler(service *app.QuizService, profiles *Profiles, defaultDifficulty domain.Difficulty, log *logger.Logger) *WSHandler {
	if defaultDifficulty == "" {
		defaultDifficulty = domain.DifficultyMedium
	}
	if log == nil {
		log = logger.Nop()
	}
	return &WSHandler{
		service:           service,
		profiles:          profiles,
		defaultDifficulty: defaultDifficulty,
		log:               log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	Question int `json:"question"`
	Option   int `json:"option"`
}

type navigatePayload struct {
	Direction domain.Direction `json:"direction"`
}

type completedPayload struct {
	ScorePercent int    `json:"scorePercent"`
	Topic        string `json:"topic"`
	TimedOut     bool   `json:"timedOut"`
	Passed       bool   `json:"passed"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// closeMessage tells the writer to send a close frame instead of JSON.
const closeMessage = "close"

// ServeWS runs one quiz attempt per connection. Disconnecting abandons the attempt.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	topic := strings.TrimSpace(r.URL.Query().Get("topic"))
	if topic == "" {
		http.Error(w, "missing topic", http.StatusBadRequest)
		return
	}
	difficulty := h.defaultDifficulty
	if raw := r.URL.Query().Get("difficulty"); raw != "" {
		d, err := domain.ParseDifficulty(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		difficulty = d
	}
	userName := ""
	if h.profiles != nil {
		userName = h.profiles.UserName(r)
	}
	if userName == "" {
		userName = strings.TrimSpace(r.URL.Query().Get("name"))
	}
	if userName == "" {
		http.Error(w, "missing user name", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancelCtx := context.WithCancel(r.Context())
	defer cancelCtx()

	ctrl := h.service.Open(userName)
	log := h.log.With("session_id", ctrl.ID(), "user", userName)
	defer h.service.Leave(ctrl.ID())

	updates, cancel := ctrl.Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		closed := false
		for msg := range send {
			if closed {
				continue
			}
			if msg.Type == closeMessage {
				closed = true
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "quiz completed"))
				continue
			}
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug("ws write error", "error", err)
				return
			}
		}
	}()

	emit := func(msg outboundMessage[any]) bool {
		select {
		case send <- msg:
			return true
		case <-writerDone:
			return false
		}
	}

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				if !emit(outboundMessage[any]{Type: "state", Payload: newStateView(update.State)}) {
					return
				}
				if update.Result == nil {
					continue
				}
				emit(outboundMessage[any]{Type: "completed", Payload: completedPayload{
					ScorePercent: update.Result.ScorePercent,
					Topic:        update.Result.Topic,
					TimedOut:     update.Result.TimedOut,
					Passed:       h.service.Passed(*update.Result),
				}})
				emit(outboundMessage[any]{Type: closeMessage})
				return
			case <-closeSignals:
				return
			}
		}
	}()

	go func() {
		if err := ctrl.Start(ctx, topic, difficulty); err != nil {
			log.Warn("quiz start failed", "topic", topic, "error", err)
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if err := h.dispatch(ctrl, inbound); err != nil {
			if !emit(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}) {
				break
			}
		}
	}

	cancelCtx()
	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// dispatch applies one client intent. Successful mutations reach the client
// through the subscription, so only errors are returned here.
func (h *WSHandler) dispatch(ctrl *app.Controller, inbound inboundMessage) error {
	switch inbound.Type {
	case "select":
		var payload selectPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errInvalidPayload("select")
		}
		_, err := ctrl.SelectAnswer(payload.Question, payload.Option)
		return err
	case "navigate":
		var payload navigatePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errInvalidPayload("navigate")
		}
		_, err := ctrl.Navigate(payload.Direction)
		return err
	case "submit":
		_, err := ctrl.Submit()
		return err
	default:
		return &domain.ValidationError{Op: inbound.Type, Err: errUnsupportedMessage}
	}
}
