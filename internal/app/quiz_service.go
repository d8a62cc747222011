package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"quizmaster/internal/domain"
	"quizmaster/internal/logger"
)

// SessionRepository abstracts where live sessions are kept (in-memory, Redis-marked, etc).
type SessionRepository interface {
	Put(id string, c *Controller)
	Get(id string) (*Controller, bool)
	Delete(id string)
}

// ResultStore records completed attempts for the results view.
type ResultStore interface {
	SaveResult(ctx context.Context, c domain.Completion) error
	GetResult(ctx context.Context, sessionID string) (domain.Completion, error)
}

// QuizService contains the quiz use cases across concurrent sessions.
type QuizService struct {
	sessions  SessionRepository
	results   ResultStore
	source    QuestionSource
	scheduler Scheduler
	settings  Settings
	log       *logger.Logger
	newID     func() string
}

// Option customizes a QuizService.
type Option func(*QuizService)

func WithScheduler(s Scheduler) Option { return func(q *QuizService) { q.scheduler = s } }

func WithSettings(s Settings) Option { return func(q *QuizService) { q.settings = s } }

func WithLogger(l *logger.Logger) Option { return func(q *QuizService) { q.log = l } }

// WithIDGenerator is meant for tests that need stable session ids.
func WithIDGenerator(fn func() string) Option { return func(q *QuizService) { q.newID = fn } }

func NewQuizService(sessions SessionRepository, results ResultStore, source QuestionSource, opts ...Option) *QuizService {
	s := &QuizService{
		sessions:  sessions,
		results:   results,
		source:    source,
		scheduler: TickerScheduler{},
		settings:  DefaultSettings(),
		log:       logger.Nop(),
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Settings returns the effective session settings.
func (s *QuizService) Settings() Settings { return s.settings }

// Open registers a new, unstarted session for userName.
func (s *QuizService) Open(userName string) *Controller {
	id := s.newID()
	c := NewController(id, userName, s.source, s.scheduler, s.settings, s.log, s.complete)
	s.sessions.Put(id, c)
	return c
}

// Start opens a session and loads its questions. A validation failure leaves
// nothing registered; an adapter failure returns the Failed session with the error.
func (s *QuizService) Start(ctx context.Context, userName, topic string, difficulty domain.Difficulty) (*Controller, error) {
	c := s.Open(userName)
	err := c.Start(ctx, topic, difficulty)
	if err != nil && domain.IsValidation(err) {
		s.Leave(c.ID())
		return nil, err
	}
	return c, err
}

func (s *QuizService) SelectAnswer(sessionID string, questionIndex, optionIndex int) (Update, error) {
	c, ok := s.sessions.Get(sessionID)
	if !ok {
		return Update{}, domain.ErrSessionNotFound
	}
	return c.SelectAnswer(questionIndex, optionIndex)
}

func (s *QuizService) Navigate(sessionID string, dir domain.Direction) (Update, error) {
	c, ok := s.sessions.Get(sessionID)
	if !ok {
		return Update{}, domain.ErrSessionNotFound
	}
	return c.Navigate(dir)
}

func (s *QuizService) Submit(sessionID string) (domain.SessionResult, error) {
	c, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SessionResult{}, domain.ErrSessionNotFound
	}
	return c.Submit()
}

func (s *QuizService) Snapshot(sessionID string) (Update, error) {
	c, ok := s.sessions.Get(sessionID)
	if !ok {
		return Update{}, domain.ErrSessionNotFound
	}
	return c.Snapshot(), nil
}

// Subscribe returns a channel that receives updates for a session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(sessionID string) (<-chan Update, func(), error) {
	c, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := c.Subscribe()
	return ch, cancel, nil
}

// Leave tears a session down (user navigated away); its timer stops.
func (s *QuizService) Leave(sessionID string) {
	c, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	c.Close()
	s.sessions.Delete(sessionID)
}

// Result returns the recorded completion for a finished session.
func (s *QuizService) Result(ctx context.Context, sessionID string) (domain.Completion, error) {
	return s.results.GetResult(ctx, sessionID)
}

// Passed applies the configured threshold.
func (s *QuizService) Passed(result domain.SessionResult) bool {
	return Passed(result, s.settings.PassThreshold)
}

func (s *QuizService) complete(c domain.Completion) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.results.SaveResult(ctx, c); err != nil {
		s.log.Error("record result failed", "session_id", c.SessionID, "error", err)
	}
	s.sessions.Delete(c.SessionID)
}
