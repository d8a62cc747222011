package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"quizmaster/internal/domain"
	"quizmaster/internal/logger"
)

// LoadFailedMessage is the only adapter failure text shown to users.
const LoadFailedMessage = "Failed to load questions. Please try again."

// QuestionSource supplies the questions for one attempt.
type QuestionSource interface {
	FetchQuestions(ctx context.Context, topic string, difficulty domain.Difficulty, count int) ([]domain.Question, error)
}

// Settings tunes new sessions.
type Settings struct {
	QuestionCount int
	TimeBudget    int // seconds
	TickInterval  time.Duration
	PassThreshold int // percent
}

func DefaultSettings() Settings {
	return Settings{
		QuestionCount: 5,
		TimeBudget:    DefaultTimeBudget,
		TickInterval:  time.Second,
		PassThreshold: DefaultPassThreshold,
	}
}

// Update is what subscribers observe: the state and, once submitted, the result.
// Slices inside State are shared and must be treated as read-only.
type Update struct {
	State  domain.SessionState   `json:"state"`
	Result *domain.SessionResult `json:"result,omitempty"`
}

// Controller owns the state of a single quiz attempt.
type Controller struct {
	id        string
	userName  string
	source    QuestionSource
	scheduler Scheduler
	settings  Settings
	log       *logger.Logger
	now       func() time.Time
	onDone    func(domain.Completion)

	mu          sync.Mutex
	started     bool
	closed      bool
	state       domain.SessionState
	result      *domain.SessionResult
	cancelTimer func()
	subscribers map[chan Update]struct{}
}

// NewController builds an unstarted controller. onDone may be nil.
func NewController(id, userName string, source QuestionSource, scheduler Scheduler, settings Settings, log *logger.Logger, onDone func(domain.Completion)) *Controller {
	if scheduler == nil {
		scheduler = TickerScheduler{}
	}
	if log == nil {
		log = logger.Nop()
	}
	if settings.TickInterval <= 0 {
		settings.TickInterval = time.Second
	}
	return &Controller{
		id:          id,
		userName:    userName,
		source:      source,
		scheduler:   scheduler,
		settings:    settings,
		log:         log.With("session_id", id),
		now:         time.Now,
		onDone:      onDone,
		subscribers: make(map[chan Update]struct{}),
	}
}

func (c *Controller) ID() string { return c.id }

func (c *Controller) UserName() string { return c.userName }

// Start fetches questions and, on success, starts the countdown. An empty
// topic is rejected before the source is consulted.
func (c *Controller) Start(ctx context.Context, topic string, difficulty domain.Difficulty) error {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return &domain.ValidationError{Op: "start", Err: domain.ErrEmptyTopic}
	}
	difficulty, err := domain.ParseDifficulty(string(difficulty))
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ErrSessionClosed
	}
	if c.started {
		c.mu.Unlock()
		return wrongPhase("start")
	}
	c.started = true
	c.state = NewSessionState(topic, difficulty)
	c.broadcastLocked()
	c.mu.Unlock()

	questions, err := c.source.FetchQuestions(ctx, topic, difficulty, c.settings.QuestionCount)
	if err == nil && len(questions) == 0 {
		err = domain.NewMalformedResponse(errors.New("no questions returned"))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.ErrSessionClosed
	}
	if err != nil {
		kind := "unknown"
		var fe *domain.FetchError
		if errors.As(err, &fe) {
			kind = fe.Kind.String()
		}
		c.log.Warn("question fetch failed", "topic", topic, "kind", kind, "error", err)
		c.state, _ = Fail(c.state, LoadFailedMessage)
		c.broadcastLocked()
		return err
	}

	c.state, _ = Begin(c.state, questions, c.settings.TimeBudget)
	c.cancelTimer = c.scheduler.Every(c.settings.TickInterval, c.tick)
	c.log.Info("quiz started", "topic", topic, "difficulty", difficulty, "questions", len(questions))
	c.broadcastLocked()
	return nil
}

// SelectAnswer records optionIndex for questionIndex.
func (c *Controller) SelectAnswer(questionIndex, optionIndex int) (Update, error) {
	return c.mutate(func(st domain.SessionState) (domain.SessionState, error) {
		return SelectAnswer(st, questionIndex, optionIndex)
	})
}

// Navigate moves the current question cursor.
func (c *Controller) Navigate(dir domain.Direction) (Update, error) {
	return c.mutate(func(st domain.SessionState) (domain.SessionState, error) {
		return Navigate(st, dir)
	})
}

// Submit scores a fully answered quiz.
func (c *Controller) Submit() (domain.SessionResult, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.SessionResult{}, domain.ErrSessionClosed
	}
	next, result, err := Submit(c.state)
	if err != nil {
		c.mu.Unlock()
		return domain.SessionResult{}, err
	}
	c.state = next
	completion := c.settleLocked(result)
	c.mu.Unlock()

	c.finish(completion)
	return result, nil
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe returns a channel of updates seeded with the current snapshot.
// The caller must invoke the returned cancel function to avoid leaks.
func (c *Controller) Subscribe() (<-chan Update, func()) {
	ch := make(chan Update, 8)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	c.subscribers[ch] = struct{}{}
	ch <- c.snapshotLocked()
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if _, ok := c.subscribers[ch]; ok {
			delete(c.subscribers, ch)
			close(ch)
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

// Close tears the session down: the timer stops and subscriber channels close.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.stopTimerLocked()
	for ch := range c.subscribers {
		delete(c.subscribers, ch)
		close(ch)
	}
}

func (c *Controller) tick() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	next, result := Tick(c.state)
	c.state = next
	if result == nil {
		if next.Phase == domain.PhaseReady {
			c.broadcastLocked()
		}
		c.mu.Unlock()
		return
	}
	completion := c.settleLocked(*result)
	c.mu.Unlock()

	c.finish(completion)
}

func (c *Controller) mutate(fn func(domain.SessionState) (domain.SessionState, error)) (Update, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return Update{}, domain.ErrSessionClosed
	}
	next, err := fn(c.state)
	if err != nil {
		return c.snapshotLocked(), err
	}
	c.state = next
	c.broadcastLocked()
	return c.snapshotLocked(), nil
}

// settleLocked stops the countdown and fixes the result; state must already be Submitted.
func (c *Controller) settleLocked(result domain.SessionResult) domain.Completion {
	c.stopTimerLocked()
	c.result = &result
	c.log.Info("quiz submitted", "score", result.ScorePercent, "timed_out", result.TimedOut)
	return domain.Completion{
		SessionID:   c.id,
		UserName:    c.userName,
		Result:      result,
		CompletedAt: c.now().UTC(),
	}
}

// finish hands the completion off before subscribers learn about it, so a
// client reacting to the final update can already read the recorded result.
func (c *Controller) finish(completion domain.Completion) {
	if c.onDone != nil {
		c.onDone(completion)
	}
	c.mu.Lock()
	if !c.closed {
		c.broadcastLocked()
	}
	c.mu.Unlock()
}

func (c *Controller) stopTimerLocked() {
	if c.cancelTimer != nil {
		c.cancelTimer()
		c.cancelTimer = nil
	}
}

func (c *Controller) snapshotLocked() Update {
	u := Update{State: c.state}
	if c.result != nil {
		r := *c.result
		u.Result = &r
	}
	return u
}

func (c *Controller) broadcastLocked() {
	u := c.snapshotLocked()
	for ch := range c.subscribers {
		select {
		case ch <- u:
		default:
			// drop the oldest pending update so the newest always lands
			select {
			case <-ch:
			default:
			}
			ch <- u
		}
	}
}
