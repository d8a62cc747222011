package app

import (
	"sync"
	"time"
)

// Scheduler runs fn periodically until the returned cancel func is called.
// Cancel must be safe to call more than once.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (cancel func())
}

// TickerScheduler drives callbacks from a time.Ticker on its own goroutine.
type TickerScheduler struct{}

func (TickerScheduler) Every(interval time.Duration, fn func()) func() {
	ticker := time.NewTicker(interval)
	stop := make(chan struct{})
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn()
			case <-stop:
				return
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(stop) }) }
}

// ManualScheduler fires registered callbacks only when Fire is called (tests, replays).
type ManualScheduler struct {
	mu     sync.Mutex
	nextID int
	jobs   map[int]func()
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{jobs: make(map[int]func())}
}

func (m *ManualScheduler) Every(_ time.Duration, fn func()) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.jobs[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.jobs, id)
		m.mu.Unlock()
	}
}

// Fire invokes every live callback n times, in registration order.
func (m *ManualScheduler) Fire(n int) {
	for i := 0; i < n; i++ {
		m.mu.Lock()
		fns := make([]func(), 0, len(m.jobs))
		for id := 0; id < m.nextID; id++ {
			if fn, ok := m.jobs[id]; ok {
				fns = append(fns, fn)
			}
		}
		m.mu.Unlock()
		for _, fn := range fns {
			fn()
		}
	}
}

// Active is the number of callbacks that have not been cancelled.
func (m *ManualScheduler) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}
