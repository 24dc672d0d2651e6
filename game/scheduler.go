package game

import (
	"sync"
	"time"
)

// TimerKind names the channel-scoped timers a session relies on. At most one
// timer of each kind is outstanding per channel.
type TimerKind int

const (
	// TimerAdvance delays presenting the next question after the previous
	// one resolved.
	TimerAdvance TimerKind = iota
	// TimerTick drives hint reveals or elapsed-time announcements.
	TimerTick
	// TimerTimeout closes the answer window for the current question.
	TimerTimeout
	// TimerRestart delays construction of a fresh session after an
	// auto-restarting one stopped.
	TimerRestart
)

func (k TimerKind) String() string {
	switch k {
	case TimerAdvance:
		return "advance"
	case TimerTick:
		return "tick"
	case TimerTimeout:
		return "timeout"
	case TimerRestart:
		return "restart"
	}
	return "unknown"
}

// DispatchFunc receives fired timers. The callback carries only the channel
// and the timer kind; whoever handles it looks the session up and lets its
// state machine decide whether the firing is still relevant.
type DispatchFunc func(channel string, kind TimerKind)

type timerKey struct {
	channel string
	kind    TimerKind
}

// Scheduler owns the named timers for every channel. Scheduling a kind that
// is already pending replaces it. Cancellation can race a concurrent firing
// at the time.Timer boundary; a superseded callback still reaches dispatch,
// so handlers must check session state before acting.
type Scheduler struct {
	mu       sync.Mutex
	timers   map[timerKey]*time.Timer
	dispatch DispatchFunc
}

func NewScheduler(dispatch DispatchFunc) *Scheduler {
	return &Scheduler{
		timers:   make(map[timerKey]*time.Timer),
		dispatch: dispatch,
	}
}

func (s *Scheduler) Schedule(channel string, kind TimerKind, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := timerKey{channel: channel, kind: kind}
	if prev, ok := s.timers[key]; ok {
		prev.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		s.mu.Lock()
		if s.timers[key] == t {
			delete(s.timers, key)
		}
		s.mu.Unlock()
		s.dispatch(channel, kind)
	})
	s.timers[key] = t
}

func (s *Scheduler) Cancel(channel string, kind TimerKind) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := timerKey{channel: channel, kind: kind}
	if t, ok := s.timers[key]; ok {
		t.Stop()
		delete(s.timers, key)
	}
}

// CancelAll drops every pending timer for a channel. Called on every move to
// a new question and on stop so stale timers never fire against superseded
// state.
func (s *Scheduler) CancelAll(channel string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, kind := range []TimerKind{TimerAdvance, TimerTick, TimerTimeout, TimerRestart} {
		key := timerKey{channel: channel, kind: kind}
		if t, ok := s.timers[key]; ok {
			t.Stop()
			delete(s.timers, key)
		}
	}
}

// Pending reports whether a timer of the given kind is outstanding.
func (s *Scheduler) Pending(channel string, kind TimerKind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.timers[timerKey{channel: channel, kind: kind}]
	return ok
}
