package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"trivia/clues"
	"trivia/storage"
)

var (
	// ErrGameRunning means the channel already has an active session.
	ErrGameRunning = errors.New("a game is already running in this channel")
	// ErrNoClues means acquisition produced an empty pool and the session
	// never started.
	ErrNoClues = errors.New("no clues available")
	// ErrNoSession means the channel has no active game.
	ErrNoSession = errors.New("no game running in this channel")
)

// Drawer is the clue acquisition dependency.
type Drawer interface {
	DrawRandom(ctx context.Context, num int, history map[int]struct{}) []clues.Clue
	DrawCategories(ctx context.Context, categoryIDs []int, num int, shuffle bool, history map[int]struct{}) []clues.Clue
	RandomCategoryIDs(ctx context.Context) ([]int, error)
	Finalize(pool []clues.Clue, shuffle bool) []clues.Clue
}

// InvalidReporter flags broken clues upstream.
type InvalidReporter interface {
	ReportInvalid(ctx context.Context, clueID int) error
}

// Manager owns the channel→session mapping and is the only way in and out
// of a game: control commands, guesses and timer firings all go through it.
// Sessions for different channels are fully independent.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	restarts map[string]Config
	starting map[string]bool

	drawer   Drawer
	reporter InvalidReporter
	store    storage.Store
	notifier Notifier
	tmpl     *Templates
	sched    *Scheduler
	defaults Config
	log      zerolog.Logger
}

func NewManager(
	drawer Drawer,
	reporter InvalidReporter,
	store storage.Store,
	notifier Notifier,
	tmpl *Templates,
	defaults Config,
	log zerolog.Logger,
) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		restarts: make(map[string]Config),
		starting: make(map[string]bool),
		drawer:   drawer,
		reporter: reporter,
		store:    store,
		notifier: notifier,
		tmpl:     tmpl,
		defaults: defaults,
		log:      log,
	}
	m.sched = NewScheduler(m.handleTimer)
	return m
}

// handleTimer routes fired timers: restarts are a manager concern, the rest
// belong to the channel's session.
func (m *Manager) handleTimer(channel string, kind TimerKind) {
	if kind == TimerRestart {
		m.restart(channel)
		return
	}
	m.mu.Lock()
	s := m.sessions[channel]
	m.mu.Unlock()
	if s != nil {
		s.HandleTimer(kind)
	}
}

// Start draws a clue pool and begins a game in the channel. It blocks on
// the clue source (bounded by its per-request timeouts), so callers on a
// shared dispatch path should invoke it from their own goroutine.
func (m *Manager) Start(ctx context.Context, channel string, opts StartOptions) error {
	// stopped sessions leave the map, so presence means a live (or pending
	// auto-restart, or still-constructing) game
	m.mu.Lock()
	_, running := m.sessions[channel]
	_, pending := m.restarts[channel]
	if running || pending || m.starting[channel] {
		m.mu.Unlock()
		m.notifier.Notify(channel, "There is already a game running here.")
		return ErrGameRunning
	}
	m.starting[channel] = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		delete(m.starting, channel)
		m.mu.Unlock()
	}()

	cfg := m.configFor(opts)

	var categoryIDs []int
	switch {
	case opts.RandomCategory:
		ids, err := m.drawer.RandomCategoryIDs(ctx)
		if err != nil {
			m.log.Error().Err(err).Str("channel", channel).Msg("random category fetch failed")
		}
		categoryIDs = ids
	case len(opts.Categories) > 0:
		for _, c := range opts.Categories {
			id, err := strconv.Atoi(c)
			if err != nil {
				m.notifier.Notify(channel, fmt.Sprintf("Could not find any results for %q.", c))
				return fmt.Errorf("unknown category selector %q", c)
			}
			categoryIDs = append(categoryIDs, id)
		}
		if opts.Shuffle {
			rng := m.newRNG()
			rng.Shuffle(len(categoryIDs), func(i, j int) {
				categoryIDs[i], categoryIDs[j] = categoryIDs[j], categoryIDs[i]
			})
		}
	}

	m.notifier.Notify(channel, "Get ready, trivia is starting!")
	return m.startSession(ctx, channel, cfg, categoryIDs, opts.Shuffle, false)
}

// startSession performs acquisition and swaps a brand-new session into the
// mapping. Restarts reuse it with a fresh random pool.
func (m *Manager) startSession(ctx context.Context, channel string, cfg Config, categoryIDs []int, shuffleCategories, restarted bool) error {
	history := make(map[int]struct{})
	var historyList []int
	if cfg.KeepHistory {
		list, err := m.store.LoadHistory(channel)
		if err != nil {
			m.log.Error().Err(err).Str("channel", channel).Msg("history load failed")
		}
		historyList = list
		for _, id := range list {
			history[id] = struct{}{}
		}
	}

	var pool []clues.Clue
	if len(categoryIDs) > 0 {
		pool = m.drawer.DrawCategories(ctx, categoryIDs, cfg.Num, shuffleCategories, history)
	} else {
		pool = m.drawer.DrawRandom(ctx, cfg.Num, history)
	}
	pool = m.drawer.Finalize(pool, cfg.Shuffle)

	if len(pool) == 0 {
		m.notifier.Notify(channel, "Sorry, no questions available.")
		return ErrNoClues
	}

	scores, err := m.store.LoadScores(channel)
	if err != nil {
		m.log.Error().Err(err).Str("channel", channel).Msg("score load failed")
		scores = map[string]int{}
	}

	s := NewSession(channel, cfg, pool, scores, historyList,
		m.tmpl, m.notifier, m.store, m.sched, m.newRNG(), restarted,
		func(restart bool) { m.sessionStopped(channel, cfg, restart) },
		m.log)

	m.mu.Lock()
	m.sessions[channel] = s
	m.mu.Unlock()

	s.Begin()
	return nil
}

// sessionStopped is the session's exit hook: drop the mapping entry and,
// for auto-restart, queue construction of its replacement.
func (m *Manager) sessionStopped(channel string, cfg Config, restart bool) {
	m.mu.Lock()
	delete(m.sessions, channel)
	if restart {
		// restarts always draw a fresh random pool in source order
		cfg.Shuffle = false
		m.restarts[channel] = cfg
	}
	m.mu.Unlock()

	if restart {
		delay := cfg.Delay
		if delay <= 0 {
			delay = time.Second
		}
		m.sched.Schedule(channel, TimerRestart, delay)
	}
}

func (m *Manager) restart(channel string) {
	m.mu.Lock()
	cfg, ok := m.restarts[channel]
	delete(m.restarts, channel)
	if ok {
		m.starting[channel] = true
	}
	m.mu.Unlock()
	if !ok {
		return
	}
	defer func() {
		m.mu.Lock()
		delete(m.starting, channel)
		m.mu.Unlock()
	}()
	if err := m.startSession(context.Background(), channel, cfg, nil, false, true); err != nil {
		m.log.Error().Err(err).Str("channel", channel).Msg("auto-restart failed")
	}
}

// Answer forwards a player's guess to the channel's session, if any.
func (m *Manager) Answer(channel, nick, guess string) {
	if s := m.lookup(channel); s != nil {
		s.Answer(nick, guess)
	}
}

// Hint forces the next hint.
func (m *Manager) Hint(channel string) {
	if s := m.lookup(channel); s != nil {
		s.ForceHint()
	}
}

// Question repeats the current question.
func (m *Manager) Question(channel string) {
	if s := m.lookup(channel); s != nil {
		s.RepeatQuestion()
	}
}

// Skip abandons the current question.
func (m *Manager) Skip(channel string) {
	if s := m.lookup(channel); s != nil {
		s.Skip()
	}
}

// Stop ends the channel's game.
func (m *Manager) Stop(channel string) error {
	m.mu.Lock()
	delete(m.restarts, channel)
	m.mu.Unlock()
	m.sched.Cancel(channel, TimerRestart)

	s := m.lookup(channel)
	if s == nil {
		return ErrNoSession
	}
	s.Stop()
	return nil
}

// Report flags the current clue as invalid upstream, then skips it.
func (m *Manager) Report(ctx context.Context, channel string) {
	s := m.lookup(channel)
	if s == nil {
		return
	}
	id, ok := s.CurrentClueID()
	if !ok {
		return
	}
	if err := m.reporter.ReportInvalid(ctx, id); err != nil {
		m.log.Error().Err(err).Int("clue", id).Msg("invalid report failed")
		m.notifier.Notify(channel, "Error. Question not reported.")
	} else {
		m.notifier.Notify(channel, "Question successfully reported.")
	}
	s.Timeout()
}

// Stats announces a player's total or the channel's top scorers, preferring
// the live session and falling back to persisted scores.
func (m *Manager) Stats(channel, player string, topN int) {
	var scores map[string]int
	if s := m.lookup(channel); s != nil {
		scores = s.CumulativeScores()
	} else {
		loaded, err := m.store.LoadScores(channel)
		if err != nil {
			m.log.Error().Err(err).Str("channel", channel).Msg("score load failed")
			return
		}
		scores = loaded
	}

	if player != "" {
		total, ok := lookupFold(scores, player)
		if !ok {
			m.notifier.Notify(channel, fmt.Sprintf("No scores found for %s in %s.", player, channel))
			return
		}
		m.notifier.Notify(channel, fmt.Sprintf("Total score for %s in %s: %d", player, channel, total))
		return
	}

	board := scoreboardFrom(scores)
	if topN <= 0 {
		topN = 5
	}
	top := board.top(topN)
	if len(top) == 0 {
		return
	}
	parts := make([]string, 0, len(top))
	for i, sc := range top {
		parts = append(parts, fmt.Sprintf("#%d (%s: %d)", i+1, sc.Name, sc.Points))
	}
	m.notifier.Notify(channel, fmt.Sprintf("Top %d players for %s:", len(top), channel))
	m.notifier.Notify(channel, strings.Join(parts, ", "))
}

func (m *Manager) lookup(channel string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[channel]
}

// configFor merges start-command overrides onto the configured defaults the
// same way every time a session (or its restart) is built.
func (m *Manager) configFor(opts StartOptions) Config {
	cfg := m.defaults
	if opts.NumSet && opts.Num > 0 {
		cfg.Num = opts.Num
	}
	if opts.HintsSet {
		cfg.Hints = opts.Hints
	}
	if opts.TimeoutSet {
		cfg.Timeout = time.Duration(opts.TimeoutSec) * time.Second
	}
	if opts.Shuffle {
		cfg.Shuffle = true
	}
	if opts.NoHints {
		cfg.ShowHints = false
		cfg.ShowBlank = false
	}
	if opts.RestartSet {
		cfg.Restart = opts.Restart
	}
	if cfg.Timeout == 0 || cfg.Hints == 0 {
		cfg.ShowHints = false
		cfg.ShowTime = false
	}
	return cfg
}

func (m *Manager) newRNG() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

func lookupFold(scores map[string]int, player string) (int, bool) {
	keys := make([]string, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.EqualFold(k, player) {
			return scores[k], true
		}
	}
	return 0, false
}
