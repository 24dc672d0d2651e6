package game

import (
	"math"
	"math/rand"
	"strconv"
	"sync"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"trivia/clues"
	"trivia/match"
	"trivia/storage"
)

// Notifier is the outbound presentation collaborator: one rendered line per
// call, addressed to a channel.
type Notifier interface {
	Notify(channel, message string)
}

// Config is the effective per-session configuration after start-command
// overrides are applied to the defaults.
type Config struct {
	// Num is the requested round length; the session's actual total may be
	// lower when the source runs dry.
	Num             int
	Hints           int
	Timeout         time.Duration
	Delay           time.Duration
	HintFraction    float64
	HintReduction   float64
	Flexibility     float64
	TimeReplies     int
	InactiveShutoff int
	ShowHints       bool
	ShowBlank       bool
	ShowTime        bool
	KeepHistory     bool
	Shuffle         bool
	Restart         bool
	ShowScores      bool
	TopFinishers    int
	BlankChar       rune
}

// isWordRune mirrors the character class blanked out of answers.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// Session runs one channel's game: it consumes the clue pool, drives the
// hint/timeout protocol for the current clue, evaluates guesses and keeps
// scores. All mutation is serialized by its lock; timer firings arrive
// through HandleTimer and check state before acting, so a stale timer that
// raced its cancellation is a no-op.
type Session struct {
	mu sync.Mutex

	channel   string
	cfg       Config
	tmpl      *Templates
	notifier  Notifier
	store     storage.Store
	sched     *Scheduler
	rng       *rand.Rand
	log       zerolog.Logger
	onStopped func(restart bool)

	// pool is consumed from the tail.
	pool []clues.Clue

	current     clues.Clue
	question    string
	points      int
	basePoints  int
	hintsGiven  int
	currentHint string
	reveal      []rune
	unrevealed  []int
	masked      int
	deadline    time.Time
	waitTime    time.Duration

	asked      int
	answered   int
	total      int
	unanswered int

	active bool
	// resolved is true whenever no outstanding question accepts guesses.
	resolved  bool
	restarted bool

	scores      *scoreboard
	roundScores *scoreboard
	history     []int
	historySet  map[int]struct{}
}

// NewSession wires a session over a finalized, non-empty pool. cumulative is
// the persisted all-time scoreboard for the channel; history the previously
// asked clue ids. Call Begin to ask the first question.
func NewSession(
	channel string,
	cfg Config,
	pool []clues.Clue,
	cumulative map[string]int,
	history []int,
	tmpl *Templates,
	notifier Notifier,
	store storage.Store,
	sched *Scheduler,
	rng *rand.Rand,
	restarted bool,
	onStopped func(restart bool),
	log zerolog.Logger,
) *Session {
	s := &Session{
		channel:     channel,
		cfg:         cfg,
		tmpl:        tmpl,
		notifier:    notifier,
		store:       store,
		sched:       sched,
		rng:         rng,
		log:         log.With().Str("channel", channel).Logger(),
		onStopped:   onStopped,
		pool:        pool,
		total:       len(pool),
		active:      true,
		resolved:    true,
		restarted:   restarted,
		scores:      scoreboardFrom(cumulative),
		roundScores: newScoreboard(),
		history:     history,
		historySet:  make(map[int]struct{}, len(history)),
	}
	for _, id := range history {
		s.historySet[id] = struct{}{}
	}
	if cfg.Timeout > 0 && cfg.ShowHints {
		s.waitTime = cfg.Timeout / time.Duration(cfg.Hints+1)
	} else if cfg.Timeout > 0 && cfg.ShowTime {
		s.waitTime = cfg.Timeout / time.Duration(cfg.TimeReplies+1)
	}
	return s
}

// Begin asks the first question.
func (s *Session) Begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.newQuestion()
}

// Active reports whether the session still runs a game.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// HandleTimer applies a fired timer to the state machine. Superseded
// firings fall through the state checks inside each transition.
func (s *Session) HandleTimer(kind TimerKind) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case TimerAdvance:
		s.present()
	case TimerTick:
		s.timedEvent()
	case TimerTimeout:
		s.end()
	}
}

// Answer evaluates a player's guess against the current clue.
func (s *Session) Answer(nick, guess string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active || s.resolved {
		return
	}
	if !match.Guess(guess, s.current.Answers, s.cfg.Flexibility) {
		return
	}

	s.scores.add(nick, s.points)
	s.roundScores.add(nick, s.points)
	s.unanswered = 0

	round, _ := s.roundScores.get(nick)
	total, _ := s.scores.get(nick)
	s.say(s.tmpl.Correct(CorrectData{
		Nick:   nick,
		Answer: s.current.Answer(),
		Points: s.points,
		Round:  round,
		Total:  total,
	}, s.restarted))

	s.resolved = true
	s.answered++
	s.newQuestion()
}

// ForceHint reveals the next hint on demand.
func (s *Session) ForceHint() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hint()
}

// RepeatQuestion re-emits the current question line.
func (s *Session) RepeatQuestion() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active || s.resolved {
		return
	}
	s.say(s.question)
}

// Skip resolves the current question without a winner. Unlike a timeout it
// does not count toward the inactivity streak.
func (s *Session) Skip() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.end() {
		s.unanswered--
	}
}

// Timeout resolves the current question as unanswered.
func (s *Session) Timeout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.end()
}

// CurrentClueID returns the id of the clue being asked, if any.
func (s *Session) CurrentClueID() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active || s.resolved {
		return 0, false
	}
	return s.current.ID, true
}

// CumulativeScores returns the channel's all-time totals, display-cased.
func (s *Session) CumulativeScores() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scores.snapshot()
}

// Stop ends the game on request, announcing the pending answer if one is
// outstanding. The session never auto-restarts after an explicit stop.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return
	}
	if s.resolved {
		s.say(s.tmpl.Stop(""))
	} else {
		s.say(s.tmpl.Stop(s.current.Answer()))
	}
	s.active = false
	s.resolved = true
	s.stop()
}

// newQuestion pops the next clue or ends the session when the round is
// complete, the pool is empty or nobody is playing.
func (s *Session) newQuestion() {
	if !s.active {
		return
	}
	s.sched.CancelAll(s.channel)

	switch {
	case s.answered == s.total || s.asked == s.total:
		s.stop()
		return
	case s.cfg.InactiveShutoff > 0 && s.unanswered > s.cfg.InactiveShutoff:
		s.say("Seems like no one's playing any more. Trivia stopped.")
		s.resolved = true
		s.active = false
		s.stop()
		return
	case len(s.pool) == 0:
		s.say("Oops! I ran out of questions!")
		s.stop()
		return
	}

	s.current = s.pool[len(s.pool)-1]
	s.pool = s.pool[:len(s.pool)-1]
	s.asked++

	s.hintsGiven = 0
	s.points = s.current.Points
	s.basePoints = s.current.Points
	s.question = s.tmpl.Question(QuestionData{
		Points:   s.points,
		Number:   s.asked,
		Total:    s.total,
		Category: s.current.Category,
		Clue:     s.current.Question,
	}, s.restarted)

	answer := []rune(s.current.Answer())
	s.reveal = make([]rune, len(answer))
	s.unrevealed = make([]int, len(answer))
	s.masked = 0
	for i, r := range answer {
		s.unrevealed[i] = i
		if isWordRune(r) {
			s.reveal[i] = s.cfg.BlankChar
			s.masked++
		} else {
			s.reveal[i] = r
		}
	}
	s.currentHint = string(s.reveal)

	if s.asked > 1 && s.cfg.Delay > 0 {
		s.sched.Schedule(s.channel, TimerAdvance, s.cfg.Delay)
		return
	}
	s.present()
}

// present publishes the current question and arms its timers.
func (s *Session) present() {
	if !s.active {
		return
	}
	s.resolved = false
	if s.cfg.KeepHistory {
		if _, ok := s.historySet[s.current.ID]; !ok {
			s.historySet[s.current.ID] = struct{}{}
			s.history = append(s.history, s.current.ID)
		}
	}
	s.say(s.question)

	if s.cfg.Timeout > 0 {
		s.deadline = time.Now().Add(s.cfg.Timeout)
		s.sched.Schedule(s.channel, TimerTimeout, s.cfg.Timeout)
		if s.cfg.ShowBlank {
			s.hint()
		} else if s.cfg.ShowHints || s.cfg.ShowTime {
			s.scheduleTick()
		}
		return
	}
	if s.cfg.ShowBlank {
		s.hint()
	}
}

// timedEvent is the periodic tick: a hint reveal, or a time announcement
// when hints are disabled.
func (s *Session) timedEvent() {
	if !s.active || s.cfg.Timeout == 0 || s.resolved {
		return
	}
	if s.cfg.ShowHints {
		s.hint()
		return
	}
	if s.cfg.ShowTime {
		s.say(s.tmpl.TimeLeft(int(math.Round(time.Until(s.deadline).Seconds()))))
		s.scheduleTick()
	}
}

// hint reveals the next slice of the blanked answer and applies the point
// penalty when the hint actually changed.
func (s *Session) hint() {
	if !s.active || s.resolved {
		return
	}
	s.sched.Cancel(s.channel, TimerTick)

	lastHint := s.currentHint
	if s.hintsGiven > 0 && s.hintsGiven <= s.cfg.Hints && s.cfg.Hints > 0 {
		answer := []rune(s.current.Answer())
		reveal := int(math.Round(float64(s.masked) * s.cfg.HintFraction))
		s.masked -= reveal
		revealed := 0
		for revealed < reveal && len(s.unrevealed) > 1 {
			i := s.rng.Intn(len(s.unrevealed))
			pos := s.unrevealed[i]
			s.unrevealed = append(s.unrevealed[:i], s.unrevealed[i+1:]...)
			if s.reveal[pos] == s.cfg.BlankChar {
				s.reveal[pos] = answer[pos]
				revealed++
			}
		}
		s.currentHint = string(s.reveal)
	}
	if s.hintsGiven > 0 && lastHint != s.currentHint {
		s.points -= roundToTen(float64(s.points) * s.cfg.HintReduction)
	}

	var worth *int
	if s.points < s.basePoints {
		worth = &s.points
	}
	data := HintData{
		Hint:     s.currentHint,
		Points:   worth,
		HintNum:  s.hintsGiven,
		NumHints: s.cfg.Hints,
	}
	if s.cfg.Timeout > 0 {
		seconds := int(math.Round(time.Until(s.deadline).Seconds()))
		width := len(strconv.Itoa(int(s.cfg.Timeout.Seconds())))
		data.Time = zeroPad(seconds, width)
		if s.cfg.ShowHints || s.cfg.ShowTime {
			s.scheduleTick()
		}
	}
	s.say(s.tmpl.Hint(data))
	s.hintsGiven++
}

// end resolves the current question without a winner and reports whether it
// acted.
func (s *Session) end() bool {
	if !s.active || s.resolved {
		return false
	}
	s.resolved = true
	s.say(s.tmpl.Skip(s.current.Answer()))
	s.unanswered++
	s.answered++
	s.newQuestion()
	return true
}

// stop persists state, announces round finishers and either hands control
// back to the manager for an auto-restart or goes inactive for good.
func (s *Session) stop() {
	if err := s.store.SaveScores(s.channel, s.scores.snapshot()); err != nil {
		s.log.Error().Err(err).Msg("score save failed")
	}
	if s.cfg.KeepHistory {
		if err := s.store.SaveHistory(s.channel, s.history); err != nil {
			s.log.Error().Err(err).Msg("history save failed")
		}
	}
	s.sched.CancelAll(s.channel)

	if s.cfg.ShowScores && s.roundScores.len() > 0 {
		line := "Top finishers:"
		for _, sc := range s.roundScores.top(s.cfg.TopFinishers) {
			line += " (" + sc.Name + ": " + strconv.Itoa(sc.Points) + ")"
		}
		s.say(line)
	}

	if s.cfg.Restart && s.active {
		s.active = false
		s.onStopped(true)
		return
	}
	s.resolved = true
	s.active = false
	s.onStopped(false)
}

// scheduleTick arms the next periodic tick, but only if it would land
// strictly before the answer deadline.
func (s *Session) scheduleTick() {
	if s.waitTime <= 0 {
		return
	}
	if time.Now().Add(s.waitTime).Before(s.deadline) {
		s.sched.Schedule(s.channel, TimerTick, s.waitTime)
	}
}

func (s *Session) say(message string) {
	if message == "" {
		return
	}
	s.notifier.Notify(s.channel, message)
}

// roundToTen rounds to the nearest multiple of ten.
func roundToTen(x float64) int {
	return int(math.Round(x/10)) * 10
}

func zeroPad(n, width int) string {
	s := strconv.Itoa(n)
	for len(s) < width {
		s = "0" + s
	}
	return s
}
