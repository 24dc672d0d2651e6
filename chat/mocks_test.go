package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"trivia/game"
)

// recordingGame records every engine call as a flat line so tests can wait
// for calls arriving from the read pump goroutine.
type recordingGame struct {
	mu      sync.Mutex
	calls   []string
	stopErr error
}

func (g *recordingGame) record(format string, args ...any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, fmt.Sprintf(format, args...))
}

func (g *recordingGame) has(call string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, c := range g.calls {
		if c == call {
			return true
		}
	}
	return false
}

func (g *recordingGame) Start(ctx context.Context, channel string, opts game.StartOptions) error {
	g.record("start %s num=%d categories=%s", channel, opts.Num, strings.Join(opts.Categories, "|"))
	return nil
}

func (g *recordingGame) Stop(channel string) error {
	g.record("stop %s", channel)
	return g.stopErr
}

func (g *recordingGame) Answer(channel, nick, guess string) {
	g.record("answer %s %s %s", channel, nick, guess)
}

func (g *recordingGame) Hint(channel string)     { g.record("hint %s", channel) }
func (g *recordingGame) Question(channel string) { g.record("question %s", channel) }
func (g *recordingGame) Skip(channel string)     { g.record("skip %s", channel) }

func (g *recordingGame) Report(ctx context.Context, channel string) {
	g.record("report %s", channel)
}

func (g *recordingGame) Stats(channel, player string, topN int) {
	g.record("stats %s player=%s top=%d", channel, player, topN)
}

// fakeScoreStore backs the stats endpoint.
type fakeScoreStore struct {
	scores map[string]map[string]int
	err    error
}

func (f *fakeScoreStore) LoadScores(channel string) (map[string]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.scores[channel], nil
}

func (f *fakeScoreStore) SaveScores(channel string, scores map[string]int) error { return nil }
func (f *fakeScoreStore) LoadHistory(channel string) ([]int, error)              { return nil, nil }
func (f *fakeScoreStore) SaveHistory(channel string, clueIDs []int) error        { return nil }
