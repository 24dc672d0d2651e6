package game

import (
	"context"
	"errors"
	"sync"

	"trivia/clues"
)

// --- Notifier ---

type fakeNotifier struct {
	mu       sync.Mutex
	messages map[string][]string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{messages: make(map[string][]string)}
}

func (n *fakeNotifier) Notify(channel, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages[channel] = append(n.messages[channel], message)
}

func (n *fakeNotifier) sent(channel string) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages[channel]...)
}

// --- storage.Store ---

type fakeStore struct {
	mu       sync.Mutex
	scores   map[string]map[string]int
	history  map[string][]int
	saveErr  error
	saveHits int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		scores:  make(map[string]map[string]int),
		history: make(map[string][]int),
	}
}

func (f *fakeStore) LoadScores(channel string) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int)
	for k, v := range f.scores[channel] {
		out[k] = v
	}
	return out, nil
}

func (f *fakeStore) SaveScores(channel string, scores map[string]int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveHits++
	if f.saveErr != nil {
		return f.saveErr
	}
	copied := make(map[string]int, len(scores))
	for k, v := range scores {
		copied[k] = v
	}
	f.scores[channel] = copied
	return nil
}

func (f *fakeStore) LoadHistory(channel string) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.history[channel]...), nil
}

func (f *fakeStore) SaveHistory(channel string, clueIDs []int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history[channel] = append([]int(nil), clueIDs...)
	return nil
}

func (f *fakeStore) savedScores(channel string) map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scores[channel]
}

func (f *fakeStore) savedHistory(channel string) []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.history[channel]...)
}

// --- Drawer ---

type fakeDrawer struct {
	mu    sync.Mutex
	pools [][]clues.Clue
	draws int
}

func (d *fakeDrawer) next() []clues.Clue {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.draws++
	if len(d.pools) == 0 {
		return nil
	}
	pool := d.pools[0]
	if len(d.pools) > 1 {
		d.pools = d.pools[1:]
	}
	return append([]clues.Clue(nil), pool...)
}

func (d *fakeDrawer) drawCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.draws
}

func (d *fakeDrawer) DrawRandom(ctx context.Context, num int, history map[int]struct{}) []clues.Clue {
	return d.next()
}

func (d *fakeDrawer) DrawCategories(ctx context.Context, categoryIDs []int, num int, shuffle bool, history map[int]struct{}) []clues.Clue {
	return d.next()
}

func (d *fakeDrawer) RandomCategoryIDs(ctx context.Context) ([]int, error) {
	return nil, errors.New("not implemented")
}

func (d *fakeDrawer) Finalize(pool []clues.Clue, shuffle bool) []clues.Clue {
	return pool
}

// --- InvalidReporter ---

type fakeReporter struct {
	mu       sync.Mutex
	reported []int
	err      error
}

func (r *fakeReporter) ReportInvalid(ctx context.Context, clueID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.reported = append(r.reported, clueID)
	return nil
}

func (r *fakeReporter) reportedIDs() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.reported...)
}
