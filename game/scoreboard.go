package game

import (
	"sort"
	"strings"
)

// Score is one player's total on a scoreboard.
type Score struct {
	Name   string
	Points int
}

// scoreboard maps players to points with case-insensitive names. The display
// casing of a name is whatever was seen first; ties in Top are broken by
// insertion order.
type scoreboard struct {
	points map[string]int
	names  map[string]string
	order  []string
}

func newScoreboard() *scoreboard {
	return &scoreboard{
		points: make(map[string]int),
		names:  make(map[string]string),
	}
}

func scoreboardFrom(scores map[string]int) *scoreboard {
	b := newScoreboard()
	for name, pts := range scores {
		b.add(name, pts)
	}
	return b
}

func (b *scoreboard) add(name string, pts int) {
	key := strings.ToLower(name)
	if _, ok := b.points[key]; !ok {
		b.names[key] = name
		b.order = append(b.order, key)
	}
	b.points[key] += pts
}

func (b *scoreboard) get(name string) (int, bool) {
	pts, ok := b.points[strings.ToLower(name)]
	return pts, ok
}

func (b *scoreboard) len() int {
	return len(b.points)
}

// snapshot returns display-name keyed totals, safe to hand to storage.
func (b *scoreboard) snapshot() map[string]int {
	out := make(map[string]int, len(b.points))
	for key, pts := range b.points {
		out[b.names[key]] = pts
	}
	return out
}

// top returns up to n entries by points descending.
func (b *scoreboard) top(n int) []Score {
	ranked := make([]Score, 0, len(b.order))
	for _, key := range b.order {
		ranked = append(ranked, Score{Name: b.names[key], Points: b.points[key]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Points > ranked[j].Points
	})
	if n < 0 {
		n = 0
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}
