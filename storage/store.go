// Package storage persists per-channel scores and clue history.
package storage

// Store is the durable per-channel state a game session loads at start and
// writes on stop. Loading a channel that was never played returns empty
// values, not an error.
type Store interface {
	LoadScores(channel string) (map[string]int, error)
	SaveScores(channel string, scores map[string]int) error
	LoadHistory(channel string) ([]int, error)
	SaveHistory(channel string, clueIDs []int) error
}
