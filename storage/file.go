package storage

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FileStore keeps scores and history as plain-text files under a data
// directory: scores_<channel>.txt with "<name> <score>" lines and
// history_<channel>.txt with one clue id per line.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (fs *FileStore) LoadScores(channel string) (map[string]int, error) {
	scores := make(map[string]int)
	lines, err := fs.readLines(fs.scorePath(channel))
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		name, raw, ok := strings.Cut(line, " ")
		if !ok {
			continue
		}
		score, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			continue
		}
		scores[name] = score
	}
	return scores, nil
}

func (fs *FileStore) SaveScores(channel string, scores map[string]int) error {
	var b strings.Builder
	for name, score := range scores {
		fmt.Fprintf(&b, "%s %d\n", name, score)
	}
	return os.WriteFile(fs.scorePath(channel), []byte(b.String()), 0o644)
}

func (fs *FileStore) LoadHistory(channel string) ([]int, error) {
	lines, err := fs.readLines(fs.historyPath(channel))
	if err != nil {
		return nil, err
	}
	history := make([]int, 0, len(lines))
	for _, line := range lines {
		id, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			continue
		}
		history = append(history, id)
	}
	return history, nil
}

func (fs *FileStore) SaveHistory(channel string, clueIDs []int) error {
	var b strings.Builder
	for _, id := range clueIDs {
		fmt.Fprintf(&b, "%d\n", id)
	}
	return os.WriteFile(fs.historyPath(channel), []byte(b.String()), 0o644)
}

// readLines reads a file, creating it empty first if missing.
func (fs *FileStore) readLines(path string) ([]string, error) {
	f, err := os.OpenFile(path, os.O_RDONLY|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

func (fs *FileStore) scorePath(channel string) string {
	return filepath.Join(fs.dir, "scores_"+sanitize(channel)+".txt")
}

func (fs *FileStore) historyPath(channel string) string {
	return filepath.Join(fs.dir, "history_"+sanitize(channel)+".txt")
}

// sanitize keeps channel names from escaping the data directory.
func sanitize(channel string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '_'
		}
		return r
	}, channel)
}
