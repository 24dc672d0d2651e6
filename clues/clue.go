// Package clues turns raw source records into game-ready clues and draws
// the per-session clue pool.
package clues

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"trivia/jservice"
	"trivia/text"
)

// Clue is one question/answer unit. Immutable once drawn.
type Clue struct {
	ID       int
	Airdate  string
	Category string
	Points   int
	Question string

	// Answers holds the accepted answer variants in matching order: the
	// primary answer, then — when the primary carries a parenthetical — the
	// parenthetical-removed and parenthetical-only forms.
	Answers []string
}

// Answer returns the primary (displayable) answer.
func (c Clue) Answer() string {
	return c.Answers[0]
}

var (
	nOfMarker     = regexp.MustCompile(`\(\d of\)`)
	parenthetical = regexp.MustCompile(`(.*)\((.*)\)(.*)`)
)

// New builds a Clue from a source record, normalizing its text and splitting
// the answer into variants. Records without a usable value get defaultPoints.
func New(rec jservice.Record, defaultPoints int) Clue {
	points := int(rec.Value)
	if points == 0 {
		points = defaultPoints
	}
	airdate, _, _ := strings.Cut(rec.Airdate, "T")

	answer := text.Normalize(strings.TrimSpace(rec.Answer))
	answer = strings.TrimSpace(nOfMarker.ReplaceAllString(answer, ""))

	return Clue{
		ID:       rec.ID,
		Airdate:  airdate,
		// Caser values are not safe for concurrent use, so build one per clue.
		Category: cases.Title(language.English).String(rec.Category.Title),
		Points:   points,
		Question: text.Normalize(strings.TrimSpace(rec.Question)),
		Answers:  variants(answer),
	}
}

func variants(answer string) []string {
	out := []string{answer}
	if !strings.Contains(answer, "(") {
		return out
	}
	m := parenthetical.FindStringSubmatch(answer)
	if m == nil {
		return out
	}
	out = append(out, strings.TrimSpace(m[1]+m[3]), strings.TrimSpace(m[2]))
	return out
}

// usable reports whether a record may enter a pool: complete fields, not
// flagged invalid upstream, not drawn twice, not in the channel history, and
// not the source's "=" placeholder answer.
func usable(rec jservice.Record, seen, history map[int]struct{}) bool {
	if strings.TrimSpace(rec.Question) == "" ||
		strings.TrimSpace(rec.Answer) == "" ||
		strings.TrimSpace(rec.Airdate) == "" ||
		strings.TrimSpace(rec.Category.Title) == "" {
		return false
	}
	if rec.InvalidCount != 0 {
		return false
	}
	if _, dup := seen[rec.ID]; dup {
		return false
	}
	if _, played := history[rec.ID]; played {
		return false
	}
	return strings.TrimSpace(rec.Answer) != "="
}
