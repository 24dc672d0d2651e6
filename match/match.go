// Package match decides whether a free-text guess hits one of a clue's
// accepted answers.
package match

import (
	"strings"

	"github.com/adrg/strutil/metrics"
	"github.com/rs/zerolog/log"

	"trivia/text"
)

var (
	jaroWinkler = metrics.NewJaroWinkler()
	jaccard     = &metrics.Jaccard{CaseSensitive: true, NgramSize: 1}
)

// Guess reports whether guess matches any of the accepted answers. Variants
// are tried in order; the first hit wins.
//
// Per variant: exact case-insensitive match after whitespace normalization,
// then equality of cleaned forms, then — only when 0.5 < flexibility < 1 —
// Jaro-Winkler similarity against flexibility, with a Jaccard fallback for
// multi-part answers (primary answer containing a comma or ampersand).
func Guess(guess string, answers []string, flexibility float64) bool {
	if len(answers) == 0 {
		return false
	}
	g := squeeze(guess)
	multipart := strings.ContainsAny(answers[0], ",&")

	for _, answer := range answers {
		a := squeeze(answer)
		if g == a {
			return true
		}
		cg, ca := text.Clean(g), text.Clean(a)
		if cg == ca {
			return true
		}
		if flexibility <= 0.5 || flexibility >= 1 {
			continue
		}
		dist := jaroWinkler.Compare(cg, ca)
		log.Debug().
			Str("guess", cg).
			Str("answer", ca).
			Float64("distance", dist).
			Float64("flexibility", flexibility).
			Msg("fuzzy answer comparison")
		if dist >= flexibility {
			return true
		}
		if multipart && jaccard.Compare(cg, ca) >= flexibility {
			return true
		}
	}
	return false
}

func squeeze(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
