// Package text cleans raw clue and answer strings and produces the
// canonical comparable form used for answer matching.
package text

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// sentence end glued to the next sentence, e.g. "end.Next" -> "end. Next".
	// The third group keeps single-letter abbreviation chains like "U.S." intact.
	sentenceGlue = regexp.MustCompile(`([.!?])([A-Z(])($|[^.'])`)
	clauseGlue   = regexp.MustCompile(`([,;:)])([a-zA-Z(])`)

	nonAlnumSpace = regexp.MustCompile(`[^a-zA-Z0-9 ]+`)
	nonAlnum      = regexp.MustCompile(`[^a-zA-Z0-9]+`)
	determiner    = regexp.MustCompile(`(?i)^(a|an|the|or) `)
)

// Normalize strips markup and encoding damage from a raw clue line and fixes
// punctuation that the source glues to the following word.
func Normalize(s string) string {
	s = stripTags(s)
	s = repairMojibake(s)
	s = strings.ReplaceAll(s, `\'`, "'")
	s = strings.ReplaceAll(s, `\"`, `"`)
	s = sentenceGlue.ReplaceAllString(s, "$1 $2$3")
	s = clauseGlue.ReplaceAllString(s, "$1 $2")
	return strings.Join(strings.Fields(s), " ")
}

// Clean reduces an answer or guess to its comparable key: ASCII folded,
// punctuation stripped, one leading determiner removed, spaces squeezed out.
// Strings of one or two characters only lose punctuation, so short answers
// like "A1" or "pi" survive intact.
func Clean(s string) string {
	s = asciiFold(s)
	if utf8.RuneCountInString(s) > 2 {
		s = nonAlnumSpace.ReplaceAllString(s, "")
		s = determiner.ReplaceAllString(s, "")
		return strings.ReplaceAll(s, " ", "")
	}
	return nonAlnum.ReplaceAllString(s, "")
}

// stripTags drops every HTML element and unescapes entities, keeping only
// text content.
func stripTags(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	var b strings.Builder
	tz := html.NewTokenizer(strings.NewReader(s))
	for {
		switch tz.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(tz.Text())
		}
	}
}

// foldTable maps characters NFD decomposition can't reduce to ASCII.
var foldTable = strings.NewReplacer(
	"æ", "ae", "Æ", "AE",
	"œ", "oe", "Œ", "OE",
	"ø", "o", "Ø", "O",
	"ß", "ss",
	"đ", "d", "Đ", "D",
	"ł", "l", "Ł", "L",
	"þ", "th", "Þ", "Th",
	"ð", "d", "Ð", "D",
	"’", "'", "‘", "'",
	"“", `"`, "”", `"`,
	"–", "-", "—", "-",
	"…", "...",
)

// asciiFold transliterates to a plain-ASCII-like form by decomposing and
// dropping combining marks, then mapping the leftover special characters.
func asciiFold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return foldTable.Replace(out)
}

// repairMojibake undoes the classic UTF-8-read-as-Windows-1252 double
// encoding ("â€™" for "'", "Ã©" for "é"). Re-encode the string as cp1252
// bytes and keep the result only if it decodes as valid multi-byte UTF-8.
func repairMojibake(s string) string {
	if !strings.ContainsRune(s, 'Ã') && !strings.Contains(s, "â€") && !strings.ContainsRune(s, 'Â') {
		return s
	}
	buf, err := charmap.Windows1252.NewEncoder().Bytes([]byte(s))
	if err != nil || !utf8.Valid(buf) {
		return s
	}
	return string(buf)
}
