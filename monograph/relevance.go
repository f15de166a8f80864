package monograph

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/giygas/vetref/normalize"
)

// IsRelevantMatch is the stricter heading matcher: the normalized heading and query
// contain one another, or at least half of the query words longer than two letters
// have a heading word that contains them or is contained in them.
func IsRelevantMatch(query, heading string) bool {
	q, h := normalize.Key(query), normalize.Key(heading)
	if q == "" || h == "" {
		return false
	}
	if strings.Contains(h, q) || strings.Contains(q, h) {
		return true
	}

	var queryWords []string
	for _, w := range words(query) {
		if utf8.RuneCountInString(w) > 2 {
			queryWords = append(queryWords, w)
		}
	}
	if len(queryWords) == 0 {
		return false
	}
	headingWords := words(heading)

	matched := 0
	for _, qw := range queryWords {
		for _, hw := range headingWords {
			if strings.Contains(hw, qw) || strings.Contains(qw, hw) {
				matched++
				break
			}
		}
	}
	return matched*2 >= len(queryWords)
}

// words splits text on anything that is not a letter or digit and normalizes each part
func words(text string) []string {
	var out []string
	for _, f := range strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if w := normalize.Key(f); w != "" {
			out = append(out, w)
		}
	}
	return out
}
