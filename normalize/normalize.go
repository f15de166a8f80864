// Package normalize turns free-text drug names into comparison keys shared by
// search matching and cross-source reconciliation.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var (
	registrationMarks = strings.NewReplacer("®", "", "™", "", "©", "")
	whitespace        = regexp.MustCompile(`\s+`)

	// One supplier transliterates "кис" (as in "кислота") with Latin letters
	kisSequence = regexp.MustCompile(`[kк][\s-]?[iи][\s-]?[sс]`)

	notKeyRune = regexp.MustCompile(`[^a-z0-9а-яё]+`)
)

// Key returns the normalized comparison key for text. It is deterministic and
// idempotent: Key(Key(s)) == Key(s).
func Key(text string) string {
	if text == "" {
		return ""
	}

	s := norm.NFC.String(text)
	s = cases.Lower(language.Russian).String(s) // a Caser is stateful, not shared
	s = registrationMarks.Replace(s)
	s = strings.ReplaceAll(s, "&", "и")
	s = whitespace.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "-", "")
	s = kisSequence.ReplaceAllString(s, "кис")
	s = notKeyRune.ReplaceAllString(s, "")

	// stripping may join letters that were apart, e.g. "k.is"
	return kisSequence.ReplaceAllString(s, "кис")
}

// Contains reports whether the normalized haystack contains the normalized needle.
// Both arguments are raw text.
func Contains(haystack, needle string) bool {
	return strings.Contains(Key(haystack), Key(needle))
}
