// Package vntext bundles the Vietnamese-aware text primitives the catalog
// relies on: diacritic folding, slug normalization, search tokenization and
// locale collation with numeric ordering ("Bánh 10" sorts after "Bánh 2").
package vntext

import (
	"strings"
	"sync"
	"unicode"

	gosimpleslug "github.com/gosimple/slug"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases s and strips Vietnamese diacritics, including đ/Đ which do
// not decompose to a base letter plus combining mark.
func Fold(s string) string {
	s = strings.ToLower(s)
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}
	return strings.Map(func(r rune) rune {
		if r == 'đ' {
			return 'd'
		}
		return r
	}, s)
}

// HasDiacritics reports whether s carries any diacritical marks.
// A diacritic-free query must not be broadened by the folded search pass,
// so the check compares against the folded form case-insensitively.
func HasDiacritics(s string) bool {
	return strings.ToLower(s) != Fold(s)
}

// Slugify normalizes free text to a URL-safe slug: lowercased, diacritics
// stripped, non-alphanumeric runs collapsed to "-".
func Slugify(s string) string {
	return gosimpleslug.Make(s)
}

// Tokenize splits s into lowercased runs of Unicode letters and digits.
// Diacritics are preserved; callers fold separately when they need the
// diacritic-insensitive pass.
func Tokenize(s string) []string {
	var tokens []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

// NewCollator returns a Vietnamese collator with numeric ordering. Collators
// are not safe for concurrent use; callers sorting on request goroutines
// should take their own instance.
func NewCollator() *collate.Collator {
	return collate.New(language.Vietnamese, collate.Numeric, collate.IgnoreCase)
}

var (
	cmpMu sync.Mutex
	cmp   = NewCollator()
)

// Compare is a convenience comparison on the shared collator.
// Safe for concurrent use; hot sort paths should prefer NewCollator.
func Compare(a, b string) int {
	cmpMu.Lock()
	defer cmpMu.Unlock()
	return cmp.CompareString(a, b)
}
