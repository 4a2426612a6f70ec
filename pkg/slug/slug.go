// Package slug derives stable machine keys from human-entered labels.
// Sub-test keys and extra-field keys are generated here once, at creation
// time, and are never re-derived afterwards.
package slug

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Case selects the output alphabet of Make.
type Case int

const (
	Upper Case = iota
	Lower
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Make converts a free-text label into a machine key: diacritics stripped,
// case-folded, every run of characters outside [A-Z0-9] (or the lowercase
// variant) collapsed to a single underscore, no leading or trailing
// underscores. An empty or all-symbol label yields "".
func Make(label string, c Case) string {
	s, _, err := transform.String(stripMarks, label)
	if err != nil {
		// Remove(Mn) cannot fail on valid UTF-8; fall back to the raw label.
		s = label
	}

	if c == Upper {
		s = strings.ToUpper(s)
	} else {
		s = strings.ToLower(s)
	}

	var b strings.Builder
	b.Grow(len(s))
	lastUnderscore := true // suppress a leading underscore
	for _, r := range s {
		ok := (r >= '0' && r <= '9') ||
			(c == Upper && r >= 'A' && r <= 'Z') ||
			(c == Lower && r >= 'a' && r <= 'z')
		if ok {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}

	return strings.TrimRight(b.String(), "_")
}

// Unique returns key, or key suffixed with _2, _3, ... until it does not
// collide with the taken set. Used to keep sub-test keys unique within a
// single test definition.
func Unique(key string, taken map[string]bool) string {
	if !taken[key] {
		return key
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d", key, i)
		if !taken[candidate] {
			return candidate
		}
	}
}
