package crawler

import (
	"regexp"
	"strconv"
)

// Match holds the capture groups of one regex hit. A regex without groups
// yields the whole match as its only element.
type Match []string

var placeholderPattern = regexp.MustCompile(`\{(\d+)\}`)

// Substitute replaces every {N} placeholder in tmpl whose index is in range
// for match. Out of range placeholders are left untouched.
func Substitute(tmpl string, match Match) string {
	if len(match) == 0 {
		return tmpl
	}
	return placeholderPattern.ReplaceAllStringFunc(tmpl, func(p string) string {
		n, err := strconv.Atoi(p[1 : len(p)-1])
		if err != nil || n >= len(match) {
			return p
		}
		return match[n]
	})
}
