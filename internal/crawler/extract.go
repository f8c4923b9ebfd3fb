package crawler

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/mrlokans/imgmanager/internal/template"
)

// FindMatches returns every non-overlapping hit of re in body, in document
// order.
func FindMatches(re *regexp.Regexp, body string) []Match {
	hits := re.FindAllStringSubmatch(body, -1)
	matches := make([]Match, 0, len(hits))
	for _, hit := range hits {
		if len(hit) == 1 {
			matches = append(matches, Match{hit[0]})
			continue
		}
		m := make(Match, len(hit)-1)
		copy(m, hit[1:])
		matches = append(matches, m)
	}
	return matches
}

// runEntry applies entry to body and runs its steps for each selected match,
// one match at a time. It reports whether any match was selected, whatever
// the steps did.
func (c *Crawler) runEntry(ctx context.Context, entry *template.Entry, body string) (bool, error) {
	matches := FindMatches(entry.Regex, body)
	selected := entry.Enumeration.Select(len(matches))

	slog.Debug("entry applied",
		"regex", entry.Regex.String(),
		"matches", len(matches),
		"selected", len(selected),
		"enumerate", entry.Enumeration.String())

	if len(selected) == 0 {
		return false, nil
	}
	c.record(func(s *Stats) { s.Matches += len(selected) })

	for _, i := range selected {
		if err := c.runSteps(ctx, entry.Steps, matches[i]); err != nil {
			return true, err
		}
	}
	return true, nil
}
