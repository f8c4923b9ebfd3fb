package template

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type EnumerationKind int

const (
	EnumerateIndex EnumerationKind = iota
	EnumerateRange
	EnumerateAll
)

// Enumeration selects which regex matches of a page get an action run.
// The zero value selects the first match only.
type Enumeration struct {
	Kind EnumerationKind
	From int
	To   int // inclusive, EnumerateRange only
}

var (
	indexPattern = regexp.MustCompile(`^\d+$`)
	rangePattern = regexp.MustCompile(`^(\d+)-(\d+)$`)
)

// ParseEnumeration parses "N", "A-B" or "all".
func ParseEnumeration(s string) (Enumeration, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.EqualFold(s, "all"):
		return Enumeration{Kind: EnumerateAll}, nil
	case indexPattern.MatchString(s):
		n, err := strconv.Atoi(s)
		if err != nil {
			return Enumeration{}, err
		}
		return Enumeration{Kind: EnumerateIndex, From: n}, nil
	case rangePattern.MatchString(s):
		groups := rangePattern.FindStringSubmatch(s)
		from, err := strconv.Atoi(groups[1])
		if err != nil {
			return Enumeration{}, err
		}
		to, err := strconv.Atoi(groups[2])
		if err != nil {
			return Enumeration{}, err
		}
		if from > to {
			return Enumeration{}, fmt.Errorf("range start %d is after end %d", from, to)
		}
		return Enumeration{Kind: EnumerateRange, From: from, To: to}, nil
	}
	return Enumeration{}, fmt.Errorf("expected an index, a range like 0-4 or \"all\", got %q", s)
}

// Select resolves the policy against the number of matches found on a page
// and returns the selected match indexes in document order.
func (e Enumeration) Select(count int) []int {
	var from, to int
	switch e.Kind {
	case EnumerateAll:
		from, to = 0, count-1
	case EnumerateRange:
		from, to = e.From, e.To
		if to > count-1 {
			to = count - 1
		}
	default:
		from, to = e.From, e.From
		if from >= count {
			return nil
		}
	}

	var selected []int
	for i := from; i <= to; i++ {
		selected = append(selected, i)
	}
	return selected
}

func (e Enumeration) String() string {
	switch e.Kind {
	case EnumerateAll:
		return "all"
	case EnumerateRange:
		return fmt.Sprintf("%d-%d", e.From, e.To)
	default:
		return strconv.Itoa(e.From)
	}
}
