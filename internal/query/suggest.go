package query

import (
	"sort"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
)

// maxSuggestions caps the names offered for an unknown operation.
const maxSuggestions = 3

var folder = cases.Fold()

// suggest returns registered names close to name, nearest first. Names
// are compared case-folded, so "Filter_By_City" finds "filter_by_city".
func suggest(name string, candidates []string) []string {
	target := folder.String(name)
	targetLen := utf8.RuneCountInString(target)

	type scored struct {
		name string
		dist int
		pos  int
	}
	var hits []scored
	for i, c := range candidates {
		folded := folder.String(c)
		d := levenshtein.ComputeDistance(target, folded)
		if d <= threshold(targetLen, utf8.RuneCountInString(folded)) {
			hits = append(hits, scored{name: c, dist: d, pos: i})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].dist != hits[j].dist {
			return hits[i].dist < hits[j].dist
		}
		return hits[i].pos < hits[j].pos
	})

	if len(hits) > maxSuggestions {
		hits = hits[:maxSuggestions]
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.name
	}
	return out
}

// threshold is the largest edit distance still worth suggesting: a quarter
// of the longer name, and at least 1.
func threshold(a, b int) int {
	return max(1, max(a, b)/4)
}
