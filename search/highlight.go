package search

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Highlight returns the byte offsets in name that match query, for rendering.
// Each whitespace-separated word is matched independently.
func Highlight(name, query string) []int {
	words := strings.Fields(query)
	if len(words) == 0 {
		return nil
	}

	set := make(map[int]bool)
	for _, w := range words {
		// fuzzy.Find sorts by its own score; a single candidate keeps it simple.
		matches := fuzzy.Find(w, []string{name})
		if len(matches) == 0 {
			continue
		}
		for _, idx := range matches[0].MatchedIndexes {
			set[idx] = true
		}
	}

	indexes := make([]int, 0, len(set))
	for idx := range set {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)
	return indexes
}
