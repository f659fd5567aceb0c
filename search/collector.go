package search

import "sort"

// collector accumulates entries for one search invocation. It owns the running
// result collection and the set of paths already displayed.
type collector struct {
	entries []FolderEntry
	seen    map[string]bool
}

func newCollector() *collector {
	return &collector{seen: make(map[string]bool)}
}

// add appends e unless its path is already present. History entries are always
// accepted, even when the path is already shown.
func (c *collector) add(e FolderEntry) bool {
	if c.seen[e.Path] && !e.FromHistory {
		return false
	}
	c.seen[e.Path] = true
	c.entries = append(c.entries, e)
	return true
}

// addParent appends a parent-directory entry without consulting the dedup set,
// so a root may be listed next to a history entry for the same path.
func (c *collector) addParent(e FolderEntry) {
	c.seen[e.Path] = true
	c.entries = append(c.entries, e)
}

// ranked returns a sorted, truncated copy of the collection.
func (c *collector) ranked(limit int) []FolderEntry {
	out := make([]FolderEntry, len(c.entries))
	copy(out, c.entries)
	Rank(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Rank orders entries in place: history first, then by descending score.
// Ties keep their relative order.
func Rank(entries []FolderEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]

		// 1. History?
		if a.FromHistory != b.FromHistory {
			return a.FromHistory
		}

		// 2. Score
		return a.Score > b.Score
	})
}
