package search

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	scoreExact    = 100
	scorePrefix   = 90
	scoreBoundary = 80
	scoreContains = 70
	scoreFuzzy    = 50
	scoreNoQuery  = 50

	historyBonus    = 20
	depthPenalty    = 5
	maxDepthPenalty = 25

	fuzzyThreshold = 0.5
)

// Match is the outcome of scoring one candidate against a query.
// A zero Score means the candidate did not match and must be excluded.
type Match struct {
	Score  int
	Reason string
}

// Score ranks name against query. Matching is case-insensitive; depth is the
// candidate's depth below the walked root and fromHistory grants a bonus.
func Score(name, query string, depth int, fromHistory bool) Match {
	query = strings.ToLower(strings.TrimSpace(query))
	name = strings.ToLower(name)

	if query == "" {
		if fromHistory {
			return Match{Score: scoreNoQuery + historyBonus, Reason: "no query + history"}
		}
		return Match{Score: scoreNoQuery, Reason: "no query"}
	}

	var m Match
	if words := strings.Fields(query); len(words) > 1 {
		m = scoreWords(name, words)
	} else {
		m = scoreWord(name, query)
	}
	if m.Score == 0 {
		return m
	}

	if fromHistory {
		m.Score += historyBonus
		m.Reason += " + history"
	}
	if depth > 0 {
		m.Score -= min(depth*depthPenalty, maxDepthPenalty)
		if m.Score < 1 {
			m.Score = 1
		}
	}
	return m
}

// ScorePath scores both the bare folder name and the home-relative full path
// and keeps the better of the two.
func ScorePath(name, fullPath, query string, depth int, fromHistory bool) Match {
	byName := Score(name, query, depth, fromHistory)
	byPath := Score(TildePath(fullPath), query, depth, fromHistory)
	if byPath.Score > byName.Score {
		byPath.Reason += " (path)"
		return byPath
	}
	return byName
}

// TildePath replaces a leading home directory with "~".
func TildePath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if path == home {
		return "~"
	}
	if strings.HasPrefix(path, home+string(filepath.Separator)) {
		return "~" + path[len(home):]
	}
	return path
}

func scoreWords(name string, words []string) Match {
	total := 0
	for _, w := range words {
		if !strings.Contains(name, w) && fuzzyRatio(name, w) == 0 {
			return Match{}
		}
		total += scoreWord(name, w).Score
	}
	return Match{Score: total / len(words), Reason: fmt.Sprintf("multi-word (%d)", len(words))}
}

// scoreWord applies the tier table to an already lowercased name and word.
func scoreWord(name, word string) Match {
	switch {
	case name == word:
		return Match{Score: scoreExact, Reason: "exact"}
	case strings.HasPrefix(name, word):
		return Match{Score: scorePrefix, Reason: "prefix"}
	case atWordBoundary(name, word):
		return Match{Score: scoreBoundary, Reason: "word boundary"}
	case strings.Contains(name, word):
		return Match{Score: scoreContains, Reason: "substring"}
	}
	if ratio := fuzzyRatio(name, word); ratio > fuzzyThreshold {
		return Match{Score: scoreFuzzy + int(ratio*20), Reason: fmt.Sprintf("fuzzy %.2f", ratio)}
	}
	return Match{}
}

func atWordBoundary(name, word string) bool {
	for _, sep := range []string{" ", "-", "_"} {
		if strings.Contains(name, sep+word) {
			return true
		}
	}
	return false
}

// fuzzyRatio greedily consumes pattern runes in order while scanning text once.
// It returns consumed/len(pattern) when the whole pattern was consumed and 0
// otherwise.
func fuzzyRatio(text, pattern string) float64 {
	if pattern == "" {
		return 0
	}
	p := []rune(pattern)
	j := 0
	for _, r := range text {
		if j < len(p) && r == p[j] {
			j++
		}
	}
	if j < len(p) {
		return 0
	}
	return float64(j) / float64(len(p))
}
