package search

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestScoreTiers(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		query     string
		depth     int
		history   bool
		want      int
		reason    string
	}{
		{name: "exact", candidate: "proj", query: "proj", want: 100, reason: "exact"},
		{name: "exact ignores case", candidate: "Proj", query: "pROJ", want: 100, reason: "exact"},
		{name: "prefix", candidate: "project", query: "proj", want: 90, reason: "prefix"},
		{name: "word boundary after dash", candidate: "My-Project", query: "proj", want: 80, reason: "word boundary"},
		{name: "word boundary after underscore", candidate: "my_project", query: "proj", want: 80, reason: "word boundary"},
		{name: "word boundary after space", candidate: "my project", query: "proj", want: 80, reason: "word boundary"},
		{name: "substring", candidate: "xproject", query: "proj", want: 70, reason: "substring"},
		{name: "fuzzy", candidate: "p-r-o-j", query: "proj", want: 70, reason: "fuzzy 1.00"},
		{name: "no match", candidate: "alpha", query: "proj", want: 0},
		{name: "out of order letters", candidate: "jorp", query: "proj", want: 0},
		{name: "empty query", candidate: "anything", query: "", want: 50, reason: "no query"},
		{name: "blank query", candidate: "anything", query: "   ", want: 50, reason: "no query"},
		{name: "empty query history", candidate: "anything", query: "", history: true, want: 70, reason: "no query + history"},
		{name: "history bonus", candidate: "proj", query: "proj", history: true, want: 120, reason: "exact + history"},
		{name: "depth penalty", candidate: "proj", query: "proj", depth: 2, want: 90, reason: "exact"},
		{name: "depth penalty capped", candidate: "proj", query: "proj", depth: 9, want: 75, reason: "exact"},
		{name: "history and depth", candidate: "project", query: "proj", depth: 1, history: true, want: 105, reason: "prefix + history"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.candidate, tt.query, tt.depth, tt.history)
			if got.Score != tt.want {
				t.Errorf("Score(%q, %q) = %d (%s), want %d", tt.candidate, tt.query, got.Score, got.Reason, tt.want)
			}
			if tt.reason != "" && got.Reason != tt.reason {
				t.Errorf("Score(%q, %q) reason = %q, want %q", tt.candidate, tt.query, got.Reason, tt.reason)
			}
		})
	}
}

func TestScoreMultiWord(t *testing.T) {
	tests := []struct {
		candidate string
		query     string
		want      int
	}{
		{candidate: "foo-bar", query: "foo bar", want: 85}, // prefix 90, boundary 80
		{candidate: "foo-bar", query: "bar foo", want: 85},
		{candidate: "foo-bar", query: "foo baz", want: 0},
		{candidate: "foobar", query: "foo  bar", want: 80},   // prefix 90, substring 70
		{candidate: "f-o-o-bar", query: "foo bar", want: 75}, // fuzzy 70, boundary 80
	}
	for _, tt := range tests {
		t.Run(tt.query+"/"+tt.candidate, func(t *testing.T) {
			got := Score(tt.candidate, tt.query, 0, false)
			if got.Score != tt.want {
				t.Errorf("Score(%q, %q) = %d (%s), want %d", tt.candidate, tt.query, got.Score, got.Reason, tt.want)
			}
			if tt.want > 0 && got.Reason != "multi-word (2)" {
				t.Errorf("reason = %q, want multi-word (2)", got.Reason)
			}
		})
	}
}

func TestScoreMultiWordRequiresEveryWord(t *testing.T) {
	// Each word must satisfy the single-word rule on its own.
	candidates := []string{"alpha", "beta", "alpha-beta", "gamma"}
	for _, c := range candidates {
		both := Score(c, "alpha beta", 0, false).Score > 0
		alone := Score(c, "alpha", 0, false).Score > 0 && Score(c, "beta", 0, false).Score > 0
		if both != alone {
			t.Errorf("%q: multi-word match = %v, individual matches = %v", c, both, alone)
		}
	}
}

func TestScoreExactOutranksOtherTiers(t *testing.T) {
	exact := Score("proj", "proj", 0, false).Score
	for _, c := range []string{"project", "my-proj", "xproj", "p_r_o_j"} {
		if got := Score(c, "proj", 0, false).Score; got >= exact {
			t.Errorf("%q scored %d, not below exact %d", c, got, exact)
		}
	}
}

func TestScoreDepthPenaltyIsMonotonic(t *testing.T) {
	for _, c := range []string{"proj", "project", "my-proj", "xproj", "p_r_o_j"} {
		for _, history := range []bool{false, true} {
			prev := Score(c, "proj", 0, history).Score
			for d := 1; d <= 10; d++ {
				cur := Score(c, "proj", d, history).Score
				if cur > prev {
					t.Fatalf("%q depth %d scored %d, above depth %d score %d", c, d, cur, d-1, prev)
				}
				if cur < 1 {
					t.Fatalf("%q depth %d scored %d, matched entries must score at least 1", c, d, cur)
				}
				prev = cur
			}
		}
	}
}

func TestScorePathPrefersBetterMatch(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		t.Skip("no home directory")
	}
	full := filepath.Join(home, "Projects", "alpha")

	byPath := ScorePath("alpha", full, "projects", 0, true)
	if byPath.Score != 90 {
		t.Errorf("path score = %d (%s), want 90", byPath.Score, byPath.Reason)
	}
	if !strings.HasSuffix(byPath.Reason, "(path)") {
		t.Errorf("reason %q should be tagged as a path match", byPath.Reason)
	}

	byName := ScorePath("alpha", full, "alpha", 0, true)
	if byName.Score != 120 || strings.Contains(byName.Reason, "(path)") {
		t.Errorf("name score = %d (%s), want 120 without path tag", byName.Score, byName.Reason)
	}
}

func TestTildePath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		t.Skip("no home directory")
	}
	if got := TildePath(filepath.Join(home, "code")); got != "~"+string(filepath.Separator)+"code" {
		t.Errorf("TildePath = %q", got)
	}
	if got := TildePath(home); got != "~" {
		t.Errorf("TildePath(home) = %q", got)
	}
	if got := TildePath(home + "sick/x"); got != home+"sick/x" {
		t.Errorf("TildePath should not rewrite sibling prefixes, got %q", got)
	}
}

func TestHighlight(t *testing.T) {
	if got := Highlight("project", ""); got != nil {
		t.Errorf("empty query highlighted %v", got)
	}
	got := Highlight("my-project", "proj")
	want := []int{3, 4, 5, 6}
	if len(got) != len(want) {
		t.Fatalf("Highlight = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Highlight = %v, want %v", got, want)
		}
	}
	if got := Highlight("alpha", "zzz"); len(got) != 0 {
		t.Errorf("non-matching query highlighted %v", got)
	}
}
