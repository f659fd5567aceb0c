// Package nav tracks whether the user is searching across all roots or
// browsing inside one directory, plus the directories they came from.
package nav

// State is the navigation state machine. The zero value is in root mode.
type State struct {
	current string
	stack   []string
}

// Current returns the browsed directory, or false in root mode.
func (s *State) Current() (string, bool) {
	return s.current, s.current != ""
}

// InBrowse reports whether a directory is being browsed.
func (s *State) InBrowse() bool {
	return s.current != ""
}

// Depth returns the number of directories on the back-stack.
func (s *State) Depth() int {
	return len(s.stack)
}

// NavigateInto enters path, remembering the previously browsed directory.
// Callers clear the active query afterwards.
func (s *State) NavigateInto(path string) {
	if path == "" {
		return
	}
	if s.current != "" {
		s.stack = append(s.stack, s.current)
	}
	s.current = path
}

// NavigateBack returns to the previous directory, or to root mode when the
// back-stack is empty. It reports false, changing nothing, in root mode.
func (s *State) NavigateBack() bool {
	if s.current == "" {
		return false
	}
	if n := len(s.stack); n > 0 {
		s.current = s.stack[n-1]
		s.stack = s.stack[:n-1]
		return true
	}
	s.current = ""
	return true
}

// Reset returns to root mode and forgets the back-stack.
func (s *State) Reset() {
	s.current = ""
	s.stack = nil
}
