package search

import (
	"errors"
	"fmt"
)

// FolderEntry is a directory discovered by a walk or remembered in history.
type FolderEntry struct {
	Path              string
	Name              string
	FromHistory       bool
	IsParentDirectory bool
	SourceDirectory   string // empty for history entries
	Score             int
	MatchReason       string
}

var (
	// ErrNotAccessible is returned by FS implementations on permission or I/O failures.
	ErrNotAccessible = errors.New("not accessible")
	// ErrNotFound is returned by FS implementations when a path does not exist.
	ErrNotFound = errors.New("not found")
)

// SearchError wraps a failure that escaped a search invocation.
type SearchError struct {
	Query string
	Err   error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("search %q failed: %v", e.Query, e.Err)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}
