package search

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/afero"
)

// FS is the filesystem surface the walker and orchestrator depend on.
type FS interface {
	// ListEntries returns the entry names of dir in listing order.
	ListEntries(dir string) ([]string, error)
	// IsDir reports whether path resolves (following symlinks) to a directory.
	IsDir(path string) (bool, error)
	// Afero exposes the backing filesystem for readers such as ignore files.
	Afero() afero.Fs
}

type aferoFS struct {
	fs afero.Fs
}

// NewFS adapts an afero filesystem.
func NewFS(fs afero.Fs) FS {
	return &aferoFS{fs: fs}
}

func (a *aferoFS) ListEntries(dir string) ([]string, error) {
	f, err := a.fs.Open(dir)
	if err != nil {
		return nil, classify(dir, err)
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, classify(dir, err)
	}
	return names, nil
}

func (a *aferoFS) IsDir(path string) (bool, error) {
	info, err := a.fs.Stat(path)
	if err != nil {
		return false, classify(path, err)
	}
	return info.IsDir(), nil
}

func (a *aferoFS) Afero() afero.Fs {
	return a.fs
}

func classify(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w: %v", path, ErrNotFound, err)
	}
	return fmt.Errorf("%s: %w: %v", path, ErrNotAccessible, err)
}
