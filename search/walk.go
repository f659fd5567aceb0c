package search

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/monochromegane/go-gitignore"
)

const (
	// WalkLimit caps the entries a single walk returns.
	WalkLimit = 20
	// BatchSize is the number of entries delivered per onBatch call.
	BatchSize = 5
)

// BatchFunc receives walk results progressively, in traversal order.
type BatchFunc func(batch []FolderEntry)

// Walker traverses directory trees and scores every directory it finds.
type Walker struct {
	fs               FS
	skipDirs         map[string]bool
	respectGitignore bool
}

// WalkerOption configures a Walker.
type WalkerOption func(*Walker)

// WithSkipDirs skips directories with any of the given names, including their subtrees.
func WithSkipDirs(names ...string) WalkerOption {
	return func(w *Walker) {
		for _, n := range names {
			if n = strings.TrimSpace(n); n != "" {
				w.skipDirs[n] = true
			}
		}
	}
}

// WithGitignore makes the walker honour a .gitignore found in the walked root.
func WithGitignore(enabled bool) WalkerOption {
	return func(w *Walker) {
		w.respectGitignore = enabled
	}
}

// NewWalker creates a walker reading from fsys.
func NewWalker(fsys FS, opts ...WalkerOption) *Walker {
	w := &Walker{fs: fsys, skipDirs: make(map[string]bool)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Walk traverses root depth-first and returns up to WalkLimit matching
// directories. The direct children of root have depth 0; recursion continues
// while depth < maxDepth and only when query is non-empty. Inaccessible paths
// below root are skipped silently; an error is returned only when root itself
// cannot be listed or ctx is cancelled.
func (w *Walker) Walk(ctx context.Context, root, query string, maxDepth int, onBatch BatchFunc) ([]FolderEntry, error) {
	return w.WalkExcluding(ctx, root, query, maxDepth, nil, onBatch)
}

// WalkExcluding is Walk, except that paths in exclude are neither emitted nor
// counted against the limit. Their subtrees are still traversed.
func (w *Walker) WalkExcluding(ctx context.Context, root, query string, maxDepth int, exclude map[string]bool, onBatch BatchFunc) ([]FolderEntry, error) {
	t := &traversal{
		walker:  w,
		ctx:     ctx,
		root:    root,
		query:   strings.TrimSpace(query),
		max:     maxDepth,
		exclude: exclude,
		onBatch: onBatch,
	}
	if w.respectGitignore {
		t.ignore = w.loadGitignore(root)
	}

	names, err := w.fs.ListEntries(root)
	if err != nil {
		return nil, err
	}
	t.visit(root, names, 0)
	t.flush()
	return t.results, ctx.Err()
}

func (w *Walker) loadGitignore(root string) gitignore.IgnoreMatcher {
	f, err := w.fs.Afero().Open(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	defer f.Close()
	return gitignore.NewGitIgnoreFromReader(root, f)
}

type traversal struct {
	walker  *Walker
	ctx     context.Context
	root    string
	query   string
	max     int
	exclude map[string]bool
	ignore  gitignore.IgnoreMatcher
	onBatch BatchFunc

	results []FolderEntry
	pending []FolderEntry
}

func (t *traversal) done() bool {
	return len(t.results) >= WalkLimit || t.ctx.Err() != nil
}

func (t *traversal) visit(dir string, names []string, depth int) {
	for _, name := range names {
		if t.done() {
			return
		}
		if strings.HasPrefix(name, ".") || t.walker.skipDirs[name] {
			continue
		}

		path := filepath.Join(dir, name)
		isDir, err := t.walker.fs.IsDir(path)
		if err != nil || !isDir {
			continue // broken symlinks, races with deletion, plain files
		}
		if t.ignore != nil && t.ignore.Match(path, true) {
			continue
		}

		if !t.exclude[path] {
			m := Score(name, t.query, depth, false)
			if t.query == "" || m.Score > 0 {
				t.emit(FolderEntry{
					Path:            path,
					Name:            name,
					SourceDirectory: t.root,
					Score:           m.Score,
					MatchReason:     m.Reason,
				})
			}
		}

		if depth < t.max && t.query != "" {
			if t.ctx.Err() != nil {
				return
			}
			children, err := t.walker.fs.ListEntries(path)
			if err != nil {
				continue
			}
			t.visit(path, children, depth+1)
		}
	}
}

func (t *traversal) emit(e FolderEntry) {
	t.results = append(t.results, e)
	t.pending = append(t.pending, e)
	if len(t.pending) >= BatchSize {
		t.flush()
	}
}

func (t *traversal) flush() {
	if len(t.pending) == 0 || t.ctx.Err() != nil {
		return
	}
	if t.onBatch != nil {
		t.onBatch(t.pending)
	}
	t.pending = nil
}
