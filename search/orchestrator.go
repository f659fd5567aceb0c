package search

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Options holds the scalar limits a Searcher works with.
type Options struct {
	Roots           []string
	MaxDepth        int // walker depth bound for stage 2; a root's direct children are depth 0
	MaxResults      int
	MaxHistoryItems int
}

// Request describes one search invocation.
type Request struct {
	Query            string
	CurrentDirectory string   // empty selects root mode
	History          []string // most recent first
}

// Snapshot is the ranked state of a search at one point in time.
type Snapshot struct {
	Generation   uint64
	Query        string
	Entries      []FolderEntry
	Loading      bool
	Progress     string
	StaleHistory []string // history paths that no longer resolve to directories
}

// Searcher runs ranked folder searches. Starting a search invalidates every
// search started before it: superseded searches stop contributing results at
// their next checkpoint and never emit again.
type Searcher struct {
	fs     FS
	walker *Walker
	opts   Options
	log    *zap.Logger

	generation atomic.Uint64
	mu         sync.Mutex
	cancel     context.CancelFunc
}

// NewSearcher creates a searcher. A nil logger disables logging.
func NewSearcher(fsys FS, walker *Walker, opts Options, logger *zap.Logger) *Searcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if walker == nil {
		walker = NewWalker(fsys)
	}
	return &Searcher{fs: fsys, walker: walker, opts: opts, log: logger}
}

// Options returns the limits the searcher was created with.
func (s *Searcher) Options() Options {
	return s.opts
}

// Generation returns the number of the most recently started search.
func (s *Searcher) Generation() uint64 {
	return s.generation.Load()
}

// Cancel invalidates the running search, if any, without starting a new one.
func (s *Searcher) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation.Add(1)
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Searcher) begin(parent context.Context) (context.Context, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	return ctx, s.generation.Add(1)
}

func (s *Searcher) finish(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation.Load() == gen && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Search runs one invocation. emit is called with a fresh ranked snapshot
// after every merged batch; it is never called once the invocation has been
// superseded. The final snapshot is returned as well. A superseded search
// returns context.Canceled. Failed searches still report their generation.
func (s *Searcher) Search(ctx context.Context, req Request, emit func(Snapshot)) (Snapshot, error) {
	ctx, gen := s.begin(ctx)
	return s.run(ctx, gen, req, emit)
}

// Start supersedes any running search and runs req in the background. The
// new generation is returned before any walking starts. done, if non-nil,
// receives the outcome Search would have returned.
func (s *Searcher) Start(ctx context.Context, req Request, emit func(Snapshot), done func(Snapshot, error)) uint64 {
	ctx, gen := s.begin(ctx)
	go func() {
		snap, err := s.run(ctx, gen, req, emit)
		if done != nil {
			done(snap, err)
		}
	}()
	return gen
}

func (s *Searcher) run(ctx context.Context, gen uint64, req Request, emit func(Snapshot)) (snap Snapshot, err error) {
	defer s.finish(gen)

	run := &invocation{
		searcher: s,
		ctx:      ctx,
		gen:      gen,
		query:    strings.TrimSpace(req.Query),
		emit:     emit,
		results:  newCollector(),
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("search panicked", zap.String("query", run.query), zap.Any("panic", r))
			snap = Snapshot{Generation: gen}
			err = &SearchError{Query: run.query, Err: fmt.Errorf("%v", r)}
		}
	}()

	if req.CurrentDirectory != "" {
		run.browse(req.CurrentDirectory)
	} else {
		run.rootMode(req.History)
	}

	if !run.live() {
		return Snapshot{Generation: gen}, context.Canceled
	}
	final := run.snapshot(false, "")
	run.publish(final)
	return final, nil
}

// invocation is the state of one Search call.
type invocation struct {
	searcher *Searcher
	ctx      context.Context
	gen      uint64
	query    string
	emit     func(Snapshot)
	results  *collector
	stale    []string
}

func (r *invocation) live() bool {
	return r.ctx.Err() == nil && r.searcher.generation.Load() == r.gen
}

func (r *invocation) snapshot(loading bool, progress string) Snapshot {
	return Snapshot{
		Generation:   r.gen,
		Query:        r.query,
		Entries:      r.results.ranked(r.searcher.opts.MaxResults),
		Loading:      loading,
		Progress:     progress,
		StaleHistory: append([]string(nil), r.stale...),
	}
}

func (r *invocation) publish(snap Snapshot) {
	if r.emit == nil || !r.live() {
		return
	}
	r.emit(snap)
}

// merge adds a walk batch to the running collection and publishes the result.
func (r *invocation) merge(batch []FolderEntry, progress string, seen map[string]bool) {
	if !r.live() {
		return
	}
	for _, e := range batch {
		if seen != nil {
			seen[e.Path] = true
		}
		r.results.add(e)
	}
	r.publish(r.snapshot(true, progress))
}

func (r *invocation) browse(dir string) {
	s := r.searcher
	progress := "Searching in " + filepath.Base(dir) + "..."
	r.publish(r.snapshot(true, progress))

	_, err := s.walker.Walk(r.ctx, dir, r.query, 1, func(batch []FolderEntry) {
		r.merge(batch, progress, nil)
	})
	if err != nil && r.live() {
		s.log.Warn("browse directory failed", zap.String("dir", dir), zap.Error(err))
	}
}

func (r *invocation) rootMode(history []string) {
	s := r.searcher
	r.addHistory(history)

	if r.query == "" {
		r.addParents()
		r.publish(r.snapshot(true, ""))
		return
	}
	r.publish(r.snapshot(true, "Searching..."))

	stages := 1
	if s.opts.MaxDepth > 1 {
		stages = 2
	}

	shallow := make(map[string]bool)
	for _, root := range s.opts.Roots {
		if !r.live() {
			return
		}
		r.walkRoot(root, 1, nil, shallow, fmt.Sprintf("Searching %s (stage 1/%d)", filepath.Base(root), stages))
	}
	if stages == 1 {
		return
	}
	for _, root := range s.opts.Roots {
		if !r.live() {
			return
		}
		r.walkRoot(root, s.opts.MaxDepth, shallow, nil, fmt.Sprintf("Searching %s (stage 2/2)", filepath.Base(root)))
	}
}

func (r *invocation) walkRoot(root string, depth int, exclude, seen map[string]bool, progress string) {
	s := r.searcher
	_, err := s.walker.WalkExcluding(r.ctx, root, r.query, depth, exclude, func(batch []FolderEntry) {
		r.merge(batch, progress, seen)
	})
	if err != nil && r.live() {
		s.log.Warn("search root failed", zap.String("root", root), zap.Error(err))
	}
}

func (r *invocation) addHistory(history []string) {
	s := r.searcher
	limit := s.opts.MaxHistoryItems
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	for _, path := range history {
		if !r.live() {
			return
		}
		ok, err := s.fs.IsDir(path)
		if err != nil || !ok {
			s.log.Debug("dropping stale history entry", zap.String("path", path), zap.Error(err))
			r.stale = append(r.stale, path)
			continue
		}
		name := filepath.Base(path)
		m := ScorePath(name, path, r.query, 0, true)
		if r.query != "" && m.Score == 0 {
			continue
		}
		r.results.add(FolderEntry{
			Path:        path,
			Name:        name,
			FromHistory: true,
			Score:       m.Score,
			MatchReason: m.Reason,
		})
	}
}

func (r *invocation) addParents() {
	s := r.searcher
	for _, root := range s.opts.Roots {
		if ok, err := s.fs.IsDir(root); err != nil || !ok {
			s.log.Warn("search root is not a directory", zap.String("root", root), zap.Error(err))
			continue
		}
		r.results.addParent(FolderEntry{
			Path:              root,
			Name:              filepath.Base(root),
			IsParentDirectory: true,
			SourceDirectory:   root,
			Score:             scoreNoQuery,
			MatchReason:       "parent directory",
		})
	}
}
