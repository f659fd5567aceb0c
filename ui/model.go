// Package ui is the interactive folder picker. The bubbletea model is the
// single event loop: debounced queries, search snapshots, history changes and
// key presses all arrive as messages and are applied in order.
package ui

import (
	"context"
	"errors"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/montrey/fastfolder/action"
	"github.com/montrey/fastfolder/debounce"
	"github.com/montrey/fastfolder/nav"
	"github.com/montrey/fastfolder/search"
	"github.com/montrey/fastfolder/store"
)

const resultBuffer = 64

// Deps are the collaborators the model drives.
type Deps struct {
	Searcher  *search.Searcher
	History   *store.History
	Settings  store.KV // optional; persists the default action
	Opener    *action.Opener
	Debouncer *debounce.Debouncer
	Action    action.Kind
	Logger    *zap.Logger
}

// Model is the bubbletea model of the picker.
type Model struct {
	searcher  *search.Searcher
	history   *store.History
	settings  store.KV
	opener    *action.Opener
	debouncer *debounce.Debouncer
	log       *zap.Logger
	results   chan tea.Msg
	done      chan struct{}
	stop      func()

	input   textinput.Model
	spinner spinner.Model
	nav     nav.State

	query      string
	generation uint64
	entries    []search.FolderEntry
	cursor     int
	offset     int
	loading    bool
	progress   string

	action    action.Kind
	status    string
	statusErr bool
	selected  string
	saveErr   error

	width  int
	height int
}

// New creates the picker model.
func New(deps Deps) Model {
	ti := textinput.New()
	ti.Placeholder = "Search folders..."
	ti.Focus()
	ti.CharLimit = 156
	ti.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = selectedStyle

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	kind := deps.Action
	if kind == "" {
		kind = action.Explorer
	}

	done := make(chan struct{})

	return Model{
		searcher:  deps.Searcher,
		history:   deps.History,
		settings:  deps.Settings,
		opener:    deps.Opener,
		debouncer: deps.Debouncer,
		log:       logger,
		results:   make(chan tea.Msg, resultBuffer),
		done:      done,
		stop:      sync.OnceFunc(func() { close(done) }),
		input:     ti,
		spinner:   sp,
		action:    kind,
		loading:   true,
	}
}

// Selected returns the folder chosen with enter, if any.
func (m Model) Selected() string {
	return m.selected
}

// HistoryError returns the error from recording the selected folder, if any.
func (m Model) HistoryError() error {
	return m.saveErr
}

// Close stops the running search and releases anything blocked on delivering
// results. It is safe to call more than once.
func (m Model) Close() {
	m.searcher.Cancel()
	m.stop()
}

// Messages.
type (
	queryMsg    string
	snapshotMsg search.Snapshot

	searchFailedMsg struct {
		generation uint64
		err        error
	}

	historyLoadedMsg struct{ err error }

	historyChangedMsg struct {
		note string
		err  error
	}

	actionDoneMsg struct {
		note string
		err  error
	}

	openedMsg struct {
		path       string
		err        error
		historyErr error
	}

	revealedMsg struct {
		note       string
		err        error
		historyErr error
	}

	settingSavedMsg struct{ err error }
)

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		loadHistory(m.history),
		waitForQuery(m.debouncer),
		waitForResult(m.results),
	)
}

func loadHistory(h *store.History) tea.Cmd {
	return func() tea.Msg {
		_, err := h.Load()
		return historyLoadedMsg{err: err}
	}
}

func waitForQuery(d *debounce.Debouncer) tea.Cmd {
	return func() tea.Msg {
		return queryMsg(<-d.C())
	}
}

func waitForResult(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// startSearch supersedes the running search with one for the current state.
// Snapshots reach the model through the results channel.
func (m *Model) startSearch() tea.Cmd {
	req := search.Request{Query: m.query, History: m.history.Paths()}
	if dir, ok := m.nav.Current(); ok {
		req.CurrentDirectory = dir
	}

	deliver := m.deliver
	m.generation = m.searcher.Start(context.Background(), req,
		func(snap search.Snapshot) {
			deliver(snapshotMsg(snap))
		},
		func(snap search.Snapshot, err error) {
			if err != nil && !errors.Is(err, context.Canceled) {
				deliver(searchFailedMsg{generation: snap.Generation, err: err})
			}
		},
	)
	m.loading = true
	m.progress = ""
	return m.spinner.Tick
}

// deliver hands a search result to the event loop, giving up once the
// picker has been closed.
func (m Model) deliver(msg tea.Msg) {
	select {
	case m.results <- msg:
	case <-m.done:
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(20, msg.Width-4)
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case historyLoadedMsg:
		if msg.err != nil {
			m.log.Warn("failed to load history", zap.Error(msg.err))
			m.setError("History unavailable: " + msg.err.Error())
		}
		return m, m.startSearch()

	case queryMsg:
		m.query = string(msg)
		m.status = ""
		return m, tea.Batch(m.startSearch(), waitForQuery(m.debouncer))

	case snapshotMsg:
		cmds = append(cmds, waitForResult(m.results))
		if msg.Generation != m.generation {
			return m, tea.Batch(cmds...)
		}
		m.applySnapshot(search.Snapshot(msg))
		if !msg.Loading && len(msg.StaleHistory) > 0 {
			cmds = append(cmds, dropStale(m.history, m.log, msg.StaleHistory))
		}
		return m, tea.Batch(cmds...)

	case searchFailedMsg:
		cmds = append(cmds, waitForResult(m.results))
		if msg.generation == m.generation {
			m.loading = false
			m.progress = ""
			m.log.Error("search failed", zap.String("query", m.query), zap.Error(msg.err))
			m.setError("Search failed: " + msg.err.Error())
		}
		return m, tea.Batch(cmds...)

	case historyChangedMsg:
		if msg.err != nil {
			m.log.Warn("failed to save history", zap.Error(msg.err))
			m.setError(msg.err.Error())
		} else if msg.note != "" {
			m.setStatus(msg.note)
		}
		return m, m.startSearch()

	case actionDoneMsg:
		if msg.err != nil {
			m.log.Warn("action failed", zap.Error(msg.err))
			m.setError(msg.err.Error())
		} else {
			m.setStatus(msg.note)
		}
		return m, nil

	case settingSavedMsg:
		if msg.err != nil {
			m.log.Warn("failed to save default action", zap.Error(msg.err))
			m.setError("Could not save default action: " + msg.err.Error())
		}
		return m, nil

	case openedMsg:
		if msg.historyErr != nil {
			m.log.Warn("failed to save history", zap.String("path", msg.path), zap.Error(msg.historyErr))
		}
		if msg.err != nil {
			m.log.Warn("open failed", zap.String("path", msg.path), zap.Error(msg.err))
			m.setError(msg.err.Error())
			return m, m.startSearch()
		}
		m.selected = msg.path
		m.saveErr = msg.historyErr
		m.Close()
		return m, tea.Quit

	case revealedMsg:
		switch {
		case msg.historyErr != nil:
			m.log.Warn("failed to save history", zap.Error(msg.historyErr))
			m.setError(msg.historyErr.Error())
		case msg.err != nil:
			m.log.Warn("reveal failed", zap.Error(msg.err))
			m.setError(msg.err.Error())
		default:
			m.setStatus(msg.note)
		}
		return m, m.startSearch()

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	prev := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	if m.input.Value() != prev {
		m.debouncer.Push(m.input.Value())
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, Keys.Quit):
		m.Close()
		return tea.Quit, true

	case key.Matches(msg, Keys.Escape):
		if m.nav.InBrowse() {
			return m.back(), true
		}
		m.Close()
		return tea.Quit, true

	case key.Matches(msg, Keys.Up):
		m.moveCursor(-1)
		return nil, true

	case key.Matches(msg, Keys.Down):
		m.moveCursor(1)
		return nil, true

	case key.Matches(msg, Keys.NextAction), key.Matches(msg, Keys.PrevAction):
		step := 1
		if key.Matches(msg, Keys.PrevAction) {
			step = -1
		}
		m.action = action.Cycle(m.action, step)
		return saveAction(m.settings, m.action), true
	}

	entry, ok := m.current()

	switch {
	case key.Matches(msg, Keys.Open):
		if !ok {
			return nil, true
		}
		return openFolder(m.history, m.opener, m.action, entry.Path), true

	case key.Matches(msg, Keys.Into):
		// Only steal the key when the cursor sits at the end of the input.
		if !ok || m.input.Position() < len([]rune(m.input.Value())) {
			return nil, false
		}
		m.nav.NavigateInto(entry.Path)
		return m.resetQuery(), true

	case key.Matches(msg, Keys.Back):
		if !m.nav.InBrowse() || m.input.Value() != "" {
			return nil, false
		}
		return m.back(), true

	case key.Matches(msg, Keys.AddRecent):
		if !ok {
			return nil, true
		}
		return recordHistory(m.history, entry.Path, "Added "+entry.Name+" to recent"), true

	case key.Matches(msg, Keys.Forget):
		if !ok || !entry.FromHistory {
			return nil, true
		}
		return removeHistory(m.history, entry.Path, "Removed "+entry.Name+" from recent"), true

	case key.Matches(msg, Keys.CopyPath):
		if !ok {
			return nil, true
		}
		return runAction(m.opener, action.Copy, entry.Path), true

	case key.Matches(msg, Keys.Reveal):
		if !ok {
			return nil, true
		}
		return revealFolder(m.history, m.opener, entry.Path), true
	}
	return nil, false
}

func (m *Model) back() tea.Cmd {
	m.nav.NavigateBack()
	return m.resetQuery()
}

// resetQuery clears the query after a browse change and searches at once.
func (m *Model) resetQuery() tea.Cmd {
	m.debouncer.Stop()
	m.input.SetValue("")
	m.query = ""
	m.entries = nil
	m.cursor, m.offset = 0, 0
	if dir, ok := m.nav.Current(); ok {
		m.input.Placeholder = "Search in " + filepath.Base(dir) + "..."
	} else {
		m.input.Placeholder = "Search folders..."
	}
	return m.startSearch()
}

func (m *Model) applySnapshot(snap search.Snapshot) {
	var keep string
	if e, ok := m.current(); ok {
		keep = e.Path
	}

	m.entries = snap.Entries
	m.loading = snap.Loading
	m.progress = snap.Progress

	m.cursor = 0
	for i, e := range m.entries {
		if e.Path == keep {
			m.cursor = i
			break
		}
	}
	m.clampOffset()
}

func (m *Model) current() (search.FolderEntry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		return search.FolderEntry{}, false
	}
	return m.entries[m.cursor], true
}

func (m *Model) moveCursor(delta int) {
	next := m.cursor + delta
	if next < 0 || next >= len(m.entries) {
		return
	}
	m.cursor = next
	m.clampOffset()
}

func (m *Model) clampOffset() {
	rows := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	m.offset = max(0, min(m.offset, max(0, len(m.entries)-rows)))
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusErr = true
}

func dropStale(h *store.History, log *zap.Logger, stale []string) tea.Cmd {
	return func() tea.Msg {
		if err := h.Drop(stale...); err != nil {
			log.Warn("failed to drop stale history", zap.Strings("paths", stale), zap.Error(err))
		}
		return nil
	}
}

func recordHistory(h *store.History, path, note string) tea.Cmd {
	return func() tea.Msg {
		return historyChangedMsg{note: note, err: h.Record(path)}
	}
}

func removeHistory(h *store.History, path, note string) tea.Cmd {
	return func() tea.Msg {
		return historyChangedMsg{note: note, err: h.Remove(path)}
	}
}

func runAction(o *action.Opener, kind action.Kind, path string) tea.Cmd {
	return func() tea.Msg {
		if err := o.Open(kind, path); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{note: action.Describe(kind, path)}
	}
}

// openFolder records path in history and runs the default action. A history
// write failure does not prevent opening.
func openFolder(h *store.History, o *action.Opener, kind action.Kind, path string) tea.Cmd {
	return func() tea.Msg {
		historyErr := h.Record(path)
		return openedMsg{path: path, err: o.Open(kind, path), historyErr: historyErr}
	}
}

// revealFolder records path in history and shows it in the file explorer.
func revealFolder(h *store.History, o *action.Opener, path string) tea.Cmd {
	return func() tea.Msg {
		historyErr := h.Record(path)
		if err := o.Open(action.Explorer, path); err != nil {
			return revealedMsg{err: err, historyErr: historyErr}
		}
		return revealedMsg{note: action.Describe(action.Explorer, path), historyErr: historyErr}
	}
}

func saveAction(kv store.KV, kind action.Kind) tea.Cmd {
	if kv == nil {
		return nil
	}
	return func() tea.Msg {
		return settingSavedMsg{err: kv.Set(action.SettingKey, string(kind))}
	}
}
