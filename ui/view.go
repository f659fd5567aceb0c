package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/montrey/fastfolder/action"
	"github.com/montrey/fastfolder/search"
)

// Lines used by everything except the result list.
const chromeLines = 5

func (m Model) listHeight() int {
	if m.height <= chromeLines {
		return 20
	}
	return m.height - chromeLines
}

func (m Model) View() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.headerView(),
		m.input.View(),
		m.listView(),
		m.statusView(),
		m.actionTabsView(),
	)
}

func (m Model) headerView() string {
	if dir, ok := m.nav.Current(); ok {
		crumb := pathStyle.Render(search.TildePath(dir))
		return titleStyle.Render("Search in "+filepath.Base(dir)+"...") + " " + crumb
	}
	return titleStyle.Render("Folders")
}

func (m Model) listView() string {
	if len(m.entries) == 0 {
		if m.loading {
			return mutedStyle.Render("Loading...")
		}
		hint := "Start typing to search for folders"
		if m.query != "" {
			hint = "Try a different search term"
		}
		return lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("No folders found"),
			mutedStyle.Render(hint),
		)
	}

	rows := m.listHeight()
	end := min(len(m.entries), m.offset+rows)
	lines := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.renderRow(m.entries[i], i == m.cursor))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(e search.FolderEntry, selected bool) string {
	cursor := "  "
	if selected {
		cursor = "> "
	}

	left := cursor + renderName(e.Name, m.query, selected) + "  " + pathStyle.Render(search.TildePath(e.Path))
	right := accessory(e)
	if e.FromHistory {
		right = recentStyle.Render(right)
	} else {
		right = accessoryStyle.Render(right)
	}

	if m.width == 0 {
		return left + "  " + right
	}
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

// accessory is the short source label shown at the end of a row.
func accessory(e search.FolderEntry) string {
	switch {
	case e.FromHistory:
		return "Recent"
	case e.IsParentDirectory:
		return "Root"
	case e.SourceDirectory != "":
		return filepath.Base(e.SourceDirectory)
	default:
		return ""
	}
}

// renderName styles the characters of name matched by query.
func renderName(name, query string, selected bool) string {
	base := nameStyle
	if selected {
		base = selectedStyle
	}
	matches := search.Highlight(name, query)
	if len(matches) == 0 {
		return base.Render(name)
	}

	hit := make(map[int]bool, len(matches))
	for _, i := range matches {
		hit[i] = true
	}

	var b strings.Builder
	for i, r := range name {
		if hit[i] {
			b.WriteString(matchStyle.Inherit(base).Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}
	return b.String()
}

func (m Model) statusView() string {
	switch {
	case m.status != "" && m.statusErr:
		return errorStyle.Render(m.status)
	case m.loading:
		progress := m.progress
		if progress == "" {
			progress = "Searching..."
		}
		return m.spinner.View() + " " + mutedStyle.Render(progress)
	case m.status != "":
		return mutedStyle.Render(m.status)
	default:
		return mutedStyle.Render(fmt.Sprintf("%d folders", len(m.entries)))
	}
}

func (m Model) actionTabsView() string {
	tabs := make([]string, 0, len(action.Kinds))
	for _, k := range action.Kinds {
		style := inactiveTab
		if k == m.action {
			style = activeTab
		}
		tabs = append(tabs, style.Render("["+string(k)+"]"))
	}

	help := make([]string, 0, len(helpBindings()))
	for _, b := range helpBindings() {
		h := b.Help()
		help = append(help, helpKeyStyle.Render(h.Key)+" "+mutedStyle.Render(h.Desc))
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, strings.Join(tabs, " "), "  ", strings.Join(help, "  "))
}
