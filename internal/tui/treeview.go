package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Mr-Dark-debug/orderlens/internal/tree"
)

// renderRow renders one tree row. width bounds the leaf text; zero means
// unbounded.
func renderRow(r tree.Row, width int) string {
	indent := strings.Repeat("  ", r.Depth)
	n := r.Node
	key := ""
	if n.HasKey {
		key = keyStyle.Render(n.KeyLabel())
	}

	if n.IsComposite() {
		return indent + glyphStyle.Render(n.Glyph()) + " " + key + markerStyle.Render(n.Marker())
	}

	text := n.Text
	if width > 0 {
		used := lipgloss.Width(indent) + 2 + lipgloss.Width(n.KeyLabel())
		text = truncate(text, maxInt(4, width-used))
	}
	return indent + "  " + key + classStyle(n.Class).Render(text)
}

// RenderTree renders every visible row of root, one per line, styled with
// the TUI palette. Used by the one-shot CLI.
func RenderTree(root *tree.Node) string {
	if root == nil {
		return ""
	}
	rows := tree.Visible(root)
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = renderRow(r, 0)
	}
	return strings.Join(lines, "\n")
}

// renderTree renders the JSON tree in the main pane.
func renderTree(m *Model, width, height int) string {
	titleStyle := panelTitleDimStyle
	if m.activePane == PaneTree {
		titleStyle = panelTitleStyle
	}

	title := titleStyle.Render("Order")
	view := m.ctrl.View()
	if view.Tree == nil {
		msg := "Type an order ID and press enter."
		if view.Loading {
			msg = "Fetching order..."
		}
		return title + "\n\n" + emptyStateStyle.Render(msg)
	}
	title += dimStyle.Render(fmt.Sprintf("  %d rows", len(m.rows)))

	var lines []string
	lines = append(lines, title)
	lines = append(lines, "")

	contentHeight := minInt(m.treeViewport(), maxInt(1, height-2))
	start := clamp(m.scroll, 0, maxInt(0, len(m.rows)-1))
	end := start + contentHeight
	if end > len(m.rows) {
		end = len(m.rows)
	}

	for i := start; i < end; i++ {
		r := m.rows[i]
		if i == m.selected && m.activePane == PaneTree {
			lines = append(lines, rowSelectedStyle.Width(width).Render(truncate(r.Plain(), width)))
			continue
		}
		lines = append(lines, renderRow(r, width))
	}

	// Scroll indicator
	if len(m.rows) > contentHeight {
		pct := 0
		if len(m.rows) > 1 {
			pct = m.selected * 100 / (len(m.rows) - 1)
		}
		lines = append(lines, dimStyle.Render(
			fmt.Sprintf(" %d/%d (%d%%)", m.selected+1, len(m.rows), pct)))
	}

	return strings.Join(lines, "\n")
}

// renderTreePanel wraps the tree in a styled panel.
func renderTreePanel(m *Model, width, height int) string {
	content := renderTree(m, width-4, height-2)

	style := panelStyle
	if m.activePane == PaneTree {
		style = panelActiveStyle
	}

	return style.Width(width).Height(height).Render(content)
}
