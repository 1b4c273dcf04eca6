package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Mr-Dark-debug/orderlens/pkg/jsonvalue"
)

// previewLimit caps how much of a subtree the detail pane encodes.
const previewLimit = 4096

// renderDetail renders the selected node pane (right side).
func renderDetail(m *Model, width, height int) string {
	title := panelTitleDimStyle.Render("Selection")

	var lines []string
	lines = append(lines, title)
	lines = append(lines, "")

	n := m.selectedNode()
	if n == nil {
		lines = append(lines, emptyStateStyle.Render("Nothing selected."))
	} else {
		path := formatPath(nodePath(m.ctrl.View().Tree, n))
		lines = append(lines, detailRow("Path", truncate(path, maxInt(8, width-6))))
		lines = append(lines, detailRow("Type", n.Kind.String()))

		switch n.Kind {
		case jsonvalue.KindObject:
			lines = append(lines, detailRow("Keys", fmt.Sprintf("%d", len(n.Children))))
		case jsonvalue.KindArray:
			lines = append(lines, detailRow("Items", fmt.Sprintf("%d", len(n.Children))))
		default:
			lines = append(lines, detailRow("Value", classStyle(n.Class).Render(truncate(n.Text, maxInt(8, width-7)))))
		}

		if n.IsComposite() && len(n.Children) > 0 {
			lines = append(lines, "")
			lines = append(lines, detailSectionStyle.Render("JSON"))
			lines = append(lines, jsonPreview(n.Value, width)...)
		}
	}

	// ── Journal summary ──

	if s := m.stats; s != nil && s.Total > 0 {
		barWidth := width - 18
		if barWidth > 40 {
			barWidth = 40
		}
		lines = append(lines, "")
		lines = append(lines, detailSectionStyle.Render(fmt.Sprintf("Lookups  %d total", s.Total)))
		if barWidth > 4 {
			lines = append(lines, renderUsageBar("Shown", s.Shown, s.Total, barWidth, colorGreen))
			lines = append(lines, renderUsageBar("Not found", s.NotFound, s.Total, barWidth, colorYellow))
			lines = append(lines, renderUsageBar("Failed", s.FetchFailed+s.OtherFailed, s.Total, barWidth, colorRed))
		}
	}

	// Truncate to available height
	if len(lines) > height {
		lines = lines[:height]
	}

	return strings.Join(lines, "\n")
}

// jsonPreview pretty-prints v, one styled line per output line.
func jsonPreview(v jsonvalue.Value, width int) []string {
	data, err := jsonvalue.MarshalIndent(v, "  ")
	if err != nil {
		return []string{outcomeFailedStyle.Render(err.Error())}
	}
	text := string(data)
	if len(text) > previewLimit {
		text = text[:previewLimit] + "\n..."
	}
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		lines = append(lines, dimStyle.Render(truncate(line, width)))
	}
	return lines
}

// renderDetailPanel wraps detail in a styled panel.
func renderDetailPanel(m *Model, width, height int) string {
	content := renderDetail(m, width-4, height-2)
	return panelStyle.Width(width).Height(height).Render(content)
}

// ── helpers ──

func detailRow(label, value string) string {
	return detailLabelStyle.Render(label) + "  " + detailValueStyle.Render(value)
}

func renderUsageBar(label string, count, total, barWidth int, color lipgloss.Color) string {
	if total == 0 {
		return ""
	}
	pct := count * 100 / total
	filled := barWidth * count / total
	if filled < 1 && count > 0 {
		filled = 1
	}
	empty := barWidth - filled

	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		usageBarEmptyStyle.Render(strings.Repeat("░", empty))

	return fmt.Sprintf("%-9s %s %d%%", label, bar, pct)
}
