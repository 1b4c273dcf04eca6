package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Mr-Dark-debug/orderlens/internal/database"
	"github.com/Mr-Dark-debug/orderlens/pkg/timeutil"
)

// outcomeDot returns a colored marker for a journal outcome.
func outcomeDot(outcome string) string {
	switch outcome {
	case database.OutcomeShown:
		return outcomeShownStyle.Render("●")
	case database.OutcomeNotFound:
		return outcomeNotFoundStyle.Render("○")
	default:
		return outcomeFailedStyle.Render("●")
	}
}

// renderHistory renders recent lookups, most recent first.
func renderHistory(m *Model, width, height int) string {
	titleStyle := panelTitleDimStyle
	if m.activePane == PaneHistory {
		titleStyle = panelTitleStyle
	}
	heading := titleStyle.Render("History")

	if len(m.history) == 0 {
		return heading + "\n\n" + emptyStateStyle.Render("No lookups yet.")
	}
	heading += dimStyle.Render(fmt.Sprintf("  %d recent", len(m.history)))

	var lines []string
	lines = append(lines, heading)
	lines = append(lines, "")

	maxVisible := maxInt(1, height-2)
	startIdx := 0
	if m.historySel >= maxVisible {
		startIdx = m.historySel - maxVisible + 1
	}
	endIdx := startIdx + maxVisible
	if endIdx > len(m.history) {
		endIdx = len(m.history)
	}

	now := time.Now()
	for i := startIdx; i < endIdx; i++ {
		l := m.history[i]

		status := "---"
		if l.StatusCode != 0 {
			status = fmt.Sprintf("%d", l.StatusCode)
		}
		meta := fmt.Sprintf("%s  %sms  %s", status,
			timeutil.FormatMillis(time.Duration(l.ElapsedNs)),
			timeutil.RelativeTime(l.StartedAt, now))
		id := truncate(l.OrderID, maxInt(6, width-len(meta)-6))

		if i == m.historySel && m.activePane == PaneHistory {
			lines = append(lines, historySelectedStyle.Width(width).Render(
				fmt.Sprintf("%s %s  %s", "●", id, meta)))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s %s  %s",
			outcomeDot(l.Outcome), historyItemStyle.Render(id), dimStyle.Render(meta)))
	}

	return strings.Join(lines, "\n")
}

// renderHistoryPanel wraps the history list in a styled panel.
func renderHistoryPanel(m *Model, width, height int) string {
	content := renderHistory(m, width-4, height-2)

	style := panelStyle
	if m.activePane == PaneHistory {
		style = panelActiveStyle
	}

	return style.Width(width).Height(height).Render(content)
}
