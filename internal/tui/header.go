package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Mr-Dark-debug/orderlens/internal/lookup"
)

// renderHeader produces the top bar:
//
//	ORDERLENS  |  http://localhost:8000  |  Order b563feb7  |  shown
func renderHeader(m *Model) string {
	brand := headerBrandStyle.Render("ORDERLENS")
	sep := headerSepStyle.Render(" │ ")

	parts := []string{brand, sep, headerMetaStyle.Render(m.baseURL)}

	view := m.ctrl.View()
	if view.OrderID != "" {
		parts = append(parts, sep, headerMetaStyle.Render("Order "+shortID(view.OrderID, 24)))
	}
	if view.State != lookup.StateIdle {
		parts = append(parts, sep, headerMetaStyle.Render(view.State.String()))
	}

	return headerBarStyle.Width(m.width).Render(strings.Join(parts, ""))
}

// renderQueryBar renders the order ID input with the loading indicator.
func renderQueryBar(m *Model) string {
	input := m.input
	if m.activePane != PaneInput {
		input.PromptStyle = inputPromptDimStyle
	}
	line := input.View()
	if m.ctrl.View().Loading {
		line += " " + m.spinner.View()
	}
	return inputBarStyle.Width(m.width).Render(line)
}

// renderStatusLine shows the error message, the loading note or the
// response time. At most one is visible.
func renderStatusLine(m *Model) string {
	view := m.ctrl.View()
	switch {
	case view.ErrorText != "":
		return errorTextStyle.Render(view.ErrorText)
	case view.Loading:
		return loadingTextStyle.Render("Loading...")
	case view.ResponseTime != "":
		return responseTimeStyle.Render(view.ResponseTime)
	default:
		return ""
	}
}

// renderFooter produces the bottom status bar with keyboard hints.
func renderFooter(m *Model) string {
	var left, right string

	if m.statusMsg != "" {
		left = statusStyle.Render(m.statusMsg)
	}

	switch m.activePane {
	case PaneInput:
		right = renderHints([]hint{
			{"enter", "search"},
			{"tab", "pane"},
			{"esc", "tree"},
			{"ctrl+c", "quit"},
		})
	case PaneTree:
		right = renderHints([]hint{
			{"↑↓", "navigate"},
			{"enter", "toggle"},
			{"E/C", "expand/collapse all"},
			{"y", "copy"},
			{"/", "search"},
			{"q", "quit"},
		})
	case PaneHistory:
		right = renderHints([]hint{
			{"↑↓", "navigate"},
			{"enter", "look up again"},
			{"tab", "pane"},
			{"q", "quit"},
		})
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return lipgloss.NewStyle().
		Background(colorBgSurface).
		Width(m.width).
		Render(bar)
}

type hint struct {
	key  string
	desc string
}

func renderHints(hints []hint) string {
	var parts []string
	for _, h := range hints {
		parts = append(parts,
			hintKeyStyle.Render(h.key)+" "+hintDescStyle.Render(h.desc))
	}
	return strings.Join(parts, hintDescStyle.Render("  "))
}
