package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Mr-Dark-debug/orderlens/internal/tree"
)

// ────────────────────────────────────────────────────────────
// Color Palette (GitHub Dark)
// ────────────────────────────────────────────────────────────
//
// All colors are defined here. No ad-hoc color literals anywhere.

var (
	// Base
	colorBg        = lipgloss.Color("#0d1117")
	colorBgSurface = lipgloss.Color("#1c2128")

	// Text
	colorText      = lipgloss.Color("#e6edf3")
	colorTextDim   = lipgloss.Color("#8b949e")
	colorTextMuted = lipgloss.Color("#484f58")

	// Accents
	colorBlue   = lipgloss.Color("#58a6ff")
	colorGreen  = lipgloss.Color("#3fb950")
	colorRed    = lipgloss.Color("#f85149")
	colorYellow = lipgloss.Color("#d29922")
	colorPurple = lipgloss.Color("#bc8cff")
	colorCyan   = lipgloss.Color("#76e3ea")

	// Structural
	colorDivider   = lipgloss.Color("#30363d")
	colorHighlight = lipgloss.Color("#1f6feb")
)

// ────────────────────────────────────────────────────────────
// Component Styles
// ────────────────────────────────────────────────────────────

// Header bar
var (
	headerBarStyle = lipgloss.NewStyle().
			Background(colorBgSurface).
			Foreground(colorText).
			Padding(0, 1)

	headerBrandStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorBlue)

	headerSepStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	headerMetaStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)
)

// Query bar
var (
	inputBarStyle = lipgloss.NewStyle().
			Padding(0, 1)

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(colorBlue).
				Bold(true)

	inputPromptDimStyle = lipgloss.NewStyle().
				Foreground(colorTextMuted)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(colorCyan)

	errorTextStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true).
			Padding(0, 1)

	responseTimeStyle = lipgloss.NewStyle().
				Foreground(colorGreen).
				Padding(0, 1)

	loadingTextStyle = lipgloss.NewStyle().
				Foreground(colorTextDim).
				Padding(0, 1)
)

// Panel chrome
var (
	panelStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.Border{Top: "─"}, true, false, false, false).
			BorderForeground(colorDivider)

	panelActiveStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Border(lipgloss.Border{Top: "─"}, true, false, false, false).
				BorderForeground(colorBlue)

	panelTitleStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true)

	panelTitleDimStyle = lipgloss.NewStyle().
				Foreground(colorTextMuted).
				Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)

	emptyStateStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted).
			Padding(1, 2)
)

// JSON tree
var (
	rowSelectedStyle = lipgloss.NewStyle().
				Background(colorHighlight).
				Foreground(colorText).
				Bold(true)

	glyphStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)

	keyStyle = lipgloss.NewStyle().
			Foreground(colorCyan)

	markerStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)

	jsonStringStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	jsonNumberStyle = lipgloss.NewStyle().
			Foreground(colorBlue)

	jsonBooleanStyle = lipgloss.NewStyle().
				Foreground(colorPurple)

	jsonNullStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted).
			Italic(true)
)

// Detail pane
var (
	detailLabelStyle = lipgloss.NewStyle().
				Foreground(colorBlue)

	detailValueStyle = lipgloss.NewStyle().
				Foreground(colorText)

	detailSectionStyle = lipgloss.NewStyle().
				Foreground(colorDivider)

	usageBarEmptyStyle = lipgloss.NewStyle().
				Foreground(colorTextMuted)
)

// History list
var (
	historyItemStyle = lipgloss.NewStyle().
				Foreground(colorText)

	historySelectedStyle = lipgloss.NewStyle().
				Background(colorHighlight).
				Foreground(colorText).
				Bold(true)

	outcomeShownStyle = lipgloss.NewStyle().
				Foreground(colorGreen)

	outcomeNotFoundStyle = lipgloss.NewStyle().
				Foreground(colorYellow)

	outcomeFailedStyle = lipgloss.NewStyle().
				Foreground(colorRed)
)

// Footer / status bar
var (
	statusStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorBgSurface).
			Padding(0, 1)

	hintKeyStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true)

	hintDescStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)
)

// classStyle returns the style for a scalar class.
func classStyle(c tree.Class) lipgloss.Style {
	switch c {
	case tree.ClassString:
		return jsonStringStyle
	case tree.ClassNumber:
		return jsonNumberStyle
	case tree.ClassBoolean:
		return jsonBooleanStyle
	case tree.ClassNull:
		return jsonNullStyle
	default:
		return detailValueStyle
	}
}

// inputCursorStyle is the textinput cursor color.
var inputCursorStyle = lipgloss.NewStyle().
	Background(colorBlue).
	Foreground(colorBg)
