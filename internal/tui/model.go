package tui

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Mr-Dark-debug/orderlens/internal/database"
	"github.com/Mr-Dark-debug/orderlens/internal/lookup"
	"github.com/Mr-Dark-debug/orderlens/internal/tree"
	"github.com/Mr-Dark-debug/orderlens/pkg/jsonvalue"
)

// ────────────────────────────────────────────────────────────
// Pane focuses
// ────────────────────────────────────────────────────────────

// Pane represents which UI pane currently has keyboard focus.
type Pane int

const (
	PaneInput Pane = iota
	PaneTree
	PaneHistory
)

// Screen rows above the body: header, query bar, status line.
const chromeTop = 3

// Rows of panel chrome before the first content line: border, title, blank.
const panelTop = 3

// historyLimit is how many journal entries the history pane shows.
const historyLimit = 50

// ────────────────────────────────────────────────────────────
// Model
// ────────────────────────────────────────────────────────────

// Model is the root BubbleTea model for the orderlens TUI.
// State is organized by concern; rendering is delegated
// to component functions in separate files.
type Model struct {
	ctrl    *lookup.Controller
	store   database.Store
	baseURL string

	// Components
	input   textinput.Model
	spinner spinner.Model

	// Tree view
	rows     []tree.Row
	selected int
	scroll   int

	// History
	history    []*database.Lookup
	historySel int
	stats      *database.LookupStats

	// UI state
	activePane Pane
	width      int
	height     int

	// Status
	statusMsg string

	copyFn func(string) error
}

// NewModel creates the TUI around a controller. store may be nil, in which
// case the history pane is hidden.
func NewModel(ctrl *lookup.Controller, store database.Store, baseURL string) Model {
	ti := textinput.New()
	ti.Placeholder = "Enter Order ID"
	ti.Prompt = "Order ID › "
	ti.PromptStyle = inputPromptStyle
	ti.Cursor.Style = inputCursorStyle
	ti.Focus()

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(spinnerStyle),
	)

	return Model{
		ctrl:       ctrl,
		store:      store,
		baseURL:    baseURL,
		input:      ti,
		spinner:    sp,
		activePane: PaneInput,
		copyFn:     clipboard.WriteAll,
	}
}

// ────────────────────────────────────────────────────────────
// Messages
// ────────────────────────────────────────────────────────────

type lookupDoneMsg struct{ res *lookup.Result }

type historyLoadedMsg struct {
	lookups []*database.Lookup
	stats   *database.LookupStats
}

type copiedMsg struct {
	size int
	err  error
}

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

// ────────────────────────────────────────────────────────────
// Init
// ────────────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadHistory())
}

func (m Model) loadHistory() tea.Cmd {
	if m.store == nil {
		return nil
	}
	store := m.store
	return func() tea.Msg {
		lookups, err := store.QueryLookups(database.LookupFilter{Limit: historyLimit})
		if err != nil {
			return errMsg{err}
		}
		stats, err := store.GetLookupStats(database.LookupFilter{})
		if err != nil {
			return errMsg{err}
		}
		return historyLoadedMsg{lookups: lookups, stats: stats}
	}
}

// fetch runs the request off the UI goroutine.
func (m Model) fetch(req *lookup.Request) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return lookupDoneMsg{res: ctrl.Fetch(context.Background(), req)}
	}
}

func (m Model) copyNode(n *tree.Node) tea.Cmd {
	copyFn := m.copyFn
	v := n.Value
	return func() tea.Msg {
		data, err := jsonvalue.Marshal(v)
		if err != nil {
			return copiedMsg{err: err}
		}
		if err := copyFn(string(data)); err != nil {
			return copiedMsg{err: err}
		}
		return copiedMsg{size: len(data)}
	}
}

// ────────────────────────────────────────────────────────────
// Update
// ────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = maxInt(10, msg.Width-lipgloss.Width(m.input.Prompt)-6)
		m.ensureVisible()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case lookupDoneMsg:
		m.ctrl.Complete(msg.res)
		m.resetTree()
		if view := m.ctrl.View(); view.State == lookup.StateShown {
			m.statusMsg = fmt.Sprintf("%d nodes", len(tree.Flatten(view.Tree)))
		} else {
			m.statusMsg = ""
		}
		return m, m.loadHistory()

	case historyLoadedMsg:
		m.history = msg.lookups
		m.stats = msg.stats
		m.historySel = clamp(m.historySel, 0, maxInt(0, len(m.history)-1))
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Copy failed: %v", msg.err)
		} else {
			m.statusMsg = fmt.Sprintf("Copied %d bytes", msg.size)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.ctrl.View().Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case errMsg:
		m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		return m, nil
	}

	if m.activePane == PaneInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// submit starts a search for the current input.
func (m Model) submit() (tea.Model, tea.Cmd) {
	ticking := m.ctrl.View().Loading
	req, err := m.ctrl.Submit(m.input.Value())
	if err != nil {
		// Empty input: the view already shows the message.
		return m, nil
	}
	m.rows = nil
	m.selected = 0
	m.scroll = 0
	m.statusMsg = ""
	if ticking {
		return m, m.fetch(req)
	}
	return m, tea.Batch(m.fetch(req), m.spinner.Tick)
}

// resetTree rebuilds the rows for a freshly completed lookup.
func (m *Model) resetTree() {
	m.selected = 0
	m.scroll = 0
	m.rows = nil
	if root := m.ctrl.View().Tree; root != nil {
		m.rows = tree.Visible(root)
	}
}

// refreshRows recomputes visible rows after a collapse change, keeping the
// selection on the same node.
func (m *Model) refreshRows(keep *tree.Node) {
	root := m.ctrl.View().Tree
	if root == nil {
		m.rows = nil
		return
	}
	m.rows = tree.Visible(root)
	if i := tree.IndexOf(m.rows, keep); i >= 0 {
		m.selected = i
	} else {
		m.selected = clamp(m.selected, 0, maxInt(0, len(m.rows)-1))
	}
	m.ensureVisible()
}

func (m Model) selectedNode() *tree.Node {
	if m.selected < 0 || m.selected >= len(m.rows) {
		return nil
	}
	return m.rows[m.selected].Node
}

func (m *Model) toggleSelected() {
	n := m.selectedNode()
	if n == nil || !n.IsComposite() {
		return
	}
	n.Toggle()
	m.refreshRows(n)
}

// treeViewport is the number of tree rows that fit on screen, leaving
// the footer and the scroll indicator.
func (m Model) treeViewport() int {
	return maxInt(1, m.height-chromeTop-1-panelTop-1)
}

func (m *Model) ensureVisible() {
	vp := m.treeViewport()
	if m.selected < m.scroll {
		m.scroll = m.selected
	}
	if m.selected >= m.scroll+vp {
		m.scroll = m.selected - vp + 1
	}
	m.scroll = clamp(m.scroll, 0, maxInt(0, len(m.rows)-vp))
}

func (m *Model) focus(p Pane) tea.Cmd {
	if p == PaneHistory && m.store == nil {
		p = PaneInput
	}
	m.activePane = p
	if p == PaneInput {
		return m.input.Focus()
	}
	m.input.Blur()
	return nil
}

func (m Model) paneCount() int {
	if m.store == nil {
		return 2
	}
	return 3
}

// handleKey routes keyboard input based on the focused pane.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// ── Global ──

	switch key {
	case "ctrl+c":
		return m, tea.Quit

	case "tab":
		cmd := m.focus(Pane((int(m.activePane) + 1) % m.paneCount()))
		return m, cmd

	case "shift+tab":
		n := m.paneCount()
		cmd := m.focus(Pane((int(m.activePane) + n - 1) % n))
		return m, cmd
	}

	// ── Input ──

	if m.activePane == PaneInput {
		switch key {
		case "enter":
			return m.submit()
		case "esc":
			cmd := m.focus(PaneTree)
			return m, cmd
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch key {
	case "q":
		return m, tea.Quit
	case "/", "i":
		cmd := m.focus(PaneInput)
		return m, cmd
	}

	// ── Pane-specific ──

	switch m.activePane {
	case PaneTree:
		switch key {
		case "j", "down":
			if m.selected < len(m.rows)-1 {
				m.selected++
				m.ensureVisible()
			}
		case "k", "up":
			if m.selected > 0 {
				m.selected--
				m.ensureVisible()
			}
		case "g", "home":
			m.selected = 0
			m.ensureVisible()
		case "G", "end":
			m.selected = maxInt(0, len(m.rows)-1)
			m.ensureVisible()
		case "enter", " ", "space":
			m.toggleSelected()
		case "E":
			if root := m.ctrl.View().Tree; root != nil {
				keep := m.selectedNode()
				tree.SetCollapsed(root, false)
				m.refreshRows(keep)
			}
		case "C":
			if root := m.ctrl.View().Tree; root != nil {
				tree.SetCollapsed(root, true)
				m.selected = 0
				m.refreshRows(root)
			}
		case "y":
			if n := m.selectedNode(); n != nil {
				return m, m.copyNode(n)
			}
		}

	case PaneHistory:
		switch key {
		case "j", "down":
			if m.historySel < len(m.history)-1 {
				m.historySel++
			}
		case "k", "up":
			if m.historySel > 0 {
				m.historySel--
			}
		case "enter":
			if m.historySel < len(m.history) {
				m.input.SetValue(m.history[m.historySel].OrderID)
				return m.submit()
			}
		}
	}

	return m, nil
}

// handleMouse toggles the composite under a left click in the tree pane.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	if msg.X >= m.treeWidth() {
		return m, nil
	}
	idx := m.rowAt(msg.Y)
	if idx < 0 {
		return m, nil
	}
	m.focus(PaneTree)
	m.selected = idx
	m.toggleSelected()
	return m, nil
}

// rowAt maps a screen line to a tree row index, or -1.
func (m Model) rowAt(y int) int {
	line := y - chromeTop - panelTop
	if line < 0 || line >= m.treeViewport() {
		return -1
	}
	idx := m.scroll + line
	if idx >= len(m.rows) {
		return -1
	}
	return idx
}

// ────────────────────────────────────────────────────────────
// View
// ────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	header := renderHeader(&m)
	query := renderQueryBar(&m)
	status := renderStatusLine(&m)
	footer := renderFooter(&m)

	bodyHeight := m.height - chromeTop - 1
	body := m.renderMainLayout(bodyHeight)

	return lipgloss.JoinVertical(lipgloss.Left, header, query, status, body, footer)
}

// treeWidth is the width of the tree pane for the current layout.
func (m Model) treeWidth() int {
	if m.width < 80 {
		return m.width
	}
	return m.width * 60 / 100
}

// renderMainLayout assembles the tree pane and the side column.
func (m Model) renderMainLayout(totalHeight int) string {
	// Responsive: collapse to single pane on narrow terminals
	if m.width < 80 {
		return m.renderCompactLayout(totalHeight)
	}

	leftWidth := m.treeWidth()
	rightWidth := m.width - leftWidth

	treePane := renderTreePanel(&m, leftWidth, totalHeight)

	var side string
	if m.store == nil {
		side = renderDetailPanel(&m, rightWidth, totalHeight)
	} else {
		topHeight := totalHeight * 45 / 100
		side = lipgloss.JoinVertical(lipgloss.Left,
			renderDetailPanel(&m, rightWidth, topHeight),
			renderHistoryPanel(&m, rightWidth, totalHeight-topHeight))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, treePane, side)
}

// renderCompactLayout is used when the terminal is narrow (< 80 cols).
// Only the focused pane is shown.
func (m Model) renderCompactLayout(totalHeight int) string {
	if m.activePane == PaneHistory {
		return renderHistoryPanel(&m, m.width, totalHeight)
	}
	return renderTreePanel(&m, m.width, totalHeight)
}
