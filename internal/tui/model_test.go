package tui

import (
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mr-Dark-debug/orderlens/internal/database"
	"github.com/Mr-Dark-debug/orderlens/internal/fixture"
	"github.com/Mr-Dark-debug/orderlens/internal/lookup"
	"github.com/Mr-Dark-debug/orderlens/internal/tree"
	"github.com/Mr-Dark-debug/orderlens/pkg/jsonvalue"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func plain(s string) string { return ansi.ReplaceAllString(s, "") }

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
)

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newFixture(t *testing.T) *httptest.Server {
	t.Helper()
	orders, err := fixture.ParseOrders([]byte(`{"123": {"id":123,"items":[1,2]}}`), "")
	require.NoError(t, err)
	ts := httptest.NewServer(fixture.NewServer(fixture.DefaultConfig(), orders, nil).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func newTestModel(t *testing.T, store database.Store, opts ...lookup.Option) Model {
	t.Helper()
	ts := newFixture(t)
	if store != nil {
		opts = append(opts, lookup.WithJournal(store))
	}
	ctrl := lookup.NewController(lookup.NewClient(ts.URL, nil), &lookup.View{}, opts...)
	m := NewModel(ctrl, store, ts.URL)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model)
}

// collect runs cmd and any batched commands, returning their messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// search types id, presses enter and delivers the lookup result.
func search(t *testing.T, m Model, id string) Model {
	t.Helper()
	m.input.SetValue(id)
	m, cmd := update(t, m, keyEnter)
	require.NotNil(t, cmd)
	assert.True(t, m.ctrl.View().Loading)

	var done bool
	for _, msg := range collect(cmd) {
		if d, ok := msg.(lookupDoneMsg); ok {
			m, cmd = update(t, m, d)
			done = true
			for _, follow := range collect(cmd) {
				m, _ = update(t, m, follow)
			}
		}
	}
	require.True(t, done, "no lookup result delivered")
	return m
}

func rowTexts(m Model) []string {
	out := make([]string, len(m.rows))
	for i, r := range m.rows {
		out[i] = r.Plain()
	}
	return out
}

func TestEmptyInputShowsError(t *testing.T) {
	m := newTestModel(t, nil)

	m, cmd := update(t, m, keyEnter)
	assert.Nil(t, cmd)
	assert.Equal(t, lookup.StateError, m.ctrl.View().State)
	assert.Contains(t, plain(m.View()), "Please enter an Order ID")
}

func TestLookupRendersTree(t *testing.T) {
	m := newTestModel(t, nil)
	m = search(t, m, "  123 ")

	view := m.ctrl.View()
	assert.Equal(t, lookup.StateShown, view.State)
	assert.False(t, view.Loading)
	assert.Equal(t, "5 nodes", m.statusMsg)
	assert.Equal(t, []string{
		"▾ {...}",
		`    "id": 123`,
		`  ▾ "items": [...]`,
		`      "0": 1`,
		`      "1": 2`,
	}, rowTexts(m))

	out := plain(m.View())
	assert.Contains(t, out, "Found in ")
	assert.Contains(t, out, `"items": [...]`)
	assert.NotContains(t, out, "Please enter an Order ID")
}

func TestLookupNotFound(t *testing.T) {
	m := newTestModel(t, nil)
	m = search(t, m, "999")

	assert.Empty(t, m.rows)
	assert.Contains(t, plain(m.View()), "Order not found")
}

func TestTreeToggleWithKeys(t *testing.T) {
	m := newTestModel(t, nil)
	m = search(t, m, "123")

	m, _ = update(t, m, keyTab)
	require.Equal(t, PaneTree, m.activePane)

	m, _ = update(t, m, runeKey("j"))
	m, _ = update(t, m, runeKey("j"))
	require.Equal(t, 2, m.selected)

	m, _ = update(t, m, keyEnter)
	assert.Equal(t, []string{
		"▾ {...}",
		`    "id": 123`,
		`  ▸ "items": [...]`,
	}, rowTexts(m))
	assert.Equal(t, 2, m.selected)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	assert.Len(t, m.rows, 5)

	// Leaves do not toggle.
	m, _ = update(t, m, runeKey("k"))
	m, _ = update(t, m, keyEnter)
	assert.Len(t, m.rows, 5)
}

func TestExpandAndCollapseAll(t *testing.T) {
	m := newTestModel(t, nil)
	m = search(t, m, "123")
	m, _ = update(t, m, keyTab)

	m, _ = update(t, m, runeKey("C"))
	assert.Equal(t, []string{"▸ {...}"}, rowTexts(m))
	assert.Equal(t, 0, m.selected)

	m, _ = update(t, m, runeKey("E"))
	assert.Len(t, m.rows, 5)
}

func TestCopySubtree(t *testing.T) {
	m := newTestModel(t, nil)
	var copied string
	m.copyFn = func(s string) error {
		copied = s
		return nil
	}
	m = search(t, m, "123")
	m, _ = update(t, m, keyTab)
	m, _ = update(t, m, runeKey("G"))
	m, _ = update(t, m, runeKey("k"))
	m, _ = update(t, m, runeKey("k"))
	require.Equal(t, `  ▾ "items": [...]`, m.rows[m.selected].Plain())

	m, cmd := update(t, m, runeKey("y"))
	msgs := collect(cmd)
	require.Len(t, msgs, 1)
	m, _ = update(t, m, msgs[0])

	assert.Equal(t, "[1,2]", copied)
	assert.Equal(t, "Copied 5 bytes", m.statusMsg)
}

func TestMouseClickToggles(t *testing.T) {
	m := newTestModel(t, nil)
	m = search(t, m, "123")

	click := tea.MouseMsg{
		X:      2,
		Y:      chromeTop + panelTop + 2,
		Action: tea.MouseActionPress,
		Button: tea.MouseButtonLeft,
	}
	m, _ = update(t, m, click)
	assert.Equal(t, PaneTree, m.activePane)
	assert.Len(t, m.rows, 3)
	assert.True(t, m.rows[2].Node.Collapsed)

	// A click outside the rows does nothing.
	click.Y = chromeTop + panelTop + 10
	m, _ = update(t, m, click)
	assert.Len(t, m.rows, 3)
}

func TestHistoryPaneRerunsLookup(t *testing.T) {
	store, err := database.NewDBService(":memory:")
	require.NoError(t, err)
	defer store.Close()

	// Each call advances one second so the journal order is stable.
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	clock := func() time.Time {
		now = now.Add(time.Second)
		return now
	}

	m := newTestModel(t, store, lookup.WithClock(clock))
	m = search(t, m, "123")
	m = search(t, m, "999")

	require.Len(t, m.history, 2)
	assert.Equal(t, "999", m.history[0].OrderID)
	require.NotNil(t, m.stats)
	assert.Equal(t, 2, m.stats.Total)

	m, _ = update(t, m, keyTab)
	m, _ = update(t, m, keyTab)
	require.Equal(t, PaneHistory, m.activePane)
	assert.Contains(t, plain(m.View()), "History")

	m, _ = update(t, m, runeKey("j"))
	m, cmd := update(t, m, keyEnter)
	require.NotNil(t, cmd)
	assert.Equal(t, "123", m.input.Value())
	assert.True(t, m.ctrl.View().Loading)
}

func TestTabSkipsHistoryWithoutStore(t *testing.T) {
	m := newTestModel(t, nil)
	m, _ = update(t, m, keyTab)
	assert.Equal(t, PaneTree, m.activePane)
	m, _ = update(t, m, keyTab)
	assert.Equal(t, PaneInput, m.activePane)
}

func TestRenderTree(t *testing.T) {
	v, err := jsonvalue.Decode([]byte(`{"name":"say \"hi\"","ok":true,"none":null}`))
	require.NoError(t, err)

	out := plain(RenderTree(tree.Build(v)))
	assert.Equal(t, strings.Join([]string{
		"▾ {...}",
		`    "name": "say "hi""`,
		`    "ok": true`,
		`    "none": null`,
	}, "\n"), out)

	assert.Empty(t, RenderTree(nil))
}

func TestFormatPath(t *testing.T) {
	v, err := jsonvalue.Decode([]byte(`{"items":[{"name":"x"}]}`))
	require.NoError(t, err)
	root := tree.Build(v)
	leaf := root.Children[0].Children[0].Children[0]

	assert.Equal(t, "$.items[0].name", formatPath(nodePath(root, leaf)))
	assert.Equal(t, "$", formatPath(nodePath(root, root)))
	assert.Nil(t, nodePath(root, tree.Build(v)))
}
