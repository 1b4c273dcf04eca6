// Package tui implements the orderlens terminal user interface.
//
// Built with Charmbracelet's BubbleTea, Lipgloss, and Bubbles libraries.
//
// Component architecture:
//
//	model.go     root model, message routing, Init/Update/View
//	theme.go     centralized color + style definitions
//	header.go    top bar, query bar, status line, footer hints
//	treeview.go  collapsible JSON tree pane
//	detail.go    selected node path, kind and JSON preview
//	history.go   recent lookups from the journal
//	helpers.go   tree paths, truncation, etc.
package tui
