package tree

import "strings"

// Row is one visible line of the tree.
type Row struct {
	Node  *Node
	Depth int
}

// Visible lists the rows that are shown given the current collapse state:
// a collapsed node's own row is visible, its descendants are not.
func Visible(root *Node) []Row {
	if root == nil {
		return nil
	}
	var rows []Row
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		rows = append(rows, Row{Node: n, Depth: depth})
		if n.Collapsed {
			return
		}
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(root, 0)
	return rows
}

// Plain renders the row as unstyled text:
//
//	▾ "items": [...]
//	    "0": 1
func (r Row) Plain() string {
	indent := strings.Repeat("  ", r.Depth)
	n := r.Node
	if n.IsComposite() {
		return indent + n.Glyph() + " " + n.KeyLabel() + n.Marker()
	}
	return indent + "  " + n.KeyLabel() + n.Text
}

// Entry is a structural summary of one node, independent of collapse state.
type Entry struct {
	Depth  int
	Key    string
	HasKey bool
	// Text is the scalar text for leaves and the type marker for composites.
	Text string
}

// Flatten lists every node in pre-order, including the descendants of
// collapsed nodes.
func Flatten(root *Node) []Entry {
	if root == nil {
		return nil
	}
	var out []Entry
	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		text := n.Text
		if n.IsComposite() {
			text = n.Marker()
		}
		out = append(out, Entry{Depth: depth, Key: n.Key, HasKey: n.HasKey, Text: text})
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(root, 0)
	return out
}

// IndexOf returns the position of n in rows, or -1.
func IndexOf(rows []Row, n *Node) int {
	for i, r := range rows {
		if r.Node == n {
			return i
		}
	}
	return -1
}
