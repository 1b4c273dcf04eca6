// Package tree turns a decoded JSON value into a collapsible view tree.
//
// Build is a pure mapping from jsonvalue.Value to *Node. The only state
// that changes afterwards is each composite node's Collapsed flag, flipped
// by Toggle on the node the user acted on. Collapsing never drops children;
// Visible simply skips them.
package tree

import (
	"strconv"

	"github.com/Mr-Dark-debug/orderlens/pkg/jsonvalue"
)

// Class tags a scalar leaf with its presentation class.
type Class string

const (
	ClassNone    Class = ""
	ClassString  Class = "json-string"
	ClassNumber  Class = "json-number"
	ClassBoolean Class = "json-boolean"
	ClassNull    Class = "json-null"
)

const (
	GlyphExpanded  = "▾"
	GlyphCollapsed = "▸"

	MarkerObject = "{...}"
	MarkerArray  = "[...]"
)

// Node is the view state of one JSON value.
type Node struct {
	// Key is the member name, or the index for array items.
	Key    string
	HasKey bool

	Kind  jsonvalue.Kind
	Value jsonvalue.Value

	// Text and Class are set for scalar leaves only.
	Text  string
	Class Class

	Collapsed bool
	Children  []*Node
}

// Build renders v into a fresh tree with every composite expanded.
func Build(v jsonvalue.Value) *Node {
	return build(v, "", false)
}

func build(v jsonvalue.Value, key string, hasKey bool) *Node {
	n := &Node{
		Key:    key,
		HasKey: hasKey,
		Kind:   v.Kind(),
		Value:  v,
	}

	switch v.Kind() {
	case jsonvalue.KindObject:
		members := v.Members()
		n.Children = make([]*Node, 0, len(members))
		for _, m := range members {
			n.Children = append(n.Children, build(m.Value, m.Key, true))
		}
	case jsonvalue.KindArray:
		items := v.Items()
		n.Children = make([]*Node, 0, len(items))
		for i, item := range items {
			n.Children = append(n.Children, build(item, strconv.Itoa(i), true))
		}
	default:
		n.Text, n.Class = FormatScalar(v)
	}
	return n
}

// IsComposite reports whether n renders as a toggleable object or array.
func (n *Node) IsComposite() bool {
	return n.Kind == jsonvalue.KindObject || n.Kind == jsonvalue.KindArray
}

// Toggle flips the collapsed state of a composite node. Leaves ignore it.
func (n *Node) Toggle() {
	if n.IsComposite() {
		n.Collapsed = !n.Collapsed
	}
}

// Glyph returns the toggle control text for a composite node.
func (n *Node) Glyph() string {
	if !n.IsComposite() {
		return ""
	}
	if n.Collapsed {
		return GlyphCollapsed
	}
	return GlyphExpanded
}

// Marker returns the type marker of a composite node.
func (n *Node) Marker() string {
	switch n.Kind {
	case jsonvalue.KindObject:
		return MarkerObject
	case jsonvalue.KindArray:
		return MarkerArray
	default:
		return ""
	}
}

// KeyLabel returns `"key": `, or "" for the root.
func (n *Node) KeyLabel() string {
	if !n.HasKey {
		return ""
	}
	return `"` + n.Key + `": `
}

// SetCollapsed sets the collapsed state of every composite under root.
func SetCollapsed(root *Node, collapsed bool) {
	if root == nil {
		return
	}
	if root.IsComposite() {
		root.Collapsed = collapsed
	}
	for _, c := range root.Children {
		SetCollapsed(c, collapsed)
	}
}

// FormatScalar returns the display text and class of a scalar value.
// Strings are wrapped in quotes without escaping.
func FormatScalar(v jsonvalue.Value) (string, Class) {
	switch v.Kind() {
	case jsonvalue.KindString:
		return `"` + v.Str() + `"`, ClassString
	case jsonvalue.KindNumber:
		return FormatNumber(v.Literal()), ClassNumber
	case jsonvalue.KindBool:
		return strconv.FormatBool(v.Bool()), ClassBoolean
	case jsonvalue.KindNull:
		return "null", ClassNull
	default:
		return "", ClassNone
	}
}
