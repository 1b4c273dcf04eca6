package tui

import (
	"strings"

	"github.com/Mr-Dark-debug/orderlens/internal/tree"
	"github.com/Mr-Dark-debug/orderlens/pkg/jsonvalue"
)

// ────────────────────────────────────────────────────────────
// Tree paths
// ────────────────────────────────────────────────────────────

// nodePath returns the chain of nodes from root to target, inclusive, or
// nil if target is not in the tree.
func nodePath(root, target *tree.Node) []*tree.Node {
	if root == nil || target == nil {
		return nil
	}
	if root == target {
		return []*tree.Node{root}
	}
	for _, child := range root.Children {
		if p := nodePath(child, target); p != nil {
			return append([]*tree.Node{root}, p...)
		}
	}
	return nil
}

// formatPath renders a node chain as a JSONPath-like string:
//
//	$.items[0].name
func formatPath(chain []*tree.Node) string {
	var b strings.Builder
	b.WriteString("$")
	for i := 1; i < len(chain); i++ {
		parent, n := chain[i-1], chain[i]
		if parent.Kind == jsonvalue.KindArray {
			b.WriteString("[" + n.Key + "]")
		} else {
			b.WriteString("." + n.Key)
		}
	}
	return b.String()
}

// ────────────────────────────────────────────────────────────
// String helpers
// ────────────────────────────────────────────────────────────

// truncate cuts a string to maxLen and appends "..." if truncated.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// shortID returns first n characters of an ID string.
func shortID(id string, n int) string {
	if len(id) <= n {
		return id
	}
	return id[:n]
}

// clamp restricts val to [lo, hi].
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// maxInt returns the larger of a and b.
func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// minInt returns the smaller of a and b.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
