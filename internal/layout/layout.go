// Package layout places one attractor node per key of a keyboard-row layout
// and owns the key -> node mapping and node activation.
package layout

import (
	"unicode"

	"github.com/san-kum/musclemesh/internal/dynamo"
)

// QWERTY is the three-row letter block of a standard keyboard.
var QWERTY = []string{"qwertyuiop", "asdfghjkl", "zxcvbnm"}

// Node is one attractor. Pos is derived from (Row, Col) and never changes
// for a given domain; Activation is the only field input handling writes.
type Node struct {
	Symbol     rune
	Row, Col   int
	Pos        dynamo.Vec
	Activation float64
}

type Layout struct {
	rows      []string
	nodes     []Node
	keys      map[rune]int
	neighbors [][]int
}

// New builds the nodes for rows and positions them inside the margin-inset
// bounds. Row index maps onto the vertical axis, column index within its own
// row onto the horizontal one. A one-key row (or a single row) lands on the
// midpoint of that axis. Characters are case-folded; when a character repeats,
// the key maps to its first node.
func New(rows []string, b dynamo.Bounds) *Layout {
	l := &Layout{
		rows: make([]string, len(rows)),
		keys: make(map[rune]int),
	}
	copy(l.rows, rows)

	for r, row := range rows {
		chars := []rune(row)
		for c, ch := range chars {
			sym := unicode.ToLower(ch)
			if _, seen := l.keys[sym]; !seen {
				l.keys[sym] = len(l.nodes)
			}
			l.nodes = append(l.nodes, Node{Symbol: sym, Row: r, Col: c})
		}
	}

	l.Relayout(b)
	l.buildNeighbors()
	return l
}

// Relayout re-derives every node position against new bounds. Activation is
// left untouched.
func (l *Layout) Relayout(b dynamo.Bounds) {
	numRows := len(l.rows)
	for i := range l.nodes {
		n := &l.nodes[i]
		width := len([]rune(l.rows[n.Row]))
		n.Pos = dynamo.Vec{
			X: dynamo.MapRange(dynamo.Fraction(n.Col, width), b.Left(), b.Right()),
			Y: dynamo.MapRange(dynamo.Fraction(n.Row, numRows), b.Top(), b.Bottom()),
		}
	}
}

// buildNeighbors links keys that touch on a staggered keyboard: the previous
// and next key in the row, and up to three keys in each adjacent row.
func (l *Layout) buildNeighbors() {
	l.neighbors = make([][]int, len(l.nodes))
	for i, a := range l.nodes {
		for j, b := range l.nodes {
			if i == j {
				continue
			}
			dr, dc := b.Row-a.Row, b.Col-a.Col
			switch {
			case dr == 0 && (dc == 1 || dc == -1):
			case (dr == 1 || dr == -1) && dc >= -1 && dc <= 1:
			default:
				continue
			}
			l.neighbors[i] = append(l.neighbors[i], j)
		}
	}
}

// Index returns the node index mapped to symbol.
func (l *Layout) Index(symbol rune) (int, bool) {
	i, ok := l.keys[unicode.ToLower(symbol)]
	return i, ok
}

// Activate sets the mapped node's activation to 1. Unknown symbols are a
// no-op; the return value reports whether the symbol was known.
func (l *Layout) Activate(symbol rune) bool {
	return l.set(symbol, 1)
}

// Deactivate sets the mapped node's activation to 0.
func (l *Layout) Deactivate(symbol rune) bool {
	return l.set(symbol, 0)
}

func (l *Layout) set(symbol rune, level float64) bool {
	i, ok := l.Index(symbol)
	if !ok {
		return false
	}
	l.nodes[i].Activation = level
	return true
}

// Len returns the number of nodes.
func (l *Layout) Len() int { return len(l.nodes) }

// Node returns a copy of node i.
func (l *Layout) Node(i int) Node { return l.nodes[i] }

// Nodes exposes the node slice for read-only consumers (renderers,
// partitioning). Callers must not modify it.
func (l *Layout) Nodes() []Node { return l.nodes }

// Positions appends every node position to dst in index order.
func (l *Layout) Positions(dst []dynamo.Vec) []dynamo.Vec {
	for _, n := range l.nodes {
		dst = append(dst, n.Pos)
	}
	return dst
}

// Neighbors returns the indices of the keys adjacent to node i.
func (l *Layout) Neighbors(i int) []int { return l.neighbors[i] }

// Symbols returns the distinct mapped symbols in node order.
func (l *Layout) Symbols() []rune {
	out := make([]rune, 0, len(l.keys))
	for i, n := range l.nodes {
		if l.keys[n.Symbol] == i {
			out = append(out, n.Symbol)
		}
	}
	return out
}

// Active counts nodes with non-zero activation.
func (l *Layout) Active() int {
	count := 0
	for _, n := range l.nodes {
		if n.Activation != 0 {
			count++
		}
	}
	return count
}

// Sources appends one Source per active node to dst. gain scales each
// node's activation; a nil gain means 1 for every node.
func (l *Layout) Sources(dst []dynamo.Source, gain func(i int) float64) []dynamo.Source {
	for i, n := range l.nodes {
		if n.Activation == 0 {
			continue
		}
		level := n.Activation
		if gain != nil {
			level *= gain(i)
		}
		dst = append(dst, dynamo.Source{Index: i, Pos: n.Pos, Level: level})
	}
	return dst
}
