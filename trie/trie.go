package trie

import (
	"fmt"
	"io"
	"strings"
)

// Trie is an immutable lookup structure produced by [Builder.Build]. Once
// built, no node is created, destroyed or structurally mutated: arbitrarily
// many goroutines may call its methods concurrently without coordination.
type Trie[V any] struct {
	root *Node[V]
}

// matchKind selects what counts as a successful stop during a walk.
type matchKind uint8

const (
	// requireValues only accepts a node carrying at least one value: the
	// predicate used by Find and FindAll.
	requireValues matchKind = iota
	// anyNode accepts any node once the input is exhausted, values or not:
	// the relaxed predicate used by FindNode.
	anyNode
)

// Find returns the values of the single best-matching terminal node for
// path, in registration order, or nil if nothing matches. Exact matches
// always outrank parameter matches, which always outrank catch-all
// matches, evaluated node by node from the root.
func (t *Trie[V]) Find(path string) []V {
	rem, ok := stripRoot(path)
	if !ok {
		return nil
	}
	n, ok := walk(t.root, rem, requireValues)
	if !ok {
		return nil
	}
	return n.values
}

// FindAll returns the values of every node reachable from root whose
// terminal-match predicate holds on path, concatenated in depth-first,
// best-match-first precedence order. Duplicate values registered under
// different patterns are preserved.
func (t *Trie[V]) FindAll(path string) []V {
	rem, ok := stripRoot(path)
	if !ok {
		return nil
	}
	var out []V
	collect(t.root, rem, &out)
	return out
}

// FindNode walks path using the same precedence rules as [Trie.Find] but
// returns the node reached even if it carries no values, or nil if the
// walk cannot be advanced to the end of path by any branch.
func (t *Trie[V]) FindNode(path string) *Node[V] {
	rem, ok := stripRoot(path)
	if !ok {
		return nil
	}
	n, ok := walk(t.root, rem, anyNode)
	if !ok {
		return nil
	}
	return n
}

// stripRoot removes the leading '/' that the root node's label already
// accounts for. Every registered pattern and every queried path must
// start with '/'; anything else cannot match.
func stripRoot(path string) (rem string, ok bool) {
	if path == "" || path[0] != '/' {
		return "", false
	}
	return path[1:], true
}

// FindExactNode returns the node whose path-from-root spells exactly
// path, or nil if path does not land precisely on a node boundary (for
// example because it ends mid-label, or because it traverses a parameter
// or catch-all edge, which have no literal spelling).
func (t *Trie[V]) FindExactNode(path string) *Node[V] {
	rem, ok := stripRoot(path)
	if !ok {
		return nil
	}
	return findExactBoundary(t.root, rem)
}

func findExactBoundary[V any](n *Node[V], rem string) *Node[V] {
	if rem == "" {
		return n
	}
	c := n.exactChild(rem[0])
	if c == nil || !strings.HasPrefix(rem, c.label) {
		return nil
	}
	return findExactBoundary(c, rem[len(c.label):])
}

// walk performs the depth-first, precedence-ordered search described on
// [Trie.Find] (exact, then parameter, then catch-all at every node),
// backtracking to the next lower-precedence
// alternative whenever a branch fails to reach the end of path.
func walk[V any](n *Node[V], path string, mode matchKind) (*Node[V], bool) {
	if path == "" {
		if mode == anyNode {
			return n, true
		}
		if len(n.values) > 0 {
			return n, true
		}
		if n.catchAll != nil {
			return n.catchAll, true
		}
		return nil, false
	}

	if c := n.exactChild(path[0]); c != nil && strings.HasPrefix(path, c.label) {
		if m, ok := walk(c, path[len(c.label):], mode); ok {
			return m, true
		}
	}

	if n.param != nil {
		seg, rest := splitSegment(path)
		if len(seg) > 0 {
			if m, ok := walk(n.param, rest, mode); ok {
				return m, true
			}
		}
	}

	if n.catchAll != nil {
		return n.catchAll, true
	}

	return nil, false
}

// collect performs the same walk as [walk] but gathers every matching
// node's values instead of stopping at the first.
func collect[V any](n *Node[V], path string, out *[]V) {
	if path == "" && len(n.values) > 0 {
		*out = append(*out, n.values...)
	}

	if path != "" {
		if c := n.exactChild(path[0]); c != nil && strings.HasPrefix(path, c.label) {
			collect(c, path[len(c.label):], out)
		}
	}

	if n.param != nil {
		seg, rest := splitSegment(path)
		if len(seg) > 0 {
			collect(n.param, rest, out)
		}
	}

	if n.catchAll != nil {
		*out = append(*out, n.catchAll.values...)
	}
}

// splitSegment splits path into its first '/'-delimited segment and the
// remainder, the remainder keeping the leading '/' if any.
func splitSegment(path string) (seg, rest string) {
	if idx := strings.IndexByte(path, '/'); idx >= 0 {
		return path[:idx], path[idx:]
	}
	return path, ""
}

// Dump writes a deterministic, indented rendering of the tree to w, one
// node per line: indentation proportional to depth, the node's label, and
// the number of registered values. Children are printed exact first
// (sorted by label, which is how they are stored), then parameter, then
// catch-all — tests inspect trie structure directly and treat this output
// as a human convenience, not a stable wire format.
func (t *Trie[V]) Dump(w io.Writer) {
	dumpNode(w, t.root, 0)
}

func dumpNode[V any](w io.Writer, n *Node[V], depth int) {
	fmt.Fprintf(w, "%s%s (%d)\n", strings.Repeat("  ", depth), n.label, len(n.values))
	for _, c := range n.exact {
		dumpNode(w, c, depth+1)
	}
	if n.param != nil {
		dumpNode(w, n.param, depth+1)
	}
	if n.catchAll != nil {
		dumpNode(w, n.catchAll, depth+1)
	}
}
