// Package repository holds the ranking state: the ordered rank index and the
// player directory.
package repository

import (
	"github.com/okian/podium/internal/domain/model"
)

// Binary search tree over model.Entry.
//
// Ordering: score DESC, then player ID ASC (model.Compare). "Less" means
// ranks earlier, so in-order traversal produces the leaderboard from best to
// worst and the in-order successor of a node is the leftmost node of its
// right subtree.
//
// Every node carries its subtree size so rank and select run in O(height),
// and its height so the optional AVL balancing can rotate on the way back up.

// NotFound is the rank reported for an identifier that is not indexed.
const NotFound = -1

type node struct {
	entry  model.Entry
	left   *node
	right  *node
	size   int
	height int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func nheight(n *node) int {
	if n == nil {
		return 0
	}
	return n.height
}

func fix(n *node) {
	n.size = 1 + nsize(n.left) + nsize(n.right)
	n.height = 1 + max(nheight(n.left), nheight(n.right))
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

// RankIndex is an ordered index of entries. It is not safe for concurrent
// use; the engine serializes access.
type RankIndex struct {
	root     *node
	balanced bool
}

// NewRankIndex constructs an empty index. Balancing is off unless enabled
// with WithBalancing.
func NewRankIndex(opts ...Option) *RankIndex {
	ix := &RankIndex{}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Balanced reports whether AVL rebalancing is enabled.
func (ix *RankIndex) Balanced() bool { return ix.balanced }

// Len returns the number of indexed entries in O(1).
func (ix *RankIndex) Len() int { return nsize(ix.root) }

// Height returns the height of the tree (0 when empty).
func (ix *RankIndex) Height() int { return nheight(ix.root) }

// Clear drops every node.
func (ix *RankIndex) Clear() { ix.root = nil }

// Insert places e according to the ordering relation in O(height). It does
// not look for an existing entry with the same identifier; callers remove the
// stale entry first.
func (ix *RankIndex) Insert(e model.Entry) {
	ix.root = ix.insert(ix.root, e)
}

func (ix *RankIndex) insert(n *node, e model.Entry) *node {
	if n == nil {
		return &node{entry: e, size: 1, height: 1}
	}
	if model.Less(e, n.entry) {
		n.left = ix.insert(n.left, e)
	} else {
		n.right = ix.insert(n.right, e)
	}
	return ix.restore(n)
}

// restore recomputes size and height and, in balanced mode, applies the AVL
// rotations for n.
func (ix *RankIndex) restore(n *node) *node {
	fix(n)
	if !ix.balanced {
		return n
	}
	switch bf := nheight(n.left) - nheight(n.right); {
	case bf > 1:
		if nheight(n.left.left) < nheight(n.left.right) {
			n.left = rotateLeft(n.left)
		}
		return rotateRight(n)
	case bf < -1:
		if nheight(n.right.right) < nheight(n.right.left) {
			n.right = rotateRight(n.right)
		}
		return rotateLeft(n)
	}
	return n
}

// Delete removes the entry for id. Tree order is by score, so the entry is
// located by a full traversal (O(n)) before the keyed removal.
// Returns false if id is not indexed.
func (ix *RankIndex) Delete(id string) bool {
	e, ok := ix.Search(id)
	if !ok {
		return false
	}
	return ix.DeleteEntry(e)
}

// DeleteEntry removes the node holding e (same identifier and score),
// descending by the ordering relation in O(height).
func (ix *RankIndex) DeleteEntry(e model.Entry) bool {
	var removed bool
	ix.root, removed = ix.remove(ix.root, e)
	return removed
}

func (ix *RankIndex) remove(n *node, e model.Entry) (*node, bool) {
	if n == nil {
		return nil, false
	}
	var removed bool
	switch c := model.Compare(e, n.entry); {
	case c < 0:
		n.left, removed = ix.remove(n.left, e)
	case c > 0:
		n.right, removed = ix.remove(n.right, e)
	default:
		if n.left == nil {
			return n.right, true
		}
		if n.right == nil {
			return n.left, true
		}
		// Two children: take over the in-order successor's entry, then
		// remove the successor's original node from the right subtree.
		succ := leftmost(n.right)
		n.entry = succ.entry
		n.right, _ = ix.remove(n.right, succ.entry)
		removed = true
	}
	if !removed {
		return n, false
	}
	return ix.restore(n), true
}

func leftmost(n *node) *node {
	for n.left != nil {
		n = n.left
	}
	return n
}

// Search finds the entry for id by full traversal in O(n).
func (ix *RankIndex) Search(id string) (model.Entry, bool) {
	if n := search(ix.root, id); n != nil {
		return n.entry, true
	}
	return model.Entry{}, false
}

func search(n *node, id string) *node {
	if n == nil {
		return nil
	}
	if n.entry.ID() == id {
		return n
	}
	if found := search(n.left, id); found != nil {
		return found
	}
	return search(n.right, id)
}

// Ascend calls fn for each entry in rank order until fn returns false.
func (ix *RankIndex) Ascend(fn func(model.Entry) bool) {
	ascend(ix.root, fn)
}

func ascend(n *node, fn func(model.Entry) bool) bool {
	if n == nil {
		return true
	}
	if !ascend(n.left, fn) {
		return false
	}
	if !fn(n.entry) {
		return false
	}
	return ascend(n.right, fn)
}

// Listing returns every entry in rank order, best first.
func (ix *RankIndex) Listing() []model.Entry {
	out := make([]model.Entry, 0, ix.Len())
	ix.Ascend(func(e model.Entry) bool {
		out = append(out, e)
		return true
	})
	return out
}

// Top returns the first n entries of the listing. n <= 0 yields an empty
// slice; fewer than n entries are returned when the index is smaller.
func (ix *RankIndex) Top(n int) []model.Entry {
	return ix.Slice(0, n)
}

// Slice returns up to limit entries starting at the 0-based position offset
// of the listing. Subtrees entirely before offset are skipped by size.
func (ix *RankIndex) Slice(offset, limit int) []model.Entry {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || offset >= ix.Len() {
		return []model.Entry{}
	}
	out := make([]model.Entry, 0, min(limit, ix.Len()-offset))
	collectFrom(ix.root, offset, limit, &out)
	return out
}

// collectFrom appends entries of the subtree rooted at n, skipping the first
// skip of them, until out holds limit entries.
func collectFrom(n *node, skip, limit int, out *[]model.Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	leftSize := nsize(n.left)
	if skip < leftSize {
		collectFrom(n.left, skip, limit, out)
		skip = 0
	} else {
		skip -= leftSize
	}
	if len(*out) >= limit {
		return
	}
	if skip == 0 {
		*out = append(*out, n.entry)
	} else {
		skip--
	}
	collectFrom(n.right, skip, limit, out)
}

// RankOf returns the 1-indexed rank of id, or NotFound. The lookup is a
// full traversal; RankOfEntry is O(height) when the entry is known.
func (ix *RankIndex) RankOf(id string) int {
	e, ok := ix.Search(id)
	if !ok {
		return NotFound
	}
	return ix.RankOfEntry(e)
}

// RankOfEntry counts the predecessors of e along its search path.
func (ix *RankIndex) RankOfEntry(e model.Entry) int {
	rank := 0
	n := ix.root
	for n != nil {
		switch c := model.Compare(e, n.entry); {
		case c < 0:
			n = n.left
		case c > 0:
			rank += nsize(n.left) + 1
			n = n.right
		default:
			return rank + nsize(n.left) + 1
		}
	}
	return NotFound
}

// At returns the entry holding the 1-indexed rank.
func (ix *RankIndex) At(rank int) (model.Entry, bool) {
	if rank < 1 || rank > ix.Len() {
		return model.Entry{}, false
	}
	n := ix.root
	for n != nil {
		leftSize := nsize(n.left)
		switch {
		case rank <= leftSize:
			n = n.left
		case rank == leftSize+1:
			return n.entry, true
		default:
			rank -= leftSize + 1
			n = n.right
		}
	}
	return model.Entry{}, false
}
