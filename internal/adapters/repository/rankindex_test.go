package repository

import (
	"fmt"
	"math/rand"
	"slices"
	"testing"
	"time"

	"github.com/okian/podium/internal/domain/model"
)

var testTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func entry(id string, score int64) model.Entry {
	return model.NewEntry(id, "name-"+id, score, testTime)
}

// checkInvariants walks the whole tree and verifies ordering, subtree sizes
// and, in balanced mode, AVL heights.
func checkInvariants(t *testing.T, ix *RankIndex) {
	t.Helper()
	var walk func(n *node) (size, height int)
	walk = func(n *node) (int, int) {
		if n == nil {
			return 0, 0
		}
		if n.left != nil && !model.Less(n.left.entry, n.entry) {
			t.Fatalf("left child %s does not precede %s", n.left.entry.ID(), n.entry.ID())
		}
		if n.right != nil && !model.Less(n.entry, n.right.entry) {
			t.Fatalf("right child %s does not follow %s", n.right.entry.ID(), n.entry.ID())
		}
		ls, lh := walk(n.left)
		rs, rh := walk(n.right)
		if n.size != ls+rs+1 {
			t.Fatalf("node %s: size %d, want %d", n.entry.ID(), n.size, ls+rs+1)
		}
		h := 1 + max(lh, rh)
		if n.height != h {
			t.Fatalf("node %s: height %d, want %d", n.entry.ID(), n.height, h)
		}
		if ix.balanced && (lh-rh > 1 || rh-lh > 1) {
			t.Fatalf("node %s: unbalanced (%d vs %d)", n.entry.ID(), lh, rh)
		}
		return n.size, h
	}
	walk(ix.root)

	listing := ix.Listing()
	for i := 1; i < len(listing); i++ {
		if !model.Less(listing[i-1], listing[i]) {
			t.Fatalf("listing not strictly ordered at %d: %s(%d) then %s(%d)",
				i, listing[i-1].ID(), listing[i-1].Score(), listing[i].ID(), listing[i].Score())
		}
	}
	if len(listing) != ix.Len() {
		t.Fatalf("listing has %d entries, Len() = %d", len(listing), ix.Len())
	}
}

func bothModes(t *testing.T, fn func(t *testing.T, ix *RankIndex)) {
	for _, balanced := range []bool{false, true} {
		t.Run(fmt.Sprintf("balanced=%v", balanced), func(t *testing.T) {
			fn(t, NewRankIndex(WithBalancing(balanced)))
		})
	}
}

func TestRankIndex_Empty(t *testing.T) {
	bothModes(t, func(t *testing.T, ix *RankIndex) {
		if ix.Len() != 0 {
			t.Errorf("expected empty index, got %d", ix.Len())
		}
		if got := ix.RankOf("nobody"); got != NotFound {
			t.Errorf("expected NotFound rank, got %d", got)
		}
		if got := ix.Top(5); len(got) != 0 {
			t.Errorf("expected empty top, got %d", len(got))
		}
		if ix.Delete("nobody") {
			t.Error("expected delete on empty index to report false")
		}
		if _, ok := ix.Search("nobody"); ok {
			t.Error("expected search miss")
		}
		if _, ok := ix.At(1); ok {
			t.Error("expected At(1) miss on empty index")
		}
	})
}

func TestRankIndex_Ordering(t *testing.T) {
	bothModes(t, func(t *testing.T, ix *RankIndex) {
		ix.Insert(entry("p1", 85))
		ix.Insert(entry("p2", 95))
		ix.Insert(entry("p3", 75))
		ix.Insert(entry("p4", 100))
		ix.Insert(entry("p5", 80))
		checkInvariants(t, ix)

		want := []string{"p4", "p2", "p1", "p5", "p3"}
		for i, e := range ix.Listing() {
			if e.ID() != want[i] {
				t.Errorf("position %d: expected %s, got %s", i, want[i], e.ID())
			}
			if r := ix.RankOf(e.ID()); r != i+1 {
				t.Errorf("%s: expected rank %d, got %d", e.ID(), i+1, r)
			}
			if r := ix.RankOfEntry(e); r != i+1 {
				t.Errorf("%s: expected keyed rank %d, got %d", e.ID(), i+1, r)
			}
			if at, ok := ix.At(i + 1); !ok || at.ID() != e.ID() {
				t.Errorf("At(%d): expected %s, got %s", i+1, e.ID(), at.ID())
			}
		}
	})
}

func TestRankIndex_TieBreaking(t *testing.T) {
	bothModes(t, func(t *testing.T, ix *RankIndex) {
		ix.Insert(entry("b", 100))
		ix.Insert(entry("c", 100))
		ix.Insert(entry("a", 100))

		got := ix.Listing()
		if got[0].ID() != "a" || got[1].ID() != "b" || got[2].ID() != "c" {
			t.Errorf("expected a,b,c for equal scores, got %s,%s,%s", got[0].ID(), got[1].ID(), got[2].ID())
		}
		if ix.RankOf("a") == ix.RankOf("b") {
			t.Error("equal scores must still get distinct ranks")
		}
	})
}

func TestRankIndex_TopBoundaries(t *testing.T) {
	bothModes(t, func(t *testing.T, ix *RankIndex) {
		for i := 0; i < 5; i++ {
			ix.Insert(entry(fmt.Sprintf("p%d", i), int64(i*10)))
		}
		if got := ix.Top(0); len(got) != 0 {
			t.Errorf("Top(0): expected empty, got %d", len(got))
		}
		if got := ix.Top(-3); len(got) != 0 {
			t.Errorf("Top(-3): expected empty, got %d", len(got))
		}
		if got := ix.Top(3); len(got) != 3 || got[0].ID() != "p4" || got[2].ID() != "p2" {
			t.Errorf("Top(3): unexpected %v", ids(got))
		}
		if got := ix.Top(50); len(got) != 5 {
			t.Errorf("Top(50): expected 5, got %d", len(got))
		}
	})
}

func TestRankIndex_Slice(t *testing.T) {
	bothModes(t, func(t *testing.T, ix *RankIndex) {
		for i := 0; i < 20; i++ {
			ix.Insert(entry(fmt.Sprintf("p%02d", i), int64(i)))
		}
		full := ix.Listing()
		cases := []struct{ offset, limit int }{
			{0, 5}, {3, 4}, {10, 10}, {15, 100}, {19, 1}, {20, 5}, {-2, 3}, {5, 0},
		}
		for _, tc := range cases {
			got := ix.Slice(tc.offset, tc.limit)
			start := max(tc.offset, 0)
			end := min(start+max(tc.limit, 0), len(full))
			var want []model.Entry
			if start < end {
				want = full[start:end]
			}
			if !slices.Equal(ids(got), ids(want)) {
				t.Errorf("Slice(%d,%d): expected %v, got %v", tc.offset, tc.limit, ids(want), ids(got))
			}
		}
	})
}

func TestRankIndex_DeleteCases(t *testing.T) {
	bothModes(t, func(t *testing.T, ix *RankIndex) {
		// Shape (unbalanced): 50 root, 70 left subtree with 80/60, 30 right with 40/20.
		for _, s := range []int64{50, 70, 30, 80, 60, 40, 20} {
			ix.Insert(entry(fmt.Sprintf("s%d", s), s))
		}
		checkInvariants(t, ix)

		// leaf
		if !ix.Delete("s20") {
			t.Fatal("expected leaf delete to succeed")
		}
		checkInvariants(t, ix)

		// one child
		if !ix.Delete("s30") {
			t.Fatal("expected one-child delete to succeed")
		}
		checkInvariants(t, ix)

		// two children (root)
		if !ix.Delete("s50") {
			t.Fatal("expected two-children delete to succeed")
		}
		checkInvariants(t, ix)

		if got := ids(ix.Listing()); !slices.Equal(got, []string{"s80", "s70", "s60", "s40"}) {
			t.Errorf("unexpected listing after deletes: %v", got)
		}
		if ix.Delete("s50") {
			t.Error("expected second delete of the same id to report false")
		}
		if ix.Len() != 4 {
			t.Errorf("expected 4 entries, got %d", ix.Len())
		}
	})
}

func TestRankIndex_DeleteEntryRequiresMatchingScore(t *testing.T) {
	ix := NewRankIndex()
	ix.Insert(entry("p1", 10))
	if ix.DeleteEntry(entry("p1", 11)) {
		t.Error("expected keyed delete with a stale score to miss")
	}
	if !ix.DeleteEntry(entry("p1", 10)) {
		t.Error("expected keyed delete to succeed")
	}
}

func TestRankIndex_Clear(t *testing.T) {
	ix := NewRankIndex(WithBalancing(true))
	for i := 0; i < 10; i++ {
		ix.Insert(entry(fmt.Sprintf("p%d", i), int64(i)))
	}
	ix.Clear()
	if ix.Len() != 0 || ix.Height() != 0 {
		t.Errorf("expected cleared index, got len=%d height=%d", ix.Len(), ix.Height())
	}
}

func TestRankIndex_BalancingBoundsHeight(t *testing.T) {
	plain := NewRankIndex()
	avl := NewRankIndex(WithBalancing(true))
	const n = 1024
	for i := 0; i < n; i++ {
		e := entry(fmt.Sprintf("p%04d", i), int64(i))
		plain.Insert(e)
		avl.Insert(e)
	}
	if plain.Height() != n {
		t.Errorf("expected a degenerate plain tree of height %d, got %d", n, plain.Height())
	}
	// AVL height bound is about 1.44*log2(n).
	if avl.Height() > 15 {
		t.Errorf("expected balanced height <= 15, got %d", avl.Height())
	}
	checkInvariants(t, avl)
}

// TestRankIndex_RandomAgainstReference applies random inserts and deletes and
// compares the listing against a sorted reference slice after every step.
func TestRankIndex_RandomAgainstReference(t *testing.T) {
	bothModes(t, func(t *testing.T, ix *RankIndex) {
		rng := rand.New(rand.NewSource(7))
		live := make(map[string]model.Entry)

		for step := 0; step < 3000; step++ {
			id := fmt.Sprintf("p%03d", rng.Intn(200))
			if old, ok := live[id]; ok {
				var removed bool
				if rng.Intn(2) == 0 {
					removed = ix.Delete(id)
				} else {
					removed = ix.DeleteEntry(old)
				}
				if !removed {
					t.Fatalf("step %d: delete of live %s failed", step, id)
				}
				delete(live, id)
			} else {
				e := entry(id, int64(rng.Intn(50)-25))
				ix.Insert(e)
				live[id] = e
			}

			if step%50 == 0 {
				checkInvariants(t, ix)
			}
			want := make([]model.Entry, 0, len(live))
			for _, e := range live {
				want = append(want, e)
			}
			slices.SortFunc(want, model.Compare)
			if !slices.Equal(ids(ix.Listing()), ids(want)) {
				t.Fatalf("step %d: listing diverged from reference", step)
			}
		}
		checkInvariants(t, ix)

		for rank, e := range ix.Listing() {
			if got := ix.RankOf(e.ID()); got != rank+1 {
				t.Fatalf("%s: expected rank %d, got %d", e.ID(), rank+1, got)
			}
		}
	})
}

func ids(entries []model.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID()
	}
	return out
}
