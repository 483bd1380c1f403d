package sim

import (
	"testing"

	"github.com/sortline/sortline/internal/events"
)

func TestPlaceBelowMinClusterDoesNotResolve(t *testing.T) {
	g := NewGrid(5, 5, 3)
	if c := g.Place(0, 0, 1); c.Exists() {
		t.Error("single item resolved as a cluster")
	}
	if c := g.Place(0, 1, 1); c.Exists() {
		t.Error("pair resolved with minCluster 3")
	}
	if g.OccupiedCount() != 2 {
		t.Errorf("occupied = %d, want 2", g.OccupiedCount())
	}
}

func TestPlaceResolvesAtMinCluster(t *testing.T) {
	g := NewGrid(5, 5, 3)
	g.Place(1, 1, 2)
	g.Place(1, 2, 2)
	c := g.Place(1, 3, 2)
	if !c.Exists() {
		t.Fatal("vertical triple did not resolve")
	}
	if c.Item != 2 {
		t.Errorf("cluster item = %d, want 2", c.Item)
	}
	if len(c.Positions) != 3 {
		t.Errorf("cluster size = %d, want 3", len(c.Positions))
	}
}

func TestResolveIgnoresDiagonalsAndOtherTypes(t *testing.T) {
	g := NewGrid(5, 5, 3)
	// Diagonal chain of type 1 plus one stray of type 2.
	g.Place(0, 0, 1)
	g.Place(1, 1, 1)
	g.Place(0, 1, 2)
	if c := g.Place(2, 2, 1); c.Exists() {
		t.Error("diagonal neighbors joined a cluster")
	}
}

func TestResolveVisitationOrder(t *testing.T) {
	// Cross shape around (2,2). Fixed neighbor order (up, down, left,
	// right) pins the BFS output order.
	g := NewGrid(5, 5, 3)
	g.Place(2, 1, 7)
	g.Place(2, 3, 7)
	g.Place(1, 2, 7)
	g.Place(3, 2, 7)
	c := g.Place(2, 2, 7)
	if !c.Exists() || len(c.Positions) != 5 {
		t.Fatalf("cross did not resolve as one cluster: %+v", c)
	}
	want := []events.Position{
		{X: 2, Y: 2}, {X: 2, Y: 1}, {X: 2, Y: 3}, {X: 1, Y: 2}, {X: 3, Y: 2},
	}
	for i, p := range want {
		if c.Positions[i] != p {
			t.Fatalf("position %d = %+v, want %+v (full: %v)", i, c.Positions[i], p, c.Positions)
		}
	}
}

func TestPlaceOutOfRangeIsNoOp(t *testing.T) {
	g := NewGrid(3, 3, 2)
	if c := g.Place(-1, 0, 1); c.Exists() {
		t.Error("out-of-range place returned a cluster")
	}
	if c := g.Place(3, 3, 1); c.Exists() {
		t.Error("out-of-range place returned a cluster")
	}
	if g.OccupiedCount() != 0 {
		t.Error("out-of-range place mutated the board")
	}
}

func TestPlaceOverwrites(t *testing.T) {
	g := NewGrid(3, 3, 3)
	g.Place(1, 1, 1)
	g.Place(1, 1, 2)
	item, ok := g.ItemAt(1, 1)
	if !ok || item != 2 {
		t.Errorf("cell = %d %v, want overwritten to 2", item, ok)
	}
	if g.OccupiedCount() != 1 {
		t.Errorf("occupied = %d, want 1", g.OccupiedCount())
	}
}

func TestRemoveClearsCells(t *testing.T) {
	g := NewGrid(3, 3, 2)
	g.Place(0, 0, 1)
	g.Place(2, 2, 1)
	g.Remove([]Position{{X: 0, Y: 0}, {X: 2, Y: 2}, {X: 9, Y: 9}})
	if g.OccupiedCount() != 0 {
		t.Error("remove left cells filled")
	}
}

func TestLockedCellsNeverJoinClusters(t *testing.T) {
	g := NewGrid(5, 5, 3)
	g.PlaceLocked(1, 2, 4, 2)
	g.Place(1, 0, 4)
	c := g.Place(1, 1, 4)
	if c.Exists() {
		t.Error("locked cell completed a cluster")
	}
}

func TestHitLockUnlocksAtZero(t *testing.T) {
	g := NewGrid(5, 5, 3)
	g.PlaceLocked(2, 2, 4, 2)

	if !g.HitLock(2, 2) {
		t.Fatal("first hit did not land")
	}
	if g.CellAt(2, 2).LockHP != 1 {
		t.Errorf("lock hp = %d, want 1", g.CellAt(2, 2).LockHP)
	}
	if !g.HitLock(2, 2) {
		t.Fatal("second hit did not land")
	}
	if g.HitLock(2, 2) {
		t.Error("hit landed on an unlocked cell")
	}

	// Unlocked cell now behaves like a normal item.
	g.Place(2, 1, 4)
	c := g.Place(2, 3, 4)
	if !c.Exists() || len(c.Positions) != 3 {
		t.Errorf("unlocked cell did not join a cluster: %+v", c)
	}
}

func TestEmptyPositionsRowMajor(t *testing.T) {
	g := NewGrid(2, 2, 2)
	g.Place(1, 0, 1)
	got := g.EmptyPositions()
	want := []Position{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}
	if len(got) != len(want) {
		t.Fatalf("empty count = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("empty[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g := NewGrid(3, 3, 2)
	g.Place(0, 0, 1)
	c := g.Clone()
	c.Place(1, 1, 2)
	if !g.IsEmpty(1, 1) {
		t.Error("mutating the clone leaked into the original")
	}
	if _, ok := c.ItemAt(0, 0); !ok {
		t.Error("clone lost existing cells")
	}
}
