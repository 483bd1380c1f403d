// Package sim contains the deterministic gameplay core: the conveyor and
// pocket queues, the cluster-resolving grid, and the tick-driven engine
// that binds them to the difficulty stack. Everything here is single
// threaded and UI-agnostic; given one seed and one command sequence, two
// runs are bit-for-bit identical.
package sim

import "github.com/sortline/sortline/internal/events"

// ItemType identifies one of the spawnable item kinds. Values index into
// the level's spawn-weight table.
type ItemType int

// Position is a grid coordinate. Aliased so cluster positions flow into
// bus events without conversion.
type Position = events.Position

// Cell is a single grid cell. A locked cell holds an obstacle that must
// be chipped by adjacent cluster clears before it behaves like a normal
// item.
type Cell struct {
	Filled bool
	Item   ItemType // valid only when Filled
	LockHP int      // >0 means locked
}

// Cluster is the result of a resolution pass: the member positions of a
// same-type 4-connected component that met the minimum size, in BFS
// visitation order. The zero value is the "no cluster" sentinel.
type Cluster struct {
	Item      ItemType
	Positions []Position
}

// Exists reports whether a cluster was actually found.
func (c Cluster) Exists() bool {
	return len(c.Positions) > 0
}

// Grid is the fixed-size board. Cells are stored row-major: index = y*W + x.
// Dimensions and the minimum cluster size are fixed for one level attempt.
type Grid struct {
	w, h       int
	minCluster int
	cells      []Cell
}

// NewGrid creates an empty grid.
func NewGrid(w, h, minCluster int) *Grid {
	if minCluster < 2 {
		minCluster = 2
	}
	return &Grid{
		w:          w,
		h:          h,
		minCluster: minCluster,
		cells:      make([]Cell, w*h),
	}
}

func (g *Grid) index(x, y int) int {
	return y*g.w + x
}

// Width returns the board width.
func (g *Grid) Width() int { return g.w }

// Height returns the board height.
func (g *Grid) Height() int { return g.h }

// MinCluster returns the minimum resolvable cluster size.
func (g *Grid) MinCluster() int { return g.minCluster }

// IsValidPosition reports whether (x, y) lies on the board.
func (g *Grid) IsValidPosition(x, y int) bool {
	return x >= 0 && x < g.w && y >= 0 && y < g.h
}

// IsEmpty reports whether the cell at (x, y) is unoccupied.
// Out-of-range positions read as empty.
func (g *Grid) IsEmpty(x, y int) bool {
	if !g.IsValidPosition(x, y) {
		return true
	}
	return !g.cells[g.index(x, y)].Filled
}

// ItemAt returns the item at (x, y). The second return is false for empty
// or out-of-range cells.
func (g *Grid) ItemAt(x, y int) (ItemType, bool) {
	if !g.IsValidPosition(x, y) {
		return 0, false
	}
	c := g.cells[g.index(x, y)]
	if !c.Filled {
		return 0, false
	}
	return c.Item, true
}

// CellAt returns the full cell value, empty for out-of-range positions.
func (g *Grid) CellAt(x, y int) Cell {
	if !g.IsValidPosition(x, y) {
		return Cell{}
	}
	return g.cells[g.index(x, y)]
}

// OccupiedCount returns the number of filled cells.
func (g *Grid) OccupiedCount() int {
	n := 0
	for _, c := range g.cells {
		if c.Filled {
			n++
		}
	}
	return n
}

// EmptyPositions returns all unoccupied positions, row by row.
func (g *Grid) EmptyPositions() []Position {
	out := make([]Position, 0, len(g.cells)-g.OccupiedCount())
	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			if !g.cells[g.index(x, y)].Filled {
				out = append(out, Position{X: x, Y: y})
			}
		}
	}
	return out
}

// Place writes an item at (x, y) and resolves the cluster containing it.
// Out-of-range coordinates are a no-op returning the no-cluster sentinel.
// An occupied cell is overwritten; last write wins.
func (g *Grid) Place(x, y int, item ItemType) Cluster {
	if !g.IsValidPosition(x, y) {
		return Cluster{}
	}
	g.cells[g.index(x, y)] = Cell{Filled: true, Item: item}
	return g.ResolveAt(x, y)
}

// PlaceLocked writes a locked obstacle cell. Locked cells never join
// clusters until their lock is fully chipped.
func (g *Grid) PlaceLocked(x, y int, item ItemType, hp int) {
	if !g.IsValidPosition(x, y) {
		return
	}
	if hp < 1 {
		hp = 1
	}
	g.cells[g.index(x, y)] = Cell{Filled: true, Item: item, LockHP: hp}
}

// neighborOffsets is the fixed 4-neighbor iteration order. Changing it
// changes BFS visitation order and breaks replay.
var neighborOffsets = [4][2]int{
	{0, -1}, // up
	{0, 1},  // down
	{-1, 0}, // left
	{1, 0},  // right
}

// ResolveAt runs a breadth-first search over same-type 4-connected
// neighbors starting at (x, y). If the component reaches the minimum
// cluster size, the member positions are returned in visitation order;
// otherwise the sentinel. Locked and empty cells never seed or join a
// component.
func (g *Grid) ResolveAt(x, y int) Cluster {
	if !g.IsValidPosition(x, y) {
		return Cluster{}
	}
	start := g.cells[g.index(x, y)]
	if !start.Filled || start.LockHP > 0 {
		return Cluster{}
	}

	visited := make(map[Position]bool, g.minCluster*2)
	queue := []Position{{X: x, Y: y}}
	visited[queue[0]] = true
	members := make([]Position, 0, g.minCluster*2)

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		members = append(members, p)

		for _, d := range neighborOffsets {
			np := Position{X: p.X + d[0], Y: p.Y + d[1]}
			if visited[np] || !g.IsValidPosition(np.X, np.Y) {
				continue
			}
			c := g.cells[g.index(np.X, np.Y)]
			if !c.Filled || c.LockHP > 0 || c.Item != start.Item {
				continue
			}
			visited[np] = true
			queue = append(queue, np)
		}
	}

	if len(members) < g.minCluster {
		return Cluster{}
	}
	return Cluster{Item: start.Item, Positions: members}
}

// Remove clears the given positions to empty. Out-of-range positions are
// ignored.
func (g *Grid) Remove(positions []Position) {
	for _, p := range positions {
		if g.IsValidPosition(p.X, p.Y) {
			g.cells[g.index(p.X, p.Y)] = Cell{}
		}
	}
}

// HitLock chips one hit point off a locked cell. When the lock reaches
// zero the cell becomes a normal item cell. Reports whether a lock was
// actually hit.
func (g *Grid) HitLock(x, y int) bool {
	if !g.IsValidPosition(x, y) {
		return false
	}
	c := &g.cells[g.index(x, y)]
	if !c.Filled || c.LockHP <= 0 {
		return false
	}
	c.LockHP--
	return true
}

// Clone returns a deep copy, used by the headless simulator for
// what-if evaluation.
func (g *Grid) Clone() *Grid {
	cells := make([]Cell, len(g.cells))
	copy(cells, g.cells)
	return &Grid{w: g.w, h: g.h, minCluster: g.minCluster, cells: cells}
}
