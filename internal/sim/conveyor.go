package sim

import (
	"github.com/sortline/sortline/internal/events"
	"github.com/sortline/sortline/internal/rng"
)

// Item is one conveyor occupant. Locked items place as obstacle cells.
type Item struct {
	Type   ItemType
	Locked bool
}

// NoForcedItem disables the forced-spawn override in SpawnParams.
const NoForcedItem ItemType = -1

// SpawnParams carries the per-tick spawn inputs the adaptive stack
// controls. The conveyor itself holds no difficulty knowledge.
type SpawnParams struct {
	RateMultiplier float64   // scales the spawn interval, higher is faster
	Weights        []float64 // per-item-type spawn weights, already biased
	ObstacleChance float64   // probability a spawn arrives locked
	Forced         ItemType  // overrides the first draw, NoForcedItem to disable
}

// RouteStatus reports the outcome of a routing command.
type RouteStatus int

const (
	RouteOK RouteStatus = iota
	RouteOverflow
	RouteEmptyConveyor
	RouteBadLane
)

// Conveyor is the bounded spawn queue plus N bounded pocket lanes.
// All capacity checks are synchronous and precede any mutation.
type Conveyor struct {
	capacity  int
	items     []Item
	pockets   [][]Item
	pocketCap int

	spawnInterval float64
	accum         float64
	blocked       bool // conveyor-full already signalled for this halt

	stream *rng.Stream
	bus    *events.Bus
}

// NewConveyor creates a conveyor with the given capacities. The stream
// must be a dedicated split so spawn draws never interleave with other
// subsystems.
func NewConveyor(capacity, pocketCount, pocketCap int, spawnInterval float64, stream *rng.Stream, bus *events.Bus) *Conveyor {
	pockets := make([][]Item, pocketCount)
	for i := range pockets {
		pockets[i] = make([]Item, 0, pocketCap)
	}
	return &Conveyor{
		capacity:      capacity,
		items:         make([]Item, 0, capacity),
		pockets:       pockets,
		pocketCap:     pocketCap,
		spawnInterval: spawnInterval,
		stream:        stream,
		bus:           bus,
	}
}

// Advance accumulates elapsed time and spawns items whenever the scaled
// interval is crossed. Returns the items spawned this tick. At capacity,
// spawning halts: the accumulator stays pinned at the interval so the
// spawn fires as soon as a slot frees, and ConveyorFull is signalled once
// per halt.
func (c *Conveyor) Advance(dt float64, p SpawnParams) []Item {
	rate := p.RateMultiplier
	if rate <= 0 {
		rate = 1
	}
	interval := c.spawnInterval / rate

	c.accum += dt
	var spawned []Item
	forced := p.Forced

	for c.accum >= interval {
		if len(c.items) >= c.capacity {
			c.accum = interval
			if !c.blocked {
				c.blocked = true
				c.bus.Publish(events.ConveyorFull{Capacity: c.capacity})
			}
			return spawned
		}
		c.accum -= interval

		item := c.draw(p.Weights, p.ObstacleChance, forced)
		forced = NoForcedItem
		c.items = append(c.items, item)
		c.blocked = false
		spawned = append(spawned, item)
		c.bus.Publish(events.ItemSpawned{
			Item:     int(item.Type),
			Locked:   item.Locked,
			QueueLen: len(c.items),
		})
	}
	return spawned
}

// draw picks the next item type. A forced type bypasses the weighted
// choice without consuming a draw, keeping replay stable across continue
// grants. Forced items are never locked.
func (c *Conveyor) draw(weights []float64, obstacleChance float64, forced ItemType) Item {
	if forced != NoForcedItem {
		return Item{Type: forced}
	}
	idx := c.stream.WeightedChoice(weights)
	if idx < 0 {
		idx = 0
	}
	locked := c.stream.Chance(obstacleChance)
	return Item{Type: ItemType(idx), Locked: locked}
}

// RouteToPocket dequeues the conveyor head into the chosen lane. On
// overflow the dequeued item is dropped, not re-inserted, and the
// overflow is signalled; the enclosing flow treats it as level failure.
func (c *Conveyor) RouteToPocket(lane int) (Item, RouteStatus) {
	if lane < 0 || lane >= len(c.pockets) {
		return Item{}, RouteBadLane
	}
	if len(c.items) == 0 {
		return Item{}, RouteEmptyConveyor
	}

	item := c.items[0]
	c.items = c.items[1:]

	if len(c.pockets[lane]) >= c.pocketCap {
		c.bus.Publish(events.PocketOverflow{Item: int(item.Type), Lane: lane})
		return item, RouteOverflow
	}
	c.pockets[lane] = append(c.pockets[lane], item)
	c.bus.Publish(events.ItemRouted{Item: int(item.Type), Lane: lane})
	return item, RouteOK
}

// UsePocketItem consumes the head of the given lane.
func (c *Conveyor) UsePocketItem(lane int) (Item, bool) {
	if lane < 0 || lane >= len(c.pockets) || len(c.pockets[lane]) == 0 {
		return Item{}, false
	}
	item := c.pockets[lane][0]
	c.pockets[lane] = c.pockets[lane][1:]
	return item, true
}

// PeekPocket reads the head of the given lane without consuming it.
func (c *Conveyor) PeekPocket(lane int) (Item, bool) {
	if lane < 0 || lane >= len(c.pockets) || len(c.pockets[lane]) == 0 {
		return Item{}, false
	}
	return c.pockets[lane][0], true
}

// Reenqueue moves a pocket head back onto the conveyor tail. It fails
// without mutating anything when the conveyor has no spare capacity or
// the lane is empty.
func (c *Conveyor) Reenqueue(lane int) bool {
	if lane < 0 || lane >= len(c.pockets) || len(c.pockets[lane]) == 0 {
		return false
	}
	if len(c.items) >= c.capacity {
		return false
	}
	item := c.pockets[lane][0]
	c.pockets[lane] = c.pockets[lane][1:]
	c.items = append(c.items, item)
	c.blocked = false
	return true
}

// Items returns a copy of the pending conveyor contents, head first.
func (c *Conveyor) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the conveyor occupancy.
func (c *Conveyor) Len() int { return len(c.items) }

// Capacity returns the conveyor capacity.
func (c *Conveyor) Capacity() int { return c.capacity }

// IsFull reports whether the conveyor has no spare capacity.
func (c *Conveyor) IsFull() bool { return len(c.items) >= c.capacity }

// PocketCount returns the number of lanes.
func (c *Conveyor) PocketCount() int { return len(c.pockets) }

// PocketCapacity returns the per-lane capacity.
func (c *Conveyor) PocketCapacity() int { return c.pocketCap }

// PocketLen returns the occupancy of one lane, 0 for a bad index.
func (c *Conveyor) PocketLen(lane int) int {
	if lane < 0 || lane >= len(c.pockets) {
		return 0
	}
	return len(c.pockets[lane])
}

// PocketItems returns a copy of one lane's contents, head first.
func (c *Conveyor) PocketItems(lane int) []Item {
	if lane < 0 || lane >= len(c.pockets) {
		return nil
	}
	out := make([]Item, len(c.pockets[lane]))
	copy(out, c.pockets[lane])
	return out
}
