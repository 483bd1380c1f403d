// Package events provides the synchronous in-process event bus that
// decouples the simulation core from its observers. Every event is a
// distinct struct tagged with a Kind; the bus fans out inline, in
// registration order, from the publisher's call stack.
package events

// Kind tags an event variant for registry lookup.
type Kind int

const (
	KindItemSpawned Kind = iota
	KindItemRouted
	KindPocketOverflow
	KindConveyorFull
	KindClusterResolved
	KindComboUpdated
	KindDifficultyChanged
	KindNearMissDetected
)

// String returns a stable name for logging and the simulate journal.
func (k Kind) String() string {
	switch k {
	case KindItemSpawned:
		return "item-spawned"
	case KindItemRouted:
		return "item-routed"
	case KindPocketOverflow:
		return "pocket-overflow"
	case KindConveyorFull:
		return "conveyor-full"
	case KindClusterResolved:
		return "cluster-resolved"
	case KindComboUpdated:
		return "combo-updated"
	case KindDifficultyChanged:
		return "difficulty-changed"
	case KindNearMissDetected:
		return "near-miss-detected"
	default:
		return "unknown"
	}
}

// Event is the sealed interface implemented by every event variant.
type Event interface {
	EventKind() Kind
}

// Position is a grid coordinate carried by cluster events.
type Position struct {
	X, Y int
}

// ItemSpawned fires when the conveyor appends a newly drawn item.
type ItemSpawned struct {
	Item     int  // item type
	Locked   bool // spawned as an obstacle (locked) item
	QueueLen int  // conveyor occupancy after the spawn
}

func (ItemSpawned) EventKind() Kind { return KindItemSpawned }

// ItemRouted fires when the conveyor head moves into a pocket lane.
type ItemRouted struct {
	Item int
	Lane int
}

func (ItemRouted) EventKind() Kind { return KindItemRouted }

// PocketOverflow fires when an item is routed into a lane that is already
// at capacity. The item is dropped; the enclosing game flow treats this as
// a level failure.
type PocketOverflow struct {
	Item int
	Lane int
}

func (PocketOverflow) EventKind() Kind { return KindPocketOverflow }

// ConveyorFull fires when a spawn is due but the conveyor has no room.
// Fatal for the level unless a pocket drains.
type ConveyorFull struct {
	Capacity int
}

func (ConveyorFull) EventKind() Kind { return KindConveyorFull }

// ClusterResolved fires once per cluster clear, including each cascade
// step. Positions are in BFS visitation order.
type ClusterResolved struct {
	Item      int
	Positions []Position
	Depth     int // cascade depth, 1 for the directly placed cluster
}

func (ClusterResolved) EventKind() Kind { return KindClusterResolved }

// ComboUpdated fires whenever the running combo counter changes,
// including the reset to zero when the combo window lapses.
type ComboUpdated struct {
	Combo int
}

func (ComboUpdated) EventKind() Kind { return KindComboUpdated }

// DifficultyChanged fires when the scalar difficulty moves.
type DifficultyChanged struct {
	Difficulty float64
	Spike      bool
	Recovery   bool
}

func (DifficultyChanged) EventKind() Kind { return KindDifficultyChanged }

// NearMissDetected fires when a failure lands at or above the
// target-progress threshold.
type NearMissDetected struct {
	Progress      float64
	Threshold     float64
	RatePerMinute float64
}

func (NearMissDetected) EventKind() Kind { return KindNearMissDetected }
