// Package levels provides level definitions: YAML parsing, directory
// loading, and a registry of built-in levels. This package depends on
// sim but sim does not depend on levels.
package levels

import (
	"fmt"

	"github.com/sortline/sortline/internal/sim"
)

// Level is a complete level definition. Seed is the default for the
// level; the CLI may override it per run.
type Level struct {
	ID   string
	Name string
	Seed uint64

	GridWidth  int
	GridHeight int
	MinCluster int

	ConveyorCapacity int
	PocketCount      int
	PocketCapacity   int
	SpawnInterval    float64
	ConveyorSpeed    float64 // belt time scale, 1.0 is the baseline

	Weights        []float64
	ObstacleChance float64
	ObstacleHP     int

	TargetItem int
	TargetGoal int

	PrefillCount int
	ComboWindow  float64
	TimeLimit    float64 // sim-seconds, 0 means untimed

	// SpikeEnabled and RecoveryEnabled gate the corresponding difficulty
	// transitions for the attempt; the watermark drift always runs.
	// Anchor levels run at fixed tuning: the adaptive layer and the
	// near-miss compensation hooks are disabled for the attempt.
	SpikeEnabled    bool
	RecoveryEnabled bool
	Anchor          bool

	FilePath string // empty for built-ins
}

// SimParams converts the level into engine parameters.
func (l Level) SimParams() sim.Params {
	return sim.Params{
		GridWidth:        l.GridWidth,
		GridHeight:       l.GridHeight,
		MinCluster:       l.MinCluster,
		ConveyorCapacity: l.ConveyorCapacity,
		PocketCount:      l.PocketCount,
		PocketCapacity:   l.PocketCapacity,
		SpawnInterval:    l.SpawnInterval,
		ConveyorSpeed:    l.ConveyorSpeed,
		Weights:          l.Weights,
		ObstacleChance:   l.ObstacleChance,
		ObstacleHP:       l.ObstacleHP,
		ComboWindow:      l.ComboWindow,
		TargetItem:       sim.ItemType(l.TargetItem),
		TargetGoal:       l.TargetGoal,
		PrefillCount:     l.PrefillCount,
	}
}

// Validate checks the level for values the engine cannot run with.
func (l Level) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("level has no id")
	}
	if l.GridWidth < 2 || l.GridHeight < 2 {
		return fmt.Errorf("level %s: board %dx%d is too small", l.ID, l.GridWidth, l.GridHeight)
	}
	if l.ConveyorCapacity < 1 {
		return fmt.Errorf("level %s: conveyor capacity %d", l.ID, l.ConveyorCapacity)
	}
	if l.PocketCount < 1 || l.PocketCapacity < 1 {
		return fmt.Errorf("level %s: %d pockets of capacity %d", l.ID, l.PocketCount, l.PocketCapacity)
	}
	if l.SpawnInterval <= 0 {
		return fmt.Errorf("level %s: spawn interval %v", l.ID, l.SpawnInterval)
	}
	if l.ConveyorSpeed <= 0 {
		return fmt.Errorf("level %s: conveyor speed %v", l.ID, l.ConveyorSpeed)
	}
	if len(l.Weights) < 2 {
		return fmt.Errorf("level %s: needs at least 2 item types, got %d", l.ID, len(l.Weights))
	}
	total := 0.0
	for _, w := range l.Weights {
		if w < 0 {
			return fmt.Errorf("level %s: negative spawn weight %v", l.ID, w)
		}
		total += w
	}
	if total <= 0 {
		return fmt.Errorf("level %s: spawn weights sum to zero", l.ID)
	}
	if l.TargetItem < 0 || l.TargetItem >= len(l.Weights) {
		return fmt.Errorf("level %s: target item %d outside weight table", l.ID, l.TargetItem)
	}
	if l.TargetGoal < 1 {
		return fmt.Errorf("level %s: target goal %d", l.ID, l.TargetGoal)
	}
	if l.PrefillCount < 0 || l.PrefillCount >= l.GridWidth*l.GridHeight {
		return fmt.Errorf("level %s: prefill %d does not fit the board", l.ID, l.PrefillCount)
	}
	return nil
}
