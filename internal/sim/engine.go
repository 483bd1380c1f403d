package sim

import (
	"hash/fnv"

	"github.com/sortline/sortline/internal/difficulty"
	"github.com/sortline/sortline/internal/events"
	"github.com/sortline/sortline/internal/rng"
)

// Params fixes the rules of one level attempt. The engine never mutates
// them after construction.
type Params struct {
	GridWidth  int
	GridHeight int
	MinCluster int

	ConveyorCapacity int
	PocketCount      int
	PocketCapacity   int
	SpawnInterval    float64
	ConveyorSpeed    float64 // belt time scale, 1.0 is the level baseline

	Weights        []float64 // per-item-type spawn weights
	ObstacleChance float64   // base chance a spawn arrives locked
	ObstacleHP     int       // lock hit points for placed obstacles

	ComboWindow float64 // sim-seconds a clear extends the combo

	TargetItem ItemType // item type the level is scored against
	TargetGoal int      // cleared target cells required to win

	PrefillCount int // cells scattered onto the board before play
}

// scheduled is one pending (deadline, action) entry. Entries fire in
// scheduling order once their deadline passes, all within Update.
type scheduled struct {
	deadline float64
	action   func()
}

// Engine is the single-threaded tick driver binding the conveyor, the
// grid, and the difficulty stack. All mutation happens inside Update or
// inside a player command called between updates; every event a tick
// produces is published before Update returns.
type Engine struct {
	params   Params
	grid     *Grid
	conveyor *Conveyor
	bus      *events.Bus

	adaptive *difficulty.Layer
	nearMiss *difficulty.NearMissEngine

	shuffleStream *rng.Stream

	now    float64
	timers []scheduled

	combo         int
	comboDeadline float64
	score         int
	clearedTarget int
}

// NewEngine wires an engine from a root stream and the injected
// difficulty stack. The root is split per subsystem so spawn draws and
// board scatter never share entropy; reordering the splits breaks
// replay compatibility.
func NewEngine(p Params, root *rng.Stream, layer *difficulty.Layer, nearMiss *difficulty.NearMissEngine, bus *events.Bus) *Engine {
	if p.ConveyorSpeed <= 0 {
		p.ConveyorSpeed = 1.0
	}
	spawnStream := root.Split(1)
	shuffleStream := root.Split(2)

	e := &Engine{
		params:        p,
		grid:          NewGrid(p.GridWidth, p.GridHeight, p.MinCluster),
		conveyor:      NewConveyor(p.ConveyorCapacity, p.PocketCount, p.PocketCapacity, p.SpawnInterval, spawnStream, bus),
		bus:           bus,
		adaptive:      layer,
		nearMiss:      nearMiss,
		shuffleStream: shuffleStream,
	}
	e.prefill()
	return e
}

// prefill scatters starting items onto the board. Positions come from a
// shuffle of the empty set and types from the level weights, drawn off
// the shuffle stream. Prefilled cells never form clusters at spawn; the
// scatter skips placements that would resolve immediately.
func (e *Engine) prefill() {
	if e.params.PrefillCount <= 0 {
		return
	}
	empty := e.grid.EmptyPositions()
	order := make([]int, len(empty))
	for i := range order {
		order[i] = i
	}
	e.shuffleStream.Shuffle(order)

	placed := 0
	for _, idx := range order {
		if placed >= e.params.PrefillCount {
			break
		}
		p := empty[idx]
		item := ItemType(e.shuffleStream.WeightedChoice(e.params.Weights))
		if item < 0 {
			item = 0
		}
		if c := e.grid.Place(p.X, p.Y, item); c.Exists() {
			e.grid.Remove([]Position{p})
			continue
		}
		placed++
	}
}

// Grid exposes the board for rendering and tests.
func (e *Engine) Grid() *Grid { return e.grid }

// Conveyor exposes the queue for rendering and tests.
func (e *Engine) Conveyor() *Conveyor { return e.conveyor }

// Now returns accumulated sim time.
func (e *Engine) Now() float64 { return e.now }

// Score returns the running score.
func (e *Engine) Score() int { return e.score }

// Combo returns the current combo multiplier, 0 when no combo is open.
func (e *Engine) Combo() int { return e.combo }

// Schedule queues an action to fire once delay sim-seconds have elapsed,
// polled by Update.
func (e *Engine) Schedule(delay float64, action func()) {
	e.timers = append(e.timers, scheduled{deadline: e.now + delay, action: action})
}

// Update advances the simulation by dt sim-seconds: due timers fire,
// the difficulty stack ticks, the combo window expires, and the conveyor
// spawns. The conveyor runs on belt time, dt scaled by the level's
// conveyor speed and the adaptive speed multiplier, so mercy slows the
// belt and high difficulty quickens it. Fixed dt with a fixed command
// sequence reproduces a run exactly.
func (e *Engine) Update(dt float64) {
	e.now += dt

	e.fireDueTimers()

	e.nearMiss.Tick(dt)
	e.adaptive.Tick(dt)

	if e.combo > 0 && e.now >= e.comboDeadline {
		e.combo = 0
		e.bus.Publish(events.ComboUpdated{Combo: 0})
	}

	forced := NoForcedItem
	if e.nearMiss.GuaranteeArmed() {
		forced = e.params.TargetItem
	}
	beltDt := dt * e.params.ConveyorSpeed * e.adaptive.SpeedMultiplier()
	spawned := e.conveyor.Advance(beltDt, SpawnParams{
		RateMultiplier: e.adaptive.SpawnRateMultiplier(),
		Weights:        e.spawnWeights(),
		ObstacleChance: e.params.ObstacleChance * e.adaptive.ObstacleMultiplier(),
		Forced:         forced,
	})
	if forced != NoForcedItem && len(spawned) > 0 {
		e.nearMiss.ConsumeGuarantee()
	}
}

func (e *Engine) fireDueTimers() {
	// Entries fire in scheduling order; actions may schedule more, which
	// wait for the next Update even if already due.
	due := 0
	for _, tm := range e.timers {
		if tm.deadline > e.now {
			break
		}
		due++
	}
	if due == 0 {
		return
	}
	firing := e.timers[:due]
	e.timers = append([]scheduled(nil), e.timers[due:]...)
	for _, tm := range firing {
		tm.action()
	}
}

// spawnWeights returns the level weights with the near-miss bias applied
// to the target type.
func (e *Engine) spawnWeights() []float64 {
	bias := e.nearMiss.WeightBias()
	if bias == 1.0 {
		return e.params.Weights
	}
	out := make([]float64, len(e.params.Weights))
	copy(out, e.params.Weights)
	t := int(e.params.TargetItem)
	if t >= 0 && t < len(out) {
		out[t] *= bias
	}
	return out
}

// RouteToPocket forwards the routing command to the conveyor.
func (e *Engine) RouteToPocket(lane int) (Item, RouteStatus) {
	return e.conveyor.RouteToPocket(lane)
}

// Reenqueue forwards the reenqueue command to the conveyor.
func (e *Engine) Reenqueue(lane int) bool {
	return e.conveyor.Reenqueue(lane)
}

// PlaceFromPocket consumes the head of a pocket lane and places it at
// (x, y), resolving cascades synchronously. The placement is validated
// before the pocket is touched: a bad lane, empty lane, off-board target,
// or occupied cell fails without consuming anything.
func (e *Engine) PlaceFromPocket(lane, x, y int) bool {
	item, ok := e.conveyor.PeekPocket(lane)
	if !ok {
		return false
	}
	if !e.grid.IsValidPosition(x, y) || !e.grid.IsEmpty(x, y) {
		return false
	}
	e.conveyor.UsePocketItem(lane)

	if item.Locked {
		e.grid.PlaceLocked(x, y, item.Type, e.params.ObstacleHP)
		return true
	}
	cluster := e.grid.Place(x, y, item.Type)
	if cluster.Exists() {
		e.resolveCascades(cluster)
	}
	return true
}

// resolveCascades clears the initial cluster and keeps re-resolving
// cells adjacent to each cleared set until no component reaches the
// minimum size, all within the current tick. Depth counts waves starting
// at 1.
func (e *Engine) resolveCascades(first Cluster) {
	wave := []Cluster{first}
	depth := 1

	for len(wave) > 0 {
		var cleared []Position
		for _, c := range wave {
			e.applyClear(c, depth)
			cleared = append(cleared, c.Positions...)
		}
		for _, c := range wave {
			e.grid.Remove(c.Positions)
		}
		e.chipAdjacentLocks(cleared)
		wave = e.nextWave(cleared)
		depth++
	}
}

// applyClear bumps the combo, scores the cluster, and publishes its
// events. Score is cluster size times ten, scaled by cascade depth and
// the combo multiplier.
func (e *Engine) applyClear(c Cluster, depth int) {
	if e.combo > 0 && e.now < e.comboDeadline {
		e.combo++
	} else {
		e.combo = 1
	}
	e.comboDeadline = e.now + e.params.ComboWindow

	e.score += len(c.Positions) * 10 * depth * e.combo
	if c.Item == e.params.TargetItem {
		e.clearedTarget += len(c.Positions)
	}

	e.bus.Publish(events.ClusterResolved{
		Item:      int(c.Item),
		Positions: c.Positions,
		Depth:     depth,
	})
	e.bus.Publish(events.ComboUpdated{Combo: e.combo})
}

// chipAdjacentLocks takes one hit point off every locked cell adjacent
// to the cleared set, at most one hit per cell per wave.
func (e *Engine) chipAdjacentLocks(cleared []Position) {
	hit := make(map[Position]bool)
	for _, p := range cleared {
		for _, d := range neighborOffsets {
			np := Position{X: p.X + d[0], Y: p.Y + d[1]}
			if hit[np] {
				continue
			}
			if e.grid.HitLock(np.X, np.Y) {
				hit[np] = true
			}
		}
	}
}

// nextWave re-resolves cells adjacent to the cleared set, deduplicating
// components that share members. Adjacency is scanned in cleared order
// then neighbor order, keeping cascade resolution deterministic.
func (e *Engine) nextWave(cleared []Position) []Cluster {
	var wave []Cluster
	claimed := make(map[Position]bool)

	for _, p := range cleared {
		for _, d := range neighborOffsets {
			np := Position{X: p.X + d[0], Y: p.Y + d[1]}
			if claimed[np] || e.grid.IsEmpty(np.X, np.Y) {
				continue
			}
			c := e.grid.ResolveAt(np.X, np.Y)
			if !c.Exists() {
				continue
			}
			for _, m := range c.Positions {
				claimed[m] = true
			}
			wave = append(wave, c)
		}
	}
	return wave
}

// TargetProgress returns cleared target cells over the goal, capped at 1.
func (e *Engine) TargetProgress() float64 {
	if e.params.TargetGoal <= 0 {
		return 0
	}
	p := float64(e.clearedTarget) / float64(e.params.TargetGoal)
	if p > 1 {
		p = 1
	}
	return p
}

// TargetReached reports whether the level goal is met. The engine never
// adjudicates outcomes itself; the enclosing flow reads this and calls
// RecordOutcome.
func (e *Engine) TargetReached() bool {
	return e.params.TargetGoal > 0 && e.clearedTarget >= e.params.TargetGoal
}

// ClearedTarget returns the raw cleared count of the target type.
func (e *Engine) ClearedTarget() int { return e.clearedTarget }

// RecordOutcome feeds an externally adjudicated attempt result into the
// difficulty stack and publishes the resulting transitions. A loss is
// also classified against the near-miss threshold.
func (e *Engine) RecordOutcome(won bool) {
	var ch difficulty.Change
	if won {
		ch = e.adaptive.RecordWin()
	} else {
		ch = e.adaptive.RecordLoss()
	}

	if ch.Changed() || ch.SpikeTriggered || ch.RecoveryTriggered {
		e.bus.Publish(events.DifficultyChanged{
			Difficulty: ch.After,
			Spike:      e.adaptive.Spike(),
			Recovery:   e.adaptive.Recovery(),
		})
	}

	if !won {
		progress := e.TargetProgress()
		if e.nearMiss.RecordFailure(progress) {
			e.bus.Publish(events.NearMissDetected{
				Progress:      progress,
				Threshold:     e.nearMiss.Threshold(),
				RatePerMinute: e.nearMiss.RatePerMinute(),
			})
		}
	}
}

// GrantContinue arms the one-shot target-type spawn for the next item
// after a continue.
func (e *Engine) GrantContinue() {
	e.nearMiss.ArmGuarantee()
}

// Snapshot hashes the observable simulation state. Two runs with the
// same seed and command sequence must produce identical snapshots at
// every tick.
func (e *Engine) Snapshot() uint64 {
	h := fnv.New64a()
	buf := make([]byte, 8)

	writeInt := func(v int) {
		u := uint64(int64(v))
		for i := 0; i < 8; i++ {
			buf[i] = byte(u >> (8 * i))
		}
		h.Write(buf)
	}

	for y := 0; y < e.grid.Height(); y++ {
		for x := 0; x < e.grid.Width(); x++ {
			c := e.grid.CellAt(x, y)
			if !c.Filled {
				writeInt(-1)
				continue
			}
			writeInt(int(c.Item))
			writeInt(c.LockHP)
		}
	}
	for _, it := range e.conveyor.Items() {
		writeInt(int(it.Type))
		if it.Locked {
			writeInt(1)
		} else {
			writeInt(0)
		}
	}
	for lane := 0; lane < e.conveyor.PocketCount(); lane++ {
		for _, it := range e.conveyor.PocketItems(lane) {
			writeInt(int(it.Type))
		}
	}
	writeInt(e.score)
	writeInt(e.combo)
	writeInt(e.clearedTarget)
	return h.Sum64()
}
