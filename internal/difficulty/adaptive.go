package difficulty

// AdaptiveParams tunes the multiplier layer.
type AdaptiveParams struct {
	Interval              float64 // sim-seconds between adaptation passes
	Smoothing             float64 // fraction of the gap closed per pass
	SpikeNudge            float64 // immediate downward nudge on a spike
	NearMissRateThreshold float64 // near misses per minute that trigger a nudge
}

// DefaultAdaptiveParams returns the shipped tuning.
func DefaultAdaptiveParams() AdaptiveParams {
	return AdaptiveParams{
		Interval:              2.0,
		Smoothing:             0.25,
		SpikeNudge:            0.1,
		NearMissRateThreshold: 2.0,
	}
}

// Multiplier bounds. The targets are linear in difficulty and the clamps
// apply both to the targets and to nudged values.
const (
	speedMin, speedMax       = 0.5, 1.5
	spawnMin, spawnMax       = 0.6, 1.4
	obstacleMin, obstacleMax = 0.4, 1.6
)

// Layer converts the difficulty scalar into the three multipliers the
// simulation consumes: item speed, spawn rate, obstacle density. Values
// move toward their targets by a fixed smoothing fraction once per
// adaptation interval, never snapped, so retuning is felt as a trend
// rather than a jolt.
type Layer struct {
	params   AdaptiveParams
	engine   *Engine
	nearMiss *NearMissEngine

	enabled bool
	accum   float64

	speed    float64
	spawn    float64
	obstacle float64
}

// NewLayer wires the layer to its difficulty and near-miss sources. All
// multipliers start at the neutral 1.0.
func NewLayer(p AdaptiveParams, engine *Engine, nearMiss *NearMissEngine) *Layer {
	if p.Interval <= 0 {
		p = DefaultAdaptiveParams()
	}
	return &Layer{
		params:   p,
		engine:   engine,
		nearMiss: nearMiss,
		enabled:  true,
		speed:    1.0,
		spawn:    1.0,
		obstacle: 1.0,
	}
}

// RecordWin forwards a win to the difficulty engine.
func (l *Layer) RecordWin() Change {
	return l.engine.RecordResult(true)
}

// RecordLoss forwards a loss to the difficulty engine. A spike transition
// applies an immediate downward nudge to speed and spawn rate so relief
// lands on the very next tick instead of waiting for an adaptation pass.
func (l *Layer) RecordLoss() Change {
	ch := l.engine.RecordResult(false)
	if ch.SpikeTriggered && l.enabled {
		l.nudgeDown()
	}
	return ch
}

// Tick accumulates sim time and runs an adaptation pass each interval.
// Suspended while disabled.
func (l *Layer) Tick(dt float64) {
	if !l.enabled {
		return
	}
	l.accum += dt
	for l.accum >= l.params.Interval {
		l.accum -= l.params.Interval
		l.adapt()
	}
}

func (l *Layer) adapt() {
	d := l.engine.Difficulty()
	s := l.params.Smoothing

	l.speed += (speedTarget(d) - l.speed) * s
	l.spawn += (spawnTarget(d) - l.spawn) * s
	l.obstacle += (obstacleTarget(d) - l.obstacle) * s

	// Sustained near misses are a frustration signal the window cannot
	// see; ease off once per pass.
	if l.nearMiss != nil && l.nearMiss.RatePerMinute() > l.params.NearMissRateThreshold {
		l.nudgeDown()
	}

	l.speed = clamp(l.speed, speedMin, speedMax)
	l.spawn = clamp(l.spawn, spawnMin, spawnMax)
	l.obstacle = clamp(l.obstacle, obstacleMin, obstacleMax)
}

func (l *Layer) nudgeDown() {
	l.speed = clamp(l.speed-l.params.SpikeNudge, speedMin, speedMax)
	l.spawn = clamp(l.spawn-l.params.SpikeNudge, spawnMin, spawnMax)
}

func speedTarget(d float64) float64 {
	return clamp(0.5+0.5*d, speedMin, speedMax)
}

func spawnTarget(d float64) float64 {
	return clamp(0.7+0.4*d, spawnMin, spawnMax)
}

func obstacleTarget(d float64) float64 {
	return clamp(0.5+0.5*d, obstacleMin, obstacleMax)
}

// SetAdaptiveEnabled toggles the layer. Disabling resets all multipliers
// to exactly 1.0 and suspends adaptation; re-enabling resumes from that
// neutral baseline.
func (l *Layer) SetAdaptiveEnabled(enabled bool) {
	l.enabled = enabled
	l.speed = 1.0
	l.spawn = 1.0
	l.obstacle = 1.0
	l.accum = 0
}

// Enabled reports whether adaptation is running.
func (l *Layer) Enabled() bool { return l.enabled }

// SpeedMultiplier returns the current item-speed multiplier.
func (l *Layer) SpeedMultiplier() float64 { return l.speed }

// SpawnRateMultiplier returns the current spawn-rate multiplier.
func (l *Layer) SpawnRateMultiplier() float64 { return l.spawn }

// ObstacleMultiplier returns the current obstacle-density multiplier.
func (l *Layer) ObstacleMultiplier() float64 { return l.obstacle }

// CombinedFactor returns the arithmetic mean of the three multipliers,
// a single coarse pacing figure for display and telemetry.
func (l *Layer) CombinedFactor() float64 {
	return (l.speed + l.spawn + l.obstacle) / 3.0
}

// Difficulty exposes the underlying scalar for display and events.
func (l *Layer) Difficulty() float64 { return l.engine.Difficulty() }

// Spike exposes the underlying spike state.
func (l *Layer) Spike() bool { return l.engine.Spike() }

// Recovery exposes the underlying recovery state.
func (l *Layer) Recovery() bool { return l.engine.Recovery() }
