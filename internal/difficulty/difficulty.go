// Package difficulty implements the adaptive pacing stack: a rolling
// win/loss window with spike/recovery hysteresis, near-miss detection,
// and the smoothed multipliers that retune the simulation. Components are
// constructed explicitly and injected; there is no shared global state.
package difficulty

// Params are the difficulty engine tuning knobs. The step magnitudes are
// locked by regression tests; changing them changes pacing for every
// player.
type Params struct {
	WindowSize        int     // rolling outcome window capacity
	SpikeThreshold    int     // consecutive losses that trigger a spike
	RecoveryThreshold int     // consecutive wins that complete a recovery
	SpikeStep         float64 // difficulty drop on spike
	RecoveryStep      float64 // difficulty raise on recovery
	DriftStep         float64 // drift toward the win-rate watermarks
	HighWaterMark     float64 // win rate above which difficulty drifts up
	LowWaterMark      float64 // win rate below which difficulty drifts down
	MinDifficulty     float64
	MaxDifficulty     float64

	// Levels can opt out of the spike and recovery transitions while
	// keeping the watermark drift.
	SpikeEnabled    bool
	RecoveryEnabled bool
}

// DefaultParams returns the shipped tuning.
func DefaultParams() Params {
	return Params{
		WindowSize:        10,
		SpikeThreshold:    3,
		RecoveryThreshold: 3,
		SpikeStep:         0.15,
		RecoveryStep:      0.10,
		DriftStep:         0.05,
		HighWaterMark:     0.7,
		LowWaterMark:      0.4,
		MinDifficulty:     0.3,
		MaxDifficulty:     2.0,
		SpikeEnabled:      true,
		RecoveryEnabled:   true,
	}
}

// Change describes what a recorded outcome did to the engine. Consumers
// use the transition flags; Spike/Recovery themselves are level-triggered
// states.
type Change struct {
	Before            float64
	After             float64
	SpikeTriggered    bool // this record flipped spike on
	SpikeCleared      bool // this record flipped spike off
	RecoveryTriggered bool // this record completed a recovery
}

// Changed reports whether the scalar difficulty moved.
func (c Change) Changed() bool {
	return c.Before != c.After
}

// Engine holds the rolling outcome window and the scalar difficulty that
// every downstream consumer reads. It intentionally conflates recent
// performance and target pacing into one clamped value so consumers need
// no knowledge of the windowing policy.
type Engine struct {
	params Params

	window     []bool
	consecLoss int
	consecWin  int

	difficulty float64
	spike      bool
	recovery   bool
	recovering bool // spike cleared, counting wins toward recovery
}

// NewEngine creates an engine at the default difficulty of 1.0.
func NewEngine(p Params) *Engine {
	if p.WindowSize < 1 {
		p.WindowSize = DefaultParams().WindowSize
	}
	e := &Engine{params: p}
	e.ResetStats()
	return e
}

// RecordResult appends an outcome to the window, evicting the oldest
// entry past capacity, and applies spike/recovery and watermark drift.
func (e *Engine) RecordResult(won bool) Change {
	ch := Change{Before: e.difficulty}

	e.window = append(e.window, won)
	if len(e.window) > e.params.WindowSize {
		e.window = e.window[1:]
	}

	if won {
		e.consecWin++
		e.consecLoss = 0
		if e.spike {
			// First win out of a spike clears it and arms recovery
			// tracking.
			e.spike = false
			e.recovering = true
			ch.SpikeCleared = true
		}
		if e.params.RecoveryEnabled && e.recovering && e.consecWin >= e.params.RecoveryThreshold {
			e.recovery = true
			e.recovering = false
			e.difficulty += e.params.RecoveryStep
			ch.RecoveryTriggered = true
		}
	} else {
		e.consecLoss++
		e.consecWin = 0
		e.recovery = false
		e.recovering = false
		if e.params.SpikeEnabled && !e.spike && e.consecLoss >= e.params.SpikeThreshold {
			e.spike = true
			e.difficulty -= e.params.SpikeStep
			ch.SpikeTriggered = true
		}
	}

	// Watermark drift runs independently of spike/recovery.
	rate := e.WinRate()
	if rate > e.params.HighWaterMark {
		e.difficulty += e.params.DriftStep
	} else if rate < e.params.LowWaterMark {
		e.difficulty -= e.params.DriftStep
	}

	e.difficulty = clamp(e.difficulty, e.params.MinDifficulty, e.params.MaxDifficulty)
	ch.After = e.difficulty
	return ch
}

// ResetStats restores the window, counters, flags, and difficulty to
// their level-start defaults.
func (e *Engine) ResetStats() {
	e.window = e.window[:0]
	e.consecLoss = 0
	e.consecWin = 0
	e.difficulty = 1.0
	e.spike = false
	e.recovery = false
	e.recovering = false
}

// Difficulty returns the current clamped scalar.
func (e *Engine) Difficulty() float64 { return e.difficulty }

// WinRate returns wins over window count, 0 for an empty window.
func (e *Engine) WinRate() float64 {
	if len(e.window) == 0 {
		return 0
	}
	wins := 0
	for _, w := range e.window {
		if w {
			wins++
		}
	}
	return float64(wins) / float64(len(e.window))
}

// WindowCount returns the number of recorded outcomes, at most the
// configured window size.
func (e *Engine) WindowCount() int { return len(e.window) }

// Spike reports whether the engine is in a failure spike.
func (e *Engine) Spike() bool { return e.spike }

// Recovery reports whether the last completed transition was a recovery.
func (e *Engine) Recovery() bool { return e.recovery }

// ConsecutiveLosses returns the current failure run length.
func (e *Engine) ConsecutiveLosses() int { return e.consecLoss }

// ConsecutiveWins returns the current success run length.
func (e *Engine) ConsecutiveWins() int { return e.consecWin }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
