package difficulty

// NearMissParams tunes near-miss classification and its spawn bias.
type NearMissParams struct {
	Threshold      float64 // target-progress ratio at or above which a failure is a near miss
	BiasMultiplier float64 // spawn-weight multiplier for the target type while biased
	BiasDuration   float64 // sim-seconds the bias stays active after a near miss
	RateWindow     float64 // sim-seconds of history kept for the rate metric
}

// DefaultNearMissParams returns the shipped tuning.
func DefaultNearMissParams() NearMissParams {
	return NearMissParams{
		Threshold:      0.8,
		BiasMultiplier: 2.0,
		BiasDuration:   15.0,
		RateWindow:     60.0,
	}
}

// NearMissEngine classifies failures that land close to the target and
// feeds two compensation hooks: a temporary spawn-weight bias toward the
// target type, and a one-shot guarantee consumed by the first spawn after
// a continue. Anchor levels disable both hooks but the rate metric keeps
// recording, so anchor attempts still contribute telemetry.
type NearMissEngine struct {
	params  NearMissParams
	enabled bool

	now           float64
	occurrences   []float64 // sim-time stamps inside the rate window
	biasRemaining float64
	guaranteed    bool
}

// NewNearMissEngine creates an enabled engine. Clock and timers are
// tick-accumulated sim time, never wall time.
func NewNearMissEngine(p NearMissParams) *NearMissEngine {
	if p.Threshold <= 0 {
		p = DefaultNearMissParams()
	}
	return &NearMissEngine{params: p, enabled: true}
}

// SetEnabled toggles the compensation hooks. Disabling clears any active
// bias and pending guarantee.
func (n *NearMissEngine) SetEnabled(enabled bool) {
	n.enabled = enabled
	if !enabled {
		n.biasRemaining = 0
		n.guaranteed = false
	}
}

// Enabled reports whether compensation hooks are active.
func (n *NearMissEngine) Enabled() bool { return n.enabled }

// Tick advances the engine's sim clock, decays the active bias, and
// prunes occurrences that fell out of the rate window.
func (n *NearMissEngine) Tick(dt float64) {
	n.now += dt
	if n.biasRemaining > 0 {
		n.biasRemaining -= dt
		if n.biasRemaining < 0 {
			n.biasRemaining = 0
		}
	}
	cutoff := n.now - n.params.RateWindow
	for len(n.occurrences) > 0 && n.occurrences[0] < cutoff {
		n.occurrences = n.occurrences[1:]
	}
}

// RecordFailure classifies a failure at the given target-progress ratio.
// A near miss is always recorded for the rate metric; the spawn bias only
// arms while the engine is enabled.
func (n *NearMissEngine) RecordFailure(progress float64) bool {
	if progress < n.params.Threshold {
		return false
	}
	n.occurrences = append(n.occurrences, n.now)
	if n.enabled {
		n.biasRemaining = n.params.BiasDuration
	}
	return true
}

// Threshold returns the configured near-miss progress threshold.
func (n *NearMissEngine) Threshold() float64 { return n.params.Threshold }

// RatePerMinute returns near misses observed in the trailing rate
// window, normalized to a per-minute figure.
func (n *NearMissEngine) RatePerMinute() float64 {
	if n.params.RateWindow <= 0 {
		return 0
	}
	return float64(len(n.occurrences)) * 60.0 / n.params.RateWindow
}

// WeightBias returns the multiplier to apply to the target type's spawn
// weight, 1.0 when no bias is active.
func (n *NearMissEngine) WeightBias() float64 {
	if n.enabled && n.biasRemaining > 0 {
		return n.params.BiasMultiplier
	}
	return 1.0
}

// ArmGuarantee arms the one-shot forced spawn, called when a continue is
// granted after a near miss. No-op while disabled.
func (n *NearMissEngine) ArmGuarantee() {
	if n.enabled {
		n.guaranteed = true
	}
}

// ConsumeGuarantee reports whether the next spawn must be forced to the
// target type, clearing the flag. One-shot: only the very next spawn
// after a continue sees it.
func (n *NearMissEngine) ConsumeGuarantee() bool {
	if !n.guaranteed {
		return false
	}
	n.guaranteed = false
	return true
}

// GuaranteeArmed reports the pending one-shot without consuming it.
func (n *NearMissEngine) GuaranteeArmed() bool { return n.guaranteed }
