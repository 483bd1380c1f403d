// Package config provides YAML-based tuning configuration for the
// difficulty stack: engine steps and watermarks, adaptive-layer pacing,
// and near-miss compensation.
package config

import "github.com/sortline/sortline/internal/difficulty"

// Tuning contains every difficulty-stack knob. Loaded from YAML with an
// embedded fallback; the zero value is not usable, go through Load or
// DefaultTuning.
type Tuning struct {
	Difficulty DifficultyTuning `yaml:"difficulty"`
	Adaptive   AdaptiveTuning   `yaml:"adaptive"`
	NearMiss   NearMissTuning   `yaml:"near_miss"`
}

// DifficultyTuning maps onto the difficulty engine parameters.
type DifficultyTuning struct {
	WindowSize        int     `yaml:"window_size"`
	SpikeThreshold    int     `yaml:"spike_threshold"`
	RecoveryThreshold int     `yaml:"recovery_threshold"`
	SpikeStep         float64 `yaml:"spike_step"`
	RecoveryStep      float64 `yaml:"recovery_step"`
	DriftStep         float64 `yaml:"drift_step"`
	HighWaterMark     float64 `yaml:"high_water_mark"`
	LowWaterMark      float64 `yaml:"low_water_mark"`
	MinDifficulty     float64 `yaml:"min_difficulty"`
	MaxDifficulty     float64 `yaml:"max_difficulty"`
}

// AdaptiveTuning maps onto the adaptive layer parameters.
type AdaptiveTuning struct {
	Enabled               bool    `yaml:"enabled"`
	Interval              float64 `yaml:"interval"`
	Smoothing             float64 `yaml:"smoothing"`
	SpikeNudge            float64 `yaml:"spike_nudge"`
	NearMissRateThreshold float64 `yaml:"near_miss_rate_threshold"`
}

// NearMissTuning maps onto the near-miss engine parameters.
type NearMissTuning struct {
	Threshold      float64 `yaml:"threshold"`
	BiasMultiplier float64 `yaml:"bias_multiplier"`
	BiasDuration   float64 `yaml:"bias_duration"`
	RateWindow     float64 `yaml:"rate_window"`
}

// EngineParams converts the tuning into difficulty engine parameters.
// Spike and recovery transitions default on; levels opt out per attempt
// through their own flags.
func (t Tuning) EngineParams() difficulty.Params {
	return difficulty.Params{
		WindowSize:        t.Difficulty.WindowSize,
		SpikeThreshold:    t.Difficulty.SpikeThreshold,
		RecoveryThreshold: t.Difficulty.RecoveryThreshold,
		SpikeStep:         t.Difficulty.SpikeStep,
		RecoveryStep:      t.Difficulty.RecoveryStep,
		DriftStep:         t.Difficulty.DriftStep,
		HighWaterMark:     t.Difficulty.HighWaterMark,
		LowWaterMark:      t.Difficulty.LowWaterMark,
		MinDifficulty:     t.Difficulty.MinDifficulty,
		MaxDifficulty:     t.Difficulty.MaxDifficulty,
		SpikeEnabled:      true,
		RecoveryEnabled:   true,
	}
}

// AdaptiveParams converts the tuning into adaptive layer parameters.
func (t Tuning) AdaptiveParams() difficulty.AdaptiveParams {
	return difficulty.AdaptiveParams{
		Interval:              t.Adaptive.Interval,
		Smoothing:             t.Adaptive.Smoothing,
		SpikeNudge:            t.Adaptive.SpikeNudge,
		NearMissRateThreshold: t.Adaptive.NearMissRateThreshold,
	}
}

// NearMissParams converts the tuning into near-miss engine parameters.
func (t Tuning) NearMissParams() difficulty.NearMissParams {
	return difficulty.NearMissParams{
		Threshold:      t.NearMiss.Threshold,
		BiasMultiplier: t.NearMiss.BiasMultiplier,
		BiasDuration:   t.NearMiss.BiasDuration,
		RateWindow:     t.NearMiss.RateWindow,
	}
}

// Preset represents a named tuning preset.
type Preset string

const (
	PresetEasy   Preset = "easy"
	PresetNormal Preset = "normal"
	PresetHard   Preset = "hard"
	PresetFixed  Preset = "fixed"
)

// ApplyPreset modifies the tuning for a named preset. "fixed" disables
// the adaptive layer entirely; "easy" and "hard" move the scalar clamp
// so pacing tops out gentler or bottoms out harsher.
func ApplyPreset(t *Tuning, preset Preset) {
	switch preset {
	case PresetFixed:
		t.Adaptive.Enabled = false
	case PresetEasy:
		t.Adaptive.Enabled = true
		t.Difficulty.MaxDifficulty = 1.5
	case PresetHard:
		t.Adaptive.Enabled = true
		t.Difficulty.MinDifficulty = 0.5
	default:
		t.Adaptive.Enabled = true
	}
}

// IsFixedPreset reports whether the preset disables adaptation.
func IsFixedPreset(preset Preset) bool {
	return preset == PresetFixed
}
