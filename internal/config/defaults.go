package config

import (
	_ "embed"
)

//go:embed defaults/tuning.yaml
var defaultTuningYAML []byte

// DefaultTuning returns the shipped tuning. The values mirror the
// embedded YAML and the difficulty package defaults; regression tests
// keep all three in agreement.
func DefaultTuning() Tuning {
	return Tuning{
		Difficulty: DifficultyTuning{
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
		},
		Adaptive: AdaptiveTuning{
			Enabled:               true,
			Interval:              2.0,
			Smoothing:             0.25,
			SpikeNudge:            0.1,
			NearMissRateThreshold: 2.0,
		},
		NearMiss: NearMissTuning{
			Threshold:      0.8,
			BiasMultiplier: 2.0,
			BiasDuration:   15.0,
			RateWindow:     60.0,
		},
	}
}
