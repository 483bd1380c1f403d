package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEmbeddedDefaultMatchesHardcoded(t *testing.T) {
	loaded, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded != DefaultTuning() {
		t.Errorf("embedded tuning diverged from DefaultTuning:\n%+v\nvs\n%+v", loaded, DefaultTuning())
	}
}

func TestLoadCustomPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	body := []byte("difficulty:\n  window_size: 7\n  spike_threshold: 2\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Difficulty.WindowSize != 7 || cfg.Difficulty.SpikeThreshold != 2 {
		t.Errorf("custom values not applied: %+v", cfg.Difficulty)
	}
}

func TestLoadMissingCustomPathFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for an explicit path that does not exist")
	}
}

func TestParamsConversion(t *testing.T) {
	cfg := DefaultTuning()

	p := cfg.EngineParams()
	if p.WindowSize != 10 || p.SpikeStep != 0.15 || p.MaxDifficulty != 2.0 {
		t.Errorf("engine params conversion: %+v", p)
	}
	a := cfg.AdaptiveParams()
	if a.Interval != 2.0 || a.Smoothing != 0.25 {
		t.Errorf("adaptive params conversion: %+v", a)
	}
	n := cfg.NearMissParams()
	if n.Threshold != 0.8 || n.BiasDuration != 15.0 {
		t.Errorf("near-miss params conversion: %+v", n)
	}
}

func TestApplyPreset(t *testing.T) {
	cases := []struct {
		preset  Preset
		enabled bool
		maxDiff float64
		minDiff float64
	}{
		{PresetNormal, true, 2.0, 0.3},
		{PresetEasy, true, 1.5, 0.3},
		{PresetHard, true, 2.0, 0.5},
		{PresetFixed, false, 2.0, 0.3},
	}
	for _, c := range cases {
		cfg := DefaultTuning()
		ApplyPreset(&cfg, c.preset)
		if cfg.Adaptive.Enabled != c.enabled {
			t.Errorf("%s: adaptive enabled = %v, want %v", c.preset, cfg.Adaptive.Enabled, c.enabled)
		}
		if cfg.Difficulty.MaxDifficulty != c.maxDiff || cfg.Difficulty.MinDifficulty != c.minDiff {
			t.Errorf("%s: clamp = [%v, %v], want [%v, %v]", c.preset,
				cfg.Difficulty.MinDifficulty, cfg.Difficulty.MaxDifficulty, c.minDiff, c.maxDiff)
		}
	}
	if !IsFixedPreset(PresetFixed) || IsFixedPreset(PresetEasy) {
		t.Error("IsFixedPreset misclassified a preset")
	}
}
