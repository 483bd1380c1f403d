package levels

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// yamlLevel is the on-disk level schema.
type yamlLevel struct {
	ID       string       `yaml:"id"`
	Name     string       `yaml:"name"`
	Seed     uint64       `yaml:"seed,omitempty"`
	Board    yamlBoard    `yaml:"board"`
	Conveyor yamlConveyor `yaml:"conveyor"`
	Items    yamlItems    `yaml:"items"`
	Target   yamlTarget   `yaml:"target"`
	Prefill  int          `yaml:"prefill,omitempty"`
	Combo    float64      `yaml:"combo_window,omitempty"`
	Time     float64      `yaml:"time_limit,omitempty"`

	// Pointers distinguish "absent" from an explicit false; both flags
	// default on.
	Spike    *bool `yaml:"spike,omitempty"`
	Recovery *bool `yaml:"recovery,omitempty"`
	Anchor   bool  `yaml:"anchor,omitempty"`
}

type yamlBoard struct {
	W          int `yaml:"w"`
	H          int `yaml:"h"`
	MinCluster int `yaml:"min_cluster"`
}

type yamlConveyor struct {
	Capacity       int     `yaml:"capacity"`
	Pockets        int     `yaml:"pockets"`
	PocketCapacity int     `yaml:"pocket_capacity"`
	SpawnInterval  float64 `yaml:"spawn_interval"`
	Speed          float64 `yaml:"speed,omitempty"`
}

type yamlItems struct {
	Weights        []float64 `yaml:"weights"`
	ObstacleChance float64   `yaml:"obstacle_chance,omitempty"`
	ObstacleHP     int       `yaml:"obstacle_hp,omitempty"`
}

type yamlTarget struct {
	Item int `yaml:"item"`
	Goal int `yaml:"goal"`
}

// ParseYAML parses one level file and fills in the optional defaults.
func ParseYAML(data []byte) (Level, error) {
	var yl yamlLevel
	if err := yaml.Unmarshal(data, &yl); err != nil {
		return Level{}, fmt.Errorf("yaml unmarshal: %w", err)
	}

	lvl := Level{
		ID:               yl.ID,
		Name:             yl.Name,
		Seed:             yl.Seed,
		GridWidth:        yl.Board.W,
		GridHeight:       yl.Board.H,
		MinCluster:       yl.Board.MinCluster,
		ConveyorCapacity: yl.Conveyor.Capacity,
		PocketCount:      yl.Conveyor.Pockets,
		PocketCapacity:   yl.Conveyor.PocketCapacity,
		SpawnInterval:    yl.Conveyor.SpawnInterval,
		ConveyorSpeed:    yl.Conveyor.Speed,
		Weights:          yl.Items.Weights,
		ObstacleChance:   yl.Items.ObstacleChance,
		ObstacleHP:       yl.Items.ObstacleHP,
		TargetItem:       yl.Target.Item,
		TargetGoal:       yl.Target.Goal,
		PrefillCount:     yl.Prefill,
		ComboWindow:      yl.Combo,
		TimeLimit:        yl.Time,
		SpikeEnabled:     yl.Spike == nil || *yl.Spike,
		RecoveryEnabled:  yl.Recovery == nil || *yl.Recovery,
		Anchor:           yl.Anchor,
	}
	if lvl.MinCluster == 0 {
		lvl.MinCluster = 3
	}
	if lvl.ConveyorSpeed == 0 {
		lvl.ConveyorSpeed = 1.0
	}
	if lvl.ObstacleHP == 0 {
		lvl.ObstacleHP = 2
	}
	if lvl.ComboWindow == 0 {
		lvl.ComboWindow = 4.0
	}
	if err := lvl.Validate(); err != nil {
		return Level{}, err
	}
	return lvl, nil
}
