package core

// RuntimeConfig contains configuration passed to a level run at start.
// The seed drives the deterministic simulation; screen dimensions size
// the play view.
type RuntimeConfig struct {
	ScreenW  int    // Screen width in characters
	ScreenH  int    // Screen height in characters
	TickRate int    // Simulation ticks per second (default 30)
	Seed     uint64 // Root RNG seed, 0 means use the level default
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 30,
		Seed:     0,
	}
}

// GameState communicates run status from the play view to the platform.
type GameState struct {
	Score    int
	Combo    int
	GameOver bool
	Won      bool // valid only when GameOver
	Paused   bool
}
