package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sortline/sortline/internal/config"
	"github.com/sortline/sortline/internal/core"
	"github.com/sortline/sortline/internal/levels"
	"github.com/sortline/sortline/internal/platform/tui"
	"github.com/sortline/sortline/internal/storage"
)

var (
	flagConfig    string
	flagPreset    string
	flagLevelsDir string
)

var playCmd = &cobra.Command{
	Use:   "play <level>",
	Short: "Play a level",
	Long: `Start playing the specified level.

Controls:
  Arrows/WASD - Move the board cursor
  Tab/S-Tab   - Select pocket lane
  Space       - Route the conveyor head into the selected lane
  Enter       - Place the selected pocket head at the cursor
  U           - Push the pocket head back onto the conveyor
  C           - Accept a continue offer
  P/Esc       - Pause
  R           - Restart (after the attempt ends)
  Q/Ctrl+C    - Quit

Preset options:
  easy   - Adaptive pacing with a gentler ceiling
  normal - Default adaptive pacing
  hard   - Adaptive pacing with a harsher floor
  fixed  - No adaptation, multipliers stay at 1.0

Examples:
  sortline play yard-1
  sortline play rush-belt --preset hard
  sortline play yard-1 --seed 12345
  sortline play my-level --levels ./levels
  sortline play yard-1 --config ./my-tuning.yaml`,
	Args: cobra.ExactArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom tuning YAML")
	playCmd.Flags().StringVar(&flagPreset, "preset", "", "Tuning preset: easy, normal, hard, fixed")
	playCmd.Flags().StringVar(&flagLevelsDir, "levels", "", "Directory of level YAML files (shadows built-ins)")
}

// resolveLevel finds a level by ID, preferring a --levels directory over
// the built-in registry.
func resolveLevel(id string) (levels.Level, error) {
	if flagLevelsDir != "" {
		return levels.NewLoader(flagLevelsDir).Resolve(id)
	}
	return levels.Get(id)
}

// loadTuning loads the tuning config and applies the preset flag.
func loadTuning() (config.Tuning, error) {
	tuning, err := config.Load(flagConfig)
	if err != nil {
		return config.Tuning{}, err
	}
	if flagPreset != "" {
		config.ApplyPreset(&tuning, config.Preset(flagPreset))
	}
	return tuning, nil
}

func runPlay(cmd *cobra.Command, args []string) {
	level, err := resolveLevel(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'sortline list' to see available levels.")
		os.Exit(1)
	}

	tuning, err := loadTuning()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading tuning: %v\n", err)
		os.Exit(1)
	}

	// Get terminal size
	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	cfg := core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}

	// Open attempt storage
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open attempts database: %v\n", err)
		// Continue without storage - the level still plays
		store = nil
	}

	runErr := tui.Run(level, tuning, store, cfg)

	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running level: %v\n", runErr)
		os.Exit(1)
	}
}
