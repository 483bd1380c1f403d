// sortline is a terminal conveyor-sorting puzzle with an adaptive
// difficulty engine.
//
// Usage:
//
//	sortline list              - List available levels
//	sortline play <level>      - Play a level
//	sortline simulate <level>  - Run a headless deterministic simulation
//	sortline stats [level]     - Show attempt history and aggregates
//	sortline serve             - Start SSH server for remote play
//
// Global flags:
//
//	--fps <rate>    - Set tick rate (default: 30)
//	--seed <value>  - Set RNG seed for reproducible runs
//	--db <path>     - Set database path (default: ~/.sortline/attempts.db)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagFPS    int
	flagSeed   uint64
	flagDBPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sortline",
	Short: "Sortline - conveyor-sorting puzzle for your terminal",
	Long: `Sortline is a terminal puzzle: route items off a conveyor into
pocket lanes, place them on the board, and clear clusters of matching
items before the belt backs up. The difficulty tunes itself to how you
play.

Available commands:
  list      - Show all available levels
  play      - Play a specific level
  simulate  - Run a headless deterministic simulation
  stats     - View attempt history
  serve     - Start SSH server for remote play

Examples:
  sortline list
  sortline play yard-1
  sortline play rush-belt --preset hard
  sortline simulate yard-1 --ticks 3000 --seed 7
  sortline stats yard-1
  sortline serve --ssh :2222 --level gauge`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 30, "Tick rate (ticks per second)")
	rootCmd.PersistentFlags().Uint64Var(&flagSeed, "seed", 0, "RNG seed (0 = level default, time-based on restart)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.sortline/attempts.db", "Path to attempts database")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(serveCmd)
}
