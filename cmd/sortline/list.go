package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sortline/sortline/internal/levels"
)

var flagListLevelsDir string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available levels",
	Long: `Shows every registered level. With --levels, files from the
directory are merged in and shadow built-ins with the same ID.`,
	Run: runList,
}

func init() {
	listCmd.Flags().StringVar(&flagListLevelsDir, "levels", "", "Directory of level YAML files to merge in")
}

func runList(cmd *cobra.Command, args []string) {
	var lvls []levels.Level
	if flagListLevelsDir != "" {
		lvls = levels.NewLoader(flagListLevelsDir).All()
	} else {
		lvls = levels.List()
	}

	if len(lvls) == 0 {
		fmt.Println("No levels available.")
		return
	}

	fmt.Println("Available levels:")
	fmt.Println()

	maxIDLen := 2 // "ID" header
	for _, l := range lvls {
		if len(l.ID) > maxIDLen {
			maxIDLen = len(l.ID)
		}
	}

	fmt.Printf("  %-*s  %-24s  %-7s  %s\n", maxIDLen, "ID", "Name", "Board", "Goal")
	fmt.Printf("  %-*s  %-24s  %-7s  %s\n", maxIDLen, "--", "----", "-----", "----")

	for _, l := range lvls {
		board := fmt.Sprintf("%dx%d", l.GridWidth, l.GridHeight)
		goal := fmt.Sprintf("%d of type %d", l.TargetGoal, l.TargetItem)
		if l.Anchor {
			goal += " (anchor)"
		}
		fmt.Printf("  %-*s  %-24s  %-7s  %s\n", maxIDLen, l.ID, l.Name, board, goal)
	}

	fmt.Println()
	fmt.Println("Run 'sortline play <id>' to play a level.")
}
