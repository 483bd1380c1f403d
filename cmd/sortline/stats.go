package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sortline/sortline/internal/levels"
	"github.com/sortline/sortline/internal/platform/tui"
	"github.com/sortline/sortline/internal/storage"
)

var flagInteractive bool

var statsCmd = &cobra.Command{
	Use:   "stats [level]",
	Short: "Show attempt history and aggregates",
	Long: `Display attempt aggregates for every level, or recent attempts
for one level.

Examples:
  sortline stats
  sortline stats yard-1
  sortline stats -i`,
	Args: cobra.MaximumNArgs(1),
	Run:  runStats,
}

func init() {
	statsCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "Browse attempt history in a TUI")
}

func runStats(cmd *cobra.Command, args []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening attempts database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if flagInteractive {
		width, height := 80, 24
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width = w
			height = h
		}
		if err := tui.RunStats(store, levels.List(), width, height); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if len(args) == 1 {
		printLevelStats(store, args[0])
		return
	}
	printAllStats(store)
}

// printLevelStats prints recent attempts for one level.
func printLevelStats(store *storage.Store, levelID string) {
	if !levels.Exists(levelID) {
		fmt.Fprintf(os.Stderr, "Error: unknown level %q\n", levelID)
		fmt.Fprintln(os.Stderr, "Run 'sortline list' to see available levels.")
		os.Exit(1)
	}

	attempts, err := store.RecentAttempts(levelID, 10)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving attempts: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Recent attempts - %s\n", levelID)
	fmt.Println()

	if len(attempts) == 0 {
		fmt.Println("No attempts recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'sortline play %s' to record the first attempt!\n", levelID)
		return
	}

	fmt.Printf("  %-4s  %-7s  %-8s  %-6s  %-5s  %s\n", "#", "Result", "Score", "Combo", "Diff", "Date")
	fmt.Printf("  %-4s  %-7s  %-8s  %-6s  %-5s  %s\n", "-", "------", "-----", "-----", "----", "----")

	for i, a := range attempts {
		result := "loss"
		if a.Won {
			result = "win"
		} else if a.NearMiss {
			result = "near"
		}
		dateStr := a.CreatedAt.Format("2006-01-02 15:04")
		fmt.Printf("  %-4d  %-7s  %-8d  x%-5d  %-5.2f  %s\n",
			i+1, result, a.Score, a.MaxCombo, a.EndDifficulty, dateStr)
	}

	if best, err := store.BestScore(levelID); err == nil && best > 0 {
		fmt.Println()
		fmt.Printf("Best: %d\n", best)
	}
	if rate, count, err := store.WinRate(levelID, 10); err == nil && count > 0 {
		fmt.Printf("Win rate (last %d): %.0f%%\n", count, rate*100)
	}
}

// printAllStats prints one aggregate line per level.
func printAllStats(store *storage.Store) {
	all, err := store.GetAllLevelStats()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving stats: %v\n", err)
		os.Exit(1)
	}

	if len(all) == 0 {
		fmt.Println("No attempts recorded yet.")
		return
	}

	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Println("Attempt aggregates:")
	fmt.Println()
	fmt.Printf("  %-12s  %-8s  %-6s  %-8s  %-10s  %s\n", "Level", "Attempts", "Wins", "Best", "Near miss", "Last played")
	fmt.Printf("  %-12s  %-8s  %-6s  %-8s  %-10s  %s\n", "-----", "--------", "----", "----", "---------", "-----------")

	for _, id := range ids {
		st := all[id]
		fmt.Printf("  %-12s  %-8d  %-6d  %-8d  %-10d  %s\n",
			id, st.Attempts, st.Wins, st.BestScore, st.NearMisses,
			st.LastPlayed.Format("2006-01-02 15:04"))
	}

	fmt.Println()
	fmt.Println("Run 'sortline stats <level>' for per-attempt detail.")
}
