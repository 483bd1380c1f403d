package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/sortline/sortline/internal/difficulty"
	"github.com/sortline/sortline/internal/events"
	"github.com/sortline/sortline/internal/rng"
	"github.com/sortline/sortline/internal/sim"
)

var (
	flagTicks   int
	flagJournal bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <level>",
	Short: "Run a headless deterministic simulation",
	Long: `Run a level without a terminal UI, driven by a simple built-in
autopilot. The same seed and tick count always produce the same run and
the same final state hash, which makes this useful for regression checks
and for balancing levels.

Examples:
  sortline simulate yard-1
  sortline simulate rush-belt --ticks 5000 --seed 7
  sortline simulate yard-1 --journal`,
	Args: cobra.ExactArgs(1),
	Run:  runSimulate,
}

func init() {
	simulateCmd.Flags().IntVar(&flagTicks, "ticks", 3000, "Maximum ticks to simulate")
	simulateCmd.Flags().BoolVar(&flagJournal, "journal", false, "Log every simulation event")
	simulateCmd.Flags().StringVar(&flagLevelsDir, "levels", "", "Directory of level YAML files (shadows built-ins)")
	simulateCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom tuning YAML")
	simulateCmd.Flags().StringVar(&flagPreset, "preset", "", "Tuning preset: easy, normal, hard, fixed")
}

func runSimulate(cmd *cobra.Command, args []string) {
	level, err := resolveLevel(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	tuning, err := loadTuning()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading tuning: %v\n", err)
		os.Exit(1)
	}

	seed := flagSeed
	if seed == 0 {
		seed = level.Seed
	}

	logger := log.NewWithOptions(os.Stdout, log.Options{
		Prefix: "sim",
	})
	if flagJournal {
		logger.SetLevel(log.DebugLevel)
	}

	bus := events.NewBus()
	ep := tuning.EngineParams()
	ep.SpikeEnabled = level.SpikeEnabled
	ep.RecoveryEnabled = level.RecoveryEnabled
	diff := difficulty.NewEngine(ep)
	nearMiss := difficulty.NewNearMissEngine(tuning.NearMissParams())
	layer := difficulty.NewLayer(tuning.AdaptiveParams(), diff, nearMiss)
	layer.SetAdaptiveEnabled(tuning.Adaptive.Enabled)
	if level.Anchor {
		layer.SetAdaptiveEnabled(false)
		nearMiss.SetEnabled(false)
	}

	if flagJournal {
		bus.SubscribeAll(func(e events.Event) {
			journalEvent(logger, e)
		})
	}

	lost := false
	bus.Subscribe(events.KindPocketOverflow, func(events.Event) {
		lost = true
	})

	engine := sim.NewEngine(level.SimParams(), rng.New(seed), layer, nearMiss, bus)

	dt := 1.0 / float64(flagFPS)
	ticks := 0
	for ; ticks < flagTicks && !engine.TargetReached() && !lost; ticks++ {
		autopilot(engine)
		engine.Update(dt)
	}

	won := engine.TargetReached()
	engine.RecordOutcome(won)

	logger.Info("run finished",
		"level", level.ID,
		"seed", seed,
		"won", won,
		"ticks", ticks,
		"sim_seconds", fmt.Sprintf("%.1f", engine.Now()),
		"score", engine.Score(),
		"cleared", engine.ClearedTarget(),
		"goal", level.TargetGoal,
		"difficulty", fmt.Sprintf("%.2f", layer.Difficulty()),
		"snapshot", fmt.Sprintf("%016x", engine.Snapshot()),
	)
}

// autopilot issues at most one routing and one placement command per
// tick. Items are routed into the lane matching their type and placed
// into per-type columns so same-type cells stack into clusters. The
// policy only reads engine state, so runs stay deterministic.
func autopilot(e *sim.Engine) {
	conv := e.Conveyor()

	if conv.Len() > 0 {
		head := conv.Items()[0]
		lane := int(head.Type) % conv.PocketCount()
		if conv.PocketLen(lane) >= conv.PocketCapacity() {
			lane = -1
			for l := 0; l < conv.PocketCount(); l++ {
				if conv.PocketLen(l) < conv.PocketCapacity() {
					lane = l
					break
				}
			}
		}
		if lane >= 0 {
			e.RouteToPocket(lane)
		}
	}

	for lane := 0; lane < conv.PocketCount(); lane++ {
		item, ok := conv.PeekPocket(lane)
		if !ok {
			continue
		}
		if x, y, found := placementFor(e.Grid(), int(item.Type)); found {
			e.PlaceFromPocket(lane, x, y)
			return
		}
	}
}

// placementFor picks a cell for an item: the bottom-most empty cell in
// the item's home column, falling back to neighboring columns when the
// home column is full.
func placementFor(g *sim.Grid, item int) (int, int, bool) {
	for offset := 0; offset < g.Width(); offset++ {
		x := (item + offset) % g.Width()
		for y := g.Height() - 1; y >= 0; y-- {
			if g.IsEmpty(x, y) {
				return x, y, true
			}
		}
	}
	return 0, 0, false
}

func journalEvent(logger *log.Logger, e events.Event) {
	switch ev := e.(type) {
	case events.ItemSpawned:
		logger.Debug("spawned", "item", ev.Item, "locked", ev.Locked, "queue", ev.QueueLen)
	case events.ItemRouted:
		logger.Debug("routed", "item", ev.Item, "lane", ev.Lane)
	case events.PocketOverflow:
		logger.Warn("pocket overflow", "item", ev.Item, "lane", ev.Lane)
	case events.ConveyorFull:
		logger.Warn("conveyor full", "capacity", ev.Capacity)
	case events.ClusterResolved:
		logger.Info("cluster resolved", "item", ev.Item, "size", len(ev.Positions), "depth", ev.Depth)
	case events.ComboUpdated:
		logger.Debug("combo", "combo", ev.Combo)
	case events.DifficultyChanged:
		logger.Info("difficulty changed", "difficulty", fmt.Sprintf("%.2f", ev.Difficulty),
			"spike", ev.Spike, "recovery", ev.Recovery)
	case events.NearMissDetected:
		logger.Info("near miss", "progress", fmt.Sprintf("%.2f", ev.Progress),
			"rate_per_min", fmt.Sprintf("%.2f", ev.RatePerMinute))
	}
}
