package tui

import (
	"fmt"

	"github.com/sortline/sortline/internal/config"
	"github.com/sortline/sortline/internal/core"
	"github.com/sortline/sortline/internal/difficulty"
	"github.com/sortline/sortline/internal/events"
	"github.com/sortline/sortline/internal/levels"
	"github.com/sortline/sortline/internal/rng"
	"github.com/sortline/sortline/internal/sim"
)

// continueGrace is the extra sim-seconds granted on a timed level when
// the player accepts a continue offer.
const continueGrace = 20.0

type sessionPhase int

const (
	phasePlaying sessionPhase = iota
	phaseContinueOffer
	phaseEnded
)

// Session owns one level attempt end to end: the simulation engine, the
// difficulty stack, command handling, and win/loss adjudication. It is
// pure state plus rendering; Bubble Tea never reaches below this type.
type Session struct {
	level  levels.Level
	tuning config.Tuning

	bus      *events.Bus
	engine   *sim.Engine
	layer    *difficulty.Layer
	nearMiss *difficulty.NearMissEngine

	dt       float64
	elapsed  float64
	deadline float64 // sim-seconds, 0 when untimed
	phase    sessionPhase
	state    core.GameState

	overflowed   bool
	lossNearMiss bool // last loss classified as a near miss
	nearMissSeen bool // any near miss during this attempt
	continueUsed bool
	maxCombo     int

	cursorX, cursorY int
	lane             int
}

// NewSession builds a fresh attempt at the given level. A zero seed in
// cfg falls back to the level's default seed, keeping replays stable
// when the caller pins one.
func NewSession(level levels.Level, tuning config.Tuning, cfg core.RuntimeConfig) *Session {
	seed := cfg.Seed
	if seed == 0 {
		seed = level.Seed
	}
	tickRate := cfg.TickRate
	if tickRate <= 0 {
		tickRate = core.DefaultConfig().TickRate
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

	s := &Session{
		level:    level,
		tuning:   tuning,
		bus:      bus,
		layer:    layer,
		nearMiss: nearMiss,
		dt:       1.0 / float64(tickRate),
		deadline: level.TimeLimit,
	}

	bus.Subscribe(events.KindPocketOverflow, func(events.Event) {
		s.overflowed = true
	})
	bus.Subscribe(events.KindComboUpdated, func(e events.Event) {
		if c := e.(events.ComboUpdated).Combo; c > s.maxCombo {
			s.maxCombo = c
		}
	})
	bus.Subscribe(events.KindNearMissDetected, func(events.Event) {
		s.lossNearMiss = true
		s.nearMissSeen = true
	})

	s.engine = sim.NewEngine(level.SimParams(), rng.New(seed), layer, nearMiss, bus)
	return s
}

// Bus exposes the event bus so callers can attach journaling taps before
// the first Step.
func (s *Session) Bus() *events.Bus { return s.bus }

// Step advances the attempt by one tick, applying the frame's commands
// first. Nothing advances while paused, during a continue offer, or
// after the attempt has ended.
func (s *Session) Step(in core.InputFrame) {
	switch s.phase {
	case phaseEnded:
		return
	case phaseContinueOffer:
		s.handleContinueOffer(in)
		return
	}

	if in.Has(core.ActionPause) {
		s.state.Paused = !s.state.Paused
	}
	if s.state.Paused {
		return
	}

	s.applyCommands(in)

	s.engine.Update(s.dt)
	s.elapsed += s.dt
	s.state.Score = s.engine.Score()
	s.state.Combo = s.engine.Combo()

	s.adjudicate()
}

// handleContinueOffer waits for the player's decision after a near-miss
// loss. The loss is already recorded; accepting resumes the same attempt
// with the one-shot spawn guarantee armed.
func (s *Session) handleContinueOffer(in core.InputFrame) {
	switch {
	case in.Has(core.ActionContinue):
		s.engine.GrantContinue()
		s.overflowed = false
		if s.deadline > 0 {
			s.deadline += continueGrace
		}
		s.continueUsed = true
		s.phase = phasePlaying
	case in.Has(core.ActionRestart):
		s.phase = phaseEnded
		s.state.GameOver = true
	}
}

func (s *Session) applyCommands(in core.InputFrame) {
	grid := s.engine.Grid()
	if in.Has(core.ActionCursorUp) {
		s.cursorY = core.Clamp(s.cursorY-1, 0, grid.Height()-1)
	}
	if in.Has(core.ActionCursorDown) {
		s.cursorY = core.Clamp(s.cursorY+1, 0, grid.Height()-1)
	}
	if in.Has(core.ActionCursorLeft) {
		s.cursorX = core.Clamp(s.cursorX-1, 0, grid.Width()-1)
	}
	if in.Has(core.ActionCursorRight) {
		s.cursorX = core.Clamp(s.cursorX+1, 0, grid.Width()-1)
	}

	lanes := s.engine.Conveyor().PocketCount()
	if in.Has(core.ActionNextLane) {
		s.lane = (s.lane + 1) % lanes
	}
	if in.Has(core.ActionPrevLane) {
		s.lane = (s.lane - 1 + lanes) % lanes
	}

	if in.Has(core.ActionRoute) {
		s.engine.RouteToPocket(s.lane)
	}
	if in.Has(core.ActionPlace) {
		s.engine.PlaceFromPocket(s.lane, s.cursorX, s.cursorY)
	}
	if in.Has(core.ActionReenqueue) {
		s.engine.Reenqueue(s.lane)
	}
}

// adjudicate checks the win and loss conditions after a tick. The engine
// itself never decides outcomes; this is the enclosing flow the
// simulation core expects.
func (s *Session) adjudicate() {
	if s.engine.TargetReached() {
		s.finish(true)
		return
	}
	if s.overflowed || (s.deadline > 0 && s.elapsed >= s.deadline) {
		s.finish(false)
	}
}

// finish records the outcome. A near-miss loss opens a one-time continue
// offer instead of ending the attempt outright; anchor levels never
// offer one.
func (s *Session) finish(won bool) {
	s.lossNearMiss = false
	s.engine.RecordOutcome(won)

	if !won && s.lossNearMiss && !s.continueUsed && !s.level.Anchor {
		s.phase = phaseContinueOffer
		return
	}

	s.phase = phaseEnded
	s.state.GameOver = true
	s.state.Won = won
}

// Ended reports whether the attempt is over.
func (s *Session) Ended() bool { return s.phase == phaseEnded }

// OfferingContinue reports whether the attempt is waiting on a continue
// decision.
func (s *Session) OfferingContinue() bool { return s.phase == phaseContinueOffer }

// State returns the current game state for the UI loop.
func (s *Session) State() core.GameState { return s.state }

// Level returns the level this attempt runs.
func (s *Session) Level() levels.Level { return s.level }

// Elapsed returns consumed sim-seconds.
func (s *Session) Elapsed() float64 { return s.elapsed }

// MaxCombo returns the highest combo reached this attempt.
func (s *Session) MaxCombo() int { return s.maxCombo }

// Difficulty returns the current difficulty scalar.
func (s *Session) Difficulty() float64 { return s.layer.Difficulty() }

// NearMissSeen reports whether any loss this attempt was a near miss.
func (s *Session) NearMissSeen() bool { return s.nearMissSeen }

// Engine exposes the simulation engine for headless drivers.
func (s *Session) Engine() *sim.Engine { return s.engine }

// Board glyphs.
const (
	glyphEmpty  = '·'
	glyphItem   = '●'
	glyphLocked = '#'
)

// Render draws the full attempt view: conveyor, pocket lanes, board with
// cursor, HUD, and any overlay.
func (s *Session) Render(scr *core.Screen) {
	scr.Clear()

	grid := s.engine.Grid()
	conv := s.engine.Conveyor()

	s.renderHeader(scr)
	s.renderConveyor(scr, conv, 1)
	s.renderLanes(scr, conv, 2)

	boardX, boardY := 2, 5
	s.renderBoard(scr, grid, boardX, boardY)
	s.renderHUD(scr, boardX+grid.Width()*2+4, boardY)

	scr.DrawText(0, scr.Height()-1,
		"arrows move  tab lane  space route  enter place  u return  p pause  q quit")

	s.renderOverlay(scr)
}

func (s *Session) renderHeader(scr *core.Screen) {
	scr.DrawTextColored(0, 0, "SORTLINE", core.ColorBrightWhite)
	scr.DrawText(10, 0, s.level.Name)
	if s.deadline > 0 {
		scr.DrawText(scr.Width()-16, 0, fmt.Sprintf("time %5.1f/%.0fs", s.elapsed, s.deadline))
	} else {
		scr.DrawText(scr.Width()-12, 0, fmt.Sprintf("time %5.1fs", s.elapsed))
	}
}

func (s *Session) renderConveyor(scr *core.Screen, conv *sim.Conveyor, y int) {
	label := fmt.Sprintf("Belt [%2d/%2d] ", conv.Len(), conv.Capacity())
	scr.DrawText(0, y, label)
	x := len(label)
	for _, it := range conv.Items() {
		if it.Locked {
			scr.SetColored(x, y, glyphLocked, core.LockColor)
		} else {
			scr.SetColored(x, y, glyphItem, core.ItemColor(int(it.Type)))
		}
		x += 2
	}
}

func (s *Session) renderLanes(scr *core.Screen, conv *sim.Conveyor, y int) {
	x := 0
	for lane := 0; lane < conv.PocketCount(); lane++ {
		marker := ' '
		if lane == s.lane {
			marker = '>'
		}
		scr.SetColored(x, y, marker, core.ColorBrightWhite)
		scr.DrawText(x+1, y, fmt.Sprintf("%d [", lane))
		cx := x + 4
		items := conv.PocketItems(lane)
		for slot := 0; slot < conv.PocketCapacity(); slot++ {
			if slot < len(items) {
				it := items[slot]
				if it.Locked {
					scr.SetColored(cx, y, glyphLocked, core.LockColor)
				} else {
					scr.SetColored(cx, y, glyphItem, core.ItemColor(int(it.Type)))
				}
			} else {
				scr.Set(cx, y, '_')
			}
			cx++
		}
		scr.Set(cx, y, ']')
		x = cx + 3
	}
}

func (s *Session) renderBoard(scr *core.Screen, grid *sim.Grid, bx, by int) {
	scr.DrawBox(core.NewRect(bx-1, by-1, grid.Width()*2+1, grid.Height()+2))

	for y := 0; y < grid.Height(); y++ {
		for x := 0; x < grid.Width(); x++ {
			cx, cy := bx+x*2, by+y
			cell := grid.CellAt(x, y)
			switch {
			case !cell.Filled:
				scr.SetColored(cx, cy, glyphEmpty, core.ColorGray)
			case cell.LockHP > 0:
				scr.SetColored(cx, cy, glyphLocked, core.LockColor)
			default:
				scr.SetColored(cx, cy, glyphItem, core.ItemColor(int(cell.Item)))
			}
		}
	}

	cx, cy := bx+s.cursorX*2, by+s.cursorY
	scr.SetColored(cx-1, cy, '[', core.ColorBrightWhite)
	scr.SetColored(cx+1, cy, ']', core.ColorBrightWhite)
}

func (s *Session) renderHUD(scr *core.Screen, x, y int) {
	scr.DrawText(x, y, fmt.Sprintf("Score %d", s.state.Score))
	if s.state.Combo > 1 {
		scr.DrawTextColored(x, y+1, fmt.Sprintf("Combo x%d", s.state.Combo), core.ColorBrightYellow)
	}

	cleared := s.engine.ClearedTarget()
	scr.DrawText(x, y+2, fmt.Sprintf("Target %d/%d", cleared, s.level.TargetGoal))
	s.renderProgressBar(scr, x, y+3, 12, s.engine.TargetProgress())

	scr.DrawText(x, y+5, fmt.Sprintf("Difficulty %.2f", s.layer.Difficulty()))
	if s.layer.Spike() {
		scr.DrawTextColored(x+16, y+5, "spike", core.ColorBrightRed)
	} else if s.layer.Recovery() {
		scr.DrawTextColored(x+16, y+5, "recovery", core.ColorBrightGreen)
	}
	scr.DrawText(x, y+6, fmt.Sprintf("speed x%.2f", s.layer.SpeedMultiplier()))
	scr.DrawText(x, y+7, fmt.Sprintf("spawn x%.2f", s.layer.SpawnRateMultiplier()))
	scr.DrawText(x, y+8, fmt.Sprintf("locks x%.2f", s.layer.ObstacleMultiplier()))
}

func (s *Session) renderProgressBar(scr *core.Screen, x, y, width int, progress float64) {
	filled := int(progress * float64(width))
	scr.Set(x, y, '[')
	for i := 0; i < width; i++ {
		if i < filled {
			scr.SetColored(x+1+i, y, '=', core.ColorBrightGreen)
		} else {
			scr.Set(x+1+i, y, '-')
		}
	}
	scr.Set(x+1+width, y, ']')
}

func (s *Session) renderOverlay(scr *core.Screen) {
	mid := scr.Height() / 2
	switch {
	case s.phase == phaseContinueOffer:
		scr.DrawTextCentered(mid-1, "SO CLOSE!")
		scr.DrawTextCentered(mid, fmt.Sprintf("You reached %.0f%% of the target.", s.engine.TargetProgress()*100))
		scr.DrawTextCentered(mid+1, "Press C to continue or R to give up.")
	case s.phase == phaseEnded && s.state.Won:
		scr.DrawTextCentered(mid-1, "LINE CLEARED!")
		scr.DrawTextCentered(mid, fmt.Sprintf("Final score: %d", s.state.Score))
		scr.DrawTextCentered(mid+1, "Press R to play again or Q to quit.")
	case s.phase == phaseEnded:
		scr.DrawTextCentered(mid-1, "SHIFT OVER")
		scr.DrawTextCentered(mid, fmt.Sprintf("Score: %d", s.state.Score))
		scr.DrawTextCentered(mid+1, "Press R to retry or Q to quit.")
	case s.state.Paused:
		scr.DrawTextCentered(mid, "PAUSED - press P to resume")
	}
}
