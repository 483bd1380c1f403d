package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sortline/sortline/internal/config"
	"github.com/sortline/sortline/internal/core"
	"github.com/sortline/sortline/internal/levels"
	"github.com/sortline/sortline/internal/storage"
)

// Model is the Bubble Tea model driving one level session.
type Model struct {
	session *Session
	level   levels.Level
	tuning  config.Tuning

	screen     *core.Screen
	store      *storage.Store
	config     core.RuntimeConfig
	keys       *KeyMapper
	inputFrame core.InputFrame

	quitting     bool
	attemptSaved bool // whether the finished attempt has been persisted
}

// NewModel creates a new Bubble Tea model for the given level.
func NewModel(level levels.Level, tuning config.Tuning, store *storage.Store, cfg core.RuntimeConfig) Model {
	return Model{
		session:    NewSession(level, tuning, cfg),
		level:      level,
		tuning:     tuning,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		store:      store,
		config:     cfg,
		keys:       NewKeyMapper(),
		inputFrame: core.NewInputFrame(),
	}
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	if m.keys.MapKeyToFrame(msg, &m.inputFrame) {
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// handleResize processes window resize events. The board layout is
// independent of the terminal size, so the session keeps running.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, msg.Height)
	return m, nil
}

// handleTick processes simulation ticks.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	// Restart starts a fresh attempt with a fresh time-based seed.
	if m.inputFrame.Has(core.ActionRestart) && m.session.Ended() {
		m.config.Seed = uint64(time.Now().UnixNano())
		m.session = NewSession(m.level, m.tuning, m.config)
		m.attemptSaved = false
		m.inputFrame.Clear()
		return m, tickCmd(m.config.TickRate)
	}

	m.session.Step(m.inputFrame)

	// Persist the attempt once when it ends.
	if m.session.Ended() && !m.attemptSaved {
		if m.store != nil {
			st := m.session.State()
			//nolint:errcheck // Best-effort save, session continues regardless
			m.store.SaveAttempt(storage.Attempt{
				LevelID:       m.level.ID,
				Won:           st.Won,
				Score:         st.Score,
				MaxCombo:      m.session.MaxCombo(),
				EndDifficulty: m.session.Difficulty(),
				NearMiss:      m.session.NearMissSeen(),
				Duration:      m.session.Elapsed(),
			})
		}
		m.attemptSaved = true
	}

	m.inputFrame.Clear()
	return m, tickCmd(m.config.TickRate)
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	m.session.Render(m.screen)

	dir := filepath.Join(os.Getenv("HOME"), ".sortline", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.txt", m.level.ID, timestamp)
	path := filepath.Join(dir, filename)

	//nolint:errcheck // Best-effort save, session continues regardless
	os.WriteFile(path, []byte(m.screen.String()), 0o600)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.session.Render(m.screen)
	return RenderScreen(m.screen)
}

// Run starts the Bubble Tea program for the given level.
func Run(level levels.Level, tuning config.Tuning, store *storage.Store, cfg core.RuntimeConfig) error {
	model := NewModel(level, tuning, store, cfg)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
