package core

// Action represents a semantic game action, abstracted from physical key presses.
// This allows the play view to work with high-level intents rather than raw input.
type Action int

const (
	ActionNone Action = iota
	// Arrow keys / WASD move the board cursor.
	ActionCursorUp
	ActionCursorDown
	ActionCursorLeft
	ActionCursorRight
	ActionNextLane  // Tab - select the next pocket lane
	ActionPrevLane  // Shift+Tab - select the previous pocket lane
	ActionRoute     // Space - route the conveyor head into the selected lane
	ActionPlace     // Enter - place the selected pocket head at the cursor
	ActionReenqueue // U - push the selected pocket head back onto the conveyor
	ActionContinue  // C - accept a continue offer after a near-miss loss
	ActionRestart   // R - restart the level after it ends
	ActionQuit      // Q, Ctrl+C - exit game/session
	ActionPause     // P, Escape - pause/unpause
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionCursorUp:
		return "CursorUp"
	case ActionCursorDown:
		return "CursorDown"
	case ActionCursorLeft:
		return "CursorLeft"
	case ActionCursorRight:
		return "CursorRight"
	case ActionNextLane:
		return "NextLane"
	case ActionPrevLane:
		return "PrevLane"
	case ActionRoute:
		return "Route"
	case ActionPlace:
		return "Place"
	case ActionReenqueue:
		return "Reenqueue"
	case ActionContinue:
		return "Continue"
	case ActionRestart:
		return "Restart"
	case ActionQuit:
		return "Quit"
	case ActionPause:
		return "Pause"
	default:
		return "Unknown"
	}
}

// InputFrame represents the input state for a single simulation tick.
// It contains all actions that were triggered during this frame.
type InputFrame struct {
	// Actions maps action types to whether they were triggered this frame.
	// Using a map allows checking multiple actions without order dependency.
	Actions map[Action]bool
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{
		Actions: make(map[Action]bool),
	}
}

// Set marks an action as triggered for this frame.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]bool)
	}
	f.Actions[a] = true
}

// Has returns true if the given action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	if f.Actions == nil {
		return false
	}
	return f.Actions[a]
}

// Clear resets all actions for the next frame.
func (f *InputFrame) Clear() {
	for k := range f.Actions {
		delete(f.Actions, k)
	}
}

// Clone creates a copy of this input frame.
func (f InputFrame) Clone() InputFrame {
	clone := NewInputFrame()
	for k, v := range f.Actions {
		clone.Actions[k] = v
	}
	return clone
}
