package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sortline/sortline/internal/core"
)

// KeyMapper translates Bubble Tea key messages to game actions.
// This centralizes key bindings and makes them testable.
type KeyMapper struct{}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{}
}

// MapKey translates a key message to a game action.
// Returns the action (may be ActionNone) and whether it's a quit request.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) (action core.Action, isQuit bool) {
	key := msg.String()

	// Global quit keys
	switch key {
	case "ctrl+c", "q":
		return core.ActionQuit, true
	}

	switch key {
	case "w", "up":
		return core.ActionCursorUp, false
	case "s", "down":
		return core.ActionCursorDown, false
	case "a", "left":
		return core.ActionCursorLeft, false
	case "d", "right":
		return core.ActionCursorRight, false
	case "tab":
		return core.ActionNextLane, false
	case "shift+tab":
		return core.ActionPrevLane, false
	case " ":
		return core.ActionRoute, false
	case "enter":
		return core.ActionPlace, false
	case "u":
		return core.ActionReenqueue, false
	case "c":
		return core.ActionContinue, false
	case "r":
		return core.ActionRestart, false
	case "p", "esc":
		return core.ActionPause, false
	}

	return core.ActionNone, false
}

// MapKeyToFrame updates an input frame based on a key message.
// Returns true if the key was a quit request.
func (km *KeyMapper) MapKeyToFrame(msg tea.KeyMsg, frame *core.InputFrame) bool {
	action, isQuit := km.MapKey(msg)
	if action != core.ActionNone {
		frame.Set(action)
	}
	return isQuit
}
