package levels

import (
	"fmt"
	"sort"
	"sync"
)

// The registry holds the built-in levels plus anything a loader merges
// in. Built-ins register at init from the embedded files; external
// callers go through Register when shipping extra levels in-binary.

var (
	registered = make(map[string]Level)
	mu         sync.RWMutex
)

// Register adds a level to the registry. Panics if the ID is already
// taken: duplicate IDs would make `play <level>` ambiguous.
func Register(lvl Level) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := registered[lvl.ID]; exists {
		panic(fmt.Sprintf("levels: level %q already registered", lvl.ID))
	}
	registered[lvl.ID] = lvl
}

// List returns all registered levels sorted by ID.
func List() []Level {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]Level, 0, len(registered))
	for _, lvl := range registered {
		out = append(out, lvl)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

// Get returns a registered level by ID.
func Get(id string) (Level, error) {
	mu.RLock()
	defer mu.RUnlock()

	lvl, ok := registered[id]
	if !ok {
		return Level{}, fmt.Errorf("levels: unknown level %q", id)
	}
	return lvl, nil
}

// Exists reports whether a level ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := registered[id]
	return ok
}
