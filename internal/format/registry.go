package format

import (
	"fmt"
	"sort"
	"sync"
)

// OriginBuiltin marks formats compiled into the binary. Formats loaded
// from a definition file carry the file's path as origin instead.
const OriginBuiltin = "builtin"

// Entry is a registered format together with its origin.
type Entry struct {
	Format
	Origin string
}

var (
	mu      sync.RWMutex
	entries = map[string]Entry{}
)

// Register adds a built-in format. Built-in formats call it from
// init(); a duplicate or empty id panics.
func Register(f Format) {
	if err := register(f, OriginBuiltin); err != nil {
		panic(err)
	}
}

// Lookup returns the format registered under id.
func Lookup(id string) (Format, bool) {
	mu.RLock()
	defer mu.RUnlock()

	e, ok := entries[id]
	if !ok {
		return nil, false
	}

	return e.Format, true
}

// All returns every registered format, sorted by id.
func All() []Entry {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })

	return out
}

func register(f Format, origin string) error {
	mu.Lock()
	defer mu.Unlock()

	id := f.ID()
	if id == "" {
		return fmt.Errorf("format with empty id (origin %s)", origin)
	}

	// Re-resolving the same definition file is fine; everything else
	// claiming a taken id is a conflict.
	if prev, ok := entries[id]; ok && (origin == OriginBuiltin || prev.Origin != origin) {
		return fmt.Errorf("format %q already registered (origin %s)", id, prev.Origin)
	}

	entries[id] = Entry{Format: f, Origin: origin}

	return nil
}

func ids() []string {
	all := All()

	out := make([]string, 0, len(all))
	for _, e := range all {
		out = append(out, e.ID())
	}

	return out
}
