package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var (
	mu     sync.RWMutex
	byVerb = map[string]Command{}
)

// Load reads the manifests a project declares and registers their
// commands. Refs are paths relative to the project document's
// directory; absolute refs pass through unchanged. Load runs once per
// export, before any emission starts, and any failure is fatal for the
// run. It returns the number of commands registered.
func Load(projectDir string, refs []string) (int, error) {
	total := 0

	for _, ref := range refs {
		path := ref
		if !filepath.IsAbs(path) {
			path = filepath.Join(projectDir, ref)
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			return total, fmt.Errorf("plugin %s: %w", ref, err)
		}

		commands, err := parseManifest(raw)
		if err != nil {
			return total, fmt.Errorf("plugin %s: %w", ref, err)
		}

		if err := register(commands); err != nil {
			return total, fmt.Errorf("plugin %s: %w", ref, err)
		}

		total += len(commands)
	}

	return total, nil
}

// Lookup returns the custom command registered for a recorded verb.
func Lookup(verb string) (Command, bool) {
	mu.RLock()
	defer mu.RUnlock()

	c, ok := byVerb[verb]

	return c, ok
}

func register(commands []Command) error {
	mu.Lock()
	defer mu.Unlock()

	for _, c := range commands {
		if prev, ok := byVerb[c.verb]; ok && prev.plugin != c.plugin {
			return fmt.Errorf("command %q already registered by plugin %q", c.verb, prev.plugin)
		}

		byVerb[c.verb] = c
	}

	return nil
}

func reset() {
	mu.Lock()
	defer mu.Unlock()

	byVerb = map[string]Command{}
}
