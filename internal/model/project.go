// Package model defines the data structures for recorded browser projects
// and their export.
package model

// Path represents a file system path.
type Path string

// Project is the root of a recorded browser-automation document: the
// tests captured by the recorder, the suites grouping them, and the
// plugin references declared by the recording.
type Project struct {
	ID      string   `json:"id"`
	Version string   `json:"version"`
	Name    string   `json:"name"`
	URL     string   `json:"url"`
	Tests   []Test   `json:"tests"`
	Suites  []Suite  `json:"suites"`
	URLs    []string `json:"urls,omitempty"`
	Plugins []string `json:"plugins,omitempty"`
}

// Test is a named, ordered recording of UI commands.
type Test struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Commands []Command `json:"commands"`
}

// Command is one recorded step. The export pipeline passes commands
// through untouched; only formatters interpret them.
type Command struct {
	ID      string     `json:"id,omitempty"`
	Comment string     `json:"comment,omitempty"`
	Command string     `json:"command"`
	Target  string     `json:"target"`
	Targets [][]string `json:"targets,omitempty"`
	Value   string     `json:"value"`
}

// Suite groups tests by reference. References are test IDs in recorded
// documents; hand-written documents may reference by name.
type Suite struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Timeout        int      `json:"timeout,omitempty"`
	Parallel       bool     `json:"parallel,omitempty"`
	PersistSession bool     `json:"persistSession,omitempty"`
	Tests          []string `json:"tests"`
}

// TestByID returns the test with the given ID.
func (p *Project) TestByID(id string) (*Test, bool) {
	for i := range p.Tests {
		if p.Tests[i].ID == id {
			return &p.Tests[i], true
		}
	}

	return nil, false
}

// TestByName returns the test with the given name.
func (p *Project) TestByName(name string) (*Test, bool) {
	for i := range p.Tests {
		if p.Tests[i].Name == name {
			return &p.Tests[i], true
		}
	}

	return nil, false
}

// SuiteByName returns the suite with the given name.
func (p *Project) SuiteByName(name string) (*Suite, bool) {
	for i := range p.Suites {
		if p.Suites[i].Name == name {
			return &p.Suites[i], true
		}
	}

	return nil, false
}

// ResolveSuiteTests maps a suite's references to the project's tests,
// preserving suite order. A reference matches a test ID first, then a
// test name. The second return value reports the first reference that
// matched nothing.
func (p *Project) ResolveSuiteTests(suite *Suite) ([]*Test, string) {
	resolved := make([]*Test, 0, len(suite.Tests))

	for _, ref := range suite.Tests {
		test, ok := p.TestByID(ref)
		if !ok {
			test, ok = p.TestByName(ref)
		}

		if !ok {
			return nil, ref
		}

		resolved = append(resolved, test)
	}

	return resolved, ""
}

// Disabled reports whether the recorder marked this command as skipped.
// The recorder disables a step by prefixing its verb with "//".
func (c Command) Disabled() bool {
	return len(c.Command) >= 2 && c.Command[:2] == "//"
}
