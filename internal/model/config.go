package model

import "fmt"

// Mode selects which collection drives the export: independent tests or
// whole suites.
type Mode string

const (
	// ModeTest exports one file per matched test.
	ModeTest Mode = "test"
	// ModeSuite exports one file per matched suite.
	ModeSuite Mode = "suite"
)

// ParseMode validates a mode string from configuration input.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeTest:
		return ModeTest, nil
	case ModeSuite:
		return ModeSuite, nil
	default:
		return "", fmt.Errorf("invalid mode %q (want %q or %q)", s, ModeTest, ModeSuite)
	}
}

// Config holds one invocation's settings. It is built once at startup
// and never mutated afterwards.
type Config struct {
	// Format is a registered format id, or a path to a format
	// definition file.
	Format string
	// ProjectPath is the absolute path of the recorded document.
	ProjectPath Path
	// OutputDir is the absolute directory emitted files are written to.
	OutputDir Path
	// BaseURL overrides the recorded base URL in emitted bodies.
	// Empty means no override.
	BaseURL string
	// Filter selects units by name. Defaults to match-all.
	Filter string
	// Mode selects test-mode or suite-mode emission.
	Mode Mode
	// Parallel bounds concurrent unit emission. Zero means one worker
	// per unit.
	Parallel int
	// ReportPath, when set, receives the run report as JSON.
	ReportPath Path
	// Debug raises log verbosity. It has no effect on the pipeline.
	Debug bool
}

// DefaultFilter matches every unit name.
const DefaultFilter = ".*"
