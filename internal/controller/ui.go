// Package controller provides output adapters for displaying export runs
// and project listings. Implementations can use different output methods
// (simple text, TUI, etc).
package controller

import (
	m "github.com/sidegen/sidegen/internal/model"
)

// UnitInfo describes one exportable unit for listings.
type UnitInfo struct {
	Name    string
	Kind    string
	Steps   int
	Matched bool
}

// ProjectOverview holds the display data for a project listing.
type ProjectOverview struct {
	Name  string
	Mode  m.Mode
	Units []UnitInfo
}

// FormatInfo describes one available output format.
type FormatInfo struct {
	ID          string
	Extension   string
	Description string
	Origin      string
}

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	total   int
	workers int
}

// WithTotal sets the number of units the run will emit.
func WithTotal(n int) StartOption {
	return func(c *StartConfig) {
		c.total = n
	}
}

// WithWorkers sets the worker count displayed for the run.
func WithWorkers(n int) StartOption {
	return func(c *StartConfig) {
		c.workers = n
	}
}

// UI defines the interface for displaying export runs and listings.
type UI interface {
	Start(options ...StartOption) error
	Close()
	UnitCompleted(result m.UnitResult)
	Summary(summary m.RunSummary) error
	Overview(overview ProjectOverview) error
	Formats(formats []FormatInfo) error
}
