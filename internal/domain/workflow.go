// Package domain implements the export pipeline: unit selection,
// concurrent emission and file writing behind a workflow facade.
package domain

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/sidegen/sidegen/internal/adapter"
	"github.com/sidegen/sidegen/internal/format"
	m "github.com/sidegen/sidegen/internal/model"
	"github.com/sidegen/sidegen/internal/plugin"
)

// State tracks an export run's progression through its phases.
type State string

// Run states, in order. Fatal errors leave the workflow in the last
// state reached; no output exists before StateEmitting.
const (
	StateIdle          State = "idle"
	StateConfigBuilt   State = "config-built"
	StateProjectLoaded State = "project-loaded"
	StatePluginsLoaded State = "plugins-loaded"
	StateEmitting      State = "emitting"
	StateDone          State = "done"
)

// Progress receives run notifications. UnitCompleted may be called
// from concurrent workers.
type Progress interface {
	RunStarted(total, workers int)
	UnitCompleted(result m.UnitResult)
}

// Workflow drives export runs against built configuration.
type Workflow interface {
	// Export runs filter, emission and write for every matched unit.
	// The returned error covers fatal conditions only; per-unit
	// failures live in the summary.
	Export(ctx context.Context, cfg m.Config, progress Progress) (m.RunSummary, error)

	// Preview loads the project and returns the unit names the filter
	// would select in the configured mode.
	Preview(cfg m.Config) (*m.Project, []string, error)

	// State reports the current run phase.
	State() State
}

type workflow struct {
	loader  adapter.ProjectLoader
	writer  adapter.FileWriter
	reports adapter.ReportStore
	state   State
}

// NewWorkflow creates a Workflow instance with the provided adapters.
func NewWorkflow(loader adapter.ProjectLoader, writer adapter.FileWriter, reports adapter.ReportStore) Workflow {
	return &workflow{
		loader:  loader,
		writer:  writer,
		reports: reports,
		state:   StateIdle,
	}
}

func (w *workflow) State() State {
	return w.state
}

func (w *workflow) Export(ctx context.Context, cfg m.Config, progress Progress) (m.RunSummary, error) {
	w.state = StateIdle

	filter, err := NewFilter(cfg.Filter)
	if err != nil {
		return m.RunSummary{}, err
	}

	f, err := format.Resolve(cfg.Format)
	if err != nil {
		return m.RunSummary{}, err
	}

	w.state = StateConfigBuilt

	project, err := w.loader.Load(cfg.ProjectPath)
	if err != nil {
		return m.RunSummary{}, err
	}

	w.state = StateProjectLoaded

	// Project-declared plugins resolve relative to the document and
	// register once, before any emission consults them.
	loaded, err := plugin.Load(filepath.Dir(string(cfg.ProjectPath)), project.Plugins)
	if err != nil {
		return m.RunSummary{}, err
	}

	w.state = StatePluginsLoaded

	units := filter.Select(unitNames(project, cfg.Mode))
	workers := workerLimit(cfg.Parallel, len(units))

	summary := m.RunSummary{
		RunID:   uuid.NewString(),
		Project: string(cfg.ProjectPath),
		Format:  f.ID(),
		Mode:    cfg.Mode,
		Started: time.Now(),
	}

	slog.Debug("export starting", "format", f.ID(), "mode", cfg.Mode,
		"units", len(units), "workers", workers, "plugins", loaded)

	if progress != nil {
		progress.RunStarted(len(units), workers)
	}

	w.state = StateEmitting
	summary.Results = w.emitAll(ctx, project, units, entryPoint(f, cfg.Mode), cfg, progress)
	summary.Duration = time.Since(summary.Started)
	w.state = StateDone

	if cfg.ReportPath != "" {
		if err := w.reports.Save(cfg.ReportPath, summary); err != nil {
			return summary, err
		}
	}

	return summary, nil
}

func (w *workflow) Preview(cfg m.Config) (*m.Project, []string, error) {
	filter, err := NewFilter(cfg.Filter)
	if err != nil {
		return nil, nil, err
	}

	project, err := w.loader.Load(cfg.ProjectPath)
	if err != nil {
		return nil, nil, err
	}

	return project, filter.Select(unitNames(project, cfg.Mode)), nil
}

// unitNames lists the mode's candidate units in document order.
func unitNames(project *m.Project, mode m.Mode) []string {
	if mode == m.ModeTest {
		names := make([]string, 0, len(project.Tests))
		for _, t := range project.Tests {
			names = append(names, t.Name)
		}

		return names
	}

	names := make([]string, 0, len(project.Suites))
	for _, s := range project.Suites {
		names = append(names, s.Name)
	}

	return names
}
