package domain

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sidegen/sidegen/internal/format"
	m "github.com/sidegen/sidegen/internal/model"
)

// emitFunc is a format entry point bound to a mode.
type emitFunc func(ctx context.Context, project *m.Project, name string) (m.Emitted, error)

// entryPoint selects the format operation matching the mode.
func entryPoint(f format.Format, mode m.Mode) emitFunc {
	if mode == m.ModeTest {
		return f.EmitTest
	}

	return f.EmitSuite
}

// workerLimit bounds emission concurrency. Zero means one worker per
// unit, capped so huge projects do not spawn unbounded goroutines.
func workerLimit(parallel, units int) int {
	limit := parallel
	if limit <= 0 {
		limit = units
		if ceiling := 2 * runtime.NumCPU(); limit > ceiling {
			limit = ceiling
		}
	}

	if limit < 1 {
		limit = 1
	}

	return limit
}

// emitAll launches units in filtered order and collects results
// positionally. Workers never return errors to the group, so a failed
// unit neither halts nor disturbs its siblings.
func (w *workflow) emitAll(ctx context.Context, project *m.Project, units []string, emit emitFunc, cfg m.Config, progress Progress) []m.UnitResult {
	results := make([]m.UnitResult, len(units))

	g := new(errgroup.Group)
	g.SetLimit(workerLimit(cfg.Parallel, len(units)))

	for i, name := range units {
		i, name := i, name
		g.Go(func() error {
			r := w.emitOne(ctx, project, name, emit, cfg)
			results[i] = r

			if r.Failed() {
				slog.Debug("unit failed", "unit", r.Unit, "error", r.Err)
			} else {
				slog.Debug("unit written", "unit", r.Unit, "file", r.Filename,
					"bytes", r.Bytes, "duration_ms", r.Duration.Milliseconds())
			}

			if progress != nil {
				progress.UnitCompleted(r)
			}

			return nil
		})
	}

	_ = g.Wait()

	return results
}

// emitOne runs emission and the terminal write for a single unit.
func (w *workflow) emitOne(ctx context.Context, project *m.Project, name string, emit emitFunc, cfg m.Config) m.UnitResult {
	start := time.Now()
	result := m.UnitResult{Unit: name}

	emitted, err := emit(ctx, project, name)
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)

		return result
	}

	result.Filename = emitted.Filename

	path, n, err := w.writer.Write(cfg.OutputDir, emitted, project.URL, cfg.BaseURL)
	if err != nil {
		result.Err = err
		result.Duration = time.Since(start)

		return result
	}

	result.Path = path
	result.Bytes = n
	result.Duration = time.Since(start)

	return result
}
