package controller

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	m "github.com/sidegen/sidegen/internal/model"
)

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	output  io.Writer
	program *tea.Program
	done    chan struct{}
	runErr  error
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start launches the live export view. The program runs in the
// background so workers can feed it completions while emitting.
func (t *TUI) Start(options ...StartOption) error {
	cfg := &StartConfig{}
	for _, option := range options {
		option(cfg)
	}

	t.program = tea.NewProgram(newExportModel(cfg.total, cfg.workers), tea.WithOutput(t.output))
	t.done = make(chan struct{})

	go func() {
		defer close(t.done)

		if _, err := t.program.Run(); err != nil {
			t.runErr = err
		}
	}()

	return nil
}

// Close stops a program that is still running.
func (t *TUI) Close() {
	if t.program != nil {
		t.program.Quit()
	}
}

// UnitCompleted feeds one finished unit into the live view.
func (t *TUI) UnitCompleted(result m.UnitResult) {
	if t.program == nil {
		return
	}

	t.program.Send(unitDoneMsg{result: result})
}

// Summary hands the final counts to the view and waits for it to
// finish rendering.
func (t *TUI) Summary(summary m.RunSummary) error {
	if t.program == nil {
		return nil
	}

	t.program.Send(runDoneMsg{summary: summary})
	<-t.done

	return t.runErr
}

// Overview renders the unit listing. Listings are static, so the view
// is printed once instead of running a program.
func (t *TUI) Overview(overview ProjectOverview) error {
	_, err := fmt.Fprint(t.output, renderOverview(overview))

	return err
}

// Formats renders the available output formats.
func (t *TUI) Formats(formats []FormatInfo) error {
	_, err := fmt.Fprint(t.output, renderFormats(formats))

	return err
}
