package controller

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "github.com/sidegen/sidegen/internal/model"
)

var (
	okColor     = color.New(color.FgGreen)
	failedColor = color.New(color.FgRed)
)

// SimpleUI implements UI using cobra Command's output stream.
type SimpleUI struct {
	cmd *cobra.Command
	mu  sync.Mutex
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start prints the run header.
func (s *SimpleUI) Start(options ...StartOption) error {
	cfg := &StartConfig{}
	for _, option := range options {
		option(cfg)
	}

	s.printf("Exporting %d unit(s) with %d worker(s)\n", cfg.total, cfg.workers)

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close() {

}

// UnitCompleted prints one status line per finished unit. Workers call
// this concurrently, so lines are serialized under the mutex.
func (s *SimpleUI) UnitCompleted(result m.UnitResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if result.Failed() {
		s.printf("%s  %s: %v\n", failedColor.Sprint("failed"), result.Unit, result.Err)

		return
	}

	s.printf("%s  %s -> %s\n", okColor.Sprint("ok"), result.Unit, result.Path)
}

// Summary renders the final run table.
func (s *SimpleUI) Summary(summary m.RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Unit", "Status", "File", "Bytes", "Duration"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
	})

	for _, r := range summary.Results {
		if r.Failed() {
			table.Append([]string{r.Unit, "failed", r.Err.Error(), "-", formatDuration(r.Duration)})

			continue
		}

		table.Append([]string{r.Unit, "ok", string(r.Path), fmt.Sprintf("%d", r.Bytes), formatDuration(r.Duration)})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total %d", len(summary.Results)),
		fmt.Sprintf("%d ok, %d failed", summary.Succeeded(), summary.Failed()),
		"",
		"",
		formatDuration(summary.Duration),
	})

	table.Render()
	s.printf("\n%s", tableBuffer.String())

	return nil
}

// Overview renders the unit listing for the loaded project.
func (s *SimpleUI) Overview(overview ProjectOverview) error {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Unit", "Kind", "Steps", "Matched"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_CENTER,
	})

	matched := 0

	for _, u := range overview.Units {
		// Units of the other kind are not candidates in this mode.
		mark := "-"
		if u.Kind == string(overview.Mode) {
			mark = "no"
			if u.Matched {
				mark = "yes"
				matched++
			}
		}

		table.Append([]string{u.Name, u.Kind, fmt.Sprintf("%d", u.Steps), mark})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total %d", len(overview.Units)),
		"",
		"",
		fmt.Sprintf("%d matched", matched),
	})

	table.Render()
	s.printf("%s (%s mode)\n\n%s", overview.Name, overview.Mode, tableBuffer.String())

	return nil
}

// Formats renders the available output formats.
func (s *SimpleUI) Formats(formats []FormatInfo) error {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Format", "Extension", "Description", "Origin"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
	})

	for _, f := range formats {
		table.Append([]string{f.ID, f.Extension, f.Description, f.Origin})
	}

	table.Render()
	s.printf("%s", tableBuffer.String())

	return nil
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
