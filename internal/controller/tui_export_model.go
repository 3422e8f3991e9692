package controller

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	m "github.com/sidegen/sidegen/internal/model"
)

// Message types.
type unitDoneMsg struct {
	result m.UnitResult
}

type runDoneMsg struct {
	summary m.RunSummary
}

// maxVisibleUnits bounds the rolling unit box during a run.
const maxVisibleUnits = 12

// exportModel handles the TUI display during an export run.
type exportModel struct {
	width       int
	total       int
	workers     int
	results     []m.UnitResult
	summary     m.RunSummary
	finished    bool
	progressBar progress.Model
}

func newExportModel(total, workers int) exportModel {
	prog := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(40),
		progress.WithoutPercentage(),
	)

	return exportModel{
		total:       total,
		workers:     workers,
		progressBar: prog,
	}
}

func (e exportModel) Init() tea.Cmd {
	return nil
}

func (e exportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		e = e.handleWindowSize(msg)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return e, tea.Quit
		}

	case unitDoneMsg:
		e.results = append(e.results, msg.result)

	case runDoneMsg:
		e.summary = msg.summary
		e.finished = true

		return e, tea.Quit
	}

	return e, nil
}

func (e exportModel) View() string {
	if e.finished {
		return e.viewResults()
	}

	return e.viewProgress()
}

func (e exportModel) viewProgress() string {
	accentColor := lipgloss.Color("6") // Cyan

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true).
		Padding(1, 0, 0, 2)

	summaryStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")).
		Padding(0, 0, 1, 2)

	accentStyle := lipgloss.NewStyle().Foreground(accentColor)

	title := titleStyle.Render("Sidegen Export")

	summary := summaryStyle.Render(fmt.Sprintf(
		"Progress: %s / %s  •  Workers: %s",
		accentStyle.Render(fmt.Sprintf("%d", len(e.results))),
		accentStyle.Render(fmt.Sprintf("%d", e.total)),
		accentStyle.Render(fmt.Sprintf("%d", e.workers)),
	))

	progressStyle := lipgloss.NewStyle().
		Padding(0, 2)

	progressView := progressStyle.Render(e.progressBar.ViewAs(e.percent()))

	unitsBox := e.renderUnitsBox(accentColor, e.lastResults())

	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Padding(0, 0, 0, 2)

	footer := footerStyle.Render("Press q to quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		summary,
		progressView,
		unitsBox,
		footer,
	) + "\n"
}

func (e exportModel) viewResults() string {
	accentColor := lipgloss.Color("6") // Cyan

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true).
		Padding(1, 0, 0, 2)

	summaryStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")).
		Padding(0, 0, 1, 2)

	accentStyle := lipgloss.NewStyle().Foreground(accentColor)

	title := titleStyle.Render("Sidegen Export Results")

	summary := summaryStyle.Render(fmt.Sprintf(
		"Total: %s  •  Written: %s  •  Failed: %s  •  Took: %s",
		accentStyle.Render(fmt.Sprintf("%d", len(e.summary.Results))),
		accentStyle.Render(fmt.Sprintf("%d", e.summary.Succeeded())),
		accentStyle.Render(fmt.Sprintf("%d", e.summary.Failed())),
		accentStyle.Render(e.summary.Duration.Round(time.Millisecond).String()),
	))

	resultsBox := e.renderUnitsBox(accentColor, e.summary.Results)

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		summary,
		resultsBox,
	) + "\n"
}

func (e exportModel) percent() float64 {
	if e.total == 0 {
		return 1
	}

	return float64(len(e.results)) / float64(e.total)
}

// lastResults returns the tail of the completions for the rolling box.
func (e exportModel) lastResults() []m.UnitResult {
	if len(e.results) > maxVisibleUnits {
		return e.results[len(e.results)-maxVisibleUnits:]
	}

	return e.results
}

func (e exportModel) renderUnitsBox(accentColor lipgloss.Color, results []m.UnitResult) string {
	boxWidth := e.width - 4
	if boxWidth < 40 {
		boxWidth = 40
	}

	contentStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accentColor).
		Padding(0, 1).
		Margin(1, 1, 1, 0).
		Width(boxWidth)

	lines := make([]string, 0, len(results)+1)

	if len(results) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("waiting…"))
	}

	// Width - Border(2) - Padding(2)
	lineWidth := boxWidth - 2 - 2

	for _, r := range results {
		lines = append(lines, renderUnitLine(r, lineWidth))
	}

	return contentStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func renderUnitLine(r m.UnitResult, width int) string {
	statusColor := lipgloss.Color("2") // Green
	status := "ok"
	detail := string(r.Path)

	if r.Failed() {
		statusColor = lipgloss.Color("1") // Red
		status = "failed"
		detail = r.Err.Error()
	}

	statusStyle := lipgloss.NewStyle().
		Foreground(statusColor).
		Bold(true).
		Width(8).
		Align(lipgloss.Left)

	nameStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	detailStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	// Truncate before styling so escape codes stay intact.
	name := truncateToWidth(r.Unit, 24)

	detailWidth := width - 8 - lipgloss.Width(name) - 4
	if detailWidth < 0 {
		detailWidth = 0
	}

	return fmt.Sprintf("%s%s  %s",
		statusStyle.Render(status),
		nameStyle.Render(name),
		detailStyle.Render(truncateToWidth(detail, detailWidth)),
	)
}

func (e exportModel) handleWindowSize(msg tea.WindowSizeMsg) exportModel {
	e.width = msg.Width

	e.progressBar.Width = e.width - 8
	if e.progressBar.Width < 20 {
		e.progressBar.Width = 20
	}

	return e
}

// renderOverview builds the static listing view for Overview.
func renderOverview(o ProjectOverview) string {
	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true).
		Padding(1, 0, 0, 2)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Bold(true).
		Padding(0, 0, 0, 2)

	rowStyle := lipgloss.NewStyle().Padding(0, 0, 0, 2)
	matchedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)

	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Padding(1, 0, 1, 2)

	lines := []string{
		titleStyle.Render(fmt.Sprintf("%s (%s mode)", o.Name, o.Mode)),
		headerStyle.Render(fmt.Sprintf("%-32s  %-6s  %6s  %s", "Unit", "Kind", "Steps", "Matched")),
	}

	matched := 0

	for _, u := range o.Units {
		mark := "-"

		if u.Kind == string(o.Mode) {
			mark = "no"
			if u.Matched {
				mark = matchedStyle.Render("yes")
				matched++
			}
		}

		row := fmt.Sprintf("%-32s  %-6s  %6d  ", truncateToWidth(u.Name, 32), u.Kind, u.Steps)
		lines = append(lines, rowStyle.Render(row)+mark)
	}

	lines = append(lines, footerStyle.Render(fmt.Sprintf("%d unit(s), %d matched", len(o.Units), matched)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n"
}

// renderFormats builds the static listing view for Formats.
func renderFormats(formats []FormatInfo) string {
	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true).
		Padding(1, 0, 0, 2)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Bold(true).
		Padding(0, 0, 0, 2)

	rowStyle := lipgloss.NewStyle().Padding(0, 0, 0, 2)

	lines := []string{
		titleStyle.Render("Available Formats"),
		headerStyle.Render(fmt.Sprintf("%-20s  %-6s  %-44s  %s", "Format", "Ext", "Description", "Origin")),
	}

	for _, f := range formats {
		lines = append(lines, rowStyle.Render(fmt.Sprintf("%-20s  %-6s  %-44s  %s",
			f.ID, f.Extension, truncateToWidth(f.Description, 44), f.Origin)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n"
}

func truncateToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}

	if lipgloss.Width(text) <= width {
		return text
	}

	ellipsis := "…"

	maxWidth := width - lipgloss.Width(ellipsis)
	if maxWidth <= 0 {
		return ellipsis
	}

	currentWidth := 0

	result := make([]rune, 0, len(text))
	for _, r := range text {
		rWidth := lipgloss.Width(string(r))
		if currentWidth+rWidth > maxWidth {
			break
		}

		result = append(result, r)
		currentWidth += rWidth
	}

	return string(result) + ellipsis
}
