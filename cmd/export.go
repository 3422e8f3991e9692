package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sidegen/sidegen/internal/config"
	"github.com/sidegen/sidegen/internal/controller"
	m "github.com/sidegen/sidegen/internal/model"
)

var exportBaseURLFlag string
var exportFilterFlag string
var exportModeFlag string
var exportParallelFlag int
var exportReportFlag string

// exportCmd represents the export command.
var exportCmd = newExportCmd()

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <format> <project> <output-dir>",
		Short: "Export a recorded project to test source files",
		Long: `Export converts every matched unit of a recorded project into one
generated source file in the output directory.

The format argument is either a built-in format id (see "sidegen
formats") or a path to a format definition file. Failed units do not
stop their siblings; the command exits non-zero when any unit failed.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Arguments are valid past this point; later errors are
			// runtime failures and should not print usage.
			cmd.SilenceUsage = true

			cfg, err := buildExportConfig(cmd, args)
			if err != nil {
				return err
			}

			setupLogging(cfg.Debug)

			summary, err := workflow.Export(cmd.Context(), cfg, &uiProgress{ui: ui})
			if err != nil {
				return err
			}

			if err := ui.Summary(summary); err != nil {
				return err
			}

			if summary.HasFailures() {
				return fmt.Errorf("%d of %d unit(s) failed", summary.Failed(), len(summary.Results))
			}

			return nil
		},
	}
	cmd.Flags().StringVar(&exportBaseURLFlag, "base-url", "", "replace the recorded base URL in generated files")
	cmd.Flags().StringVarP(&exportFilterFlag, "filter", "f", m.DefaultFilter, "export only units whose name matches the regex")
	cmd.Flags().StringVarP(&exportModeFlag, "mode", "m", string(m.ModeSuite), "emission granularity: test or suite")
	cmd.Flags().IntVarP(&exportParallelFlag, "parallel", "p", 0, "number of parallel workers (0 = one per unit)")
	cmd.Flags().StringVar(&exportReportFlag, "report", "", "write a JSON run report to this path")

	return cmd
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

// buildExportConfig layers command-line flags over environment and
// config-file settings.
func buildExportConfig(cmd *cobra.Command, args []string) (m.Config, error) {
	settings, err := config.Load(".")
	if err != nil {
		return m.Config{}, err
	}

	if cmd.Flags().Changed("base-url") {
		settings.BaseURL = exportBaseURLFlag
	}

	if cmd.Flags().Changed("filter") {
		settings.Filter = exportFilterFlag
	}

	if cmd.Flags().Changed("mode") {
		settings.Mode = exportModeFlag
	}

	if cmd.Flags().Changed("parallel") {
		settings.Parallel = exportParallelFlag
	}

	if cmd.Flags().Changed("report") {
		settings.Report = exportReportFlag
	}

	if debugFlag {
		settings.Debug = true
	}

	mode, err := m.ParseMode(settings.Mode)
	if err != nil {
		return m.Config{}, err
	}

	return m.Config{
		Format:      args[0],
		ProjectPath: m.Path(args[1]),
		OutputDir:   m.Path(args[2]),
		BaseURL:     settings.BaseURL,
		Filter:      settings.Filter,
		Mode:        mode,
		Parallel:    settings.Parallel,
		ReportPath:  m.Path(settings.Report),
		Debug:       settings.Debug,
	}, nil
}

// uiProgress adapts the controller UI to the workflow's progress
// notifications.
type uiProgress struct {
	ui controller.UI
}

func (p *uiProgress) RunStarted(total, workers int) {
	_ = p.ui.Start(controller.WithTotal(total), controller.WithWorkers(workers))
}

func (p *uiProgress) UnitCompleted(result m.UnitResult) {
	p.ui.UnitCompleted(result)
}
