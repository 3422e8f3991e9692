// Package cmd provides the root command and CLI setup for sidegen.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sidegen/sidegen/internal/adapter"
	"github.com/sidegen/sidegen/internal/controller"
	"github.com/sidegen/sidegen/internal/domain"
	_ "github.com/sidegen/sidegen/internal/format/all"
	"github.com/sidegen/sidegen/internal/version"
)

var projectLoader adapter.ProjectLoader
var fileWriter adapter.FileWriter
var reportStore adapter.ReportStore
var workflow domain.Workflow
var ui controller.UI

func init() {
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	projectLoader = adapter.NewLocalProjectLoader()
	fileWriter = adapter.NewLocalFileWriter()
	reportStore = adapter.NewReportStore()
	workflow = domain.NewWorkflow(projectLoader, fileWriter, reportStore)
}

var debugFlag bool

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sidegen",
		Short:   "Export recorded browser tests to source code",
		Version: version.Version,
		Long: `Sidegen converts recorded browser-automation projects (.side files)
into runnable test source files.

Pick an output format, point it at a project file and an output
directory, and every matched suite or test becomes one generated file:

  sidegen export python-pytest demo.side out/`,
		PersistentPreRun: func(*cobra.Command, []string) {
			setupLogging(debugFlag)
		},
	}
	cmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "enable debug logging")

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// setupLogging routes structured logs to stderr so stdout stays clean
// for the UI. Debug level adds the per-unit records.
func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
