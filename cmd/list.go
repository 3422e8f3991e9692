package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sidegen/sidegen/internal/controller"
	m "github.com/sidegen/sidegen/internal/model"
)

var listFilterFlag string
var listModeFlag string

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <project>",
		Short: "List a project's tests and suites",
		Long: `List shows every test and suite in a recorded project with its step
count, and previews which units the filter would select in the given
mode.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			mode, err := m.ParseMode(listModeFlag)
			if err != nil {
				return err
			}

			cfg := m.Config{
				ProjectPath: m.Path(args[0]),
				Filter:      listFilterFlag,
				Mode:        mode,
			}

			project, units, err := workflow.Preview(cfg)
			if err != nil {
				return err
			}

			return ui.Overview(buildOverview(project, mode, units))
		},
	}
	cmd.Flags().StringVarP(&listFilterFlag, "filter", "f", m.DefaultFilter, "preview units whose name matches the regex")
	cmd.Flags().StringVarP(&listModeFlag, "mode", "m", string(m.ModeSuite), "emission granularity: test or suite")

	return cmd
}

func init() {
	rootCmd.AddCommand(listCmd)
}

// buildOverview flattens the project into listing rows. Only units of
// the active mode's kind can be matched.
func buildOverview(project *m.Project, mode m.Mode, units []string) controller.ProjectOverview {
	selected := make(map[string]bool, len(units))
	for _, u := range units {
		selected[u] = true
	}

	infos := make([]controller.UnitInfo, 0, len(project.Tests)+len(project.Suites))

	for _, t := range project.Tests {
		infos = append(infos, controller.UnitInfo{
			Name:    t.Name,
			Kind:    string(m.ModeTest),
			Steps:   len(t.Commands),
			Matched: mode == m.ModeTest && selected[t.Name],
		})
	}

	for _, s := range project.Suites {
		infos = append(infos, controller.UnitInfo{
			Name:    s.Name,
			Kind:    string(m.ModeSuite),
			Steps:   len(s.Tests),
			Matched: mode == m.ModeSuite && selected[s.Name],
		})
	}

	return controller.ProjectOverview{
		Name:  project.Name,
		Mode:  mode,
		Units: infos,
	}
}
