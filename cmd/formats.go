package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sidegen/sidegen/internal/controller"
	"github.com/sidegen/sidegen/internal/format"
)

// formatsCmd represents the formats command.
var formatsCmd = newFormatsCmd()

func newFormatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "formats",
		Short: "List available output formats",
		Long:  "List every registered output format with its file extension, description and origin.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true

			all := format.All()

			infos := make([]controller.FormatInfo, 0, len(all))
			for _, e := range all {
				infos = append(infos, controller.FormatInfo{
					ID:          e.ID(),
					Extension:   e.Extension(),
					Description: e.Description(),
					Origin:      e.Origin,
				})
			}

			return ui.Formats(infos)
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}
