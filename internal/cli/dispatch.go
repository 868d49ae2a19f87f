package cli

import (
	"github.com/savfod/UnPaSt/internal/event"
	"github.com/spf13/cobra"
)

var dispatchVerbose bool

var dispatchCmd = &cobra.Command{
	Use:          "dispatch <workflow>",
	Short:        "Manually trigger a workflow (no branch context)",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEvent(cmd.Context(), event.WorkflowDispatch, "", args[0], dispatchVerbose)
	},
}

func init() {
	dispatchCmd.Flags().BoolVarP(&dispatchVerbose, "verbose", "v", false, "Show step output")
}
