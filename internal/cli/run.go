package cli

import (
	"fmt"

	"github.com/savfod/UnPaSt/internal/event"
	"github.com/spf13/cobra"
)

var (
	runEventType string
	runBranch    string
	runWorkflow  string
	runVerbose   bool
)

var runCmd = &cobra.Command{
	Use:          "run",
	Short:        "Simulate an event and execute the workflows it schedules",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, err := event.ParseType(runEventType)
		if err != nil {
			return err
		}
		if typ == event.WorkflowDispatch {
			return fmt.Errorf("use `cirun dispatch <workflow>` for manual dispatch")
		}
		return runEvent(cmd.Context(), typ, runBranch, runWorkflow, runVerbose)
	},
}

func init() {
	runCmd.Flags().StringVarP(&runEventType, "event", "e", "push", "Event type (push, pull_request)")
	runCmd.Flags().StringVarP(&runBranch, "branch", "b", "", "Event branch (defaults to the current git branch)")
	runCmd.Flags().StringVarP(&runWorkflow, "workflow", "w", "", "Only run the named workflow")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Show step output")
}
