package cli

import (
	"fmt"
	"strings"

	"github.com/savfod/UnPaSt/internal/config"
	"github.com/savfod/UnPaSt/internal/types"
	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:          "events",
	Short:        "Show which events schedule each workflow",
	SilenceUsage: true,
	RunE:         runEvents,
}

func runEvents(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	wfs, err := loadWorkflows(cfg)
	if err != nil {
		return err
	}
	if len(wfs) == 0 {
		fmt.Println("No workflows found.")
		return nil
	}

	fmt.Printf("%-24s %s\n", "Workflow", "Triggers")
	fmt.Println(strings.Repeat("─", 60))
	for _, wf := range wfs {
		fmt.Printf("%-24s %s\n", wf.Name, describeTriggers(wf.On))
	}
	return nil
}

// describeTriggers renders a workflow's trigger surface for the terminal.
func describeTriggers(on types.Triggers) string {
	if on.Empty() {
		return "never (no triggers declared)"
	}
	var parts []string
	if on.Push != nil {
		parts = append(parts, "push"+describeBranches(on.Push))
	}
	if on.PullRequest != nil {
		parts = append(parts, "pull_request"+describeBranches(on.PullRequest))
	}
	if on.WorkflowDispatch {
		parts = append(parts, "workflow_dispatch")
	}
	return strings.Join(parts, ", ")
}

func describeBranches(f *types.BranchFilter) string {
	if len(f.Branches) == 0 {
		return " (any branch)"
	}
	return " (" + strings.Join(f.Branches, ", ") + ")"
}
