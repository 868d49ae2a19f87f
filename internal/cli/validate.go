package cli

import (
	"fmt"
	"os"

	"github.com/savfod/UnPaSt/internal/config"
	"github.com/savfod/UnPaSt/internal/workflow"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:          "validate [file|dir]",
	Short:        "Parse and validate workflow definitions",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	target := ""
	if len(args) == 1 {
		target = args[0]
	} else {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		target = cfg.WorkflowsDir
	}

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("stat %s: %w", target, err)
	}

	if !info.IsDir() {
		wf, err := workflow.ParseFile(target)
		if err != nil {
			return err
		}
		fmt.Printf("✅ %s (%s)\n", target, wf.Name)
		return nil
	}

	wfs, err := workflow.LoadDir(target)
	if err != nil {
		return err
	}
	if len(wfs) == 0 {
		fmt.Printf("No workflow files in %s.\n", target)
		return nil
	}
	for _, wf := range wfs {
		fmt.Printf("✅ %s\n", wf.Name)
	}
	return nil
}
