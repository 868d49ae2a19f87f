package cli

import (
	"fmt"
	"os/exec"

	"github.com/savfod/UnPaSt/internal/config"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check cirun prerequisites and configuration",
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	allOK := true

	check := func(label string, ok bool, hint string) {
		if ok {
			fmt.Printf("✅ %s\n", label)
		} else {
			fmt.Printf("❌ %s — %s\n", label, hint)
			allOK = false
		}
	}

	// 1. git repo
	_, err := exec.LookPath("git")
	check("git installed", err == nil, "install git")
	gitErr := exec.Command("git", "rev-parse", "--is-inside-work-tree").Run()
	check("inside git repository", gitErr == nil, "run `git init` or cd to a git repo")

	// 2. config
	cfg, cfgErr := config.Load()
	check("config loadable", cfgErr == nil, fmt.Sprintf("fix config: %v", cfgErr))
	if cfgErr == nil {
		validateErr := cfg.Validate()
		check("config valid", validateErr == nil, fmt.Sprintf("%v", validateErr))
	}

	// 3. docker (container steps need a reachable daemon)
	if cfgErr == nil {
		_, err = exec.LookPath(cfg.Docker.Binary)
		check("docker installed", err == nil, "install docker: https://docs.docker.com/get-docker")
		if err == nil {
			daemonErr := exec.Command(cfg.Docker.Binary, "info").Run()
			check("docker daemon reachable", daemonErr == nil, "start the docker daemon")
		}
	}

	// 4. workflows
	if cfgErr == nil {
		wfs, wfErr := loadWorkflows(cfg)
		check("workflows parse", wfErr == nil, fmt.Sprintf("%v", wfErr))
		if wfErr == nil {
			check(fmt.Sprintf("%d workflow(s) found", len(wfs)), len(wfs) > 0,
				fmt.Sprintf("add YAML files under %s", cfg.WorkflowsDir))
		}
	}

	fmt.Println()
	if allOK {
		fmt.Println("All checks passed. cirun is ready.")
	} else {
		fmt.Println("Some checks failed. Fix the issues above before running cirun.")
	}
	return nil
}
