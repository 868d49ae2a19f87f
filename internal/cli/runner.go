package cli

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/savfod/UnPaSt/internal/assets"
	"github.com/savfod/UnPaSt/internal/config"
	"github.com/savfod/UnPaSt/internal/engine"
	"github.com/savfod/UnPaSt/internal/event"
	"github.com/savfod/UnPaSt/internal/executor"
	clog "github.com/savfod/UnPaSt/internal/log"
	"github.com/savfod/UnPaSt/internal/project"
	"github.com/savfod/UnPaSt/internal/run"
	"github.com/savfod/UnPaSt/internal/types"
	"github.com/savfod/UnPaSt/internal/workflow"
)

// runEvent is the shared entry point for the run and dispatch commands:
// build the event, load workflows, schedule the matching ones, execute
// each scheduled job to completion or first failure.
func runEvent(ctx context.Context, typ event.Type, branch, only string, verbose bool) error {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Init logging
	logFile := openLogFile()
	clog.Init(cfg.LogLevel, logFile)
	if logFile != nil {
		defer logFile.Close()
	}

	// Collect git info
	gitInfo, err := project.CollectGitInfo()
	if err != nil {
		clog.Warn("could not collect git info", "err", err)
		gitInfo = &project.GitInfo{}
	}
	if gitInfo.IsDirty {
		clog.Warn("working tree is dirty; checkout uses the last commit")
	}

	// A push/pull_request without an explicit branch targets the current one.
	if branch == "" && typ != event.WorkflowDispatch {
		branch = gitInfo.Branch
		if branch == "" {
			branch = cfg.DefaultBranch
		}
	}
	ev := event.New(typ, branch, gitInfo.Commit)

	// Load workflows
	wfs, err := loadWorkflows(cfg)
	if err != nil {
		return err
	}
	if only != "" {
		wfs = filterByName(wfs, only)
		if len(wfs) == 0 {
			return fmt.Errorf("workflow %q not found", only)
		}
	}

	// Schedule: each workflow at most once per event.
	var scheduled []*types.Workflow
	for _, wf := range wfs {
		if event.Matches(wf, ev) {
			scheduled = append(scheduled, wf)
		}
	}
	if len(scheduled) == 0 {
		fmt.Printf("No workflows scheduled for %s", ev.Type)
		if ev.Branch != "" {
			fmt.Printf(" on %s", ev.Branch)
		}
		fmt.Println(".")
		return nil
	}

	executors := buildExecutors(cfg)

	for _, wf := range scheduled {
		// Deterministic job order.
		jobIDs := make([]string, 0, len(wf.Jobs))
		for id := range wf.Jobs {
			jobIDs = append(jobIDs, id)
		}
		sort.Strings(jobIDs)

		for _, jobID := range jobIDs {
			if err := runJob(ctx, cfg, wf, jobID, ev, gitInfo, executors, verbose); err != nil {
				return err
			}
		}
	}
	return nil
}

func runJob(ctx context.Context, cfg *config.Config, wf *types.Workflow, jobID string,
	ev event.Event, gitInfo *project.GitInfo, executors map[string]executor.Executor, verbose bool) error {

	r, err := run.New(wf.Name, jobID, run.EventInfo{
		ID:     ev.ID,
		Type:   string(ev.Type),
		Branch: ev.Branch,
	}, gitInfo.Branch, gitInfo.Commit)
	if err != nil {
		return fmt.Errorf("creating run: %w", err)
	}

	if !cfg.KeepWorkspace {
		defer os.RemoveAll(r.WorkspaceDir())
	}

	disp := engine.NewDisplay(fmt.Sprintf("%s / %s", wf.Name, jobID), verbose)
	disp.Header()

	eng := &engine.Engine{
		Workflow:  wf,
		JobID:     jobID,
		Job:       wf.Jobs[jobID],
		Event:     ev,
		Executors: executors,
		Run:       r,
		RepoRoot:  gitInfo.Root,
		Display:   disp,
		Verbose:   verbose,
	}
	return eng.Execute(ctx)
}

// loadWorkflows merges the project workflows directory with the embedded
// defaults; a project file shadows an embedded workflow of the same name.
func loadWorkflows(cfg *config.Config) ([]*types.Workflow, error) {
	wfs, err := workflow.LoadDir(cfg.WorkflowsDir)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	for _, wf := range wfs {
		seen[wf.Name] = true
	}

	embedded, err := assets.AllWorkflows()
	if err != nil {
		return nil, fmt.Errorf("loading embedded workflows: %w", err)
	}
	names := make([]string, 0, len(embedded))
	for name := range embedded {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		wf, err := workflow.Parse(embedded[name])
		if err != nil {
			return nil, fmt.Errorf("embedded workflow %q: %w", name, err)
		}
		if wf.Name == "" {
			wf.Name = name
		}
		if !seen[wf.Name] {
			wfs = append(wfs, wf)
		}
	}
	return wfs, nil
}

func filterByName(wfs []*types.Workflow, name string) []*types.Workflow {
	var out []*types.Workflow
	for _, wf := range wfs {
		if wf.Name == name {
			out = append(out, wf)
		}
	}
	return out
}

func buildExecutors(cfg *config.Config) map[string]executor.Executor {
	return map[string]executor.Executor{
		"action": &executor.CheckoutExecutor{},
		"container": &executor.ContainerExecutor{
			Binary:    cfg.Docker.Binary,
			MountPath: cfg.Docker.MountPath,
			ExtraArgs: cfg.Docker.ExtraArgs,
		},
		"shell": &executor.ShellExecutor{},
	}
}

func openLogFile() *os.File {
	dir := ".cirun"
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil
	}
	f, err := os.OpenFile(dir+"/cirun.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil
	}
	return f
}
