// Package engine executes scheduled jobs step by step.
package engine

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/savfod/UnPaSt/internal/event"
	"github.com/savfod/UnPaSt/internal/executor"
	clog "github.com/savfod/UnPaSt/internal/log"
	"github.com/savfod/UnPaSt/internal/run"
	"github.com/savfod/UnPaSt/internal/types"
)

// Engine orchestrates the execution of one scheduled job.
type Engine struct {
	Workflow  *types.Workflow
	JobID     string
	Job       types.Job
	Event     event.Event
	Executors map[string]executor.Executor // keyed by step kind
	Run       *run.Run
	RepoRoot  string
	Display   *Display
	Verbose   bool
}

// stepLabel returns a human-readable label for the step's target, suitable
// for the terminal output column.
func stepLabel(step types.Step) string {
	switch {
	case step.Image != "":
		return step.Image
	case step.Uses != "":
		return step.Uses
	case step.Run != "":
		return "shell"
	default:
		return "—"
	}
}

// Execute runs all steps of the job in declared order. A failing step
// aborts the job unless it is marked continue-on-error, in which case its
// failure is recorded and execution moves on; the job still fails if any
// non-tolerated step failed.
func (e *Engine) Execute(ctx context.Context) error {
	startTime := time.Now()
	clog.Info("job started",
		"workflow", e.Workflow.Name,
		"job", e.JobID,
		"event", string(e.Event.Type),
		"run", e.Run.ID)

	// Fresh, empty workspace per run; shell steps chdir into it and git
	// clone accepts an existing empty directory.
	if err := os.MkdirAll(e.Run.WorkspaceDir(), 0755); err != nil {
		err = fmt.Errorf("provisioning workspace: %w", err)
		if saveErr := e.Run.Fail(err.Error()); saveErr != nil {
			clog.Error("failed to update run meta", "err", saveErr)
		}
		return err
	}

	for i, step := range e.Job.Steps {
		select {
		case <-ctx.Done():
			if err := e.Run.Fail(ctx.Err().Error()); err != nil {
				clog.Error("failed to update run meta", "err", err)
			}
			return ctx.Err()
		default:
		}

		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step %d", i+1)
		}
		label := stepLabel(step)
		e.Display.StepStart(name, label)
		stepStart := time.Now()

		result, stepErr := e.runStep(ctx, step)

		duration := time.Since(stepStart)
		if result != nil && result.Duration > 0 {
			duration = result.Duration
		}

		sr := run.StepResult{
			Name:       name,
			Kind:       step.Kind(),
			Status:     "completed",
			DurationMS: duration.Milliseconds(),
		}
		if result != nil {
			sr.ExitCode = result.ExitCode
			if result.Output != "" {
				logName := fmt.Sprintf("step-%02d.log", i+1)
				if err := e.Run.WriteFile(logName, result.Output); err != nil {
					clog.Warn("failed to save step log", "step", name, "err", err)
				}
			}
		}

		if stepErr != nil {
			sr.Status = "failed"
			sr.Error = stepErr.Error()
			if err := e.Run.AddStepResult(sr); err != nil {
				clog.Warn("failed to save step result", "step", name, "err", err)
			}

			if step.ContinueOnError {
				e.Display.StepTolerated(name, label, stepErr)
				clog.Warn("step failed but is continue-on-error", "step", name, "err", stepErr)
				continue
			}

			e.Display.StepFailed(name, label, stepErr)
			if err := e.Run.Fail(stepErr.Error()); err != nil {
				clog.Error("failed to update run meta", "err", err)
			}
			e.Display.Failed(stepErr)
			return fmt.Errorf("step %q failed: %w", name, stepErr)
		}

		if err := e.Run.AddStepResult(sr); err != nil {
			clog.Warn("failed to save step result", "step", name, "err", err)
		}

		var output string
		if e.Verbose && result != nil {
			output = result.Output
		}
		e.Display.StepDone(name, label, duration, output)
	}

	if err := e.Run.Complete(); err != nil {
		clog.Warn("failed to mark run complete", "err", err)
	}

	clog.Info("job completed", "workflow", e.Workflow.Name, "job", e.JobID,
		"duration_ms", time.Since(startTime).Milliseconds())
	e.Display.Summary(time.Since(startTime))
	return nil
}

func (e *Engine) runStep(ctx context.Context, step types.Step) (*executor.Result, error) {
	kind := step.Kind()
	exec, ok := e.Executors[kind]
	if !ok {
		return nil, fmt.Errorf("no executor for step kind %q", kind)
	}

	req := &executor.Request{
		Step:      step,
		Workspace: e.Run.WorkspaceDir(),
		RepoRoot:  e.RepoRoot,
		Commit:    e.Event.Commit,
		Env:       step.Env,
	}
	return exec.Execute(ctx, req)
}
