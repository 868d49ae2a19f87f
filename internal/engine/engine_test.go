package engine

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/savfod/UnPaSt/internal/event"
	"github.com/savfod/UnPaSt/internal/executor"
	"github.com/savfod/UnPaSt/internal/run"
	"github.com/savfod/UnPaSt/internal/types"
)

// chdirTemp moves the test into a fresh temp dir and restores the old
// working directory on cleanup.
func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}

// fakeExecutor records step invocations and fails the configured steps.
type fakeExecutor struct {
	calls []string
	fail  map[string]bool
}

func (f *fakeExecutor) Execute(ctx context.Context, req *executor.Request) (*executor.Result, error) {
	f.calls = append(f.calls, req.Step.Name)
	if f.fail[req.Step.Name] {
		return &executor.Result{ExitCode: 1, Duration: time.Millisecond},
			fmt.Errorf("step %s exited 1", req.Step.Name)
	}
	return &executor.Result{Output: "ok\n", Duration: time.Millisecond}, nil
}

func newTestEngine(t *testing.T, job types.Job, fake *fakeExecutor) *Engine {
	t.Helper()
	chdirTemp(t)

	ev := event.New(event.Push, "main", "")
	r, err := run.New("test", "test", run.EventInfo{ID: ev.ID, Type: string(ev.Type), Branch: ev.Branch}, "main", "")
	if err != nil {
		t.Fatalf("creating run: %v", err)
	}

	var buf bytes.Buffer
	return &Engine{
		Workflow:  &types.Workflow{Name: "test", Jobs: map[string]types.Job{"test": job}},
		JobID:     "test",
		Job:       job,
		Event:     ev,
		Executors: map[string]executor.Executor{"shell": fake},
		Run:       r,
		Display:   &Display{w: &buf},
	}
}

func TestExecuteAllStepsSucceed(t *testing.T) {
	fake := &fakeExecutor{}
	job := types.Job{
		RunsOn: "ubuntu-latest",
		Steps: []types.Step{
			{Name: "fast tests", Run: "true"},
			{Name: "timed tests", Run: "true"},
		},
	}
	e := newTestEngine(t, job, fake)

	if err := e.Execute(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fake.calls) != 2 {
		t.Fatalf("expected 2 step invocations, got %d", len(fake.calls))
	}
	if e.Run.Meta.Status != "completed" {
		t.Errorf("expected run status 'completed', got %q", e.Run.Meta.Status)
	}
	if len(e.Run.Meta.Steps) != 2 {
		t.Fatalf("expected 2 step results, got %d", len(e.Run.Meta.Steps))
	}
	for _, sr := range e.Run.Meta.Steps {
		if sr.Status != "completed" {
			t.Errorf("step %q: expected status 'completed', got %q", sr.Name, sr.Status)
		}
		if sr.DurationMS < 0 {
			t.Errorf("step %q: negative duration", sr.Name)
		}
	}
}

func TestExecuteProvisionsWorkspaceForShellSteps(t *testing.T) {
	// A shell-only job runs in the workspace directory, which must exist
	// before the first step starts.
	job := types.Job{
		RunsOn: "ubuntu-latest",
		Steps:  []types.Step{{Name: "hello", Run: "echo hi > out.txt"}},
	}
	e := newTestEngine(t, job, &fakeExecutor{})
	e.Executors = map[string]executor.Executor{"shell": &executor.ShellExecutor{}}

	if err := e.Execute(context.Background()); err != nil {
		t.Fatalf("shell-only job failed: %v", err)
	}
	if _, err := os.Stat(e.Run.WorkspaceDir()); err != nil {
		t.Errorf("workspace dir missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(e.Run.WorkspaceDir(), "out.txt")); err != nil {
		t.Errorf("step did not run in workspace: %v", err)
	}
	if e.Run.Meta.Status != "completed" {
		t.Errorf("expected run status 'completed', got %q", e.Run.Meta.Status)
	}
}

func TestExecuteFailFast(t *testing.T) {
	fake := &fakeExecutor{fail: map[string]bool{"fast tests": true}}
	job := types.Job{
		RunsOn: "ubuntu-latest",
		Steps: []types.Step{
			{Name: "fast tests", Run: "false"},
			{Name: "timed tests", Run: "true"},
		},
	}
	e := newTestEngine(t, job, fake)

	err := e.Execute(context.Background())
	if err == nil {
		t.Fatal("expected error from failing step")
	}
	// The second step must never execute after the first fails.
	if len(fake.calls) != 1 {
		t.Fatalf("expected 1 step invocation, got %d (%v)", len(fake.calls), fake.calls)
	}
	if e.Run.Meta.Status != "failed" {
		t.Errorf("expected run status 'failed', got %q", e.Run.Meta.Status)
	}
	if len(e.Run.Meta.Steps) != 1 {
		t.Fatalf("expected 1 step result, got %d", len(e.Run.Meta.Steps))
	}
	sr := e.Run.Meta.Steps[0]
	if sr.Status != "failed" || sr.ExitCode != 1 {
		t.Errorf("expected failed step with exit 1, got %+v", sr)
	}
}

func TestExecuteSecondStepFails(t *testing.T) {
	fake := &fakeExecutor{fail: map[string]bool{"timed tests": true}}
	job := types.Job{
		RunsOn: "ubuntu-latest",
		Steps: []types.Step{
			{Name: "fast tests", Run: "true"},
			{Name: "timed tests", Run: "false"},
		},
	}
	e := newTestEngine(t, job, fake)

	if err := e.Execute(context.Background()); err == nil {
		t.Fatal("expected error from failing second step")
	}
	if len(fake.calls) != 2 {
		t.Fatalf("expected 2 step invocations, got %d", len(fake.calls))
	}
	if e.Run.Meta.Status != "failed" {
		t.Errorf("expected run status 'failed', got %q", e.Run.Meta.Status)
	}
}

func TestExecuteContinueOnError(t *testing.T) {
	fake := &fakeExecutor{fail: map[string]bool{"fast tests": true}}
	job := types.Job{
		RunsOn: "ubuntu-latest",
		Steps: []types.Step{
			{Name: "fast tests", Run: "false", ContinueOnError: true},
			{Name: "timed tests", Run: "true"},
		},
	}
	e := newTestEngine(t, job, fake)

	if err := e.Execute(context.Background()); err != nil {
		t.Fatalf("tolerated failure should not abort the job: %v", err)
	}
	// The timed pass still runs and its duration is recorded.
	if len(fake.calls) != 2 {
		t.Fatalf("expected 2 step invocations, got %d (%v)", len(fake.calls), fake.calls)
	}
	if len(e.Run.Meta.Steps) != 2 {
		t.Fatalf("expected 2 step results, got %d", len(e.Run.Meta.Steps))
	}
	if e.Run.Meta.Steps[0].Status != "failed" {
		t.Errorf("tolerated step should still be recorded as failed, got %q", e.Run.Meta.Steps[0].Status)
	}
	if e.Run.Meta.Steps[1].Status != "completed" {
		t.Errorf("expected second step completed, got %q", e.Run.Meta.Steps[1].Status)
	}
	if e.Run.Meta.Status != "completed" {
		t.Errorf("expected run status 'completed', got %q", e.Run.Meta.Status)
	}
}

func TestExecuteCancelledContext(t *testing.T) {
	fake := &fakeExecutor{}
	job := types.Job{
		RunsOn: "ubuntu-latest",
		Steps:  []types.Step{{Name: "fast tests", Run: "true"}},
	}
	e := newTestEngine(t, job, fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := e.Execute(ctx); err == nil {
		t.Fatal("expected context error")
	}
	if len(fake.calls) != 0 {
		t.Errorf("no steps should run after cancellation, got %v", fake.calls)
	}
	if e.Run.Meta.Status != "failed" {
		t.Errorf("expected run status 'failed', got %q", e.Run.Meta.Status)
	}
}

func TestExecuteUnknownStepKind(t *testing.T) {
	fake := &fakeExecutor{}
	job := types.Job{
		RunsOn: "ubuntu-latest",
		Steps:  []types.Step{{Name: "checkout", Uses: "actions/checkout@v4"}},
	}
	e := newTestEngine(t, job, fake) // only "shell" registered

	if err := e.Execute(context.Background()); err == nil {
		t.Fatal("expected error for step kind without executor")
	}
	if e.Run.Meta.Status != "failed" {
		t.Errorf("expected run status 'failed', got %q", e.Run.Meta.Status)
	}
}

func TestStepLabel(t *testing.T) {
	tests := []struct {
		name     string
		step     types.Step
		expected string
	}{
		{"container step shows image", types.Step{Image: "freddsle/unpast:latest"}, "freddsle/unpast:latest"},
		{"action step shows ref", types.Step{Uses: "actions/checkout@v4"}, "actions/checkout@v4"},
		{"run step shows shell", types.Step{Run: "make test"}, "shell"},
		{"empty step shows dash", types.Step{}, "—"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stepLabel(tt.step); got != tt.expected {
				t.Errorf("stepLabel() = %q, want %q", got, tt.expected)
			}
		})
	}
}
