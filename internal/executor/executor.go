package executor

import (
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/savfod/UnPaSt/internal/types"
)

// Executor runs a single job step.
type Executor interface {
	Execute(ctx context.Context, req *Request) (*Result, error)
}

// Request carries all inputs for a step execution.
type Request struct {
	Step      types.Step
	Workspace string            // job workspace directory
	RepoRoot  string            // source repository root (checkout steps)
	Commit    string            // revision to check out, empty for HEAD
	Env       map[string]string // merged job + step environment
}

// Result holds the output of a step execution. Output is captured even
// when the step fails, so diagnostics survive a non-zero exit.
type Result struct {
	Output   string
	ExitCode int
	Duration time.Duration
}

// exitCode extracts the process exit code from a command error, or -1
// when the process never ran.
func exitCode(err error) int {
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return -1
}
