package executor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// ShellExecutor runs a `run:` step with sh -c in the job workspace.
type ShellExecutor struct{}

func (e *ShellExecutor) Execute(ctx context.Context, req *Request) (*Result, error) {
	start := time.Now()

	command := req.Step.Run
	if command == "" {
		return nil, fmt.Errorf("shell executor: no command specified for step %q", req.Step.Name)
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = req.Workspace
	cmd.Env = mergedEnv(req.Env)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	output := stdout.String()
	if stderr.Len() > 0 {
		output += "\n--- stderr ---\n" + stderr.String()
	}
	duration := time.Since(start)

	if err != nil {
		return &Result{Output: output, ExitCode: exitCode(err), Duration: duration},
			fmt.Errorf("shell command %q failed: %w\noutput: %s", command, err, output)
	}

	return &Result{Output: output, Duration: duration}, nil
}

// mergedEnv layers step environment on top of the process environment.
func mergedEnv(env map[string]string) []string {
	out := os.Environ()
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	return out
}
