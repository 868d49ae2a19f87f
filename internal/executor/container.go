package executor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"time"
)

// ContainerExecutor runs an `image:` step as a disposable container via the
// docker CLI. The job workspace is mounted read-write at MountPath and used
// as the working directory, so commands inside the container see the
// checked-out repository.
type ContainerExecutor struct {
	Binary    string   // docker binary, e.g. "docker"
	MountPath string   // workspace mount point inside the container
	ExtraArgs []string // additional `docker run` flags from config
}

func (e *ContainerExecutor) Execute(ctx context.Context, req *Request) (*Result, error) {
	start := time.Now()

	if req.Step.Image == "" {
		return nil, fmt.Errorf("container executor: no image specified for step %q", req.Step.Name)
	}

	args, err := e.runArgs(req)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, e.Binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	output := stdout.String()
	if stderr.Len() > 0 {
		output += "\n--- stderr ---\n" + stderr.String()
	}
	duration := time.Since(start)

	if runErr != nil {
		return &Result{Output: output, ExitCode: exitCode(runErr), Duration: duration},
			fmt.Errorf("container %q failed: %w\noutput: %s", req.Step.Image, runErr, output)
	}

	return &Result{Output: output, Duration: duration}, nil
}

// runArgs builds the `docker run` argument list for a step. Environment
// keys are emitted in sorted order so the command line is deterministic.
func (e *ContainerExecutor) runArgs(req *Request) ([]string, error) {
	ws, err := filepath.Abs(req.Workspace)
	if err != nil {
		return nil, fmt.Errorf("resolving workspace path: %w", err)
	}

	args := []string{"run", "--rm",
		"-v", ws + ":" + e.MountPath,
		"-w", e.MountPath,
	}

	keys := make([]string, 0, len(req.Env))
	for k := range req.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-e", k+"="+req.Env[k])
	}

	if req.Step.Entrypoint != "" {
		args = append(args, "--entrypoint", req.Step.Entrypoint)
	}
	args = append(args, e.ExtraArgs...)
	args = append(args, req.Step.Image)
	args = append(args, req.Step.Args...)
	return args, nil
}
