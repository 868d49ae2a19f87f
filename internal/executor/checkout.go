package executor

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// CheckoutExecutor handles `uses: actions/checkout@…` steps by cloning the
// source repository into the job workspace and checking out the event's
// revision. The workspace must not already contain a checkout.
type CheckoutExecutor struct{}

func (e *CheckoutExecutor) Execute(ctx context.Context, req *Request) (*Result, error) {
	start := time.Now()

	if !strings.HasPrefix(req.Step.Uses, "actions/checkout@") {
		return nil, fmt.Errorf("unsupported action %q (only actions/checkout is handled)", req.Step.Uses)
	}
	if req.RepoRoot == "" {
		return nil, fmt.Errorf("checkout: no source repository for step %q", req.Step.Name)
	}

	out, err := gitOutput(ctx, "clone", "--quiet", req.RepoRoot, req.Workspace)
	if err != nil {
		return &Result{Output: out, ExitCode: exitCode(err), Duration: time.Since(start)},
			fmt.Errorf("checkout: cloning %s: %w\noutput: %s", req.RepoRoot, err, out)
	}

	if req.Commit != "" {
		out, err = gitOutput(ctx, "-C", req.Workspace, "checkout", "--quiet", req.Commit)
		if err != nil {
			return &Result{Output: out, ExitCode: exitCode(err), Duration: time.Since(start)},
				fmt.Errorf("checkout: revision %s: %w\noutput: %s", req.Commit, err, out)
		}
	}

	return &Result{Duration: time.Since(start)}, nil
}

func gitOutput(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	out, err := cmd.CombinedOutput()
	return strings.TrimSpace(string(out)), err
}
