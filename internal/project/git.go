package project

import (
	"fmt"
	"os/exec"
	"strings"
)

// GitInfo holds current git state of the source repository.
type GitInfo struct {
	Root    string
	Branch  string
	Commit  string
	IsDirty bool
}

// CollectGitInfo gathers repository root, branch and commit information.
func CollectGitInfo() (*GitInfo, error) {
	root, err := gitOutput("rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("getting repo root: %w", err)
	}

	branch, err := gitOutput("rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return nil, fmt.Errorf("getting git branch: %w", err)
	}

	commit, err := gitOutput("rev-parse", "HEAD")
	if err != nil {
		return nil, fmt.Errorf("getting git commit: %w", err)
	}

	dirty, err := isDirty()
	if err != nil {
		return nil, err
	}

	return &GitInfo{
		Root:    root,
		Branch:  branch,
		Commit:  commit,
		IsDirty: dirty,
	}, nil
}

func isDirty() (bool, error) {
	out, err := gitOutput("status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("checking git status: %w", err)
	}
	return strings.TrimSpace(out) != "", nil
}

func gitOutput(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
