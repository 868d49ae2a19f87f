// Package run persists per-execution records under .cirun/runs.
package run

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Run represents a single job execution.
type Run struct {
	ID   string
	Dir  string
	Meta Meta
}

// EventInfo records the trigger occurrence that scheduled the run.
type EventInfo struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Branch string `json:"branch,omitempty"`
}

// Meta holds metadata about a run, persisted to meta.json.
type Meta struct {
	StartedAt       time.Time    `json:"started_at"`
	Event           EventInfo    `json:"event"`
	Workflow        string       `json:"workflow"`
	Job             string       `json:"job"`
	Status          string       `json:"status"` // "running" | "completed" | "failed"
	Steps           []StepResult `json:"steps"`
	TotalDurationMS int64        `json:"total_duration_ms"`
	Error           string       `json:"error,omitempty"`
	GitBranch       string       `json:"git_branch"`
	GitCommit       string       `json:"git_commit"`
}

// StepResult records the outcome of a single step.
type StepResult struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`   // "action" | "container" | "shell"
	Status     string `json:"status"` // "completed" | "failed"
	ExitCode   int    `json:"exit_code"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// BaseDir is the directory run records live under.
const BaseDir = ".cirun/runs"

// New creates a new run directory for a scheduled job.
func New(workflow, job string, event EventInfo, gitBranch, gitCommit string) (*Run, error) {
	now := time.Now()
	ms := now.UnixMilli() % 1000
	id := fmt.Sprintf("%s-%03d-%s",
		now.Format("20060102-150405"),
		ms,
		sanitizeSlug(workflow+"-"+job),
	)

	if err := os.MkdirAll(BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("creating runs dir: %w", err)
	}

	dir := filepath.Join(BaseDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating run dir: %w", err)
	}

	r := &Run{
		ID:  id,
		Dir: dir,
		Meta: Meta{
			StartedAt: now,
			Event:     event,
			Workflow:  workflow,
			Job:       job,
			Status:    "running",
			GitBranch: gitBranch,
			GitCommit: gitCommit,
		},
	}

	if err := r.SaveMeta(); err != nil {
		return nil, err
	}

	if err := updateLatestLink(BaseDir, id); err != nil {
		return nil, err
	}

	return r, nil
}

// WorkspaceDir returns the job workspace path inside the run directory.
// Each run gets a fresh workspace; nothing persists across runs.
func (r *Run) WorkspaceDir() string {
	return filepath.Join(r.Dir, "workspace")
}

// SaveMeta writes meta.json to the run directory.
func (r *Run) SaveMeta() error {
	data, err := json.MarshalIndent(r.Meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling meta: %w", err)
	}
	path := filepath.Join(r.Dir, "meta.json")
	return os.WriteFile(path, data, 0644)
}

// AddStepResult appends a step result and updates the total duration.
func (r *Run) AddStepResult(sr StepResult) error {
	r.Meta.Steps = append(r.Meta.Steps, sr)
	r.Meta.TotalDurationMS += sr.DurationMS
	return r.SaveMeta()
}

// Complete marks the run as completed.
func (r *Run) Complete() error {
	r.Meta.Status = "completed"
	return r.SaveMeta()
}

// Fail marks the run as failed with an error message.
func (r *Run) Fail(msg string) error {
	r.Meta.Status = "failed"
	r.Meta.Error = msg
	return r.SaveMeta()
}

// WriteFile writes content to a named file in the run directory, used for
// captured step logs.
func (r *Run) WriteFile(name, content string) error {
	return os.WriteFile(filepath.Join(r.Dir, name), []byte(content), 0644)
}

// updateLatestLink atomically updates the "latest" symlink.
func updateLatestLink(baseDir, id string) error {
	latestPath := filepath.Join(baseDir, "latest")
	tmpPath := latestPath + ".tmp"

	// Remove any stale tmp link
	os.Remove(tmpPath)

	if err := os.Symlink(id, tmpPath); err != nil {
		return fmt.Errorf("creating temp symlink: %w", err)
	}
	if err := os.Rename(tmpPath, latestPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("updating latest symlink: %w", err)
	}
	return nil
}

var nonAlphanumRe = regexp.MustCompile(`[^a-z0-9]+`)

// sanitizeSlug converts a string to a filesystem-friendly slug.
func sanitizeSlug(s string) string {
	s = strings.ToLower(s)
	s = nonAlphanumRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 40 {
		s = s[:40]
		s = strings.TrimRight(s, "-")
	}
	if s == "" {
		s = "run"
	}
	return s
}
