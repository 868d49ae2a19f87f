package executor

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/savfod/UnPaSt/internal/types"
)

func TestContainerRunArgs(t *testing.T) {
	e := &ContainerExecutor{Binary: "docker", MountPath: "/github/workspace"}
	ws := t.TempDir()
	req := &Request{
		Step: types.Step{
			Name:       "Run tests",
			Image:      "freddsle/unpast:latest",
			Entrypoint: "bash",
			Args:       []string{"-c", "cd /github/workspace && pytest"},
		},
		Workspace: ws,
	}

	got, err := e.runArgs(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	abs, _ := filepath.Abs(ws)
	want := []string{
		"run", "--rm",
		"-v", abs + ":/github/workspace",
		"-w", "/github/workspace",
		"--entrypoint", "bash",
		"freddsle/unpast:latest",
		"-c", "cd /github/workspace && pytest",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("runArgs mismatch (-want +got):\n%s", diff)
	}
}

func TestContainerRunArgsEnvSorted(t *testing.T) {
	e := &ContainerExecutor{Binary: "docker", MountPath: "/ws"}
	req := &Request{
		Step: types.Step{Image: "alpine"},
		Env: map[string]string{
			"ZED":        "1",
			"PYTHONPATH": "/tmp",
			"AAA":        "2",
		},
		Workspace: t.TempDir(),
	}

	got, err := e.runArgs(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Env keys must appear in sorted order for a deterministic command line.
	var envs []string
	for i := 0; i < len(got)-1; i++ {
		if got[i] == "-e" {
			envs = append(envs, got[i+1])
		}
	}
	want := []string{"AAA=2", "PYTHONPATH=/tmp", "ZED=1"}
	if diff := cmp.Diff(want, envs); diff != "" {
		t.Errorf("env order mismatch (-want +got):\n%s", diff)
	}
}

func TestContainerRunArgsExtraArgsBeforeImage(t *testing.T) {
	e := &ContainerExecutor{Binary: "docker", MountPath: "/ws", ExtraArgs: []string{"--network", "none"}}
	req := &Request{
		Step:      types.Step{Image: "alpine", Args: []string{"true"}},
		Workspace: t.TempDir(),
	}

	got, err := e.runArgs(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	idxNetwork, idxImage := -1, -1
	for i, a := range got {
		switch a {
		case "--network":
			idxNetwork = i
		case "alpine":
			idxImage = i
		}
	}
	if idxNetwork == -1 || idxImage == -1 || idxNetwork > idxImage {
		t.Errorf("extra args must precede the image: %v", got)
	}
}

func TestContainerNoImage(t *testing.T) {
	e := &ContainerExecutor{Binary: "docker", MountPath: "/ws"}
	_, err := e.Execute(context.Background(), &Request{Step: types.Step{Name: "empty"}})
	if err == nil {
		t.Error("expected error for missing image")
	}
}
