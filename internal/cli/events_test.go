package cli

import (
	"testing"

	"github.com/savfod/UnPaSt/internal/types"
)

func TestDescribeTriggers(t *testing.T) {
	tests := []struct {
		name     string
		on       types.Triggers
		expected string
	}{
		{
			name: "all three triggers",
			on: types.Triggers{
				Push:             &types.BranchFilter{Branches: []string{"main"}},
				PullRequest:      &types.BranchFilter{Branches: []string{"main"}},
				WorkflowDispatch: true,
			},
			expected: "push (main), pull_request (main), workflow_dispatch",
		},
		{
			name:     "push without filter",
			on:       types.Triggers{Push: &types.BranchFilter{}},
			expected: "push (any branch)",
		},
		{
			name:     "dispatch only",
			on:       types.Triggers{WorkflowDispatch: true},
			expected: "workflow_dispatch",
		},
		{
			name:     "no triggers",
			on:       types.Triggers{},
			expected: "never (no triggers declared)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := describeTriggers(tt.on); got != tt.expected {
				t.Errorf("describeTriggers() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFilterByName(t *testing.T) {
	wfs := []*types.Workflow{
		{Name: "Run tests"},
		{Name: "lint"},
	}
	got := filterByName(wfs, "lint")
	if len(got) != 1 || got[0].Name != "lint" {
		t.Errorf("filterByName returned %v", got)
	}
	if got := filterByName(wfs, "missing"); len(got) != 0 {
		t.Errorf("expected no match, got %v", got)
	}
}
