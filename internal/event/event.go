// Package event models trigger events and decides which workflows they
// schedule.
package event

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/savfod/UnPaSt/internal/types"
)

// Type enumerates the supported trigger event types.
type Type string

const (
	Push             Type = "push"
	PullRequest      Type = "pull_request"
	WorkflowDispatch Type = "workflow_dispatch"
)

// ParseType validates an event type string from the CLI.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case Push, PullRequest, WorkflowDispatch:
		return Type(s), nil
	}
	return "", fmt.Errorf("unknown event type %q (want push, pull_request or workflow_dispatch)", s)
}

// Event is a single trigger occurrence. Branch is the pushed branch for
// push events and the target branch for pull_request events; a manual
// dispatch carries no branch context.
type Event struct {
	ID         string
	Type       Type
	Branch     string
	Commit     string
	ReceivedAt time.Time
}

// New creates an event with a fresh ID.
func New(typ Type, branch, commit string) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		Branch:     branch,
		Commit:     commit,
		ReceivedAt: time.Now(),
	}
}

// Matches reports whether ev schedules wf. Each (workflow, event) pair
// yields exactly one decision: a workflow is scheduled at most once per
// event, however many of its trigger keys would match.
func Matches(wf *types.Workflow, ev Event) bool {
	switch ev.Type {
	case Push:
		return wf.On.Push != nil && branchMatches(wf.On.Push, ev.Branch)
	case PullRequest:
		return wf.On.PullRequest != nil && branchMatches(wf.On.PullRequest, ev.Branch)
	case WorkflowDispatch:
		// Manual dispatch needs no branch context.
		return wf.On.WorkflowDispatch
	}
	return false
}

// branchMatches applies a branch filter. An empty filter matches any
// branch; names are compared literally.
func branchMatches(f *types.BranchFilter, branch string) bool {
	if len(f.Branches) == 0 {
		return true
	}
	for _, b := range f.Branches {
		if b == branch {
			return true
		}
	}
	return false
}
