// Package types holds shared data structures used across packages.
package types

import "gopkg.in/yaml.v3"

// Workflow is a named set of jobs bound to trigger conditions.
type Workflow struct {
	Name string         `yaml:"name"`
	On   Triggers       `yaml:"on"`
	Jobs map[string]Job `yaml:"jobs"`
}

// Triggers declares which events schedule the workflow. A trigger key being
// present in the YAML — even with a null value — activates that event type,
// so presence is tracked explicitly rather than through pointer nil-ness.
type Triggers struct {
	Push             *BranchFilter
	PullRequest      *BranchFilter
	WorkflowDispatch bool
}

// BranchFilter restricts a push/pull_request trigger to specific branches.
// An empty Branches list matches any branch.
type BranchFilter struct {
	Branches []string `yaml:"branches"`
}

// UnmarshalYAML decodes the `on:` value in its three YAML shapes: a single
// event name, a list of event names, or a mapping from event name to filter.
// A present-but-null mapping key (e.g. a bare `workflow_dispatch:`) is an
// active trigger with no filter.
func (t *Triggers) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		t.activate(node.Value)
		return nil
	case yaml.SequenceNode:
		for _, item := range node.Content {
			t.activate(item.Value)
		}
		return nil
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		val := node.Content[i+1]
		switch key {
		case "push":
			t.Push = &BranchFilter{}
			if val.Tag != "!!null" {
				if err := val.Decode(t.Push); err != nil {
					return err
				}
			}
		case "pull_request":
			t.PullRequest = &BranchFilter{}
			if val.Tag != "!!null" {
				if err := val.Decode(t.PullRequest); err != nil {
					return err
				}
			}
		case "workflow_dispatch":
			t.WorkflowDispatch = true
		}
	}
	return nil
}

// activate enables an event type with no branch filter.
func (t *Triggers) activate(name string) {
	switch name {
	case "push":
		t.Push = &BranchFilter{}
	case "pull_request":
		t.PullRequest = &BranchFilter{}
	case "workflow_dispatch":
		t.WorkflowDispatch = true
	}
}

// Empty reports whether no trigger is declared. A workflow with an empty
// trigger set never schedules.
func (t Triggers) Empty() bool {
	return t.Push == nil && t.PullRequest == nil && !t.WorkflowDispatch
}

// Job is a named unit of execution bound to a runner label and an ordered
// sequence of steps.
type Job struct {
	Name   string `yaml:"name,omitempty"`
	RunsOn string `yaml:"runs-on"`
	Steps  []Step `yaml:"steps"`
}

// Step is a single unit of work in a job. Exactly one of Uses, Image or Run
// selects the step's action form:
//
//	uses:  a named action reference (checkout, or docker://image shorthand)
//	image: a container invocation with an optional entrypoint override
//	run:   a shell command in the job workspace
type Step struct {
	Name            string            `yaml:"name,omitempty"`
	Uses            string            `yaml:"uses,omitempty"`
	Image           string            `yaml:"image,omitempty"`
	Entrypoint      string            `yaml:"entrypoint,omitempty"`
	Args            []string          `yaml:"args,omitempty"`
	Run             string            `yaml:"run,omitempty"`
	With            map[string]string `yaml:"with,omitempty"`
	Env             map[string]string `yaml:"env,omitempty"`
	ContinueOnError bool              `yaml:"continue-on-error,omitempty"`
}

// Kind returns a short label for the step's action form, used for dispatch
// and terminal display.
func (s Step) Kind() string {
	switch {
	case s.Image != "":
		return "container"
	case s.Uses != "":
		return "action"
	case s.Run != "":
		return "shell"
	default:
		return ""
	}
}
