// Package workflow parses and validates workflow definitions.
package workflow

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/savfod/UnPaSt/internal/types"
	"gopkg.in/yaml.v3"
)

// dockerPrefix marks a `uses:` reference that is container-image shorthand
// rather than a named action.
const dockerPrefix = "docker://"

// Parse decodes a workflow from YAML bytes, normalizes container shorthand
// and validates the result.
func Parse(data []byte) (*types.Workflow, error) {
	var wf types.Workflow
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("parsing workflow: %w", err)
	}
	if err := normalize(&wf); err != nil {
		return nil, err
	}
	if err := Validate(&wf); err != nil {
		return nil, err
	}
	return &wf, nil
}

// ParseFile reads and parses a workflow YAML file. The workflow name
// defaults to the file's base name when the definition omits one.
func ParseFile(path string) (*types.Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workflow file %s: %w", path, err)
	}
	wf, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("workflow %s: %w", path, err)
	}
	if wf.Name == "" {
		base := filepath.Base(path)
		wf.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return wf, nil
}

// LoadDir parses every .yaml/.yml file in dir, sorted by file name.
// A missing directory yields an empty slice, not an error.
func LoadDir(dir string) ([]*types.Workflow, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading workflows dir %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var wfs []*types.Workflow
	for _, name := range names {
		wf, err := ParseFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		wfs = append(wfs, wf)
	}
	return wfs, nil
}

// normalize rewrites docker:// action shorthand into explicit container
// steps: image from the reference, entrypoint/args lifted out of `with`.
func normalize(wf *types.Workflow) error {
	for jobID, job := range wf.Jobs {
		for i, step := range job.Steps {
			if !strings.HasPrefix(step.Uses, dockerPrefix) {
				continue
			}
			step.Image = strings.TrimPrefix(step.Uses, dockerPrefix)
			step.Uses = ""
			if ep, ok := step.With["entrypoint"]; ok {
				step.Entrypoint = ep
			}
			if raw, ok := step.With["args"]; ok {
				args, err := SplitArgs(raw)
				if err != nil {
					return fmt.Errorf("job %q step %d: %w", jobID, i+1, err)
				}
				step.Args = args
			}
			step.With = nil
			job.Steps[i] = step
		}
	}
	return nil
}

// Validate checks structural invariants: at least one job, at least one
// step per job, and exactly one action form per step. An empty workflow
// name is allowed here; ParseFile falls back to the file's base name.
func Validate(wf *types.Workflow) error {
	if len(wf.Jobs) == 0 {
		return fmt.Errorf("workflow must declare at least one job")
	}
	for jobID, job := range wf.Jobs {
		if len(job.Steps) == 0 {
			return fmt.Errorf("job %q must declare at least one step", jobID)
		}
		for i, step := range job.Steps {
			forms := 0
			if step.Uses != "" {
				forms++
			}
			if step.Image != "" {
				forms++
			}
			if step.Run != "" {
				forms++
			}
			switch forms {
			case 0:
				return fmt.Errorf("job %q step %d: one of uses, image or run is required", jobID, i+1)
			case 1:
			default:
				return fmt.Errorf("job %q step %d: uses, image and run are mutually exclusive", jobID, i+1)
			}
			if step.Entrypoint != "" && step.Image == "" {
				return fmt.Errorf("job %q step %d: entrypoint requires image", jobID, i+1)
			}
		}
	}
	return nil
}

// SplitArgs splits a shell-style argument string into fields, honoring
// single and double quotes. `-c "cd /ws && make"` becomes two fields with
// the quoted command intact. Escapes are not interpreted.
func SplitArgs(raw string) ([]string, error) {
	var args []string
	var cur strings.Builder
	var quote rune
	inField := false

	for _, r := range raw {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inField = true
		case r == ' ' || r == '\t' || r == '\n':
			if inField {
				args = append(args, cur.String())
				cur.Reset()
				inField = false
			}
		default:
			cur.WriteRune(r)
			inField = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote in args %q", quote, raw)
	}
	if inField {
		args = append(args, cur.String())
	}
	return args, nil
}
