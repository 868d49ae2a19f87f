// Package assets provides embedded default workflow definitions.
package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed workflows/*.yaml
var workflowsFS embed.FS

// LoadWorkflow returns the raw YAML of a workflow by name.
// Override lookup order: project .cirun/workflows/ > user ~/.cirun/workflows/ > embedded.
func LoadWorkflow(name string) ([]byte, error) {
	content, err := loadWithOverride("workflows", name+".yaml", workflowsFS)
	if err != nil {
		return nil, err
	}
	return []byte(content), nil
}

// AllWorkflows returns all embedded workflow definitions as a map (name → YAML).
func AllWorkflows() (map[string][]byte, error) {
	entries, err := fs.ReadDir(workflowsFS, "workflows")
	if err != nil {
		return nil, err
	}
	result := map[string][]byte{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if filepath.Ext(name) != ".yaml" {
			continue
		}
		data, err := workflowsFS.ReadFile(filepath.Join("workflows", name))
		if err != nil {
			return nil, err
		}
		key := name[:len(name)-len(".yaml")]
		result[key] = data
	}
	return result, nil
}

func loadWithOverride(dir, filename string, embedded embed.FS) (string, error) {
	// 1. project-level override
	projectPath := filepath.Join(".cirun", dir, filename)
	if data, err := os.ReadFile(projectPath); err == nil {
		return string(data), nil
	}

	// 2. user-level override
	if home, err := os.UserHomeDir(); err == nil {
		userPath := filepath.Join(home, ".cirun", dir, filename)
		if data, err := os.ReadFile(userPath); err == nil {
			return string(data), nil
		}
	}

	// 3. embedded default
	embeddedPath := filepath.Join(dir, filename)
	data, err := embedded.ReadFile(embeddedPath)
	if err != nil {
		return "", fmt.Errorf("%s %q not found", dir, filename)
	}
	return string(data), nil
}
