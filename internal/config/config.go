package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level runner configuration.
type Config struct {
	WorkflowsDir  string       `yaml:"workflows_dir"`
	DefaultBranch string       `yaml:"default_branch"`
	Docker        DockerConfig `yaml:"docker"`
	KeepWorkspace bool         `yaml:"keep_workspace"`
	LogLevel      string       `yaml:"log_level"`
}

// DockerConfig controls how container steps are launched.
type DockerConfig struct {
	Binary    string   `yaml:"binary"`
	MountPath string   `yaml:"mount_path"`
	ExtraArgs []string `yaml:"extra_args"`
}

// Validate checks that required fields are present.
func (c *Config) Validate() error {
	if c.WorkflowsDir == "" {
		return fmt.Errorf("workflows_dir is required")
	}
	if c.DefaultBranch == "" {
		return fmt.Errorf("default_branch is required")
	}
	if c.Docker.Binary == "" {
		return fmt.Errorf("docker.binary is required")
	}
	if c.Docker.MountPath == "" {
		return fmt.Errorf("docker.mount_path is required")
	}
	return nil
}

// Load resolves config from project → user → defaults.
func Load() (*Config, error) {
	cfg := defaults()

	// user-level config
	home, err := os.UserHomeDir()
	if err == nil {
		userPath := filepath.Join(home, ".cirun", "config.yaml")
		if err := mergeFile(cfg, userPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("loading user config: %w", err)
		}
	}

	// project-level config (highest priority)
	projectPath := filepath.Join(".cirun", "config.yaml")
	if err := mergeFile(cfg, projectPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return cfg, nil
}

func mergeFile(dst *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, dst)
}

func defaults() *Config {
	return &Config{
		WorkflowsDir:  filepath.Join(".ci", "workflows"),
		DefaultBranch: "main",
		Docker: DockerConfig{
			Binary: "docker",
			// Matches the workspace path the GitHub-hosted runner exposes,
			// so commands written for it work unchanged.
			MountPath: "/github/workspace",
		},
		KeepWorkspace: false,
		LogLevel:      "info",
	}
}
