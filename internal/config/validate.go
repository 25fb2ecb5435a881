package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

var validatorModes = map[string]bool{
	"builtin":    true,
	"actionlint": true,
	"remote":     true,
}

var validatorLevels = map[string]bool{
	"lenient": true,
	"normal":  true,
	"strict":  true,
}

var publisherModes = map[string]bool{
	"github": true,
	"remote": true,
}

// Validate checks the config for errors and sets defaults.
func Validate(cfg *Config) error {
	if cfg.Task.BaseBranch == "" {
		cfg.Task.BaseBranch = "main"
	}
	if cfg.Task.HeadBranch == "" {
		cfg.Task.HeadBranch = "pipewright/ci-pipeline"
	}
	if cfg.Task.HeadBranch == cfg.Task.BaseBranch {
		return fmt.Errorf("config: task: head-branch %q must differ from base-branch", cfg.Task.HeadBranch)
	}
	if cfg.Task.Title == "" {
		cfg.Task.Title = "Add CI pipeline"
	}
	if cfg.Task.Body == "" {
		cfg.Task.Body = "Automated CI pipeline generated by pipewright."
	}
	if len(cfg.Task.Artifacts) == 0 {
		cfg.Task.Artifacts = []Artifact{{Path: ".github/workflows/ci.yml"}}
	}
	seenPaths := make(map[string]bool)
	for i, a := range cfg.Task.Artifacts {
		if strings.TrimSpace(a.Path) == "" {
			return fmt.Errorf("config: task: artifact %d: 'path' is required", i+1)
		}
		if strings.HasPrefix(a.Path, "/") || strings.Contains(a.Path, "..") {
			return fmt.Errorf("config: task: artifact path %q must be relative to the repository root", a.Path)
		}
		if seenPaths[a.Path] {
			return fmt.Errorf("config: task: duplicate artifact path %q", a.Path)
		}
		seenPaths[a.Path] = true
	}

	for name := range cfg.Steps {
		if _, ok := StageByName(name); !ok {
			return fmt.Errorf("config: steps: unknown stage %q", name)
		}
	}
	if cfg.Steps["generate"] == "" {
		return fmt.Errorf("config: steps: 'generate' is required")
	}

	if cfg.Gateway.AgentURL == "" {
		return fmt.Errorf("config: gateway: 'agent-url' is required")
	}
	if cfg.Gateway.ConnectTimeout == 0 {
		cfg.Gateway.ConnectTimeout = 10
	}
	if cfg.Gateway.AgentTimeout == 0 {
		cfg.Gateway.AgentTimeout = 120
	}
	if cfg.Gateway.FunctionTimeout == 0 {
		cfg.Gateway.FunctionTimeout = 60
	}
	if cfg.Gateway.ConnectTimeout < 0 || cfg.Gateway.AgentTimeout < 0 || cfg.Gateway.FunctionTimeout < 0 {
		return fmt.Errorf("config: gateway: timeouts must be >= 0")
	}
	if needsFunctionURL(cfg) && cfg.Gateway.FunctionURL == "" {
		return fmt.Errorf("config: gateway: 'function-url' is required when a function stage, remote validator, or remote publisher is configured")
	}

	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = 3
	}
	if cfg.Retry.MaxAttempts < 1 {
		return fmt.Errorf("config: retry: max-attempts must be >= 1")
	}
	if cfg.Retry.BackoffBase == 0 {
		cfg.Retry.BackoffBase = 2
	}
	if cfg.Retry.BackoffBase < 0 {
		return fmt.Errorf("config: retry: backoff-base must be >= 0")
	}
	if cfg.Retry.MaxBackoff == 0 {
		cfg.Retry.MaxBackoff = 30
	}
	if cfg.Retry.MaxBackoff < cfg.Retry.BackoffBase {
		return fmt.Errorf("config: retry: max-backoff must be >= backoff-base")
	}

	if cfg.Generation.MaxAttempts == 0 {
		cfg.Generation.MaxAttempts = 3
	}
	if cfg.Generation.MaxAttempts < 1 {
		return fmt.Errorf("config: generation: max-attempts must be >= 1")
	}
	if cfg.Generation.MinLength < 0 {
		return fmt.Errorf("config: generation: min-length must be >= 0")
	}
	if cfg.Generation.MinTerminalLines < 0 {
		return fmt.Errorf("config: generation: min-terminal-lines must be >= 0")
	}

	if cfg.Validator.Mode == "" {
		cfg.Validator.Mode = "builtin"
	}
	if !validatorModes[cfg.Validator.Mode] {
		return fmt.Errorf("config: validator: unknown mode %q (must be builtin, actionlint, or remote)", cfg.Validator.Mode)
	}
	if cfg.Validator.Level == "" {
		cfg.Validator.Level = "normal"
	}
	if !validatorLevels[cfg.Validator.Level] {
		return fmt.Errorf("config: validator: unknown level %q (must be lenient, normal, or strict)", cfg.Validator.Level)
	}
	if cfg.Validator.Mode == "remote" && cfg.Validator.Function == "" {
		return fmt.Errorf("config: validator: 'function' is required when mode is remote")
	}

	if cfg.Publisher.Mode == "" {
		cfg.Publisher.Mode = "github"
	}
	if !publisherModes[cfg.Publisher.Mode] {
		return fmt.Errorf("config: publisher: unknown mode %q (must be github or remote)", cfg.Publisher.Mode)
	}
	if cfg.Publisher.TokenEnv == "" {
		cfg.Publisher.TokenEnv = "GITHUB_TOKEN"
	}
	if cfg.Publisher.Mode == "remote" && cfg.Publisher.Function == "" {
		return fmt.Errorf("config: publisher: 'function' is required when mode is remote")
	}

	if cfg.Store.Dir == "" {
		cfg.Store.Dir = filepath.Join(".pipewright", "tasks")
	}

	return nil
}

// needsFunctionURL reports whether any configured component calls the
// deterministic function gateway.
func needsFunctionURL(cfg *Config) bool {
	for _, s := range Pipeline {
		if s.Kind == KindFunction && cfg.Steps[s.Name] != "" {
			return true
		}
	}
	return cfg.Validator.Mode == "remote" || cfg.Publisher.Mode == "remote"
}
