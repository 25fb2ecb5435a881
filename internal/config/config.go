package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Stage kinds. Agent stages stream a generative completion; function
// stages make one synchronous call.
const (
	KindAgent    = "agent"
	KindFunction = "function"
)

// Stage is one entry in the fixed pipeline topology.
type Stage struct {
	Name     string
	Kind     string
	Required bool
}

// Pipeline lists the stages in execution order. A failed required stage
// fails the task; a failed optional stage warns and the run continues.
// A stage with no configured step ref is skipped entirely.
var Pipeline = []Stage{
	{Name: "ingest", Kind: KindFunction, Required: true},
	{Name: "scan", Kind: KindAgent, Required: true},
	{Name: "analyze", Kind: KindFunction, Required: false},
	{Name: "design", Kind: KindAgent, Required: true},
	{Name: "security", Kind: KindAgent, Required: false},
	{Name: "generate", Kind: KindAgent, Required: true},
	{Name: "publish", Kind: KindAgent, Required: true},
}

// StageByName returns the pipeline stage with the given name.
func StageByName(name string) (Stage, bool) {
	for _, s := range Pipeline {
		if s.Name == name {
			return s, true
		}
	}
	return Stage{}, false
}

// Artifact names one file the generate stage must produce.
type Artifact struct {
	Path string `yaml:"path"`
}

// Task carries the publishing identity of a run: where the generated
// files land and how the pull request is framed.
type Task struct {
	BaseBranch    string     `yaml:"base-branch"`
	HeadBranch    string     `yaml:"head-branch"`
	CommitMessage string     `yaml:"commit-message"`
	Title         string     `yaml:"pr-title"`
	Body          string     `yaml:"pr-body"`
	Draft         *bool      `yaml:"draft"`
	Artifacts     []Artifact `yaml:"artifacts"`
}

// IsDraft reports whether the pull request opens as a draft. Unset
// means draft.
func (t Task) IsDraft() bool {
	if t.Draft == nil {
		return true
	}
	return *t.Draft
}

// Gateway holds the remote endpoints. Timeouts are seconds.
type Gateway struct {
	AgentURL        string `yaml:"agent-url"`
	FunctionURL     string `yaml:"function-url"`
	ConnectTimeout  int    `yaml:"connect-timeout"`
	AgentTimeout    int    `yaml:"agent-timeout"`
	FunctionTimeout int    `yaml:"function-timeout"`
}

// Retry bounds transport retries. Backoff values are seconds.
type Retry struct {
	MaxAttempts int `yaml:"max-attempts"`
	BackoffBase int `yaml:"backoff-base"`
	MaxBackoff  int `yaml:"max-backoff"`
}

// Generation bounds the regeneration loop and tunes the completeness
// heuristics. Zero-valued heuristic fields fall back to built-in limits.
type Generation struct {
	MaxAttempts      int      `yaml:"max-attempts"`
	MinLength        int      `yaml:"min-length"`
	TerminalSection  string   `yaml:"terminal-section"`
	TerminalKeywords []string `yaml:"terminal-keywords"`
	MinTerminalLines int      `yaml:"min-terminal-lines"`
}

// Validator selects how generated artifacts are checked.
type Validator struct {
	Mode     string `yaml:"mode"`  // builtin, actionlint, or remote
	Level    string `yaml:"level"` // lenient, normal, or strict
	Function string `yaml:"function"`
}

// Publisher selects how the fallback publisher reaches the hosting API.
type Publisher struct {
	Mode     string `yaml:"mode"` // github or remote
	Host     string `yaml:"host"`
	TokenEnv string `yaml:"token-env"`
	Function string `yaml:"function"`
}

// Store locates the on-disk task records.
type Store struct {
	Dir string `yaml:"dir"`
}

// Config is the root of pipewright.yaml.
type Config struct {
	Task       Task              `yaml:"task"`
	Gateway    Gateway           `yaml:"gateway"`
	Steps      map[string]string `yaml:"steps"`
	Retry      Retry             `yaml:"retry"`
	Generation Generation        `yaml:"generation"`
	Validator  Validator         `yaml:"validator"`
	Publisher  Publisher         `yaml:"publisher"`
	Store      Store             `yaml:"store"`
	PromptsDir string            `yaml:"prompts-dir"`
}

// Load reads a YAML config file and returns a validated Config. Relative
// store and prompt directories are resolved against the config file's
// directory, so a run behaves the same from any working directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	base := filepath.Dir(path)
	cfg.Store.Dir = anchored(base, cfg.Store.Dir)
	cfg.PromptsDir = anchored(base, cfg.PromptsDir)
	return &cfg, nil
}

func anchored(base, dir string) string {
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(base, dir)
}

// StepRef returns the remote ref configured for a stage, or "" when the
// stage is not wired.
func (c *Config) StepRef(stage string) string {
	return c.Steps[stage]
}
