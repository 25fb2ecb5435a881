// Package doctor runs preflight checks against a pipewright setup and
// reports anything that would make a run fail: a config that does not
// load, malformed gateway URLs, an unwritable state store, or missing
// publisher credentials.
package doctor

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pipewright/pipewright/internal/config"
	"github.com/pipewright/pipewright/internal/ux"
)

// Check is the outcome of a single preflight probe.
type Check struct {
	Name   string
	OK     bool
	Detail string
}

// Run executes every check against the config at path, prints a
// report, and returns an error when any check failed.
func Run(configPath string) error {
	fmt.Printf("\n%s%s══ Doctor ══%s\n\n", ux.Bold, ux.Cyan, ux.Reset)

	checks := run(configPath)
	failed := 0
	for _, c := range checks {
		if c.OK {
			fmt.Printf("  %s✓%s %-18s %s\n", ux.Green, ux.Reset, c.Name, c.Detail)
		} else {
			failed++
			fmt.Printf("  %s✗ %-18s%s %s\n", ux.Red, c.Name, ux.Reset, c.Detail)
		}
	}
	fmt.Println()

	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(checks))
	}
	fmt.Printf("%sAll %d checks passed.%s\n", ux.Green, len(checks), ux.Reset)
	return nil
}

func run(configPath string) []Check {
	configCheck, cfg := checkConfig(configPath)
	checks := []Check{configCheck}
	if cfg == nil {
		return checks
	}
	checks = append(checks,
		checkSteps(cfg),
		checkURL("agent gateway", cfg.Gateway.AgentURL),
		checkFunctionGateway(cfg),
		checkValidator(cfg),
		checkPublisher(cfg),
		checkStore(cfg.Store.Dir),
		checkPrompts(cfg.PromptsDir),
	)
	return checks
}

func checkConfig(path string) (Check, *config.Config) {
	c := Check{Name: "config"}
	cfg, err := config.Load(path)
	if err != nil {
		c.Detail = err.Error()
		return c, nil
	}
	c.OK = true
	c.Detail = path
	return c, cfg
}

func checkSteps(cfg *config.Config) Check {
	var skipped []string
	configured := 0
	for _, stage := range config.Pipeline {
		if cfg.StepRef(stage.Name) == "" {
			skipped = append(skipped, stage.Name)
		} else {
			configured++
		}
	}
	detail := fmt.Sprintf("%d of %d stages configured", configured, len(config.Pipeline))
	if len(skipped) > 0 {
		detail += fmt.Sprintf(" (skipping %s)", strings.Join(skipped, ", "))
	}
	return Check{Name: "pipeline steps", OK: true, Detail: detail}
}

func checkURL(name, raw string) Check {
	c := Check{Name: name}
	u, err := url.Parse(raw)
	switch {
	case err != nil:
		c.Detail = fmt.Sprintf("%q is not a valid URL: %v", raw, err)
	case u.Scheme != "http" && u.Scheme != "https":
		c.Detail = fmt.Sprintf("%q must use http or https", raw)
	case u.Host == "":
		c.Detail = fmt.Sprintf("%q has no host", raw)
	default:
		c.OK = true
		c.Detail = raw
	}
	return c
}

func checkFunctionGateway(cfg *config.Config) Check {
	if cfg.Gateway.FunctionURL == "" {
		return Check{Name: "function gateway", OK: true, Detail: "not configured (agent stages only)"}
	}
	return checkURL("function gateway", cfg.Gateway.FunctionURL)
}

func checkValidator(cfg *config.Config) Check {
	c := Check{Name: "validator", OK: true}
	switch cfg.Validator.Mode {
	case "remote":
		c.Detail = fmt.Sprintf("remote function %q", cfg.Validator.Function)
	case "builtin":
		c.Detail = fmt.Sprintf("builtin (level %s)", cfg.Validator.Level)
	default:
		c.Detail = cfg.Validator.Mode
	}
	return c
}

func checkPublisher(cfg *config.Config) Check {
	c := Check{Name: "publisher"}
	if cfg.Publisher.Mode == "remote" {
		c.OK = true
		c.Detail = fmt.Sprintf("remote function %q", cfg.Publisher.Function)
		return c
	}
	if os.Getenv(cfg.Publisher.TokenEnv) == "" {
		c.Detail = fmt.Sprintf("environment variable %s is empty; the GitHub publisher cannot authenticate", cfg.Publisher.TokenEnv)
		return c
	}
	c.OK = true
	c.Detail = cfg.Publisher.TokenEnv + " is set"
	return c
}

func checkStore(dir string) Check {
	c := Check{Name: "state store"}
	if err := os.MkdirAll(dir, 0755); err != nil {
		c.Detail = fmt.Sprintf("cannot create %s: %v", dir, err)
		return c
	}
	probe := filepath.Join(dir, ".doctor-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		c.Detail = fmt.Sprintf("cannot write to %s: %v", dir, err)
		return c
	}
	os.Remove(probe)
	c.OK = true
	c.Detail = dir + " is writable"
	return c
}

func checkPrompts(dir string) Check {
	c := Check{Name: "prompts"}
	if dir == "" {
		c.OK = true
		c.Detail = "using builtin prompts"
		return c
	}
	info, err := os.Stat(dir)
	if err != nil {
		c.Detail = fmt.Sprintf("prompts-dir %s does not exist", dir)
		return c
	}
	if !info.IsDir() {
		c.Detail = fmt.Sprintf("prompts-dir %s is not a directory", dir)
		return c
	}
	c.OK = true
	overrides := overrideNames(dir)
	if len(overrides) == 0 {
		c.Detail = fmt.Sprintf("%s (no overrides, builtin prompts apply)", dir)
	} else {
		c.Detail = fmt.Sprintf("%s (overrides: %s)", dir, strings.Join(overrides, ", "))
	}
	return c
}

// overrideNames lists the prompt steps overridden by <step>.txt files.
func overrideNames(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if name, ok := strings.CutSuffix(e.Name(), ".txt"); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
