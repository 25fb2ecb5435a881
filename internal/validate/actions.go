package validate

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Level controls how findings from the builtin validator are graded.
type Level string

const (
	LevelStrict  Level = "strict"  // warnings count as errors
	LevelNormal  Level = "normal"  // structural problems are errors, style findings warn
	LevelLenient Level = "lenient" // only unparseable or shapeless documents fail
)

// ActionsValidator is the builtin structural check for workflow definitions.
// It verifies the document shape without talking to anything external.
type ActionsValidator struct {
	Level Level
}

func (v *ActionsValidator) Validate(_ context.Context, content string) (*Verdict, error) {
	var fatal, structural, warnings []string

	var doc map[string]any
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		fatal = append(fatal, fmt.Sprintf("not valid YAML: %v", err))
		return v.grade(fatal, structural, warnings), nil
	}
	if doc == nil {
		fatal = append(fatal, "document is empty")
		return v.grade(fatal, structural, warnings), nil
	}

	if _, ok := doc["name"]; !ok {
		warnings = append(warnings, "workflow has no name")
	}
	if _, ok := doc["on"]; !ok {
		fatal = append(fatal, "missing required key: on")
	}

	jobsVal, ok := doc["jobs"]
	if !ok {
		fatal = append(fatal, "missing required key: jobs")
	} else if jobs, ok := jobsVal.(map[string]any); !ok || len(jobs) == 0 {
		fatal = append(fatal, "jobs must be a non-empty mapping")
	} else {
		for _, name := range sortedKeys(jobs) {
			structural = append(structural, checkJob(name, jobs[name])...)
			warnings = append(warnings, scanPermissions(jobs[name], fmt.Sprintf("job %q", name))...)
		}
	}

	warnings = append(warnings, scanSecrets(content)...)
	warnings = append(warnings, scanPermissions(doc, "workflow")...)

	return v.grade(fatal, structural, warnings), nil
}

// grade folds the three finding tiers into a verdict according to the level.
func (v *ActionsValidator) grade(fatal, structural, warnings []string) *Verdict {
	errs := append([]string{}, fatal...)
	switch v.Level {
	case LevelLenient:
		warnings = append(warnings, structural...)
	case LevelStrict:
		errs = append(errs, structural...)
		errs = append(errs, warnings...)
		warnings = nil
	default:
		errs = append(errs, structural...)
	}
	return &Verdict{Valid: len(errs) == 0, Errors: errs, Warnings: warnings}
}

func checkJob(name string, val any) []string {
	job, ok := val.(map[string]any)
	if !ok {
		return []string{fmt.Sprintf("job %q must be a mapping", name)}
	}
	if _, reusable := job["uses"]; reusable {
		// Calls a reusable workflow; runs-on and steps do not apply.
		return nil
	}

	var errs []string
	if _, ok := job["runs-on"]; !ok {
		errs = append(errs, fmt.Sprintf("job %q has no runs-on", name))
	}
	steps, ok := job["steps"].([]any)
	if !ok || len(steps) == 0 {
		errs = append(errs, fmt.Sprintf("job %q has no steps", name))
		return errs
	}
	for i, s := range steps {
		step, ok := s.(map[string]any)
		if !ok {
			errs = append(errs, fmt.Sprintf("job %q step %d must be a mapping", name, i+1))
			continue
		}
		_, hasUses := step["uses"]
		_, hasRun := step["run"]
		if !hasUses && !hasRun {
			errs = append(errs, fmt.Sprintf("job %q step %d needs uses or run", name, i+1))
		}
	}
	return errs
}

var secretRe = regexp.MustCompile(`(?i)(password|passwd|token|secret|api[_-]?key|private[_-]?key)\s*[:=]\s*["']?[A-Za-z0-9+/=_-]{8,}`)

// scanSecrets flags lines that look like literal credentials. Lines using
// the ${{ secrets.* }} expression syntax are the correct form and pass.
func scanSecrets(content string) []string {
	var warnings []string
	for i, line := range strings.Split(content, "\n") {
		if strings.Contains(line, "${{") {
			continue
		}
		if secretRe.MatchString(line) {
			warnings = append(warnings, fmt.Sprintf("line %d may contain a hardcoded secret", i+1))
		}
	}
	return warnings
}

// scanPermissions warns about write grants that let a generated pipeline
// push code or mint identity tokens.
func scanPermissions(val any, scope string) []string {
	node, ok := val.(map[string]any)
	if !ok {
		return nil
	}
	perms, ok := node["permissions"].(map[string]any)
	if !ok {
		return nil
	}
	var warnings []string
	for _, key := range []string{"contents", "id-token"} {
		if grant, ok := perms[key].(string); ok && grant == "write" {
			warnings = append(warnings, fmt.Sprintf("%s requests %s: write", scope, key))
		}
	}
	return warnings
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
