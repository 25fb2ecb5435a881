package validate

import (
	"context"
	"strings"
	"testing"
)

const validWorkflow = `name: ci
on:
  push:
    branches: [main]
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4
      - run: make test
`

func runActions(t *testing.T, level Level, content string) *Verdict {
	t.Helper()
	v := &ActionsValidator{Level: level}
	verdict, err := v.Validate(context.Background(), content)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	return verdict
}

func containsSubstring(list []string, sub string) bool {
	for _, s := range list {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func TestActionsValid(t *testing.T) {
	verdict := runActions(t, LevelNormal, validWorkflow)
	if !verdict.Valid {
		t.Fatalf("Valid = false, errors = %v", verdict.Errors)
	}
	if len(verdict.Warnings) != 0 {
		t.Fatalf("Warnings = %v, want none", verdict.Warnings)
	}
}

func TestActionsStructuralErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "not yaml",
			content: "jobs: [unclosed",
			wantErr: "not valid YAML",
		},
		{
			name:    "missing on",
			content: "name: ci\njobs:\n  build:\n    runs-on: ubuntu-latest\n    steps:\n      - run: make\n",
			wantErr: "missing required key: on",
		},
		{
			name:    "missing jobs",
			content: "name: ci\non: push\n",
			wantErr: "missing required key: jobs",
		},
		{
			name:    "empty jobs",
			content: "name: ci\non: push\njobs: {}\n",
			wantErr: "non-empty mapping",
		},
		{
			name:    "job without runs-on",
			content: "name: ci\non: push\njobs:\n  build:\n    steps:\n      - run: make\n",
			wantErr: `job "build" has no runs-on`,
		},
		{
			name:    "job without steps",
			content: "name: ci\non: push\njobs:\n  build:\n    runs-on: ubuntu-latest\n",
			wantErr: `job "build" has no steps`,
		},
		{
			name:    "step without uses or run",
			content: "name: ci\non: push\njobs:\n  build:\n    runs-on: ubuntu-latest\n    steps:\n      - name: noop\n",
			wantErr: "step 1 needs uses or run",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := runActions(t, LevelNormal, tt.content)
			if verdict.Valid {
				t.Fatalf("Valid = true, want false")
			}
			if !containsSubstring(verdict.Errors, tt.wantErr) {
				t.Fatalf("Errors = %v, want one containing %q", verdict.Errors, tt.wantErr)
			}
		})
	}
}

func TestActionsReusableWorkflowJob(t *testing.T) {
	content := "name: ci\non: push\njobs:\n  shared:\n    uses: acme/workflows/.github/workflows/ci.yml@main\n"
	verdict := runActions(t, LevelNormal, content)
	if !verdict.Valid {
		t.Fatalf("Valid = false, errors = %v", verdict.Errors)
	}
}

func TestActionsMissingNameWarns(t *testing.T) {
	content := "on: push\njobs:\n  build:\n    runs-on: ubuntu-latest\n    steps:\n      - run: make\n"
	verdict := runActions(t, LevelNormal, content)
	if !verdict.Valid {
		t.Fatalf("Valid = false, errors = %v", verdict.Errors)
	}
	if !containsSubstring(verdict.Warnings, "no name") {
		t.Fatalf("Warnings = %v, want name warning", verdict.Warnings)
	}
}

func TestActionsSecretScan(t *testing.T) {
	hardcoded := validWorkflow + "      - run: export API_TOKEN=abcdef123456\n"
	verdict := runActions(t, LevelNormal, hardcoded)
	if !containsSubstring(verdict.Warnings, "hardcoded secret") {
		t.Fatalf("Warnings = %v, want secret warning", verdict.Warnings)
	}

	proper := validWorkflow + "        env:\n          API_TOKEN: ${{ secrets.API_TOKEN }}\n"
	verdict = runActions(t, LevelNormal, proper)
	if containsSubstring(verdict.Warnings, "hardcoded secret") {
		t.Fatalf("Warnings = %v, expression form should not warn", verdict.Warnings)
	}
}

func TestActionsPermissionScan(t *testing.T) {
	content := "name: ci\non: push\npermissions:\n  contents: write\n  id-token: write\njobs:\n" +
		"  build:\n    runs-on: ubuntu-latest\n    permissions:\n      contents: write\n    steps:\n      - run: make\n"
	verdict := runActions(t, LevelNormal, content)
	if !verdict.Valid {
		t.Fatalf("Valid = false, errors = %v", verdict.Errors)
	}

	var grants int
	for _, w := range verdict.Warnings {
		if strings.Contains(w, ": write") {
			grants++
		}
	}
	if grants != 3 {
		t.Fatalf("write grant warnings = %d (%v), want 3", grants, verdict.Warnings)
	}
}

func TestActionsLevels(t *testing.T) {
	missingName := "on: push\njobs:\n  build:\n    runs-on: ubuntu-latest\n    steps:\n      - run: make\n"
	verdict := runActions(t, LevelStrict, missingName)
	if verdict.Valid {
		t.Fatalf("strict: Valid = true, want warnings promoted to errors")
	}
	if len(verdict.Warnings) != 0 {
		t.Fatalf("strict: Warnings = %v, want none", verdict.Warnings)
	}

	noRunsOn := "name: ci\non: push\njobs:\n  build:\n    steps:\n      - run: make\n"
	verdict = runActions(t, LevelLenient, noRunsOn)
	if !verdict.Valid {
		t.Fatalf("lenient: Valid = false, errors = %v", verdict.Errors)
	}
	if !containsSubstring(verdict.Warnings, "runs-on") {
		t.Fatalf("lenient: Warnings = %v, want demoted structural finding", verdict.Warnings)
	}

	noTriggers := "name: ci\njobs:\n  build:\n    runs-on: ubuntu-latest\n    steps:\n      - run: make\n"
	verdict = runActions(t, LevelLenient, noTriggers)
	if verdict.Valid {
		t.Fatalf("lenient: Valid = true, missing on must still fail")
	}
}
