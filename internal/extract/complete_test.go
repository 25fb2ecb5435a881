package extract

import (
	"strings"
	"testing"
)

const deployGuardWorkflow = `name: ci
on: push
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - run: make test
  deploy:
    runs-on: ubuntu-latest
    needs: build
    steps:
      - run: |
          if [ -z "$TARGET" ]; then
            echo "no deploy target configured"
            exit 1`

const deployActionWorkflow = `name: ci
on: push
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - run: make test
  deploy:
    runs-on: ubuntu-latest
    needs: build
    steps:
      - run: kubectl apply -f k8s/`

func TestCheckCompleteWorkflow(t *testing.T) {
	a := Check(Artifact{Content: sampleWorkflow}, DefaultLimits())
	if !a.Complete {
		t.Fatalf("Complete = false, Reason = %q", a.Reason)
	}
	if a.Reason != "" {
		t.Fatalf("Reason = %q, want empty", a.Reason)
	}
}

func TestCheckDeployWithAction(t *testing.T) {
	a := Check(Artifact{Content: deployActionWorkflow}, DefaultLimits())
	if !a.Complete {
		t.Fatalf("Complete = false, Reason = %q", a.Reason)
	}
}

func TestCheckGuardClauseRejected(t *testing.T) {
	a := Check(Artifact{Content: deployGuardWorkflow}, DefaultLimits())
	if a.Complete {
		t.Fatalf("Complete = true, want false: deploy job ends in a guard with no action")
	}
	if !strings.Contains(a.Reason, "no recognizable action") {
		t.Fatalf("Reason = %q, want terminal-action diagnostic", a.Reason)
	}
}

func TestCheckIncomplete(t *testing.T) {
	long := func(last string) string {
		return "name: ci\non: push\njobs:\n  build:\n    runs-on: ubuntu-latest\n    steps:\n" + last
	}

	tests := []struct {
		name       string
		artifact   Artifact
		wantReason string
	}{
		{
			name:       "empty",
			artifact:   Artifact{},
			wantReason: "no artifact content",
		},
		{
			name:       "too short",
			artifact:   Artifact{Content: "name: ci\non: push"},
			wantReason: "too short",
		},
		{
			name:       "unterminated fence",
			artifact:   Artifact{Content: sampleWorkflow, Unterminated: true},
			wantReason: "never closed",
		},
		{
			name:       "unclosed quote",
			artifact:   Artifact{Content: long(`      - run: echo "deploying`)},
			wantReason: "unclosed quote",
		},
		{
			name:       "unbalanced braces",
			artifact:   Artifact{Content: long("      - run: echo ${{ github.sha")},
			wantReason: "unbalanced braces",
		},
		{
			name: "unclosed expression above the tail",
			artifact: Artifact{Content: "name: ci\non: push\nenv:\n  SHA: ${{ github.sha\njobs:\n" +
				"  build:\n    runs-on: ubuntu-latest\n    steps:\n      - run: make test"},
			wantReason: "unclosed ${{",
		},
		{
			name: "truncated deploy section",
			artifact: Artifact{Content: "name: ci\non: push\njobs:\n  build:\n    runs-on: ubuntu-latest\n" +
				"    steps:\n      - run: make test\n  deploy:\n    runs-on: ubuntu-latest"},
			wantReason: "output likely truncated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Check(tt.artifact, DefaultLimits())
			if got.Complete {
				t.Fatalf("Complete = true, want false")
			}
			if !strings.Contains(got.Reason, tt.wantReason) {
				t.Fatalf("Reason = %q, want substring %q", got.Reason, tt.wantReason)
			}
		})
	}
}

func TestCheckCustomLimits(t *testing.T) {
	lim := DefaultLimits()
	lim.TerminalSection = "release"
	lim.TerminalKeywords = []string{"gh release create"}

	content := deployGuardWorkflow + "\n  release:\n    runs-on: ubuntu-latest\n    steps:\n      - run: gh release create v1"
	a := Check(Artifact{Content: content}, lim)
	if !a.Complete {
		t.Fatalf("Complete = false, Reason = %q", a.Reason)
	}

	lim.TerminalSection = ""
	a = Check(Artifact{Content: deployGuardWorkflow}, lim)
	if !a.Complete {
		t.Fatalf("Complete = false with section check disabled, Reason = %q", a.Reason)
	}
}
