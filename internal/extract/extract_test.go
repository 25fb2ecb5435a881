package extract

import (
	"strings"
	"testing"
)

const sampleWorkflow = `name: ci
on:
  push:
    branches: [main]
jobs:
  build:
    runs-on: ubuntu-latest
    steps:
      - uses: actions/checkout@v4
      - run: make test`

func TestExtractFenced(t *testing.T) {
	raw := "Here is the pipeline you asked for:\n\n```yaml\n" + sampleWorkflow + "\n```\n\nLet me know if you need changes."

	a := Extract(raw)
	if !a.Fenced {
		t.Fatalf("Fenced = false, want true")
	}
	if a.Unterminated {
		t.Fatalf("Unterminated = true, want false")
	}
	if a.Content != sampleWorkflow {
		t.Fatalf("Content = %q, want %q", a.Content, sampleWorkflow)
	}
}

func TestExtractFencedNoLanguageTag(t *testing.T) {
	raw := "```\n" + sampleWorkflow + "\n```"

	a := Extract(raw)
	if !a.Fenced || a.Content != sampleWorkflow {
		t.Fatalf("Fenced = %v, Content = %q", a.Fenced, a.Content)
	}
}

func TestExtractFirstFenceWins(t *testing.T) {
	raw := "```yaml\nname: first\non: push\n```\n\nAnd an alternative:\n\n```yaml\nname: second\n```"

	a := Extract(raw)
	if !strings.Contains(a.Content, "name: first") {
		t.Fatalf("Content = %q, want first block", a.Content)
	}
	if strings.Contains(a.Content, "second") {
		t.Fatalf("Content = %q leaked second block", a.Content)
	}
}

func TestExtractUnterminatedFence(t *testing.T) {
	raw := "```yaml\nname: ci\non: push\njobs:\n  build:"

	a := Extract(raw)
	if !a.Fenced {
		t.Fatalf("Fenced = false, want true")
	}
	if !a.Unterminated {
		t.Fatalf("Unterminated = false, want true")
	}
	if !strings.HasPrefix(a.Content, "name: ci") {
		t.Fatalf("Content = %q, want capture to end of text", a.Content)
	}
}

func TestExtractBare(t *testing.T) {
	raw := "Sure. The workflow below covers build and test.\n\n" + sampleWorkflow + "\n\n## Notes\nPin your action versions."

	a := Extract(raw)
	if a.Fenced {
		t.Fatalf("Fenced = true, want false")
	}
	if a.Content != sampleWorkflow {
		t.Fatalf("Content = %q, want %q", a.Content, sampleWorkflow)
	}
}

func TestExtractBareKeepsYAMLComments(t *testing.T) {
	raw := "name: ci\n# run on every push\non: push\njobs:\n  build:\n    runs-on: ubuntu-latest\n    steps:\n      - run: make"

	a := Extract(raw)
	if !strings.Contains(a.Content, "# run on every push") {
		t.Fatalf("Content = %q, want YAML comment kept", a.Content)
	}
}

func TestExtractBareStopsAtProseMarker(t *testing.T) {
	raw := "on: push\njobs:\n  build:\n    steps:\n      - run: make\n#Note that you should adjust the branch filter."

	a := Extract(raw)
	if strings.Contains(a.Content, "adjust the branch") {
		t.Fatalf("Content = %q captured trailing prose", a.Content)
	}
}

func TestExtractNothing(t *testing.T) {
	a := Extract("I could not produce a workflow for this repository.")
	if a.Content != "" {
		t.Fatalf("Content = %q, want empty", a.Content)
	}
}
