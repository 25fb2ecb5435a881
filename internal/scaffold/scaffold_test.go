package scaffold

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pipewright/pipewright/internal/config"
)

func TestInit_CreatesFiles(t *testing.T) {
	dir := t.TempDir()
	if err := Init(dir); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	for _, path := range []string{
		"pipewright.yaml",
		filepath.Join(".pipewright", "prompts", "scan.txt"),
	} {
		info, err := os.Stat(filepath.Join(dir, path))
		if err != nil {
			t.Fatalf("%s not created: %v", path, err)
		}
		if info.Size() == 0 {
			t.Fatalf("%s is empty", path)
		}
	}
}

func TestInit_GeneratedConfigIsValid(t *testing.T) {
	dir := t.TempDir()
	if err := Init(dir); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	cfg, err := config.Load(filepath.Join(dir, "pipewright.yaml"))
	if err != nil {
		t.Fatalf("config.Load failed on generated config: %v", err)
	}
	if cfg.StepRef("generate") != "yaml-generator" {
		t.Fatalf("steps = %+v", cfg.Steps)
	}
	if cfg.PromptsDir != filepath.Join(dir, ".pipewright", "prompts") {
		t.Fatalf("prompts-dir = %q", cfg.PromptsDir)
	}
	if len(cfg.Task.Artifacts) != 1 {
		t.Fatalf("artifacts = %+v", cfg.Task.Artifacts)
	}
}

func TestInit_FailsIfConfigExists(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pipewright.yaml"), []byte("steps: {}"), 0644); err != nil {
		t.Fatal(err)
	}

	err := Init(dir)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected already-exists error, got %v", err)
	}
}

func TestDetectRepoURL(t *testing.T) {
	dir := t.TempDir()
	gitDir := filepath.Join(dir, ".git")
	if err := os.MkdirAll(gitDir, 0755); err != nil {
		t.Fatal(err)
	}
	conf := `[core]
	repositoryformatversion = 0
[remote "upstream"]
	url = https://github.com/other/repo.git
[remote "origin"]
	url = git@github.com:acme/svc.git
	fetch = +refs/heads/*:refs/remotes/origin/*
`
	if err := os.WriteFile(filepath.Join(gitDir, "config"), []byte(conf), 0644); err != nil {
		t.Fatal(err)
	}

	if got := DetectRepoURL(dir); got != "git@github.com:acme/svc.git" {
		t.Fatalf("DetectRepoURL() = %q", got)
	}
}

func TestDetectRepoURL_NoGitDir(t *testing.T) {
	if got := DetectRepoURL(t.TempDir()); got != "" {
		t.Fatalf("DetectRepoURL() = %q, want empty", got)
	}
}
