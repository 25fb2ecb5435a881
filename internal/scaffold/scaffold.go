package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pipewright/pipewright/internal/ux"
)

var configTemplate = `# pipewright task configuration.
# Each step names an agent or function exposed by your gateway.
# Remove a step to skip its stage; generate is always required.

gateway:
  agent-url: http://localhost:8080
  function-url: http://localhost:9090

steps:
  ingest: repo-ingest
  scan: repo-scanner
  analyze: dependency-analyzer
  design: pipeline-designer
  security: security-reviewer
  generate: yaml-generator
  publish: github-publisher

task:
  base-branch: main
  head-branch: pipewright/ci-pipeline
  artifacts:
    - path: .github/workflows/ci.yml
  # Pull requests open as drafts unless you set draft: false.

validator:
  mode: builtin   # builtin, actionlint, or remote
  level: normal   # lenient, normal, or strict

publisher:
  mode: github
  token-env: GITHUB_TOKEN

retry:
  max-attempts: 3
  backoff-base: 2
  max-backoff: 30

generation:
  max-attempts: 3

store:
  dir: .pipewright/tasks

prompts-dir: .pipewright/prompts
`

var scanPromptTemplate = `Analyze the repository $REPO_URL (branch: $BRANCH).

Manifest files found in the repository:
$MANIFESTS

Identify the languages, frameworks, build tools, test commands, and any
infrastructure definitions. Report what a CI pipeline for this repository
must build, test, and package. Call out anything that needs credentials.
`

// Init writes a starter pipewright.yaml plus an example prompt override
// into targetDir.
func Init(targetDir string) error {
	configPath := filepath.Join(targetDir, "pipewright.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("pipewright.yaml already exists in %s", targetDir)
	}

	promptsDir := filepath.Join(targetDir, ".pipewright", "prompts")
	if err := os.MkdirAll(promptsDir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", promptsDir, err)
	}

	if err := os.WriteFile(configPath, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing pipewright.yaml: %w", err)
	}

	promptPath := filepath.Join(promptsDir, "scan.txt")
	if err := os.WriteFile(promptPath, []byte(scanPromptTemplate), 0644); err != nil {
		return fmt.Errorf("writing scan.txt: %w", err)
	}

	fmt.Printf("\n%s%s✓ Initialized pipewright%s\n\n", ux.Bold, ux.Green, ux.Reset)
	fmt.Printf("  Created:\n")
	fmt.Printf("    %spipewright.yaml%s              task configuration\n", ux.Cyan, ux.Reset)
	fmt.Printf("    %s.pipewright/prompts/scan.txt%s example prompt override\n\n", ux.Cyan, ux.Reset)
	fmt.Printf("  Next steps:\n")
	fmt.Printf("    1. Point %sgateway%s at your agent and function endpoints\n", ux.Cyan, ux.Reset)
	fmt.Printf("    2. Export the token named by %spublisher.token-env%s\n", ux.Cyan, ux.Reset)

	if repo := DetectRepoURL(targetDir); repo != "" {
		fmt.Printf("    3. Run %spipewright run %s%s\n\n", ux.Cyan, repo, ux.Reset)
	} else {
		fmt.Printf("    3. Run %spipewright run <repo-url>%s\n\n", ux.Cyan, ux.Reset)
	}

	return nil
}
