package prompt

// Builtin step templates. Overrides live in the prompts directory as
// <step>.txt files with the same $VAR placeholders.
var builtin = map[string]string{
	"scan":     scanTemplate,
	"design":   designTemplate,
	"security": securityTemplate,
	"generate": generateTemplate,
	"publish":  publishTemplate,
}

const scanTemplate = `Analyze the repository $REPO_URL (branch: $BRANCH).

Manifest files found in the repository:
$MANIFESTS

Identify the languages, frameworks, build tools, test commands, and any
infrastructure definitions. Report what a CI pipeline for this repository
must build, test, and package.`

const designTemplate = `Design a CI/CD pipeline for the repository described below.

Repository scan:
$SCAN_REPORT

Static analysis findings:
$ANALYSIS

Lay out the pipeline stages in order (build, test, scan, package, deploy as
applicable), name the tools each stage should use, and state which stages can
run in parallel.`

const securityTemplate = `Review this pipeline design for security and compliance.

Pipeline design:
$DESIGN

Static analysis findings:
$ANALYSIS

Make sure the design covers dependency and static analysis scanning, secret
scanning, pinned action versions, and least-privilege permissions. List every
change the design needs, or state that it is sound.`

const generateTemplate = `Generate the complete GitHub Actions workflow for $ARTIFACT_PATH.

Pipeline design:
$DESIGN

Security review:
$SECURITY_NOTES

Output one fenced yaml code block containing the entire workflow file.
Reference credentials through the secrets expression context, never as
literal values. The file must be complete: every job finished, every step
with uses or run.`

const publishTemplate = `Publish the generated pipeline to $REPO_URL.

Create branch $HEAD_BRANCH from $BASE_BRANCH, commit these files, and open a
pull request describing the pipeline stages and the secrets the repository
needs configured:

$ARTIFACTS

Report each operation you perform.`
