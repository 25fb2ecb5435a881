package docs

var topics = []Topic{
	{
		Name:    "quickstart",
		Title:   "Quick Start",
		Summary: "Getting started with pipewright",
		Content: topicQuickstart,
	},
	{
		Name:    "config",
		Title:   "Configuration Reference",
		Summary: "pipewright.yaml schema, fields, and defaults",
		Content: topicConfig,
	},
	{
		Name:    "pipeline",
		Title:   "Pipeline Stages",
		Summary: "The seven stages, agent and function steps, and the generation loop",
		Content: topicPipeline,
	},
	{
		Name:    "prompts",
		Title:   "Prompt Templates",
		Summary: "Builtin prompts, overrides, and template variables",
		Content: topicPrompts,
	},
	{
		Name:    "recovery",
		Title:   "Failures and Recovery",
		Summary: "Error classes, retries, fallback publishing, and the task store",
		Content: topicRecovery,
	},
}

const topicQuickstart = `Quick Start
===========

1. Initialize a project:

    cd your-project
    pipewright init

   This creates pipewright.yaml and .pipewright/prompts/scan.txt.

2. Edit pipewright.yaml: point gateway.agent-url (and function-url if
   you use function steps) at your gateways, and map pipeline stages to
   step refs under steps.

3. Export a GitHub token for the publisher:

    export GITHUB_TOKEN=ghp_...

4. Check the setup:

    pipewright doctor

5. Run the pipeline against a repository:

    pipewright run https://github.com/acme/svc

6. Inspect progress and results:

    pipewright status
    pipewright status <task-id>

CLI Commands
------------

  pipewright run <repo-url>            Run the pipeline for a repository
  pipewright run <repo-url> --branch B Analyze branch B instead of the default
  pipewright status                    List all recorded tasks
  pipewright status <task-id>          Show one task with its step trail
  pipewright init                      Scaffold pipewright.yaml and prompts
  pipewright doctor                    Preflight checks against the config
  pipewright docs                      List documentation topics
  pipewright docs <topic>              Show a documentation topic

The --config flag selects an alternate config file (default:
pipewright.yaml). --verbose enables debug logging on stderr.
`

const topicConfig = `Configuration Reference
=======================

Pipelines are configured in pipewright.yaml.

task
----

  base-branch      string  Branch the pull request targets. Default: main.
  head-branch      string  Branch the workflow files are pushed to.
                           Default: pipewright/ci-pipeline. Must differ
                           from base-branch.
  commit-message   string  Commit message for generated files. Defaults
                           to "Add <path>" per file.
  pr-title         string  Default: "Add CI pipeline".
  pr-body          string  Default: "Automated CI pipeline generated by
                           pipewright."
  draft            bool    Open the pull request as a draft. Default: true.
  artifacts        list    Workflow files to generate. Each entry has a
                           path relative to the repository root. Paths
                           must be unique and must not escape the
                           repository. Default: .github/workflows/ci.yml.

gateway
-------

  agent-url         string  Required. Base URL of the agent gateway.
  function-url      string  Base URL of the function gateway. Required
                            when any function stage has a step ref, or
                            when the validator or publisher mode is
                            "remote".
  connect-timeout   int     Seconds. Default: 10.
  agent-timeout     int     Seconds per agent invocation. Default: 120.
  function-timeout  int     Seconds per function invocation. Default: 60.

steps
-----

Maps stage names to remote step refs:

  steps:
    ingest: repo-ingest
    scan: repo-scanner
    analyze: dependency-analyzer
    design: pipeline-designer
    security: security-reviewer
    generate: yaml-generator
    publish: github-publisher

Unknown stage names are rejected. The generate stage is required; any
other stage left without a ref is skipped. A missing publish ref means
the publisher gateway performs the branch, commit, and pull request
directly with no agent involved.

retry
-----

  max-attempts   int  Attempts per remote call. Default: 3. Minimum: 1.
  backoff-base   int  Seconds; doubles per attempt. Default: 2.
  max-backoff    int  Seconds; backoff ceiling. Default: 30. Must be
                      at least backoff-base.

generation
----------

  max-attempts        int     Generation attempts per artifact. Default: 3.
  min-length          int     Minimum artifact length in bytes. Default: 80.
  terminal-section    string  Section whose presence marks a complete
                              workflow. Default: deploy.
  terminal-keywords   list    Keywords that identify the terminal section.
  min-terminal-lines  int     Minimum lines expected after the terminal
                              section starts. Default: 3.

validator
---------

  mode      string  builtin, actionlint, or remote. Default: builtin.
  level     string  lenient, normal, or strict. Default: normal.
                    lenient fails only unparseable documents, normal
                    treats structural problems as errors, strict also
                    promotes warnings to errors. Applies to the builtin
                    validator.
  function  string  Step ref for the remote validator. Required when
                    mode is remote.

publisher
---------

  mode       string  github or remote. Default: github.
  host       string  GitHub host for GitHub Enterprise. Default:
                     github.com.
  token-env  string  Environment variable holding the API token.
                     Default: GITHUB_TOKEN.
  function   string  Step ref for the remote publisher. Required when
                     mode is remote.

store
-----

  dir  string  Directory for task records. Default: .pipewright/tasks.

prompts-dir
-----------

Directory holding prompt overrides. A file named <step>.txt replaces
the builtin prompt for that step. See: pipewright docs prompts.

Example Config
--------------

  gateway:
    agent-url: http://localhost:8080
    function-url: http://localhost:9090

  steps:
    ingest: repo-ingest
    scan: repo-scanner
    design: pipeline-designer
    generate: yaml-generator
    publish: github-publisher

  task:
    base-branch: main
    head-branch: pipewright/ci-pipeline
    artifacts:
      - path: .github/workflows/ci.yml

  validator:
    mode: builtin
    level: normal

  publisher:
    mode: github
    token-env: GITHUB_TOKEN
`

const topicPipeline = `Pipeline Stages
===============

Every run walks the same seven stages in order:

  1. ingest     function  required   Fetch repository manifests
  2. scan       agent     required   Describe the codebase and toolchain
  3. analyze    function  optional   Structured dependency analysis
  4. design     agent     required   Plan the CI pipeline
  5. security   agent     optional   Review the design for hardening
  6. generate   agent     required   Produce the workflow files
  7. publish    agent     required   Open the pull request

Agent stages send a rendered prompt to the agent gateway and keep the
completion text. Function stages post a JSON payload to the function
gateway and keep the returned payload. Each stage's output feeds the
prompts of the stages after it.

Required vs Optional
--------------------

When a required stage fails, the task stops with status "failed" and
the failing stage is recorded in the summary. When an optional stage
fails, a warning is printed and the run continues; later prompts see
an empty value for that stage's output.

A stage with no step ref in the config is skipped, with two
exceptions: generate refuses to run without a ref, and publish without
a ref skips the agent and goes straight to direct publishing.

Sessions and Retries
--------------------

Each stage invocation carries a session id of <task-id>-<stage> so the
remote side can correlate calls. Transport retries (see: pipewright
docs recovery) append #r2, #r3, and so on to start clean sessions.

The Generation Loop
-------------------

The generate stage runs once per configured artifact. Each attempt:

  1. Renders the generate prompt for the artifact path.
  2. Invokes the agent. The response may wrap the workflow in a
     fenced code block; the extractor unwraps it.
  3. Checks completeness: minimum length, no unterminated fence, no
     mid-structure truncation, and a terminal section when the design
     calls for one.
  4. Validates the artifact with the configured validator.
  5. On rejection, re-prompts with the rejection reasons appended and
     a fresh session (<task-id>-generate-a2, -a3, ...).

Attempts beyond the first are recorded as generate_<name>#N steps.
When generation.max-attempts is exhausted, the task fails.

Publishing
----------

The publish agent is asked to create the branch, commit the files, and
open the pull request, reporting each operation it performed. The
reconciler audits the reported operations and performs any missing
ones itself through the publisher gateway: create_branch, then
create_file per artifact, then create_pr. An agent refusal or failure
is not fatal; the fallback covers the full sequence. If a pull request
for the head branch already exists, the run records a warning and
completes.
`

const topicPrompts = `Prompt Templates
================

Each agent stage has a builtin prompt template. A prompts directory
(prompts-dir in pipewright.yaml) can override any of them with a file
named <step>.txt, e.g. prompts/scan.txt. Overrides replace the builtin
entirely.

Template Variables
------------------

Templates reference variables with $VAR or ${VAR} syntax. Unknown
names fall back to the process environment.

  $REPO_URL        Repository URL passed to pipewright run.
  $BRANCH          Branch under analysis.
  $MANIFESTS       Ingest output (manifest listing).
  $SCAN_REPORT     Scan stage completion text.
  $ANALYSIS        Analyze stage payload.
  $DESIGN          Design stage completion text.
  $SECURITY_NOTES  Security stage completion text.
  $ARTIFACT_PATH   Path of the artifact being generated (generate only).
  $ARTIFACTS       Bullet list of every configured artifact path.
  $HEAD_BRANCH     Branch the files are pushed to.
  $BASE_BRANCH     Branch the pull request targets.

Stages that have not run (skipped or failed optional stages) expand to
an empty string.

Regeneration Feedback
---------------------

When a generated artifact is rejected, the next attempt re-renders the
base prompt and appends a "Previous attempt rejected" section listing
the rejection reasons, followed by an instruction to produce the full
file from scratch. Overridden generate prompts receive the same
treatment.
`

const topicRecovery = `Failures and Recovery
=====================

Error Classes
-------------

Remote steps classify failures:

  throttled                Rate limited upstream.        retried
  transient_service_error  Temporary gateway/step fault. retried
  dependency_failed        Upstream dependency fault.    retried
  bad_request              Malformed or rejected input.  permanent
  auth_failed              Credentials rejected.         permanent
  not_found                Unknown step ref or resource. permanent
  unknown                  Anything unclassified.        permanent

Retries
-------

Retryable failures are re-attempted up to retry.max-attempts times
with exponential backoff (backoff-base doubling per attempt, capped at
max-backoff). Every retry starts a fresh session by appending #r2,
#r3, ... to the session id, so a wedged remote session is never
reused. Permanent failures stop immediately.

Stage Failure
-------------

A failed required stage marks the task "failed" with a summary of the
form "failed at <stage>: <reason>". Optional stages (analyze,
security) log a warning and the run continues. The full step trail,
including failed steps, is kept in the task record.

Fallback Publishing
-------------------

The publish agent's report is audited rather than trusted: any of
create_branch, create_file, or create_pr that the agent did not
perform is executed directly against the publisher gateway, in order.
Fallback operations appear in the step trail as fallback_<operation>.
If the pull request already exists for the head branch, the run warns
and completes successfully. Only a failed fallback operation fails the
task.

Task Store
----------

Every task is recorded as <task-id>.json under store.dir (default
.pipewright/tasks). The record holds the repository, branch, status
(pending, in_progress, completed, failed), a summary, timestamps, and
one entry per executed step with its result. Records are written
atomically after every step, so a crash mid-run leaves an inspectable
trail:

  pipewright status            List every recorded task
  pipewright status <task-id>  Show one task and its steps

A store write failure never aborts a run; the runner logs a warning
and continues with the in-memory record.

Preflight
---------

pipewright doctor checks the config, gateway URLs, validator and
publisher settings, store writability, and the prompts directory
before any run. Run it after editing pipewright.yaml.
`
