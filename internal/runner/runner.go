package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/pipewright/pipewright/internal/config"
	"github.com/pipewright/pipewright/internal/extract"
	"github.com/pipewright/pipewright/internal/generate"
	"github.com/pipewright/pipewright/internal/prompt"
	"github.com/pipewright/pipewright/internal/publish"
	"github.com/pipewright/pipewright/internal/reconcile"
	"github.com/pipewright/pipewright/internal/remote"
	"github.com/pipewright/pipewright/internal/retry"
	"github.com/pipewright/pipewright/internal/task"
	"github.com/pipewright/pipewright/internal/ux"
	"github.com/pipewright/pipewright/internal/validate"
)

// Runner drives one task through the pipeline stages.
type Runner struct {
	Config     *config.Config
	Agent      remote.Caller
	Function   remote.Caller
	Retrier    *retry.Controller
	Store      task.Store
	Prompts    *prompt.Builder
	Validator  *validate.Adapter
	Reconciler *reconcile.Reconciler
	Logger     *slog.Logger
}

// outputs threads each stage's product into the prompts of the stages
// after it.
type outputs struct {
	manifests string
	scan      string
	analysis  string
	design    string
	security  string
	files     []publish.File
	prURL     string
}

func (o *outputs) artifactList() string {
	var b strings.Builder
	for _, f := range o.files {
		fmt.Fprintf(&b, "- %s\n", f.Path)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes the pipeline for one task input. The returned task
// carries the full step audit trail even when the store is unavailable;
// a non-nil error means the task failed and names the offending stage.
func (r *Runner) Run(ctx context.Context, in task.Input) (*task.Task, error) {
	t := task.New(in)
	if err := r.Store.Create(t); err != nil {
		r.logger().Warn("state store unavailable", "op", "create", "task", t.ID, "error", err)
	}
	r.setStatus(t, task.StatusInProgress, "")

	refs := in.StepRefs
	if refs == nil {
		refs = r.Config.Steps
	}

	var out outputs
	total := len(config.Pipeline)
	for i, stage := range config.Pipeline {
		if err := ctx.Err(); err != nil {
			return r.fail(t, stage.Name, err)
		}

		ref := refs[stage.Name]
		if ref == "" && stage.Name != "publish" {
			// The publish stage still runs without an agent: the
			// reconciler performs the side effects directly.
			if stage.Name == "generate" {
				return r.fail(t, stage.Name, fmt.Errorf("no step ref configured"))
			}
			ux.StageSkip(i, stage.Name, "no step ref configured")
			continue
		}

		ux.StageHeader(i, total, stage.Name, stage.Kind)
		start := time.Now()

		var err error
		switch stage.Name {
		case "ingest":
			err = r.runIngest(ctx, t, ref, &out)
		case "scan":
			out.scan, err = r.runAgent(ctx, t, stage.Name, ref, r.vars(t, &out))
		case "analyze":
			err = r.runAnalyze(ctx, t, ref, &out)
		case "design":
			out.design, err = r.runAgent(ctx, t, stage.Name, ref, r.vars(t, &out))
		case "security":
			out.security, err = r.runAgent(ctx, t, stage.Name, ref, r.vars(t, &out))
		case "generate":
			err = r.runGenerate(ctx, t, ref, &out)
		case "publish":
			err = r.runPublish(ctx, t, ref, &out)
		default:
			err = fmt.Errorf("unknown stage %q", stage.Name)
		}

		if err != nil {
			ux.StageFail(i, stage.Name, err.Error())
			if !stage.Required {
				r.logger().Warn("optional stage failed; continuing", "stage", stage.Name, "error", err)
				continue
			}
			return r.fail(t, stage.Name, err)
		}
		ux.StageComplete(i, time.Since(start))
	}

	summary := "published"
	if out.prURL != "" {
		summary = "published " + out.prURL
	}
	r.setStatus(t, task.StatusCompleted, summary)
	ux.Success(t.ID, out.prURL)
	return t, nil
}

// runIngest fetches the repository manifests through the ingest function.
func (r *Runner) runIngest(ctx context.Context, t *task.Task, ref string, out *outputs) error {
	res, err := r.runFunction(ctx, t, "ingest", ref, map[string]any{
		"repo_url": t.Repo,
		"branch":   t.Branch,
	})
	if err != nil {
		return err
	}
	out.manifests = payloadText(res)
	return nil
}

// runAnalyze runs the optional dependency analysis function over the
// ingested manifests.
func (r *Runner) runAnalyze(ctx context.Context, t *task.Task, ref string, out *outputs) error {
	var manifests any
	if out.manifests != "" && json.Valid([]byte(out.manifests)) {
		manifests = json.RawMessage(out.manifests)
	} else if out.manifests != "" {
		manifests = out.manifests
	}
	res, err := r.runFunction(ctx, t, "analyze", ref, map[string]any{
		"repo_url":  t.Repo,
		"branch":    t.Branch,
		"manifests": manifests,
	})
	if err != nil {
		return err
	}
	out.analysis = payloadText(res)
	return nil
}

// runAgent performs one plain agent stage and returns its completion.
func (r *Runner) runAgent(ctx context.Context, t *task.Task, stage, ref string, vars map[string]string) (string, error) {
	input, err := r.Prompts.Render(stage, vars)
	if err != nil {
		return "", err
	}
	session := t.ID + "-" + stage
	res := r.Retrier.Do(ctx, session, func(ctx context.Context, at retry.Attempt) *remote.Result {
		return r.Agent.Invoke(ctx, remote.Call{Ref: ref, Session: at.Session, Input: input})
	})
	r.appendStep(t, task.Step{Name: stage, Result: res, At: time.Now().UTC()})
	if !res.OK() {
		return "", res.Err()
	}
	return res.Completion, nil
}

// runFunction performs one deterministic function stage.
func (r *Runner) runFunction(ctx context.Context, t *task.Task, stage, ref string, payload any) (*remote.Result, error) {
	if r.Function == nil {
		return nil, fmt.Errorf("function gateway not configured")
	}
	session := t.ID + "-" + stage
	res := r.Retrier.Do(ctx, session, func(ctx context.Context, at retry.Attempt) *remote.Result {
		return r.Function.Invoke(ctx, remote.Call{Ref: ref, Session: at.Session, Payload: payload})
	})
	r.appendStep(t, task.Step{Name: stage, Result: res, At: time.Now().UTC()})
	if !res.OK() {
		return nil, res.Err()
	}
	return res, nil
}

// runGenerate produces every configured artifact through the
// generation-validation loop.
func (r *Runner) runGenerate(ctx context.Context, t *task.Task, ref string, out *outputs) error {
	loop := &generate.Loop{
		Agent:     r.Agent,
		AgentRef:  ref,
		Retrier:   r.Retrier,
		Validator: r.Validator,
		Limits:    r.limits(),
		Logger:    r.Logger,
	}

	seen := make(map[string]int)
	for _, a := range r.Config.Task.Artifacts {
		stem := artifactStem(a.Path)
		seen[stem]++
		if seen[stem] > 1 {
			stem = fmt.Sprintf("%s_%d", stem, seen[stem])
		}
		stepName := "generate_" + stem

		vars := r.vars(t, out)
		vars["ARTIFACT_PATH"] = a.Path
		basePrompt, err := r.Prompts.Render("generate", vars)
		if err != nil {
			return err
		}

		artifact, steps, err := loop.Run(ctx, stepName, t.ID+"-"+stepName, basePrompt, r.Config.Generation.MaxAttempts)
		for _, s := range steps {
			r.appendStep(t, s)
		}
		if err != nil {
			return err
		}
		out.files = append(out.files, publish.File{
			Path:    a.Path,
			Content: artifact.Content,
			Message: r.Config.Task.CommitMessage,
		})
	}
	return nil
}

// runPublish asks the publish agent to land the artifacts, then
// reconciles whatever side effects it did not perform. An unreachable
// or refusing agent is not fatal here; only a failed fallback is.
func (r *Runner) runPublish(ctx context.Context, t *task.Task, ref string, out *outputs) error {
	repo, err := task.ParseRepoURL(t.Repo)
	if err != nil {
		return err
	}
	req := publish.Request{
		Repo:       repo,
		BaseBranch: r.Config.Task.BaseBranch,
		HeadBranch: r.Config.Task.HeadBranch,
		Files:      out.files,
		Title:      r.Config.Task.Title,
		Body:       r.Config.Task.Body,
		Draft:      r.Config.Task.IsDraft(),
	}

	var agentRes *remote.Result
	if ref != "" {
		input, err := r.Prompts.Render("publish", r.vars(t, out))
		if err != nil {
			return err
		}
		session := t.ID + "-publish"
		agentRes = r.Retrier.Do(ctx, session, func(ctx context.Context, at retry.Attempt) *remote.Result {
			return r.Agent.Invoke(ctx, remote.Call{Ref: ref, Session: at.Session, Input: input})
		})
		r.appendStep(t, task.Step{Name: "publish", Result: agentRes, At: time.Now().UTC()})
	}

	outcome := r.Reconciler.Reconcile(ctx, agentRes, req)
	for _, sr := range outcome.SubResults {
		ux.FallbackOp(sr.Name, repo.Slug())
		r.appendStep(t, task.Step{Name: "fallback_" + sr.Name, Result: sr.Result, At: time.Now().UTC()})
	}
	for _, w := range outcome.Warnings {
		ux.Warn(w)
	}
	if !outcome.Success {
		if outcome.Err != nil {
			return outcome.Err
		}
		return fmt.Errorf("publish reconciliation failed")
	}
	out.prURL = outcome.PullRequestURL
	return nil
}

// vars collects the substitution set for prompt templates. Every stage
// sees every earlier output; templates pick what they need.
func (r *Runner) vars(t *task.Task, out *outputs) map[string]string {
	return map[string]string{
		"REPO_URL":       t.Repo,
		"BRANCH":         t.Branch,
		"MANIFESTS":      out.manifests,
		"SCAN_REPORT":    out.scan,
		"ANALYSIS":       out.analysis,
		"DESIGN":         out.design,
		"SECURITY_NOTES": out.security,
		"ARTIFACTS":      out.artifactList(),
		"HEAD_BRANCH":    r.Config.Task.HeadBranch,
		"BASE_BRANCH":    r.Config.Task.BaseBranch,
	}
}

// limits overlays the configured generation thresholds on the built-in
// completeness limits.
func (r *Runner) limits() extract.Limits {
	lim := extract.DefaultLimits()
	g := r.Config.Generation
	if g.MinLength > 0 {
		lim.MinLength = g.MinLength
	}
	if g.TerminalSection != "" {
		lim.TerminalSection = g.TerminalSection
	}
	if len(g.TerminalKeywords) > 0 {
		lim.TerminalKeywords = g.TerminalKeywords
	}
	if g.MinTerminalLines > 0 {
		lim.MinTerminalLines = g.MinTerminalLines
	}
	return lim
}

// fail marks the task failed at the named stage. Later stages never run.
func (r *Runner) fail(t *task.Task, stage string, err error) (*task.Task, error) {
	r.setStatus(t, task.StatusFailed, fmt.Sprintf("failed at %s: %v", stage, err))
	ux.TaskFailed(t.ID, stage, err.Error())
	return t, fmt.Errorf("task failed at %s: %w", stage, err)
}

func (r *Runner) setStatus(t *task.Task, status, summary string) {
	t.Status = status
	t.Summary = summary
	t.UpdatedAt = time.Now().UTC()
	if err := r.Store.SetStatus(t.ID, status, summary); err != nil {
		r.logger().Warn("state store unavailable", "op", "set_status", "task", t.ID, "error", err)
	}
}

func (r *Runner) appendStep(t *task.Task, step task.Step) {
	t.Steps = append(t.Steps, step)
	t.UpdatedAt = step.At
	if err := r.Store.AppendStep(t.ID, step); err != nil {
		r.logger().Warn("state store unavailable", "op", "append_step", "task", t.ID, "step", step.Name, "error", err)
	}
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func payloadText(res *remote.Result) string {
	return strings.TrimSpace(string(res.Payload))
}

func artifactStem(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}
