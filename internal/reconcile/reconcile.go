// Package reconcile verifies that a publish agent performed the side effects
// it was asked for and performs the missing ones directly. Agents sometimes
// answer politely without calling any tool, report partial work, or refuse
// outright; the reconciler is what makes publish trustworthy anyway.
package reconcile

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/pipewright/pipewright/internal/publish"
	"github.com/pipewright/pipewright/internal/remote"
)

// Operations a publish step must perform.
const (
	OpCreateBranch      = "create_branch"
	OpCreateFile        = "create_file"
	OpCreatePullRequest = "create_pr"
)

// RequiredOps returns the publish operations in execution order.
func RequiredOps() []string {
	return []string{OpCreateBranch, OpCreateFile, OpCreatePullRequest}
}

// SubResult is one fallback operation, recorded like any other pipeline step.
type SubResult struct {
	Name   string
	Result *remote.Result
}

// Outcome reports what the reconciler concluded and did.
type Outcome struct {
	Success        bool
	Fallback       bool     // side effects were performed directly
	Missing        []string // operations the agent did not report
	Warnings       []string
	SubResults     []SubResult
	PullRequestURL string
	Err            error
}

// Reconciler checks a publish result against the operations it must have
// performed and falls back to the gateway for anything missing.
type Reconciler struct {
	Gateway publish.Gateway
	Logger  *slog.Logger
}

func New(gw publish.Gateway, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{Gateway: gw, Logger: logger}
}

// Reconcile inspects the publish agent's result and performs whatever the
// agent did not. The fallback always runs the full ordered sequence; the
// gateway treats existing branches and pull requests as benign, so repeating
// an operation the agent already performed cannot fail the publish.
func (r *Reconciler) Reconcile(ctx context.Context, agent *remote.Result, req publish.Request) Outcome {
	var out Outcome

	completion := ""
	if agent != nil {
		completion = agent.Completion
	}

	switch {
	case !agent.OK():
		out.Missing = RequiredOps()
		reason := "no result"
		if agent != nil {
			reason = agent.Message
		}
		r.Logger.Warn("publish agent failed; performing side effects directly", "reason", reason)
	case Refused(completion):
		out.Missing = RequiredOps()
		r.Logger.Warn("publish agent refused; performing side effects directly")
	default:
		out.Missing = Missing(agent.Invocations)
	}

	if len(out.Missing) == 0 {
		out.Success = true
		out.PullRequestURL = ExtractPRURL(completion)
		return out
	}

	out.Fallback = true
	r.Logger.Info("reconciling publish side effects", "missing", out.Missing)

	branch, err := r.Gateway.CreateBranch(ctx, req)
	out.record(OpCreateBranch, branch, err)
	if err != nil {
		out.Err = err
		return out
	}
	if branch.AlreadyExists {
		out.Warnings = append(out.Warnings, "branch already existed; reusing it")
	}

	for _, f := range req.Files {
		name := OpCreateFile
		if len(req.Files) > 1 {
			name = OpCreateFile + ":" + f.Path
		}
		file, err := r.Gateway.PutFile(ctx, req, f)
		out.record(name, file, err)
		if err != nil {
			out.Err = err
			return out
		}
		if file.Detail != "" {
			out.Warnings = append(out.Warnings, f.Path+": "+file.Detail)
		}
	}

	pr, err := r.Gateway.OpenPullRequest(ctx, req)
	out.record(OpCreatePullRequest, pr, err)
	if err != nil {
		out.Err = err
		return out
	}
	if pr.AlreadyExists {
		out.Warnings = append(out.Warnings, "a pull request for this branch is already open")
		out.Success = true
		return out
	}

	out.PullRequestURL = pr.URL
	out.Success = true
	return out
}

func (o *Outcome) record(name string, res publish.Outcome, err error) {
	r := &remote.Result{Status: remote.StatusSuccess}
	switch {
	case err != nil:
		r.Status = remote.StatusError
		r.Class = remote.ClassDependency
		r.Message = err.Error()
	case res.AlreadyExists:
		r.Message = "already exists"
	case res.Detail != "":
		r.Message = res.Detail
	}
	if res.URL != "" {
		r.Completion = res.URL
	}
	o.SubResults = append(o.SubResults, SubResult{Name: name, Result: r})
}

// Missing returns the required operations absent from what the agent
// reported, in execution order.
func Missing(observed []remote.Invocation) []string {
	seen := make(map[string]bool, len(observed))
	for _, inv := range observed {
		seen[normalizeOp(inv.Operation)] = true
	}
	var missing []string
	for _, op := range RequiredOps() {
		if !seen[op] {
			missing = append(missing, op)
		}
	}
	return missing
}

// normalizeOp maps the operation names agents actually emit onto the
// canonical three.
func normalizeOp(op string) string {
	op = strings.ToLower(strings.TrimSpace(op))
	op = strings.ReplaceAll(op, "-", "_")
	op = strings.ReplaceAll(op, " ", "_")
	switch op {
	case "create_pull_request", "open_pull_request", "open_pr":
		return OpCreatePullRequest
	case "create_or_update_file", "update_file", "create_files":
		return OpCreateFile
	}
	return op
}

var refusalPhrases = []string{
	"i cannot",
	"i can't",
	"i am unable",
	"i'm unable",
	"unable to create",
	"cannot complete",
	"cannot perform",
	"don't have the ability",
	"do not have the ability",
	"don't have access",
	"do not have access",
	"not able to perform",
}

// Refused reports whether a completion reads like the agent declined to act.
func Refused(completion string) bool {
	lower := strings.ToLower(completion)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

var prURLRe = regexp.MustCompile(`https?://[^\s<>"')]+/pull/\d+`)

// ExtractPRURL pulls the first pull request URL out of free text.
func ExtractPRURL(text string) string {
	return prURLRe.FindString(text)
}
