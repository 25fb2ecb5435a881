// Package generate runs the generate-extract-validate loop that turns agent
// output into an accepted pipeline definition.
package generate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pipewright/pipewright/internal/extract"
	"github.com/pipewright/pipewright/internal/prompt"
	"github.com/pipewright/pipewright/internal/remote"
	"github.com/pipewright/pipewright/internal/retry"
	"github.com/pipewright/pipewright/internal/task"
	"github.com/pipewright/pipewright/internal/ux"
	"github.com/pipewright/pipewright/internal/validate"
)

// Loop drives generation attempts for one artifact.
type Loop struct {
	Agent     remote.Caller
	AgentRef  string
	Retrier   *retry.Controller
	Validator *validate.Adapter
	Limits    extract.Limits
	Logger    *slog.Logger
}

// Run asks the agent for the artifact named by step until one extracts
// complete and passes validation, or attempts run out. Every attempt is
// recorded as its own step; repeat attempts carry a "#n" name suffix, a
// fresh session, and a prompt that leads with the previous rejection.
//
// A remote failure ends the loop immediately: rejection feedback is for bad
// artifacts, not for a gateway that is down.
func (l *Loop) Run(ctx context.Context, step, session, basePrompt string, maxAttempts int) (*extract.Artifact, []task.Step, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var steps []task.Step
	var reasons []string

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		name := step
		sess := session
		input := basePrompt
		if attempt > 1 {
			name = fmt.Sprintf("%s#%d", step, attempt)
			sess = fmt.Sprintf("%s-a%d", session, attempt)
			input = prompt.WithFeedback(basePrompt, attempt, reasons)
			ux.Regenerate(step, attempt, maxAttempts, strings.Join(reasons, "; "))
		}

		res := l.Retrier.Do(ctx, sess, func(ctx context.Context, at retry.Attempt) *remote.Result {
			return l.Agent.Invoke(ctx, remote.Call{Ref: l.AgentRef, Session: at.Session, Input: input})
		})
		steps = append(steps, task.Step{Name: name, Result: res, At: time.Now().UTC()})

		if !res.OK() {
			return nil, steps, fmt.Errorf("%s: %s (%s)", name, res.Message, res.Class)
		}

		artifact := extract.Check(extract.Extract(res.Completion), l.Limits)
		if !artifact.Complete {
			reasons = []string{artifact.Reason}
			res.Message = "incomplete artifact: " + artifact.Reason
			l.logger().Warn("artifact incomplete", "step", name, "reason", artifact.Reason)
			continue
		}

		verdict := l.Validator.Validate(ctx, artifact.Content)
		if verdict.Valid {
			for _, w := range verdict.Warnings {
				ux.Warn(w)
			}
			l.logger().Info("artifact accepted", "step", name, "attempt", attempt, "warnings", len(verdict.Warnings))
			return &artifact, steps, nil
		}

		reasons = verdict.Errors
		res.Message = "failed validation: " + strings.Join(verdict.Errors, "; ")
		l.logger().Warn("artifact rejected", "step", name, "errors", len(verdict.Errors))
	}

	return nil, steps, fmt.Errorf("no valid artifact for %s after %d attempts: %s",
		step, maxAttempts, strings.Join(reasons, "; "))
}

func (l *Loop) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}
