// Package validate judges generated pipeline definitions. Three validators
// are available: a builtin structural check, an in-process actionlint run,
// and a remote validation function. The Adapter folds validator failures
// into invalid verdicts so the generation loop never has to branch on them.
package validate

import (
	"context"
	"fmt"
	"log/slog"
)

// Verdict is the outcome of validating one artifact.
type Verdict struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Validator checks one artifact. Implementations return an error only when
// the check itself could not run, not when the artifact is bad.
type Validator interface {
	Validate(ctx context.Context, content string) (*Verdict, error)
}

// Adapter wraps a Validator so callers always get a verdict. A validator
// that cannot run yields an invalid verdict carrying a synthetic error, so
// a broken or unreachable validator can never wave an artifact through.
type Adapter struct {
	v      Validator
	logger *slog.Logger
}

func NewAdapter(v Validator, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{v: v, logger: logger}
}

// Validate runs the wrapped validator and normalizes its verdict: validity
// is derived from the error list, never trusted from the validator.
func (a *Adapter) Validate(ctx context.Context, content string) *Verdict {
	verdict, err := a.v.Validate(ctx, content)
	if err != nil {
		a.logger.Warn("validator unavailable", "err", err)
		return &Verdict{Errors: []string{fmt.Sprintf("validator unavailable: %v", err)}}
	}
	if verdict == nil {
		return &Verdict{Errors: []string{"validator returned no verdict"}}
	}
	verdict.Valid = len(verdict.Errors) == 0
	return verdict
}
