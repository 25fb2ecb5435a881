package validate

import (
	"context"
	"fmt"
	"io"

	"github.com/rhysd/actionlint"
)

// LintValidator runs actionlint in-process. The artifact never touches disk;
// the filename passed to the linter only labels its findings.
type LintValidator struct{}

func (LintValidator) Validate(_ context.Context, content string) (*Verdict, error) {
	linter, err := actionlint.NewLinter(io.Discard, &actionlint.LinterOptions{})
	if err != nil {
		return nil, fmt.Errorf("create linter: %w", err)
	}
	findings, err := linter.Lint("workflow.yml", []byte(content), nil)
	if err != nil {
		return nil, fmt.Errorf("lint workflow: %w", err)
	}

	verdict := &Verdict{Valid: len(findings) == 0}
	for _, f := range findings {
		verdict.Errors = append(verdict.Errors, fmt.Sprintf("%d:%d: %s [%s]", f.Line, f.Column, f.Message, f.Kind))
	}
	return verdict, nil
}
