// Package prompt renders the instruction text sent to generative agents.
// Every step has a builtin template; a prompts directory can override any of
// them with a <step>.txt file.
package prompt

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Builder renders step prompts, preferring overrides from dir when set.
type Builder struct {
	dir string
}

func NewBuilder(dir string) *Builder {
	return &Builder{dir: dir}
}

// Render returns the prompt for a step with $VAR references expanded from
// vars, falling back to the process environment for unknown names.
func (b *Builder) Render(step string, vars map[string]string) (string, error) {
	text, err := b.template(step)
	if err != nil {
		return "", err
	}
	return expand(text, vars), nil
}

func (b *Builder) template(step string) (string, error) {
	if b.dir != "" {
		data, err := os.ReadFile(filepath.Join(b.dir, step+".txt"))
		if err == nil {
			return strings.TrimSpace(string(data)), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("reading prompt override for %s: %w", step, err)
		}
	}
	text, ok := builtin[step]
	if !ok {
		return "", fmt.Errorf("no prompt template for step %q", step)
	}
	return text, nil
}

func expand(s string, vars map[string]string) string {
	return os.Expand(s, func(key string) string {
		if v, ok := vars[key]; ok {
			return v
		}
		return os.Getenv(key)
	})
}

// WithFeedback appends the previous attempt's rejection reasons to a base
// prompt and asks for a full regeneration.
func WithFeedback(base string, attempt int, reasons []string) string {
	var b strings.Builder
	b.WriteString(base)
	b.WriteString("\n\n## Previous attempt rejected\n\n")
	fmt.Fprintf(&b, "Attempt %d was rejected:\n", attempt-1)
	for _, r := range reasons {
		fmt.Fprintf(&b, "- %s\n", r)
	}
	b.WriteString("\nGenerate the complete definition again from scratch, fixing every problem listed above. ")
	b.WriteString("Output the full file, not a diff or a fragment.")
	return b.String()
}
