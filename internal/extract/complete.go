package extract

import (
	"fmt"
	"strings"
)

// Limits tune the completeness heuristics applied to extracted artifacts.
type Limits struct {
	MinLength        int      // minimum content length in bytes
	TrailingWindow   int      // lines inspected for unbalanced braces
	TerminalSection  string   // section name expected to carry a final action
	TerminalKeywords []string // substrings that count as a terminal action
	MinTerminalLines int      // significant lines required in the terminal section
}

// DefaultLimits returns the limits used when a task configures none.
func DefaultLimits() Limits {
	return Limits{
		MinLength:        80,
		TrailingWindow:   5,
		TerminalSection:  "deploy",
		MinTerminalLines: 3,
		TerminalKeywords: []string{
			"kubectl", "helm", "terraform", "docker push",
			"aws ", "gcloud", "az ", "ssh ", "rsync", "actions/deploy",
		},
	}
}

// Check applies the completeness heuristics in order and returns the artifact
// with Complete and Reason filled. The first failing rule wins.
func Check(a Artifact, lim Limits) Artifact {
	a.Complete = false

	if a.Content == "" {
		a.Reason = "no artifact content found"
		return a
	}
	if len(a.Content) < lim.MinLength {
		a.Reason = fmt.Sprintf("artifact too short (%d bytes)", len(a.Content))
		return a
	}
	if a.Unterminated {
		a.Reason = "code fence never closed; output likely truncated"
		return a
	}
	if line, ok := lastNonBlank(a.Content); ok && oddQuotes(line) {
		a.Reason = "last line has an unclosed quote"
		return a
	}
	if unbalancedTrailingBraces(a.Content, lim.TrailingWindow) {
		a.Reason = "trailing lines have unbalanced braces"
		return a
	}
	if idx := strings.LastIndex(a.Content, "${{"); idx >= 0 && !strings.Contains(a.Content[idx:], "}}") {
		a.Reason = "unclosed ${{ expression"
		return a
	}
	if reason, ok := checkTerminalSection(a.Content, lim); !ok {
		a.Reason = reason
		return a
	}

	a.Complete = true
	a.Reason = ""
	return a
}

func lastNonBlank(content string) (string, bool) {
	lines := strings.Split(content, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if trimmed := strings.TrimSpace(lines[i]); trimmed != "" {
			return trimmed, true
		}
	}
	return "", false
}

func oddQuotes(line string) bool {
	return strings.Count(line, `"`)%2 != 0 || strings.Count(line, "'")%2 != 0
}

func unbalancedTrailingBraces(content string, window int) bool {
	if window <= 0 {
		return false
	}
	lines := strings.Split(content, "\n")
	if len(lines) > window {
		lines = lines[len(lines)-window:]
	}
	tail := strings.Join(lines, "\n")
	return strings.Count(tail, "{") > strings.Count(tail, "}")
}

// checkTerminalSection verifies that, when the content declares the terminal
// section, the section body carries a recognizable action and is not cut off
// after a handful of setup or guard lines.
func checkTerminalSection(content string, lim Limits) (string, bool) {
	if lim.TerminalSection == "" {
		return "", true
	}
	lines := strings.Split(content, "\n")
	start := -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, lim.TerminalSection) && strings.Contains(trimmed, ":") {
			start = i
		}
	}
	if start < 0 {
		return "", true
	}

	section := strings.ToLower(strings.Join(lines[start:], "\n"))
	significant := 0
	for _, line := range lines[start+1:] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		significant++
	}

	if significant < lim.MinTerminalLines {
		return fmt.Sprintf("%s section has only %d lines; output likely truncated",
			lim.TerminalSection, significant), false
	}
	for _, kw := range lim.TerminalKeywords {
		if strings.Contains(section, strings.ToLower(kw)) {
			return "", true
		}
	}
	return fmt.Sprintf("%s section has no recognizable action; output likely truncated",
		lim.TerminalSection), false
}
