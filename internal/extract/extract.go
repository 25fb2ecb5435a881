// Package extract pulls a pipeline definition out of raw generative output
// and judges whether it looks complete enough to hand to a validator.
package extract

import (
	"regexp"
	"strings"
)

// Artifact is one extracted pipeline definition.
type Artifact struct {
	Content      string
	Complete     bool
	Reason       string // diagnostic when Complete is false
	Fenced       bool   // found inside a ``` code fence
	Unterminated bool   // opening fence never closed; content ran to end of text
}

// structuralPrefixes mark lines where a bare workflow definition can begin
// when the model answered without a code fence.
var structuralPrefixes = []string{
	"name:", "on:", "jobs:", "workflow_dispatch:", "permissions:",
}

var fenceOpenRe = regexp.MustCompile("^```[A-Za-z0-9_+-]*\\s*$")

// Extract returns the artifact content found in raw: the first fenced code
// block if any, otherwise a line scan from the first structural prefix to the
// end of the usable text.
func Extract(raw string) Artifact {
	if a, ok := extractFenced(raw); ok {
		return a
	}
	if a, ok := extractBare(raw); ok {
		return a
	}
	return Artifact{}
}

// extractFenced returns the body of the first fenced code block. A fence that
// never closes still yields content, flagged as unterminated.
func extractFenced(raw string) (Artifact, bool) {
	lines := strings.Split(raw, "\n")
	var buf strings.Builder
	inside := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !inside {
			if fenceOpenRe.MatchString(trimmed) {
				inside = true
			}
			continue
		}
		if trimmed == "```" {
			return Artifact{Content: strings.TrimSpace(buf.String()), Fenced: true}, true
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)
	}

	if inside {
		return Artifact{Content: strings.TrimSpace(buf.String()), Fenced: true, Unterminated: true}, true
	}
	return Artifact{}, false
}

// extractBare scans for the first line starting with a structural prefix and
// captures until end of text, stopping at markdown section headers.
func extractBare(raw string) (Artifact, bool) {
	lines := strings.Split(raw, "\n")
	var captured []string
	capturing := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !capturing && startsStructural(trimmed) {
			capturing = true
		}
		if !capturing {
			continue
		}
		// A "##" heading or a "#word" line is prose, not a YAML comment.
		if strings.HasPrefix(trimmed, "##") {
			break
		}
		if strings.HasPrefix(trimmed, "#") && len(trimmed) > 1 && trimmed[1] != ' ' {
			break
		}
		captured = append(captured, line)
	}

	if !capturing {
		return Artifact{}, false
	}
	return Artifact{Content: strings.TrimSpace(strings.Join(captured, "\n"))}, true
}

func startsStructural(trimmed string) bool {
	for _, p := range structuralPrefixes {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}
