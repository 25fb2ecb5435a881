// Package ux prints the human-facing progress narrative. Operational logging
// goes through slog; this package is only what a person watching the run sees.
package ux

import (
	"fmt"
	"time"
)

// ANSI color helpers
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
)

func timestamp() string {
	return time.Now().Format("15:04:05")
}

// StageHeader prints a timestamped stage header.
func StageHeader(index, total int, name, kind string) {
	fmt.Printf("\n%s[%s]%s %s══════════════════════════════════════%s\n",
		Dim, timestamp(), Reset, Cyan, Reset)
	fmt.Printf("%s[%s]%s  %sStage %d/%d: %s (%s)%s\n",
		Dim, timestamp(), Reset, Bold, index+1, total, name, kind, Reset)
	fmt.Printf("%s[%s]%s %s══════════════════════════════════════%s\n",
		Dim, timestamp(), Reset, Cyan, Reset)
}

// StageComplete prints a stage completion message.
func StageComplete(index int, duration time.Duration) {
	m := int(duration.Minutes())
	s := int(duration.Seconds()) % 60
	fmt.Printf("%s[%s]%s  %s✓ Stage %d complete (%dm %02ds)%s\n",
		Dim, timestamp(), Reset, Green, index+1, m, s, Reset)
}

// StageFail prints a stage failure message.
func StageFail(index int, name, errMsg string) {
	fmt.Printf("%s[%s]%s  %s✗ Stage %d (%s) failed: %s%s\n",
		Dim, timestamp(), Reset, Red, index+1, name, errMsg, Reset)
}

// StageSkip prints a stage skip message.
func StageSkip(index int, name, reason string) {
	fmt.Printf("%s[%s]%s  %s– Stage %d (%s) skipped (%s)%s\n",
		Dim, timestamp(), Reset, Dim, index+1, name, reason, Reset)
}

// Regenerate prints a loop-back message for a rejected artifact.
func Regenerate(step string, attempt, max int, reason string) {
	if len(reason) > 80 {
		reason = reason[:77] + "..."
	}
	fmt.Printf("%s[%s]%s  %s↺ %s rejected: %s. Regenerating (attempt %d/%d)%s\n",
		Dim, timestamp(), Reset, Yellow, step, reason, attempt, max, Reset)
}

// FallbackOp prints an inline publish fallback operation.
func FallbackOp(name, target string) {
	if len(target) > 80 {
		target = target[:77] + "..."
	}
	fmt.Printf("  %s⚡ %s%s %s\n", Cyan, name, Reset, target)
}

// Warn prints an inline warning.
func Warn(msg string) {
	fmt.Printf("  %s⚠ %s%s\n", Yellow, msg, Reset)
}

// Success prints the final success banner.
func Success(taskID, prURL string) {
	fmt.Printf("\n%s[%s]%s  %s%s══ Pipeline published ══%s\n",
		Dim, timestamp(), Reset, Bold, Green, Reset)
	fmt.Printf("  %sTask:%s %s\n", Bold, Reset, taskID)
	if prURL != "" {
		fmt.Printf("  %sPull request:%s %s\n", Bold, Reset, prURL)
	}
	fmt.Println()
}

// TaskFailed prints the final failure message with an inspection hint.
func TaskFailed(taskID, stage, errMsg string) {
	fmt.Printf("\n%s✗ Task %s failed at %s: %s%s\n", Red, taskID, stage, errMsg, Reset)
	fmt.Printf("%sInspect:%s pipewright status %s\n", Yellow, Reset, taskID)
}
