package ux

import (
	"fmt"

	"github.com/pipewright/pipewright/internal/remote"
	"github.com/pipewright/pipewright/internal/task"
)

// RenderTask prints the stored record of one run.
func RenderTask(t *task.Task) {
	fmt.Printf("%sTask:%s    %s\n", Bold, Reset, t.ID)
	fmt.Printf("%sRepo:%s    %s\n", Bold, Reset, t.Repo)
	if t.Branch != "" {
		fmt.Printf("%sBranch:%s  %s\n", Bold, Reset, t.Branch)
	}
	fmt.Printf("%sStatus:%s  %s\n", Bold, Reset, coloredStatus(t.Status))
	if t.Summary != "" {
		fmt.Printf("%sSummary:%s %s\n", Bold, Reset, t.Summary)
	}
	fmt.Printf("%sUpdated:%s %s\n", Bold, Reset, t.UpdatedAt.Local().Format("2006-01-02 15:04:05"))

	if len(t.Steps) == 0 {
		return
	}
	fmt.Printf("\n%sSteps:%s\n", Bold, Reset)
	for i, s := range t.Steps {
		glyph := Green + "✓" + Reset
		detail := ""
		if s.Result != nil {
			if s.Result.Status != remote.StatusSuccess {
				glyph = Red + "✗" + Reset
			}
			detail = s.Result.Message
		}
		if len(detail) > 60 {
			detail = detail[:57] + "..."
		}
		fmt.Printf("  %s%2d%s  %-28s %s  %s%s%s\n", Dim, i+1, Reset, s.Name, glyph, Dim, detail, Reset)
	}
	fmt.Println()
}

// RenderTaskList prints a one-line summary per task, oldest first.
func RenderTaskList(tasks []*task.Task) {
	if len(tasks) == 0 {
		fmt.Printf("%s(no tasks)%s\n", Dim, Reset)
		return
	}
	for _, t := range tasks {
		fmt.Printf("  %s%s%s  %-11s  %-28s %s\n",
			Dim, t.CreatedAt.Local().Format("2006-01-02 15:04"), Reset,
			t.Status, t.ID, t.Repo)
	}
}

func coloredStatus(status string) string {
	switch status {
	case task.StatusCompleted:
		return Green + Bold + status + Reset
	case task.StatusFailed:
		return Red + Bold + status + Reset
	case task.StatusInProgress:
		return Yellow + status + Reset
	}
	return status
}
