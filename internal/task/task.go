// Package task defines the persistent record of a pipeline run and the
// stores that keep it.
package task

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/pipewright/pipewright/internal/remote"
)

// Statuses a task moves through.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Step records one executed pipeline step. Generation retries append their
// own steps, named with a "#n" suffix, so the audit trail keeps every attempt.
type Step struct {
	Name   string         `json:"name"`
	Result *remote.Result `json:"result,omitempty"`
	At     time.Time      `json:"at"`
}

// Task is the durable record of one pipeline run.
type Task struct {
	ID        string    `json:"task_id"`
	Repo      string    `json:"repo_url"`
	Branch    string    `json:"branch,omitempty"`
	Status    string    `json:"status"`
	Summary   string    `json:"summary,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Steps     []Step    `json:"steps,omitempty"`
}

// Input seeds a new run.
type Input struct {
	ID       string // generated when empty
	Repo     string
	Branch   string
	StepRefs map[string]string // stage name -> remote ref; nil falls back to config
}

// New returns a pending task for the input.
func New(in Input) *Task {
	id := in.ID
	if id == "" {
		id = NewID()
	}
	now := time.Now().UTC()
	return &Task{
		ID:        id,
		Repo:      in.Repo,
		Branch:    in.Branch,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewID returns a fresh task identifier, unique across concurrent runs.
func NewID() string {
	return fmt.Sprintf("task-%d-%s", time.Now().Unix(), uuid.NewString()[:8])
}

var idRe = regexp.MustCompile(`^task-\d+-[0-9a-f]{8}$`)

// ValidateID rejects identifiers that were not produced by NewID.
func ValidateID(id string) error {
	if !idRe.MatchString(id) {
		return fmt.Errorf("invalid task id %q", id)
	}
	return nil
}
