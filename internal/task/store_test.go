package task

import (
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/pipewright/pipewright/internal/remote"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	tk := New(Input{Repo: "https://github.com/acme/svc"})
	if err := store.Create(tk); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	steps := []Step{
		{Name: "ingest", Result: &remote.Result{Status: remote.StatusSuccess}, At: time.Now().UTC()},
		{Name: "scan", Result: &remote.Result{Status: remote.StatusSuccess, Completion: "ok"}, At: time.Now().UTC()},
	}
	for _, s := range steps {
		if err := store.AppendStep(tk.ID, s); err != nil {
			t.Fatalf("AppendStep(%q) error = %v", s.Name, err)
		}
	}
	if err := store.SetStatus(tk.ID, StatusCompleted, "pipeline published"); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}

	got, err := store.Get(tk.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != StatusCompleted || got.Summary != "pipeline published" {
		t.Fatalf("task = %q/%q, want completed with summary", got.Status, got.Summary)
	}
	if len(got.Steps) != 2 || got.Steps[0].Name != "ingest" || got.Steps[1].Name != "scan" {
		t.Fatalf("Steps = %+v, want ingest then scan", got.Steps)
	}
	if got.UpdatedAt.Before(got.CreatedAt) {
		t.Fatalf("UpdatedAt %v before CreatedAt %v", got.UpdatedAt, got.CreatedAt)
	}
}

func TestFileStoreGetMissing(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	_, err = store.Get("task-1700000000-deadbeef")
	if err == nil {
		t.Fatalf("Get() error = nil, want not found")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Get() error = %v, want fs.ErrNotExist in chain", err)
	}
}

func TestFileStoreList(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	older := New(Input{ID: "task-1700000000-aaaaaaaa", Repo: "acme/one"})
	older.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := New(Input{ID: "task-1700000001-bbbbbbbb", Repo: "acme/two"})
	newer.CreatedAt = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	for _, tk := range []*Task{newer, older} {
		if err := store.Create(tk); err != nil {
			t.Fatalf("Create(%q) error = %v", tk.ID, err)
		}
	}

	tasks, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(tasks) != 2 || tasks[0].ID != older.ID || tasks[1].ID != newer.ID {
		t.Fatalf("List() order = %v, want oldest first", taskIDs(tasks))
	}
}

func TestMemStore(t *testing.T) {
	store := NewMemStore()
	tk := New(Input{Repo: "acme/svc"})
	if err := store.Create(tk); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.AppendStep(tk.ID, Step{Name: "ingest", At: time.Now()}); err != nil {
		t.Fatalf("AppendStep() error = %v", err)
	}

	got, err := store.Get(tk.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	got.Steps[0].Name = "mutated"
	got.Status = "mutated"

	again, err := store.Get(tk.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if again.Steps[0].Name != "ingest" || again.Status != StatusPending {
		t.Fatalf("store leaked caller mutations: %+v", again)
	}

	if err := store.AppendStep("task-1-00000000", Step{Name: "scan"}); err == nil {
		t.Fatalf("AppendStep() on unknown id error = nil, want not found")
	}
}

func taskIDs(tasks []*Task) []string {
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}
