package task

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Store persists task records. Persistence is advisory: the engine logs
// store failures and keeps running, so implementations must never be the
// reason a pipeline dies.
type Store interface {
	Create(t *Task) error
	AppendStep(id string, step Step) error
	SetStatus(id, status, summary string) error
	Get(id string) (*Task, error)
	List() ([]*Task, error)
}

// FileStore keeps one JSON file per task under a directory.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating task store: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *FileStore) Create(t *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(t)
}

func (s *FileStore) AppendStep(id string, step Step) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.read(id)
	if err != nil {
		return err
	}
	t.Steps = append(t.Steps, step)
	t.UpdatedAt = time.Now().UTC()
	return s.write(t)
}

func (s *FileStore) SetStatus(id, status, summary string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.read(id)
	if err != nil {
		return err
	}
	t.Status = status
	t.Summary = summary
	t.UpdatedAt = time.Now().UTC()
	return s.write(t)
}

func (s *FileStore) Get(id string) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(id)
}

// List returns all stored tasks, oldest first.
func (s *FileStore) List() ([]*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading task store: %w", err)
	}
	var tasks []*Task
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		t, err := s.read(e.Name()[:len(e.Name())-len(".json")])
		if err != nil {
			// Skip records that cannot be decoded.
			continue
		}
		tasks = append(tasks, t)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt.Before(tasks[j].CreatedAt) })
	return tasks, nil
}

func (s *FileStore) read(id string) (*Task, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return nil, fmt.Errorf("reading task %s: %w", id, err)
	}
	var t Task
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decoding task %s: %w", id, err)
	}
	return &t, nil
}

func (s *FileStore) write(t *Task) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding task %s: %w", t.ID, err)
	}
	if err := writeFileAtomic(s.path(t.ID), data, 0o644); err != nil {
		return fmt.Errorf("writing task %s: %w", t.ID, err)
	}
	return nil
}
