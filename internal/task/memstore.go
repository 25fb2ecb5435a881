package task

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemStore keeps tasks in memory. It backs tests and runs that configure no
// store directory.
type MemStore struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

func NewMemStore() *MemStore {
	return &MemStore{tasks: make(map[string]*Task)}
}

func (s *MemStore) Create(t *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = cloneTask(t)
	return nil
}

func (s *MemStore) AppendStep(id string, step Step) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("task %s not found", id)
	}
	t.Steps = append(t.Steps, step)
	t.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemStore) SetStatus(id, status, summary string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("task %s not found", id)
	}
	t.Status = status
	t.Summary = summary
	t.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemStore) Get(id string) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s not found", id)
	}
	return cloneTask(t), nil
}

func (s *MemStore) List() ([]*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tasks := make([]*Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, cloneTask(t))
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt.Before(tasks[j].CreatedAt) })
	return tasks, nil
}

func cloneTask(t *Task) *Task {
	c := *t
	c.Steps = append([]Step(nil), t.Steps...)
	return &c
}
