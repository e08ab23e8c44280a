package todo

import (
	"context"
	"sort"
	"sync"
)

// MemStore keeps tasks in memory. It backs `tcr serve --db-driver memory`
// and the handler tests.
type MemStore struct {
	mu     sync.Mutex
	tasks  map[int64]Task
	nextID int64
}

// NewMemStore creates an empty store.
func NewMemStore() *MemStore {
	return &MemStore{tasks: make(map[int64]Task), nextID: 1}
}

func (m *MemStore) List(context.Context) ([]Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) Get(_ context.Context, id int64) (Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return Task{}, ErrNotFound
	}
	return t, nil
}

func (m *MemStore) Create(_ context.Context, t *Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = m.nextID
	m.nextID++
	m.tasks[t.ID] = *t
	return nil
}

func (m *MemStore) Update(_ context.Context, t Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[t.ID]; !ok {
		return ErrNotFound
	}
	m.tasks[t.ID] = t
	return nil
}

func (m *MemStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}
