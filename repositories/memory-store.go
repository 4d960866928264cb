package repositories

import (
	"context"
	"sync"

	"facility-maintenance/microservices/statistics-service/models"
)

// MemoryStore keeps tasks, users and departments in process. It backs the
// "memory" store driver and the engine tests.
type MemoryStore struct {
	mu          sync.RWMutex
	tasks       map[string]models.Task
	users       map[string]models.User
	departments map[string]models.Department
	listeners   []func(departmentID string)
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks:       make(map[string]models.Task),
		users:       make(map[string]models.User),
		departments: make(map[string]models.Department),
	}
}

func (s *MemoryStore) AddDepartment(d models.Department) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.departments[d.ID] = d
}

func (s *MemoryStore) AddUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// PutTask inserts or replaces a task and notifies watchers of both its old and
// its new department.
func (s *MemoryStore) PutTask(t models.Task) {
	s.mu.Lock()
	previous, existed := s.tasks[t.ID]
	s.tasks[t.ID] = t
	listeners := append([]func(string){}, s.listeners...)
	s.mu.Unlock()

	if existed && previous.DepartmentID != t.DepartmentID {
		notify(listeners, previous.DepartmentID)
	}
	notify(listeners, t.DepartmentID)
}

func (s *MemoryStore) DeleteTask(id string) {
	s.mu.Lock()
	previous, existed := s.tasks[id]
	delete(s.tasks, id)
	listeners := append([]func(string){}, s.listeners...)
	s.mu.Unlock()

	if existed {
		notify(listeners, previous.DepartmentID)
	}
}

func notify(listeners []func(string), departmentID string) {
	for _, fn := range listeners {
		fn(departmentID)
	}
}

func (s *MemoryStore) FindTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tasks []models.Task
	for _, t := range s.tasks {
		if filter.Matches(t) {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

func (s *MemoryStore) FindUsers(ctx context.Context, ids []string) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (s *MemoryStore) UserExists(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[id]
	return ok, nil
}

func (s *MemoryStore) DepartmentExists(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.departments[id]
	return ok, nil
}

// Watch calls onChange with the department of every task mutation until ctx
// is done.
func (s *MemoryStore) Watch(ctx context.Context, onChange func(departmentID string)) error {
	s.mu.Lock()
	s.listeners = append(s.listeners, onChange)
	idx := len(s.listeners) - 1
	s.mu.Unlock()

	<-ctx.Done()

	s.mu.Lock()
	s.listeners[idx] = func(string) {}
	s.mu.Unlock()
	return nil
}
