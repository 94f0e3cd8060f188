package store

import (
	"errors"

	"github.com/todomvc/todo-backend/pkg/types"
)

var (
	// ErrNotFound is returned when no stored todo has the requested id.
	ErrNotFound = errors.New("todo not found")

	// ErrBadRequest is returned by Update when the patch is absent.
	ErrBadRequest = errors.New("todo update payload missing")
)

// Store is the in-memory todo collection. The zero value is not usable;
// call New.
type Store struct {
	todos []types.Todo
}

// New creates an empty Store.
func New() *Store {
	return &Store{todos: make([]types.Todo, 0)}
}

// List returns a copy of every stored todo.
func (s *Store) List() []types.Todo {
	out := make([]types.Todo, len(s.todos))
	copy(out, s.todos)
	return out
}

// Get returns the first todo whose id matches.
func (s *Store) Get(id int64) (types.Todo, error) {
	i := s.indexOf(id)
	if i < 0 {
		return types.Todo{}, ErrNotFound
	}
	return s.todos[i], nil
}

// Create assigns t the id Count()+1, stores it and returns the stored value.
// Any id already set on t is overwritten.
func (s *Store) Create(t types.Todo) types.Todo {
	t.ID = int64(len(s.todos) + 1)
	s.add(t)
	return t
}

// Update replaces the todo with the given id by its merge with p.
// ErrNotFound takes precedence over ErrBadRequest; on either error the store
// is left untouched.
func (s *Store) Update(id int64, p *types.TodoPatch) (types.Todo, error) {
	i := s.indexOf(id)
	if i < 0 {
		return types.Todo{}, ErrNotFound
	}
	if p == nil {
		return types.Todo{}, ErrBadRequest
	}

	old := s.todos[i]
	s.remove(old)

	merged := old.Merge(*p)
	s.add(merged)
	return merged, nil
}

// Delete removes the todo with the given id. Unknown ids are ignored.
func (s *Store) Delete(id int64) {
	if i := s.indexOf(id); i >= 0 {
		s.remove(s.todos[i])
	}
}

// DeleteAll removes every todo.
func (s *Store) DeleteAll() {
	s.todos = s.todos[:0]
}

// Count returns the number of stored todos.
func (s *Store) Count() int {
	return len(s.todos)
}

// --- set semantics ----------------------------------------------------------

// add inserts t unless an identical todo is already stored.
func (s *Store) add(t types.Todo) {
	for _, existing := range s.todos {
		if existing == t {
			return
		}
	}
	s.todos = append(s.todos, t)
}

// remove deletes the element equal to t, preserving the order of the rest.
func (s *Store) remove(t types.Todo) {
	for i, existing := range s.todos {
		if existing == t {
			s.todos = append(s.todos[:i], s.todos[i+1:]...)
			return
		}
	}
}

func (s *Store) indexOf(id int64) int {
	for i, t := range s.todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}
