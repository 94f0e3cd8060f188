package api

import (
	"context"
	"net/http"

	"github.com/todomvc/todo-backend/pkg/types"
	"github.com/todomvc/todo-backend/server/internal/store"
)

// WireMethods is the set of operations the HTTP layer dispatches to, one per
// route. Implementations read the self-link base with BaseURLFrom(ctx).
type WireMethods interface {
	ListAll(ctx context.Context) Response
	GetTodo(ctx context.Context, id int64) Response
	SaveTodo(ctx context.Context, todo types.Todo) Response
	DeleteAllTodos(ctx context.Context)
	DeleteOneTodo(ctx context.Context, id int64)
	// UpdateTodo merges patch into the todo with the given id. A nil patch
	// means the request carried no payload.
	UpdateTodo(ctx context.Context, id int64, patch *types.TodoPatch) Response
}

// storeMethods is the production WireMethods backed by a store.Store.
type storeMethods struct {
	store *store.Store
}

// NewWireMethods returns the WireMethods implementation over st.
func NewWireMethods(st *store.Store) WireMethods {
	return &storeMethods{store: st}
}

func (m *storeMethods) ListAll(ctx context.Context) Response {
	base := BaseURLFrom(ctx)
	todos := m.store.List()
	out := make([]ResourceWithURL, 0, len(todos))
	for _, t := range todos {
		out = append(out, ToResource(base, t))
	}
	return Response{Status: http.StatusOK, Body: out}
}

func (m *storeMethods) GetTodo(ctx context.Context, id int64) Response {
	t, err := m.store.Get(id)
	if err != nil {
		return Response{Status: statusFor(err)}
	}
	return respondWithResource(ctx, t, http.StatusOK)
}

func (m *storeMethods) SaveTodo(ctx context.Context, todo types.Todo) Response {
	return respondWithResource(ctx, m.store.Create(todo), http.StatusCreated)
}

func (m *storeMethods) DeleteAllTodos(context.Context) {
	m.store.DeleteAll()
}

func (m *storeMethods) DeleteOneTodo(_ context.Context, id int64) {
	m.store.Delete(id)
}

func (m *storeMethods) UpdateTodo(ctx context.Context, id int64, patch *types.TodoPatch) Response {
	merged, err := m.store.Update(id, patch)
	if err != nil {
		return Response{Status: statusFor(err)}
	}
	return respondWithResource(ctx, merged, http.StatusOK)
}
