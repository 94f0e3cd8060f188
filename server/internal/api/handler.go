package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/todomvc/todo-backend/pkg/types"
)

// maxBodyBytes caps the size of a POST or PATCH body.
const maxBodyBytes = 1 << 20

// Handler is the HTTP handler for /todos and /healthz.
// All calls into WireMethods happen under one mutex.
type Handler struct {
	mux *http.ServeMux

	mu      sync.Mutex
	wire    WireMethods
	baseURL string
	hooks   []func()
}

// New creates a Handler dispatching to wire and registers all routes.
func New(wire WireMethods) *Handler {
	h := &Handler{wire: wire, mux: http.NewServeMux()}

	h.mux.HandleFunc("/todos", h.collection)
	h.mux.HandleFunc("/todos/", h.item) // subtree — extracts {id}
	h.mux.HandleFunc("/healthz", h.health)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// SetBaseURL fixes the self-link base. An empty base means "derive from each
// request".
func (h *Handler) SetBaseURL(base string) {
	h.mu.Lock()
	h.baseURL = strings.TrimRight(base, "/")
	h.mu.Unlock()
}

// OnChange registers fn to be called after every successful mutation.
// fn runs on the request goroutine and must not block.
func (h *Handler) OnChange(fn func()) {
	h.mu.Lock()
	h.hooks = append(h.hooks, fn)
	h.mu.Unlock()
}

// Snapshot returns every todo as a resource. Links use the base carried by
// ctx, falling back to the configured base URL.
func (h *Handler) Snapshot(ctx context.Context) []ResourceWithURL {
	h.mu.Lock()
	defer h.mu.Unlock()
	if BaseURLFrom(ctx) == "" {
		ctx = WithBaseURL(ctx, h.baseURL)
	}
	list, _ := h.wire.ListAll(ctx).Body.([]ResourceWithURL)
	return list
}

// Count returns the number of todos currently stored.
func (h *Handler) Count() int {
	return len(h.Snapshot(context.Background()))
}

// --- route handlers ---------------------------------------------------------

// collection serves /todos.
func (h *Handler) collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeResponse(w, h.call(r, func(ctx context.Context) Response {
			return h.wire.ListAll(ctx)
		}))

	case http.MethodPost:
		body, ok := readJSONBody(w, r)
		if !ok {
			return
		}
		if err := validateTodoBody(body); err != nil {
			jsonErr(w, http.StatusBadRequest, err.Error())
			return
		}
		var todo types.Todo
		if err := json.Unmarshal(body, &todo); err != nil {
			jsonErr(w, http.StatusBadRequest, "malformed JSON: "+err.Error())
			return
		}
		resp := h.call(r, func(ctx context.Context) Response {
			return h.wire.SaveTodo(ctx, todo)
		})
		writeResponse(w, resp)
		h.changed()

	case http.MethodDelete:
		h.call(r, func(ctx context.Context) Response {
			h.wire.DeleteAllTodos(ctx)
			return Response{}
		})
		w.WriteHeader(http.StatusNoContent)
		h.changed()

	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)

	default:
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// item serves /todos/{id}.
func (h *Handler) item(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(r.URL.Path, "/todos/")
	if raw == "" {
		// Bare /todos/ behaves like the collection.
		h.collection(w, r)
		return
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeResponse(w, h.call(r, func(ctx context.Context) Response {
			return h.wire.GetTodo(ctx, id)
		}))

	case http.MethodPatch:
		body, ok := readJSONBody(w, r)
		if !ok {
			return
		}
		var patch *types.TodoPatch
		if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
			if err := validateTodoBody(body); err != nil {
				jsonErr(w, http.StatusBadRequest, err.Error())
				return
			}
			patch = &types.TodoPatch{}
			if err := json.Unmarshal(body, patch); err != nil {
				jsonErr(w, http.StatusBadRequest, "malformed JSON: "+err.Error())
				return
			}
		}
		resp := h.call(r, func(ctx context.Context) Response {
			return h.wire.UpdateTodo(ctx, id, patch)
		})
		writeResponse(w, resp)
		if resp.Status == http.StatusOK {
			h.changed()
		}

	case http.MethodDelete:
		h.call(r, func(ctx context.Context) Response {
			h.wire.DeleteOneTodo(ctx, id)
			return Response{}
		})
		w.WriteHeader(http.StatusNoContent)
		h.changed()

	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)

	default:
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// health returns GET /healthz — liveness plus the current todo count.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, HealthResponse{Status: "ok", Todos: h.Count()})
}

// --- helpers ----------------------------------------------------------------

// call runs fn under the dispatch mutex with the self-link base for r.
func (h *Handler) call(r *http.Request, fn func(ctx context.Context) Response) Response {
	h.mu.Lock()
	defer h.mu.Unlock()
	base := h.baseURL
	if base == "" {
		base = requestBaseURL(r)
	}
	return fn(WithBaseURL(r.Context(), base))
}

func (h *Handler) changed() {
	h.mu.Lock()
	hooks := make([]func(), len(h.hooks))
	copy(hooks, h.hooks)
	h.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

// readJSONBody enforces a JSON content type and reads the (bounded) body.
// It writes the error response itself and reports false on failure.
func readJSONBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mt != "application/json" {
		jsonErr(w, http.StatusUnsupportedMediaType, "content type must be application/json")
		return nil, false
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		slog.Debug("api: read request body failed", "path", r.URL.Path, "err", err)
		jsonErr(w, http.StatusBadRequest, "unreadable request body")
		return nil, false
	}
	return body, true
}

func writeResponse(w http.ResponseWriter, resp Response) {
	if resp.Body == nil {
		w.WriteHeader(resp.Status)
		return
	}
	jsonResp(w, resp.Status, resp.Body)
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
