package api_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/todomvc/todo-backend/server/internal/api"
)

type observation struct {
	method, route string
	status        int
}

type recordingObserver struct{ obs []observation }

func (r *recordingObserver) ObserveRequest(method, route string, status int, _ time.Duration) {
	r.obs = append(r.obs, observation{method, route, status})
}

func TestRequestID_Generated(t *testing.T) {
	var seen string
	h := api.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = api.RequestIDFrom(r.Context())
	}), api.RequestID())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/todos", nil))

	if seen == "" {
		t.Fatal("request id not set in context")
	}
	if got := rr.Header().Get(api.RequestIDHeader); got != seen {
		t.Errorf("response header: got %q, want %q", got, seen)
	}
}

func TestRequestID_Propagated(t *testing.T) {
	h := api.Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}), api.RequestID())

	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	req.Header.Set(api.RequestIDHeader, "abc-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get(api.RequestIDHeader); got != "abc-123" {
		t.Errorf("X-Request-ID: got %q, want abc-123", got)
	}
}

func TestCORS_Headers(t *testing.T) {
	h := api.Chain(newHandler(), api.CORS(func() string { return "*" }))
	rr := do(t, h, http.MethodOptions, "/todos", "")

	if rr.Code != http.StatusNoContent {
		t.Errorf("status: got %d, want 204", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin: got %q, want *", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, "PATCH") {
		t.Errorf("Allow-Methods: got %q, want PATCH included", got)
	}
}

func TestCORS_Disabled(t *testing.T) {
	h := api.Chain(newHandler(), api.CORS(func() string { return "" }))
	rr := do(t, h, http.MethodGet, "/todos", "")
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin: got %q, want empty", got)
	}
}

func TestInstrument_RecordsRouteAndStatus(t *testing.T) {
	obs := &recordingObserver{}
	h := api.Chain(newHandler(), api.Instrument(obs))

	do(t, h, http.MethodPost, "/todos", `{"title":"a"}`)
	do(t, h, http.MethodGet, "/todos/1", "")
	do(t, h, http.MethodGet, "/todos/2", "")

	want := []observation{
		{http.MethodPost, "/todos", http.StatusCreated},
		{http.MethodGet, "/todos/{id}", http.StatusOK},
		{http.MethodGet, "/todos/{id}", http.StatusNotFound},
	}
	if len(obs.obs) != len(want) {
		t.Fatalf("observations: got %v, want %v", obs.obs, want)
	}
	for i := range want {
		if obs.obs[i] != want[i] {
			t.Errorf("observation %d: got %+v, want %+v", i, obs.obs[i], want[i])
		}
	}
}

func TestAccessLog_WritesRequestLine(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h := api.Chain(newHandler(), api.RequestID(), api.AccessLog(logger))

	do(t, h, http.MethodGet, "/todos/3", "")

	out := buf.String()
	for _, want := range []string{`"msg":"http request"`, `"path":"/todos/3"`, `"status":404`, `"request_id":"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log line missing %s: %s", want, out)
		}
	}
}

func TestRoute(t *testing.T) {
	cases := map[string]string{
		"/todos":    "/todos",
		"/todos/":   "/todos",
		"/todos/12": "/todos/{id}",
		"/metrics":  "/metrics",
		"/healthz":  "/healthz",
		"/ws/todos": "/ws/todos",
		"/favicon":  "other",
	}
	for path, want := range cases {
		if got := api.Route(path); got != want {
			t.Errorf("Route(%q): got %q, want %q", path, got, want)
		}
	}
}
