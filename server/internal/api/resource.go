package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/todomvc/todo-backend/pkg/types"
	"github.com/todomvc/todo-backend/server/internal/store"
)

type baseURLKey struct{}

// WithBaseURL returns a copy of ctx carrying the base used for self-links.
func WithBaseURL(ctx context.Context, base string) context.Context {
	return context.WithValue(ctx, baseURLKey{}, strings.TrimRight(base, "/"))
}

// BaseURLFrom returns the self-link base stored in ctx, or "".
func BaseURLFrom(ctx context.Context) string {
	base, _ := ctx.Value(baseURLKey{}).(string)
	return base
}

// Href returns the self-link of t under base.
func Href(base string, t types.Todo) string {
	return strings.TrimRight(base, "/") + "/todos/" + strconv.FormatInt(t.ID, 10)
}

// ToResource pairs t with its self-link.
func ToResource(base string, t types.Todo) ResourceWithURL {
	return ResourceWithURL{Todo: t, Href: Href(base, t)}
}

// respondWithResource wraps t as a resource using the base carried by ctx.
func respondWithResource(ctx context.Context, t types.Todo, status int) Response {
	return Response{Status: status, Body: ToResource(BaseURLFrom(ctx), t)}
}

// statusFor maps a store error to the status code it is surfaced as.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// requestBaseURL derives the self-link base from the request's scheme and host.
func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = p
	}
	return scheme + "://" + r.Host
}
