package api

import "github.com/todomvc/todo-backend/pkg/types"

// ResourceWithURL is the wire form of a todo: every Todo field plus its
// self-link.
type ResourceWithURL struct {
	types.Todo
	Href string `json:"href"`
}

// Response is the outcome of one wire method: a status code and an optional
// body (a ResourceWithURL or a []ResourceWithURL). A nil Body is written as
// an empty response.
type Response struct {
	Status int
	Body   interface{}
}

// HealthResponse is the payload for GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	Todos  int    `json:"todos"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
