// Package types defines the Go types shared by the server packages and by
// API clients: the Todo item and the partial update applied to it.
// These are the canonical in-memory representations; the hypermedia wire
// form (a Todo plus its self-link) lives in server/internal/api.
package types
