// Package store holds the todo items of a running server in memory.
//
// Store behaves like an unordered set of types.Todo values: two todos are the
// same element when every field matches, and lookups by id scan linearly.
// Ids are assigned on Create as Count()+1, so an id can be handed out again
// after a deletion.
//
// Store does no locking. Callers that share one Store between goroutines must
// serialize access themselves (the api package does).
package store
