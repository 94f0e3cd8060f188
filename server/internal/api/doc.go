// Package api implements the HTTP REST API for the todo server.
//
// New(wire) returns a Handler that serves:
//
//	GET    /todos       — all todos as resources ([]ResourceWithURL)
//	POST   /todos       — create; 201 + resource
//	DELETE /todos       — remove every todo; 204
//	GET    /todos/{id}  — one todo; 404 if unknown
//	PATCH  /todos/{id}  — merge the body into the todo; 404, 400 on absent body
//	DELETE /todos/{id}  — remove one todo; 204 even if unknown
//	GET    /healthz     — liveness and current todo count
//
// Every resource carries an href self-link of the form <base>/todos/{id}.
// The base is the configured base URL, or the scheme and host of the request.
//
// The Handler never touches the store directly: it calls a WireMethods
// implementation (NewWireMethods in production, a double in tests) and
// serializes those calls, so the store only ever sees one caller at a time.
//
// Store errors (404, 400) are written with an empty body. Transport errors
// (405, 415, malformed JSON) carry {"error": "..."}. No external HTTP
// framework is used.
package api
