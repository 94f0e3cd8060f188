// Package ws implements the WebSocket stream of the todo list.
//
// Hub manages a set of connected clients and pushes the full list of todo
// resources to all of them whenever the list changes (Notify) and on a
// periodic tick, so a client that missed a message catches up.
//
// New(source, baseURL, interval) creates a Hub.
// Hub.Run(ctx) runs the push loop; it blocks until ctx is cancelled, then
// closes all active connections.
// Hub.ServeHTTP upgrades an HTTP connection to WebSocket, sends the current
// list immediately on connect, then streams updates.
//
// Message format sent to clients:
//
//	{
//	  "event": "todos",
//	  "data":  [ /* same schema as GET /todos */ ]
//	}
//
// The stream is read-only: frames sent by clients are discarded. The
// upgrader accepts all origins. The server mounts the hub at /ws/todos.
package ws
