// Package config loads the server configuration file.
//
// The file may be YAML (.yaml, .yml) or TOML (.toml); both decode into the
// same `server:` tree:
//   - HTTPPort          — port for the REST API, metrics and WebSocket stream (default 8080)
//   - BaseURL           — fixed base for resource self-links; empty derives it per request
//   - Log.Level         — debug | info | warn | error (default info)
//   - Log.Format        — json | text (default json)
//   - Stream.Interval   — periodic WebSocket push interval (default 5s)
//   - CORS.AllowOrigin  — Access-Control-Allow-Origin value; empty disables CORS (default "*")
//
// Load(path) applies defaults, decodes the file, applies TODO_* environment
// overrides, then validates. Watch(ctx, path, onChange) reloads the file on
// change using fsnotify.
package config
