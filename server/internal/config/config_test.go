package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

// replaceFile atomically swaps the contents of p, the way editors save.
func replaceFile(t *testing.T, p, content string) {
	t.Helper()
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		t.Fatalf("rename config: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	// Server section absent.
	p := writeConfig(t, "config.yaml", `other:
  key: value
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HTTPPort != DefaultHTTPPort {
		t.Errorf("http_port: got %d, want %d", cfg.Server.HTTPPort, DefaultHTTPPort)
	}
	if cfg.Server.Log.Level != DefaultLogLevel || cfg.Server.Log.Format != DefaultLogFormat {
		t.Errorf("log: got %+v", cfg.Server.Log)
	}
	if cfg.Server.Stream.Interval != DefaultStreamInterval {
		t.Errorf("stream.interval: got %v, want %v", cfg.Server.Stream.Interval, DefaultStreamInterval)
	}
	if cfg.Server.CORS.AllowOrigin != DefaultAllowOrigin {
		t.Errorf("cors.allow_origin: got %q, want %q", cfg.Server.CORS.AllowOrigin, DefaultAllowOrigin)
	}
	if cfg.Server.BaseURL != "" {
		t.Errorf("base_url: got %q, want empty", cfg.Server.BaseURL)
	}
}

func TestLoad_FullYAML(t *testing.T) {
	p := writeConfig(t, "config.yaml", `server:
  http_port: 9090
  base_url: https://todo.example.org
  log:
    level: debug
    format: text
  stream:
    interval: 10s
  cors:
    allow_origin: https://app.example.org
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s := cfg.Server
	if s.HTTPPort != 9090 {
		t.Errorf("http_port: got %d, want 9090", s.HTTPPort)
	}
	if s.BaseURL != "https://todo.example.org" {
		t.Errorf("base_url: got %q", s.BaseURL)
	}
	if s.Log.Level != "debug" || s.Log.Format != "text" {
		t.Errorf("log: got %+v", s.Log)
	}
	if s.Stream.Interval != 10*time.Second {
		t.Errorf("stream.interval: got %v, want 10s", s.Stream.Interval)
	}
	if s.CORS.AllowOrigin != "https://app.example.org" {
		t.Errorf("cors.allow_origin: got %q", s.CORS.AllowOrigin)
	}
}

func TestLoad_FullTOML(t *testing.T) {
	p := writeConfig(t, "config.toml", `[server]
http_port = 9191
base_url = "http://todo.local:9191"

[server.log]
level = "warn"
format = "json"

[server.stream]
interval = "2s"

[server.cors]
allow_origin = ""
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s := cfg.Server
	if s.HTTPPort != 9191 {
		t.Errorf("http_port: got %d, want 9191", s.HTTPPort)
	}
	if s.BaseURL != "http://todo.local:9191" {
		t.Errorf("base_url: got %q", s.BaseURL)
	}
	if s.Log.Level != "warn" {
		t.Errorf("log.level: got %q, want warn", s.Log.Level)
	}
	if s.Stream.Interval != 2*time.Second {
		t.Errorf("stream.interval: got %v, want 2s", s.Stream.Interval)
	}
	if s.CORS.AllowOrigin != "" {
		t.Errorf("cors.allow_origin: got %q, want empty", s.CORS.AllowOrigin)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvHTTPPort, "7000")
	t.Setenv(EnvBaseURL, "https://override.example.org")
	t.Setenv(EnvLogLevel, "error")

	p := writeConfig(t, "config.yaml", `server:
  http_port: 9090
  log:
    level: debug
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HTTPPort != 7000 {
		t.Errorf("http_port: got %d, want 7000", cfg.Server.HTTPPort)
	}
	if cfg.Server.BaseURL != "https://override.example.org" {
		t.Errorf("base_url: got %q", cfg.Server.BaseURL)
	}
	if cfg.Server.Log.Level != "error" {
		t.Errorf("log.level: got %q, want error", cfg.Server.Log.Level)
	}
}

func TestLoad_BadEnvPort(t *testing.T) {
	t.Setenv(EnvHTTPPort, "eighty")
	p := writeConfig(t, "config.yaml", "server: {}\n")
	if _, err := Load(p); err == nil {
		t.Fatal("expected error for non-numeric TODO_HTTP_PORT, got nil")
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	cases := map[string]string{
		"port":     "server:\n  http_port: 70000\n",
		"base_url": "server:\n  base_url: not-a-url\n",
		"level":    "server:\n  log:\n    level: loud\n",
		"format":   "server:\n  log:\n    format: xml\n",
		"interval": "server:\n  stream:\n    interval: 0s\n",
	}
	for name, content := range cases {
		p := writeConfig(t, "config.yaml", content)
		if _, err := Load(p); err == nil {
			t.Errorf("%s: expected validation error, got nil", name)
		}
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	p := writeConfig(t, "config.yaml", "server: [unclosed\n")
	if _, err := Load(p); err == nil {
		t.Fatal("expected parse error, got nil")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestDefault(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if cfg.Server.HTTPPort != DefaultHTTPPort {
		t.Errorf("http_port: got %d, want %d", cfg.Server.HTTPPort, DefaultHTTPPort)
	}
}

func TestStreamBaseURL(t *testing.T) {
	s := ServerConfig{HTTPPort: 8081}
	if got := s.StreamBaseURL(); got != "http://localhost:8081" {
		t.Errorf("StreamBaseURL: got %q", got)
	}
	s.BaseURL = "https://todo.example.org"
	if got := s.StreamBaseURL(); got != "https://todo.example.org" {
		t.Errorf("StreamBaseURL with base_url: got %q", got)
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	p := writeConfig(t, "config.yaml", "server:\n  log:\n    level: info\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, p, func(c *Config) { changes <- c })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	replaceFile(t, p, "server:\n  log:\n    level: debug\n")

	select {
	case c := <-changes:
		if c.Server.Log.Level != "debug" {
			t.Errorf("reloaded level: got %q, want debug", c.Server.Log.Level)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no reload within 2s")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatch_InvalidReloadKeepsPrevious(t *testing.T) {
	p := writeConfig(t, "config.yaml", "server:\n  http_port: 8080\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 4)
	go Watch(ctx, p, func(c *Config) { changes <- c }) //nolint:errcheck

	time.Sleep(100 * time.Millisecond)
	replaceFile(t, p, "server:\n  http_port: -1\n")

	select {
	case c := <-changes:
		t.Errorf("onChange called with invalid config: %+v", c.Server)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	err := Watch(context.Background(), "/nonexistent/dir/config.yaml", func(*Config) {})
	if err == nil {
		t.Fatal("expected error watching a missing directory, got nil")
	}
}
