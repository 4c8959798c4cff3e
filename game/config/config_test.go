package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	if err != nil {
		t.Fatalf("Failed to load defaults: %v", err)
	}

	if cfg.Addr() != "localhost:5000" {
		t.Errorf("Expected localhost:5000, got %s", cfg.Addr())
	}
	if cfg.ScoresDB != "scores.db" {
		t.Errorf("Expected scores.db, got %q", cfg.ScoresDB)
	}
	if cfg.SessionsDir != "" {
		t.Errorf("Expected session snapshots disabled, got %q", cfg.SessionsDir)
	}
	if cfg.SessionTTL != 24*time.Hour || cfg.SweepInterval != time.Hour {
		t.Errorf("Unexpected expiry settings: ttl=%v interval=%v", cfg.SessionTTL, cfg.SweepInterval)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Errorf("Expected wildcard origin, got %v", cfg.AllowedOrigins)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected info log level, got %q", cfg.LogLevel)
	}
	if cfg.Ngrok.Enabled {
		t.Error("Expected ngrok disabled by default")
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"PONG_HOST":            "0.0.0.0",
		"PONG_PORT":            "9090",
		"PONG_SESSIONS_DIR":    "/tmp/sessions",
		"PONG_SESSION_TTL":     "30m",
		"PONG_ALLOWED_ORIGINS": "http://a.example,http://b.example",
		"PONG_LOG_LEVEL":       "debug",
		"PONG_NGROK_ENABLED":   "true",
		"PONG_NGROK_AUTHTOKEN": "token",
		"PONG_NGROK_DOMAIN":    "pong.ngrok.app",
	})
	if err != nil {
		t.Fatalf("Failed to load overrides: %v", err)
	}

	if cfg.Addr() != "0.0.0.0:9090" {
		t.Errorf("Expected 0.0.0.0:9090, got %s", cfg.Addr())
	}
	if cfg.SessionsDir != "/tmp/sessions" {
		t.Errorf("Expected sessions dir, got %q", cfg.SessionsDir)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("Expected 30m TTL, got %v", cfg.SessionTTL)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.example" {
		t.Errorf("Unexpected origins %v", cfg.AllowedOrigins)
	}
	if !cfg.Ngrok.Enabled || cfg.Ngrok.AuthToken != "token" || cfg.Ngrok.Domain != "pong.ngrok.app" {
		t.Errorf("Unexpected ngrok config %+v", cfg.Ngrok)
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		environ map[string]string
		wantErr string
	}{
		{"unparsable port", map[string]string{"PONG_PORT": "http"}, "parse env"},
		{"port out of range", map[string]string{"PONG_PORT": "70000"}, "out of range"},
		{"unparsable ttl", map[string]string{"PONG_SESSION_TTL": "soon"}, "parse env"},
		{"negative ttl", map[string]string{"PONG_SESSION_TTL": "-1m"}, "session TTL"},
		{"unknown log level", map[string]string{"PONG_LOG_LEVEL": "chatty"}, "log level"},
		{"ngrok without token", map[string]string{"PONG_NGROK_ENABLED": "true"}, "auth token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.environ)
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_ReportsAllErrors(t *testing.T) {
	cfg := Config{Port: -1, LogLevel: "loud", SessionTTL: -time.Second}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected error")
	}
	for _, want := range []string{"port", "log level", "session TTL"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected %q in %v", want, err)
		}
	}
}
