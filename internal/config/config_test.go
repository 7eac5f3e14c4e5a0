package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("display:\n  name: line-1\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Display.Name != "line-1" {
		t.Fatalf("expected name line-1, got %q", cfg.Display.Name)
	}
	if cfg.Display.WindowSize != 6 {
		t.Fatalf("expected default window size 6, got %d", cfg.Display.WindowSize)
	}
	if cfg.Display.GracePeriod != 300*time.Millisecond {
		t.Fatalf("expected default grace 300ms, got %v", cfg.Display.GracePeriod)
	}
	if cfg.Database.Port != 5432 || cfg.RabbitMQ.VHost != "/" {
		t.Fatalf("unexpected connection defaults %+v %+v", cfg.Database, cfg.RabbitMQ)
	}
	if cfg.DatabaseEnabled() || cfg.RabbitEnabled() {
		t.Fatal("connections should be disabled without hosts")
	}
}

func TestParseDurationsAndSections(t *testing.T) {
	raw := `
display:
  name: grill
  window_size: 4
  tick_interval: 500ms
  reset_duration: 20m
database:
  host: db
  user: kds
  password: "secret"
  database: orders
rabbitmq:
  host: mq
  user: guest
redis:
  addr: localhost:6379
  ttl: 30s
http:
  port: 8081
`
	cfg, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Display.WindowSize != 4 || cfg.Display.TickInterval != 500*time.Millisecond {
		t.Fatalf("unexpected display %+v", cfg.Display)
	}
	if cfg.Display.ResetDuration != 20*time.Minute {
		t.Fatalf("expected reset 20m, got %v", cfg.Display.ResetDuration)
	}
	if !cfg.DatabaseEnabled() || !cfg.RabbitEnabled() {
		t.Fatal("expected database and rabbitmq to be enabled")
	}
	if cfg.Database.Password != "secret" || cfg.Redis.TTL != 30*time.Second || cfg.HTTP.Port != 8081 {
		t.Fatalf("unexpected sections %+v %+v %+v", cfg.Database, cfg.Redis, cfg.HTTP)
	}
}

func TestParseRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"window":  "display:\n  window_size: 0\n",
		"tick":    "display:\n  tick_interval: 0s\n",
		"grace":   "display:\n  grace_period: -1s\n",
		"name":    "display:\n  name: \"\"\n",
		"reset":   "display:\n  reset_duration: 10ms\n",
		"garbage": "display: [",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(raw)); err == nil {
				t.Fatalf("expected error for %q", raw)
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "configuration") {
		t.Fatalf("expected wrapped open error, got %v", err)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("display:\n  name: pastry\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Display.Name != "pastry" {
		t.Fatalf("expected pastry, got %q", cfg.Display.Name)
	}
}

func TestExampleConfigLoads(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "deploy", "config.example.yaml"))
	if err != nil {
		t.Fatalf("load example: %v", err)
	}
	if cfg.DatabaseEnabled() || cfg.RabbitEnabled() || cfg.Redis.Addr != "" {
		t.Fatal("example config should run standalone")
	}
	if cfg.Display != Default().Display {
		t.Fatalf("example display section drifted from defaults: %+v", cfg.Display)
	}
}
