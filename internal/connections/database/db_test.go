package database

import (
	"strings"
	"testing"

	"kitchen-display/internal/config"
)

func TestDSN(t *testing.T) {
	cfg := config.DatabaseConfig{Host: "db", Port: 5433, User: "kds", Password: "p@ss", Database: "kitchen", SSLMode: "disable", MaxConns: 4}
	dsn := DSN(cfg)
	if !strings.HasPrefix(dsn, "postgres://kds:p%40ss@db:5433/kitchen?") {
		t.Fatalf("unexpected dsn %s", dsn)
	}
	if !strings.Contains(dsn, "sslmode=disable") || !strings.Contains(dsn, "pool_max_conns=4") {
		t.Fatalf("missing query params in %s", dsn)
	}
}
