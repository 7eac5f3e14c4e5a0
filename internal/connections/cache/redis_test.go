package cache

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"

	"kitchen-display/internal/config"
)

func TestConnect(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	addr := mr.Addr()
	client, err := Connect(context.Background(), config.RedisConfig{Addr: addr})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	mr.Close()
	if _, err := Connect(context.Background(), config.RedisConfig{Addr: addr}); err == nil {
		t.Fatal("expected ping failure against a stopped server")
	}
}

func TestOptionsFromURL(t *testing.T) {
	opts, err := Options(config.RedisConfig{Addr: "redis://:secret@cache:6380/2"})
	if err != nil {
		t.Fatal(err)
	}
	if opts.Addr != "cache:6380" || opts.Password != "secret" || opts.DB != 2 {
		t.Fatalf("unexpected options %+v", opts)
	}
}
