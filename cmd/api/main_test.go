package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/BruksfildServices01/barber-turnos/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		ServerPort:         "0",
		StorageEngine:      config.EngineFile,
		DataDir:            t.TempDir(),
		SessionBackend:     config.SessionMemory,
		JWTSecret:          "test-secret",
		ShopTimezone:       "UTC",
		AdminUsername:      "admin",
		AdminPassword:      "admin123",
		RateLimitPerMinute: 10,
		LogLevel:           "error",
	}
}

func discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestRun_SeedFailureReturnsError(t *testing.T) {
	cfg := testConfig(t)
	if err := os.WriteFile(filepath.Join(cfg.DataDir, "users.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := run(context.Background(), cfg, discard()); err == nil {
		t.Fatal("expected an error from a corrupt users file")
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := testConfig(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := run(ctx, cfg, discard()); err != nil {
		t.Fatalf("run: %v", err)
	}

	// the admin was seeded before the server came up
	if _, err := os.Stat(filepath.Join(cfg.DataDir, "users.json")); err != nil {
		t.Errorf("users file: %v", err)
	}
}
