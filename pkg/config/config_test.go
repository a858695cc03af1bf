package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HTTP_PORT", "")
	t.Setenv("POS_TRANSPORT", "")
	t.Setenv("POS_SUBMIT_TIMEOUT", "")
	t.Setenv("DATABASE_URL", "")

	cfg := Load()
	if cfg.HTTPPort != 8080 || cfg.GRPCPort != 8081 {
		t.Fatalf("unexpected ports: http=%d grpc=%d", cfg.HTTPPort, cfg.GRPCPort)
	}
	if cfg.POS.Transport != "http" {
		t.Fatalf("expected http transport, got %q", cfg.POS.Transport)
	}
	if cfg.POS.SubmitTimeout != 10*time.Second {
		t.Fatalf("expected 10s submit timeout, got %v", cfg.POS.SubmitTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("ENABLE_AUTH", "true")
	t.Setenv("POS_TRANSPORT", "GRPC")
	t.Setenv("POS_SUBMIT_TIMEOUT", "250ms")
	t.Setenv("POS_API_URL", "http://pos.local/api/")

	cfg := Load()
	if cfg.HTTPPort != 9090 {
		t.Fatalf("expected 9090, got %d", cfg.HTTPPort)
	}
	if !cfg.EnableAuth {
		t.Fatal("expected auth enabled")
	}
	if cfg.POS.Transport != "grpc" {
		t.Fatalf("expected grpc, got %q", cfg.POS.Transport)
	}
	if cfg.POS.SubmitTimeout != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %v", cfg.POS.SubmitTimeout)
	}
	if cfg.POS.APIURL != "http://pos.local/api" {
		t.Fatalf("trailing slash not trimmed: %q", cfg.POS.APIURL)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("GRPC_PORT", "not-a-number")
	t.Setenv("POS_SUBMIT_TIMEOUT", "-3s")

	cfg := Load()
	if cfg.GRPCPort != 8081 {
		t.Fatalf("expected fallback 8081, got %d", cfg.GRPCPort)
	}
	if cfg.POS.SubmitTimeout != 10*time.Second {
		t.Fatalf("expected fallback timeout, got %v", cfg.POS.SubmitTimeout)
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := Config{Postgres: PostgresConfig{Host: "db", Port: 5433, User: "u", Pass: "p", DB: "d"}}
	want := "host=db port=5433 user=u password=p dbname=d sslmode=disable"
	if got := cfg.PostgresDSN(); got != want {
		t.Fatalf("got %q want %q", got, want)
	}

	cfg.DatabaseURL = "postgres://x"
	if got := cfg.PostgresDSN(); got != "postgres://x" {
		t.Fatalf("DATABASE_URL should win, got %q", got)
	}
}
