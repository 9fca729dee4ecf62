package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-paramform/pkg/config"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{config.EnvAddr, config.EnvCodec, config.EnvOutput, config.EnvTimeout, config.EnvNamespace, "LOG_LEVEL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestParseArgs(t *testing.T) {
	clearConfigEnv(t)
	cfg, err := parseArgs([]string{"--env-file", "", "-a", ":9000", "-s", "params.yaml", "--body-limit", "1M"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.Seed != "params.yaml" || cfg.Server.BodyLimit != "1M" {
		t.Fatalf("unexpected server config %+v", cfg.Server)
	}

	t.Setenv(config.EnvAddr, "0.0.0.0:1")
	cfg, err = parseArgs([]string{"--env-file", ""}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Server.Addr != "0.0.0.0:1" {
		t.Fatalf("expected env address, got %q", cfg.Server.Addr)
	}

	if _, err := parseArgs([]string{"--env-file", "", "-a", ""}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error for empty address")
	}
}

func TestRun_MissingSeed(t *testing.T) {
	clearConfigEnv(t)
	var stderr bytes.Buffer
	code := run(context.Background(), []string{"--env-file", "", "-s", filepath.Join(t.TempDir(), "missing.yaml")}, &stderr)
	if code != 1 || stderr.Len() == 0 {
		t.Fatalf("expected failure, got %d %q", code, stderr.String())
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	clearConfigEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if code := run(ctx, []string{"--env-file", "", "-a", "127.0.0.1:0"}, &bytes.Buffer{}); code != 0 {
		t.Fatalf("expected clean shutdown, got %d", code)
	}
}
