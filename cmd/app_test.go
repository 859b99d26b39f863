package main

import (
	"bytes"
	"strings"
	"testing"

	"dynqr/redirector/internal/config"
)

func TestNewLogger(t *testing.T) {
	if _, err := newLogger(config.LogConfig{Level: "debug", Format: "json"}); err != nil {
		t.Errorf("json logger: %v", err)
	}
	if _, err := newLogger(config.LogConfig{Level: "warn", Format: "console"}); err != nil {
		t.Errorf("console logger: %v", err)
	}
	if _, err := newLogger(config.LogConfig{Level: "loud"}); err == nil {
		t.Error("accepted unknown level")
	}
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "test-key")

	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--config", "", "token", "--owner", "6f1c2b8e-4a7d-4c1e-9b3a-2d5e8f0a1b2c"})
	if err := root.Execute(); err != nil {
		t.Fatalf("token: %v", err)
	}
	if !strings.Contains(out.String(), "owner: 6f1c2b8e-4a7d-4c1e-9b3a-2d5e8f0a1b2c") {
		t.Errorf("output = %q", out.String())
	}
	if !strings.Contains(out.String(), "token: ") {
		t.Errorf("no token in output %q", out.String())
	}
}

func TestMigrateRequiresPostgres(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "test-key")

	root := newRootCommand()
	root.SetArgs([]string{"--config", "", "migrate"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	if err := root.Execute(); err != errPostgresRequired {
		t.Errorf("err = %v, want errPostgresRequired", err)
	}
}
