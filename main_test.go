package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bytedit/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootRequiresOneFile(t *testing.T) {
	if _, err := execute(t); err == nil {
		t.Fatal("expected an error without a file argument")
	}
	if _, err := execute(t, "a.bin", "b.bin"); err == nil {
		t.Fatal("expected an error with two file arguments")
	}
}

func TestConfigPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BYTEDIT_CONFIG_HOME", dir)

	out, err := execute(t, "config", "path")
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	if got := strings.TrimSpace(out); got != filepath.Join(dir, "bytedit.toml") {
		t.Fatalf("config path = %q, want %q", got, filepath.Join(dir, "bytedit.toml"))
	}
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BYTEDIT_CONFIG_HOME", dir)
	path := filepath.Join(dir, "bytedit.toml")

	if _, err := execute(t, "config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "undo_capacity = 1024") {
		t.Fatalf("unexpected config contents:\n%s", data)
	}

	if _, err := execute(t, "config", "init"); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}
	if _, err := execute(t, "config", "init", "--force"); err != nil {
		t.Fatalf("config init --force: %v", err)
	}
}

func TestConfigCommandsHonorConfigFlag(t *testing.T) {
	t.Setenv("BYTEDIT_CONFIG_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "custom.toml")

	out, err := execute(t, "--config", path, "config", "path")
	if err != nil {
		t.Fatalf("config path: %v", err)
	}
	if got := strings.TrimSpace(out); got != path {
		t.Fatalf("config path = %q, want %q", got, path)
	}

	if _, err := execute(t, "config", "init", "--config", path); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config init did not write %s: %v", path, err)
	}
	if _, err := os.Stat(config.ConfigPath()); !os.IsNotExist(err) {
		t.Errorf("config init also wrote the default path: %v", err)
	}
}

func TestLoadConfigExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	os.WriteFile(path, []byte("[editor]\ngoto_limit = 7\n"), 0o644)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Editor.GotoLimit != 7 {
		t.Fatalf("GotoLimit = %d, want 7", cfg.Editor.GotoLimit)
	}
}
