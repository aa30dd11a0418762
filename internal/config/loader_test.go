package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "craftbridge.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
version: "1"
data_dir: /var/lib/craftbridge
modules:
  channel.telegram:
    token: "123:abc"
    chats: [-1001]
  bridge.forwarder: {}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Version != "1" {
		t.Errorf("Version = %q, want 1", cfg.Version)
	}
	if cfg.DataDir != "/var/lib/craftbridge" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if len(cfg.Modules) != 2 {
		t.Errorf("Modules = %d entries, want 2", len(cfg.Modules))
	}

	ids := cfg.ModuleIDs()
	if len(ids) != 2 || ids[0] != "bridge.forwarder" || ids[1] != "channel.telegram" {
		t.Errorf("ModuleIDs() = %v, want sorted [bridge.forwarder channel.telegram]", ids)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() of missing file = nil error, want error")
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("CB_TOKEN", "123:abc")

	out, err := expandEnv([]byte("token: ${CB_TOKEN}\norigin: ${CB_ORIGIN:-https://api.telegram.org}\n"))
	if err != nil {
		t.Fatalf("expandEnv() error: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "token: 123:abc") {
		t.Errorf("expanded = %q, missing env value", s)
	}
	if !strings.Contains(s, "origin: https://api.telegram.org") {
		t.Errorf("expanded = %q, missing default value", s)
	}
}

func TestExpandEnvUnresolved(t *testing.T) {
	_, err := expandEnv([]byte("token: ${CB_DEFINITELY_UNSET_VAR}\n"))
	if err == nil {
		t.Fatal("expandEnv() = nil error for unset variable, want error")
	}
	if !strings.Contains(err.Error(), "CB_DEFINITELY_UNSET_VAR") {
		t.Errorf("error = %v, should name the variable", err)
	}
}

func TestExpandEnvPrefersEnvOverDefault(t *testing.T) {
	t.Setenv("CB_ORIGIN", "http://localhost:8081")

	out, err := expandEnv([]byte("origin: ${CB_ORIGIN:-https://api.telegram.org}\n"))
	if err != nil {
		t.Fatalf("expandEnv() error: %v", err)
	}
	if !strings.Contains(string(out), "http://localhost:8081") {
		t.Errorf("expanded = %q, want env value to win", out)
	}
}
