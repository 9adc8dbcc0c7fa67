package config

import (
	"path/filepath"
	"testing"
)

func TestLoadAutoCreatesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client.yaml")

	cfg, st := Load(path, true)
	if !st.Ok() {
		t.Fatalf("load failed: %v", st)
	}
	if cfg.Device.Port != 6480 {
		t.Fatalf("expected default port 6480, got %d", cfg.Device.Port)
	}

	cfg2, st := Load(path, false)
	if !st.Ok() {
		t.Fatalf("reload of auto-created file failed: %v", st)
	}
	if cfg2.Device.Host != cfg.Device.Host {
		t.Fatalf("round trip mismatch: %+v vs %+v", cfg, cfg2)
	}
}

func TestLoadMissingWithoutAutoCreate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing.yaml")

	if _, st := Load(path, false); st.Ok() {
		t.Fatalf("expected not_found for missing config without auto-create")
	}
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := Default()
	cfg.Device.Port = 70000
	if st := Validate(cfg); st.Ok() {
		t.Fatalf("expected invalid_argument for out-of-range port")
	}
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "chatty"
	if st := Validate(cfg); st.Ok() {
		t.Fatalf("expected invalid_argument for unrecognized log level")
	}
}
