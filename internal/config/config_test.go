package config

import (
	"errors"
	"testing"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv(EnvToken, "tok")
	t.Setenv(EnvBaseURL, "")
	t.Setenv(EnvPageSize, "")
	t.Setenv(EnvOutput, "")
	t.Setenv(EnvWebDir, "")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, DefaultBaseURL)
	}
	if cfg.PageSize != DefaultPageSize {
		t.Errorf("PageSize = %d, want %d", cfg.PageSize, DefaultPageSize)
	}
	if cfg.SnapshotDir != DefaultSnapshotDir {
		t.Errorf("SnapshotDir = %q, want %q", cfg.SnapshotDir, DefaultSnapshotDir)
	}
	if cfg.WebDir != DefaultWebDir {
		t.Errorf("WebDir = %q, want %q", cfg.WebDir, DefaultWebDir)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv(EnvToken, "tok")
	t.Setenv(EnvBaseURL, "http://baserow.local")
	t.Setenv(EnvPageSize, "25")
	t.Setenv(EnvOutput, "/tmp/snapshots")
	t.Setenv(EnvWebDir, "/tmp/web")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.BaseURL != "http://baserow.local" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.PageSize != 25 {
		t.Errorf("PageSize = %d, want 25", cfg.PageSize)
	}
	if cfg.SnapshotDir != "/tmp/snapshots" {
		t.Errorf("SnapshotDir = %q", cfg.SnapshotDir)
	}
}

func TestFromEnvInvalidPageSize(t *testing.T) {
	t.Setenv(EnvToken, "tok")
	for _, v := range []string{"abc", "0", "-5"} {
		t.Setenv(EnvPageSize, v)
		if _, err := FromEnv(); err == nil {
			t.Errorf("FromEnv with page size %q: expected error", v)
		}
	}
}

func TestRequireToken(t *testing.T) {
	t.Setenv(EnvToken, "")
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv without token should not fail: %v", err)
	}
	if err := cfg.RequireToken(); !errors.Is(err, ErrMissingToken) {
		t.Errorf("RequireToken = %v, want ErrMissingToken", err)
	}

	cfg.Token = "tok"
	if err := cfg.RequireToken(); err != nil {
		t.Errorf("RequireToken with token set: %v", err)
	}
}

func TestTablesFixedOrder(t *testing.T) {
	want := []string{"companies", "tools", "libraries"}
	if len(Tables) != len(want) {
		t.Fatalf("Tables has %d entries, want %d", len(Tables), len(want))
	}
	for i, name := range want {
		if Tables[i].Name != name {
			t.Errorf("Tables[%d].Name = %q, want %q", i, Tables[i].Name, name)
		}
		if Tables[i].ID == 0 {
			t.Errorf("Tables[%d].ID is zero", i)
		}
	}
}
