package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestLoadFirstRunWritesDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/home/user/.dayplan/config.yaml"

	cfg, err := Load(fs, path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DBPath != defaultDBPath || cfg.Listen != defaultListen {
		t.Errorf("Expected defaults, got %+v", cfg)
	}

	info, err := fs.Stat(path)
	if err != nil {
		t.Fatalf("Expected config file to be written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("Expected perms 0600, got %o", perm)
	}

	data, _ := afero.ReadFile(fs, path)
	if !strings.Contains(string(data), "db_path:") {
		t.Errorf("Expected yaml keys in file, got:\n%s", data)
	}
}

func TestLoadNormalizesPartialConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	path := "/cfg/config.yaml"
	content := `
timezone: Europe/Berlin
snap_minutes: 15
commit_timeout: 2s
log_level: DEBUG
hour_height_px: -4
`
	if err := afero.WriteFile(fs, path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(fs, path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SnapMinutes != 15 || cfg.Snap() != 15*time.Minute {
		t.Errorf("Expected snap 15m, got %d", cfg.SnapMinutes)
	}
	if cfg.CommitTimeout != 2*time.Second {
		t.Errorf("Expected commit timeout 2s, got %v", cfg.CommitTimeout)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.LogLevel)
	}
	if cfg.HourHeightPx != defaultHourHeightPx {
		t.Errorf("Expected hour height reset to default, got %v", cfg.HourHeightPx)
	}
	if cfg.DBPath != defaultDBPath {
		t.Errorf("Expected default db path, got %s", cfg.DBPath)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/c.yaml", []byte("listen: [unclosed"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := Load(fs, "/c.yaml"); err == nil {
		t.Error("Expected parse error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := Default()
	cfg.Listen = "0.0.0.0:9000"
	cfg.Timezone = "UTC"

	if err := Save(fs, "/a/b/config.yaml", cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := Load(fs, "/a/b/config.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Listen != "0.0.0.0:9000" || got.Timezone != "UTC" {
		t.Errorf("Round trip mismatch: %+v", got)
	}

	entries, _ := afero.ReadDir(fs, "/a/b")
	if len(entries) != 1 {
		t.Errorf("Expected temp file cleaned up, found %d entries", len(entries))
	}
}

func TestEmptyPath(t *testing.T) {
	fs := afero.NewMemMapFs()
	if _, err := Load(fs, ""); err == nil {
		t.Error("Expected error for empty path")
	}
	if err := Save(fs, "", Default()); err == nil {
		t.Error("Expected error for empty path")
	}
}

func TestLocation(t *testing.T) {
	cfg := Default()
	if loc, err := cfg.Location(); err != nil || loc != time.Local {
		t.Errorf("Expected time.Local, got %v (err %v)", loc, err)
	}

	cfg.Timezone = "UTC"
	if loc, err := cfg.Location(); err != nil || loc.String() != "UTC" {
		t.Errorf("Expected UTC, got %v (err %v)", loc, err)
	}

	cfg.Timezone = "Not/AZone"
	loc, err := cfg.Location()
	if err == nil {
		t.Error("Expected error for unknown zone")
	}
	if loc != time.Local {
		t.Errorf("Expected fallback to time.Local, got %v", loc)
	}
}
