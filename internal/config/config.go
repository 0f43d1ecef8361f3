package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath          = ".dayplan/config.yaml"
	defaultDBPath        = ".dayplan/dayplan.db"
	defaultSnapshotPath  = ".dayplan/snapshot.jsonl"
	defaultListen        = "127.0.0.1:8000"
	defaultHourHeightPx  = 60
	defaultSnapMinutes   = 1
	defaultCommitTimeout = 5 * time.Second
	defaultSnapshotCron  = "*/15 * * * *"
	defaultLogLevel      = "info"
)

// Config is the top-level application configuration.
type Config struct {
	// DBPath is the sqlite database file.
	DBPath string `yaml:"db_path" json:"db_path"`

	// SnapshotPath is where JSONL snapshots are written after each change
	// and on the snapshot schedule. Empty disables snapshots.
	SnapshotPath string `yaml:"snapshot_path" json:"snapshot_path"`

	// Listen is the HTTP listen address for the web API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone days are laid out in. Empty means the
	// system local zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	HourHeightPx float64 `yaml:"hour_height_px" json:"hour_height_px"`
	SnapMinutes  int     `yaml:"snap_minutes" json:"snap_minutes"`

	// CommitTimeout bounds each schedule write issued by a gesture.
	CommitTimeout time.Duration `yaml:"commit_timeout" json:"commit_timeout"`

	// SnapshotCron is a cron expression for periodic snapshot export while
	// the web server runs.
	SnapshotCron string `yaml:"snapshot_cron" json:"snapshot_cron"`

	LogLevel string `yaml:"log_level" json:"log_level"`
}

// Default returns an in-memory default configuration.
func Default() *Config {
	return &Config{
		DBPath:        defaultDBPath,
		SnapshotPath:  defaultSnapshotPath,
		Listen:        defaultListen,
		HourHeightPx:  defaultHourHeightPx,
		SnapMinutes:   defaultSnapMinutes,
		CommitTimeout: defaultCommitTimeout,
		SnapshotCron:  defaultSnapshotCron,
		LogLevel:      defaultLogLevel,
	}
}

// Normalize fills in missing or out of range values so that partially
// filled configs still behave.
func (c *Config) Normalize() {
	if c.DBPath == "" {
		c.DBPath = defaultDBPath
	}
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.HourHeightPx <= 0 {
		c.HourHeightPx = defaultHourHeightPx
	}
	if c.SnapMinutes <= 0 {
		c.SnapMinutes = defaultSnapMinutes
	}
	if c.CommitTimeout < 0 {
		c.CommitTimeout = 0
	}
	if c.SnapshotCron == "" {
		c.SnapshotCron = defaultSnapshotCron
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "error":
		c.LogLevel = strings.ToLower(c.LogLevel)
	default:
		c.LogLevel = defaultLogLevel
	}
}

// Location resolves Timezone, falling back to time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Snap returns the snapping resolution as a duration.
func (c *Config) Snap() time.Duration {
	return time.Duration(c.SnapMinutes) * time.Minute
}

// Load reads configuration from path on fs. On first run the file does not
// exist yet: defaults are written with 0600 perms and returned.
func Load(fsys afero.Fs, path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := Default()
			if err := Save(fsys, path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically via a temp file and rename.
func Save(fsys afero.Fs, path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := fsys.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmp, err := afero.TempFile(fsys, dir, ".dayplan-config-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer fsys.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close config: %w", err)
	}

	if err := fsys.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("failed to chmod config: %w", err)
	}
	if err := fsys.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to rename config: %w", err)
	}

	return nil
}
