package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hangyu-feng/myplan-calendar/internal/schedule"
)

// Source kinds.
const (
	SourceFile    = "file"
	SourceURL     = "url"
	SourceBrowser = "browser"
)

const (
	defaultListen       = "127.0.0.1:8080"
	defaultLogLevel     = "info"
	defaultRefresh      = "*/30 * * * *"
	defaultPopoverWidth = 320
	defaultSourcePath   = "./plan-items.yaml"
	defaultCacheDir     = "./cache/snapshots"
	defaultWaitSelector = `li[id^="plan-item-"]`
	defaultTimeoutSec   = 30

	// DateLayout is the format of term start/end dates.
	DateLayout = "2006-01-02"
)

// SourceConfig describes where plan item snapshots come from.
type SourceConfig struct {
	// Kind is one of "file", "url" or "browser".
	Kind string `yaml:"kind" json:"kind"`

	// Path is a YAML or JSON snapshot file (kind=file).
	Path string `yaml:"path,omitempty" json:"path,omitempty"`

	// URL is either a JSON snapshot endpoint (kind=url) or the plan page to
	// open in headless Chromium (kind=browser).
	URL string `yaml:"url,omitempty" json:"url,omitempty"`

	// WaitSelector is the CSS selector awaited before collecting items.
	WaitSelector string `yaml:"wait_selector,omitempty" json:"wait_selector,omitempty"`

	// CacheDir stores ETag/Last-Modified metadata for kind=url.
	CacheDir string `yaml:"cache_dir,omitempty" json:"cache_dir,omitempty"`

	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// Timeout returns TimeoutSeconds as a duration.
func (s SourceConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// TermConfig bounds the weekly recurrence in calendar exports.
type TermConfig struct {
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end" json:"end"`
}

// Range parses the term dates. Both must be set for an export to be possible.
func (t TermConfig) Range() (time.Time, time.Time, error) {
	if t.Start == "" || t.End == "" {
		return time.Time{}, time.Time{}, errors.New("config: term start and end are required")
	}
	start, err := time.ParseInLocation(DateLayout, t.Start, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("config: term start: %w", err)
	}
	end, err := time.ParseInLocation(DateLayout, t.End, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("config: term end: %w", err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.New("config: term ends before it starts")
	}
	return start, end, nil
}

// BasicAuthConfig protects the web UI/API. PasswordHash is an argon2id hash
// produced by the hash-password command.
type BasicAuthConfig struct {
	Username     string `yaml:"username" json:"username"`
	PasswordHash string `yaml:"password_hash" json:"password_hash"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the calendar API.
	Listen string `yaml:"listen" json:"listen"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// RefreshCron is a cron-style schedule string (e.g. "*/30 * * * *")
	// on which the served calendar is rebuilt from its source.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	Grid schedule.Grid `yaml:"grid" json:"grid"`

	// PopoverWidth is the preferred width of the detail panel in pixels.
	PopoverWidth float64 `yaml:"popover_width" json:"popover_width"`

	Source SourceConfig `yaml:"source" json:"source"`

	Term TermConfig `yaml:"term" json:"term"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:       defaultListen,
		LogLevel:     defaultLogLevel,
		RefreshCron:  defaultRefresh,
		Grid:         schedule.DefaultGrid(),
		PopoverWidth: defaultPopoverWidth,
		Source: SourceConfig{
			Kind:           SourceFile,
			Path:           defaultSourcePath,
			WaitSelector:   defaultWaitSelector,
			CacheDir:       defaultCacheDir,
			TimeoutSeconds: defaultTimeoutSec,
		},
	}
}

// Normalize fills in missing/zero values with defaults so that partially
// filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefresh
	}

	// A grid must cover at least one hour of a single day.
	g := c.Grid
	if g.StartHour < 0 || g.StartHour > 23 || g.EndHour <= g.StartHour || g.EndHour > 24 || g.HourHeight <= 0 {
		c.Grid = schedule.DefaultGrid()
	}
	if c.PopoverWidth <= 0 {
		c.PopoverWidth = defaultPopoverWidth
	}

	c.Source.Kind = strings.ToLower(strings.TrimSpace(c.Source.Kind))
	switch c.Source.Kind {
	case SourceFile, SourceURL, SourceBrowser:
	case "":
		c.Source.Kind = SourceFile
	default:
		// Unknown kinds are rejected later by source.New with a clear error.
	}
	if c.Source.Kind == SourceFile && c.Source.Path == "" {
		c.Source.Path = defaultSourcePath
	}
	if c.Source.WaitSelector == "" {
		c.Source.WaitSelector = defaultWaitSelector
	}
	if c.Source.CacheDir == "" {
		c.Source.CacheDir = defaultCacheDir
	}
	if c.Source.TimeoutSeconds <= 0 {
		c.Source.TimeoutSeconds = defaultTimeoutSec
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the configuration atomically (temp file + rename) with 0600
// permissions, creating the parent directory (0700) if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".myplancal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save is a convenience method delegating to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
