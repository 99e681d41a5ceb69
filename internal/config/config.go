package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"workoutcal/internal/model"
	"workoutcal/internal/view"
)

// NOTE: This file provides the configuration model and full YAML-based
// load/save behavior, including first-run config creation and 0600
// permissions.

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// ChipConfig controls how workout duration maps to chip height in the grid.
type ChipConfig struct {
	BaseHeight       float64 `yaml:"base_height" json:"base_height"`
	ReferenceMinutes int     `yaml:"reference_minutes" json:"reference_minutes"`
	PerMinute        float64 `yaml:"per_minute" json:"per_minute"`
	MaxHeight        float64 `yaml:"max_height" json:"max_height"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone whose calendar days workouts are bucketed
	// by (e.g. "Asia/Seoul").
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart controls which weekday is treated as the first day of the week
	// in the month grid. Supported values:
	//   - "monday" (default)
	//   - "sunday"
	WeekStart string `yaml:"week_start" json:"week_start"`

	// RolloverCron is a cron-style schedule string (e.g. "0 0 * * *") on
	// which cached month views are dropped so the "today" marker moves.
	RolloverCron string `yaml:"rollover_cron" json:"rollover_cron"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// FallbackColor is used for workouts whose calendar is not in the roster.
	FallbackColor string `yaml:"fallback_color" json:"fallback_color"`

	Chip ChipConfig `yaml:"chip" json:"chip"`

	// Calendars is the session roster: the current user plus followed
	// trainees.
	Calendars []model.Calendar `yaml:"calendars" json:"calendars"`

	// Dataset is a YAML or .ics file, or an http(s) iCalendar feed, with the
	// initial workouts. If empty, a generated mock dataset is used.
	Dataset string `yaml:"dataset,omitempty" json:"dataset,omitempty"`

	// DatasetCacheDir keeps the last good copy of a remote dataset.
	DatasetCacheDir string `yaml:"dataset_cache_dir" json:"dataset_cache_dir"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultRoster is written into a freshly created config file.
func DefaultRoster() []model.Calendar {
	return []model.Calendar{
		{ID: "me", Name: "My workouts", Color: "#1e88e5", OwnerUserID: "user-me", IsCurrentUser: true},
		{ID: "trainee-alex", Name: "Alex", Color: "#43a047", OwnerUserID: "user-alex"},
		{ID: "trainee-sam", Name: "Sam", Color: "#fb8c00", OwnerUserID: "user-sam"},
	}
}

func defaultChip() ChipConfig {
	return ChipConfig{
		BaseHeight:       view.DefaultHeightScale.Base,
		ReferenceMinutes: view.DefaultHeightScale.ReferenceMinutes,
		PerMinute:        view.DefaultHeightScale.PerMinute,
		MaxHeight:        view.DefaultHeightScale.Max,
	}
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:          "127.0.0.1:8080",
		Timezone:        "Asia/Seoul",
		WeekStart:       "monday",
		RolloverCron:    "0 0 * * *",
		LogLevel:        "info",
		FallbackColor:   view.DefaultFallbackColor,
		Chip:            defaultChip(),
		Calendars:       DefaultRoster(),
		DatasetCacheDir: "./cache/feeds",
		BasicAuth:       nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "Asia/Seoul"
	}
	switch strings.ToLower(c.WeekStart) {
	case "monday", "sunday":
		c.WeekStart = strings.ToLower(c.WeekStart)
	default:
		// Unknown value; fall back to monday to avoid surprising layouts.
		c.WeekStart = "monday"
	}
	if c.RolloverCron == "" {
		c.RolloverCron = "0 0 * * *"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.FallbackColor == "" {
		c.FallbackColor = view.DefaultFallbackColor
	}
	if c.DatasetCacheDir == "" {
		c.DatasetCacheDir = "./cache/feeds"
	}

	d := defaultChip()
	if c.Chip.BaseHeight <= 0 {
		c.Chip.BaseHeight = d.BaseHeight
	}
	if c.Chip.ReferenceMinutes <= 0 {
		c.Chip.ReferenceMinutes = d.ReferenceMinutes
	}
	if c.Chip.PerMinute < 0 {
		c.Chip.PerMinute = d.PerMinute
	}
	if c.Chip.MaxHeight < c.Chip.BaseHeight {
		c.Chip.MaxHeight = max(d.MaxHeight, c.Chip.BaseHeight)
	}

	if c.Calendars == nil {
		c.Calendars = []model.Calendar{}
	}
}

// Validate reports problems Normalize cannot paper over.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	if len(c.Calendars) == 0 {
		return errors.New("config: at least one calendar is required")
	}
	seen := make(map[string]bool, len(c.Calendars))
	current := 0
	for _, cal := range c.Calendars {
		if strings.TrimSpace(cal.ID) == "" {
			return errors.New("config: calendar id is empty")
		}
		if seen[cal.ID] {
			return fmt.Errorf("config: duplicate calendar id %q", cal.ID)
		}
		seen[cal.ID] = true
		if cal.IsCurrentUser {
			current++
		}
	}
	if current > 1 {
		return errors.New("config: more than one calendar is marked is_current_user")
	}
	return nil
}

// Location resolves Timezone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// FirstWeekday maps WeekStart onto time.Weekday.
func (c *Config) FirstWeekday() time.Weekday {
	if c.WeekStart == "sunday" {
		return time.Sunday
	}
	return time.Monday
}

// HeightScale converts the chip settings for the view package.
func (c *Config) HeightScale() view.HeightScale {
	return view.HeightScale{
		Base:             c.Chip.BaseHeight,
		ReferenceMinutes: c.Chip.ReferenceMinutes,
		PerMinute:        c.Chip.PerMinute,
		Max:              c.Chip.MaxHeight,
	}
}

// Environment variables that override file values.
const (
	EnvListen   = "WORKOUTCAL_LISTEN"
	EnvTimezone = "WORKOUTCAL_TIMEZONE"
	EnvLogLevel = "WORKOUTCAL_LOG_LEVEL"
	EnvDataset  = "WORKOUTCAL_DATASET"
)

// LoadDotEnv loads KEY=VALUE pairs from the given files (default ".env")
// without overriding variables already set. A missing file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// ApplyEnv overrides fields from WORKOUTCAL_* variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvListen); v != "" {
		c.Listen = v
	}
	if v := os.Getenv(EnvTimezone); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvDataset); v != "" {
		c.Dataset = v
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
			// First run: create default config file.
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

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
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

	tmp, err := os.CreateTemp(dir, ".workoutcal-config-*.tmp")
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

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
