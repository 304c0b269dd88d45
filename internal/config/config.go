package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds every engine setting.
type Config struct {
	History HistoryConfig `toml:"history"`
	Pool    PoolConfig    `toml:"pool"`
	Events  EventsConfig  `toml:"events"`
}

// HistoryConfig controls the undo stack.
type HistoryConfig struct {
	// MaxEntries bounds the undo stack depth.
	MaxEntries int `toml:"max_entries"`

	// GroupingWindowMS is the maximum pause, in milliseconds, between
	// edits that still coalesce into one undo entry. Zero disables
	// coalescing.
	GroupingWindowMS int64 `toml:"grouping_window_ms"`

	// GroupingLocality is the position gap, in bytes, still treated as a
	// continuous typing run.
	GroupingLocality int64 `toml:"grouping_locality"`
}

// Window returns the grouping window as a duration.
func (h HistoryConfig) Window() time.Duration {
	return time.Duration(h.GroupingWindowMS) * time.Millisecond
}

// PoolConfig controls buffer pool storage.
type PoolConfig struct {
	// AddBufferLimit is the add-buffer size, in bytes, at which the pool
	// rolls over to a fresh buffer.
	AddBufferLimit int64 `toml:"add_buffer_limit"`

	// CompactionRatio is the live-bytes fraction below which the pool is
	// considered worth compacting, in (0, 1].
	CompactionRatio float64 `toml:"compaction_ratio"`

	// AutoCompact compacts automatically after edits when the ratio
	// threshold is crossed.
	AutoCompact bool `toml:"auto_compact"`
}

// EventsConfig controls change notification.
type EventsConfig struct {
	// ChangeLogCapacity is the number of recent change events retained
	// for catch-up queries.
	ChangeLogCapacity int `toml:"change_log_capacity"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		History: HistoryConfig{
			MaxEntries:       1000,
			GroupingWindowMS: 750,
			GroupingLocality: 0,
		},
		Pool: PoolConfig{
			AddBufferLimit:  64 * 1024,
			CompactionRatio: 0.5,
			AutoCompact:     true,
		},
		Events: EventsConfig{
			ChangeLogCapacity: 1024,
		},
	}
}

// Load reads the TOML file at path, applies LOOM_* environment overrides,
// and validates the result. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults apply.
	case err != nil:
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, &ParseError{Path: path, Err: err}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overlays LOOM_* environment variables.
func (c *Config) applyEnv() error {
	if err := envInt("LOOM_HISTORY_MAX_ENTRIES", &c.History.MaxEntries); err != nil {
		return err
	}
	if err := envInt64("LOOM_HISTORY_GROUPING_WINDOW_MS", &c.History.GroupingWindowMS); err != nil {
		return err
	}
	if err := envInt64("LOOM_HISTORY_GROUPING_LOCALITY", &c.History.GroupingLocality); err != nil {
		return err
	}
	if err := envInt64("LOOM_POOL_ADD_BUFFER_LIMIT", &c.Pool.AddBufferLimit); err != nil {
		return err
	}
	if err := envFloat("LOOM_POOL_COMPACTION_RATIO", &c.Pool.CompactionRatio); err != nil {
		return err
	}
	if err := envBool("LOOM_POOL_AUTO_COMPACT", &c.Pool.AutoCompact); err != nil {
		return err
	}
	return envInt("LOOM_EVENTS_CHANGE_LOG_CAPACITY", &c.Events.ChangeLogCapacity)
}

// Validate checks every setting's range.
func (c Config) Validate() error {
	if c.History.MaxEntries <= 0 {
		return &ValidationError{Field: "history.max_entries", Message: "must be positive"}
	}
	if c.History.GroupingWindowMS < 0 {
		return &ValidationError{Field: "history.grouping_window_ms", Message: "must not be negative"}
	}
	if c.History.GroupingLocality < 0 {
		return &ValidationError{Field: "history.grouping_locality", Message: "must not be negative"}
	}
	if c.Pool.AddBufferLimit <= 0 {
		return &ValidationError{Field: "pool.add_buffer_limit", Message: "must be positive"}
	}
	if c.Pool.CompactionRatio <= 0 || c.Pool.CompactionRatio > 1 {
		return &ValidationError{Field: "pool.compaction_ratio", Message: "must be in (0, 1]"}
	}
	if c.Events.ChangeLogCapacity <= 0 {
		return &ValidationError{Field: "events.change_log_capacity", Message: "must be positive"}
	}
	return nil
}

func envInt(name string, dst *int) error {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return &ValidationError{Field: name, Message: "not an integer: " + v}
	}
	*dst = n
	return nil
}

func envInt64(name string, dst *int64) error {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return &ValidationError{Field: name, Message: "not an integer: " + v}
	}
	*dst = n
	return nil
}

func envFloat(name string, dst *float64) error {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return &ValidationError{Field: name, Message: "not a number: " + v}
	}
	*dst = f
	return nil
}

func envBool(name string, dst *bool) error {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return &ValidationError{Field: name, Message: "not a boolean: " + v}
	}
	*dst = b
	return nil
}
