package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// HubConfig holds the full TOML-driven migration hub configuration.
type HubConfig struct {
	Source    SourceConfig    `toml:"source"`
	Target    TargetConfig    `toml:"target"`
	Kafka     KafkaConfig     `toml:"kafka"`
	Migration MigrationConfig `toml:"migration"`
	Hooks     HooksConfig     `toml:"hooks"`
	LogLevel  string          `toml:"log_level"` // debug|info|warn|error

	// configDir is the directory containing the TOML file, used to resolve
	// relative file paths.
	configDir string
}

// SourceConfig identifies the source system and how to reach it.
type SourceConfig struct {
	Kind string `toml:"kind"` // postgres|mysql|sqlite|csv|remote
	DSN  string `toml:"dsn"`
	Path string `toml:"path"` // csv: directory of .csv/.json files
	URL  string `toml:"url"`  // remote: model catalog base URL
	Key  string `toml:"key"`  // remote: API key, optional
}

// TargetConfig identifies where migrated records land and where the target
// model catalog lives.
type TargetConfig struct {
	Kind       string `toml:"kind"` // postgres|memory
	DSN        string `toml:"dsn"`
	CatalogURL string `toml:"catalog_url"` // remote model catalog for comparison
	CatalogKey string `toml:"catalog_key"`
}

// KafkaConfig controls the streaming transport. Disabled switches the
// pipeline to the in-process broker.
type KafkaConfig struct {
	Brokers     []string `toml:"brokers"`
	TopicPrefix string   `toml:"topic_prefix"`
	Disabled    bool     `toml:"disabled"`
}

// MigrationConfig tunes the record pipeline and the mapping heuristics.
type MigrationConfig struct {
	BatchSize           int
	PollTimeout         time.Duration
	MaxRetries          int
	RetryDelay          time.Duration
	SuggestionThreshold int     // 0..100
	RenameThreshold     float64 // 0..1
}

// duration decodes TOML duration strings like "500ms".
type duration struct{ time.Duration }

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// hubFile mirrors the TOML layout. The migration section uses pointers so
// an omitted key and an explicit zero both fall back to the defaults.
type hubFile struct {
	Source    SourceConfig  `toml:"source"`
	Target    TargetConfig  `toml:"target"`
	Kafka     KafkaConfig   `toml:"kafka"`
	Migration migrationFile `toml:"migration"`
	Hooks     HooksConfig   `toml:"hooks"`
	LogLevel  string        `toml:"log_level"`
}

type migrationFile struct {
	BatchSize           *int      `toml:"batch_size"`
	PollTimeout         *duration `toml:"poll_timeout"`
	MaxRetries          *int      `toml:"max_retries"`
	RetryDelay          *duration `toml:"retry_delay"`
	SuggestionThreshold *int      `toml:"suggestion_threshold"`
	RenameThreshold     *float64  `toml:"rename_threshold"`
}

// loadConfig reads a TOML config file and returns a HubConfig with defaults
// applied.
func loadConfig(path string) (*HubConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	file := hubFile{
		LogLevel: "info",
		Kafka: KafkaConfig{
			TopicPrefix: "migration",
		},
	}
	md, err := toml.Decode(string(data), &file)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if unknown := md.Undecoded(); len(unknown) > 0 {
		keys := make([]string, len(unknown))
		for i, k := range unknown {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}

	cfg := HubConfig{
		Source:    file.Source,
		Target:    file.Target,
		Kafka:     file.Kafka,
		Migration: defaultMigrationConfig(),
		Hooks:     file.Hooks,
		LogLevel:  file.LogLevel,
	}
	m := &cfg.Migration
	if file.Migration.BatchSize != nil {
		m.BatchSize = *file.Migration.BatchSize
	}
	if file.Migration.PollTimeout != nil {
		m.PollTimeout = file.Migration.PollTimeout.Duration
	}
	if file.Migration.MaxRetries != nil {
		m.MaxRetries = *file.Migration.MaxRetries
	}
	if file.Migration.RetryDelay != nil {
		m.RetryDelay = file.Migration.RetryDelay.Duration
	}
	if file.Migration.SuggestionThreshold != nil {
		m.SuggestionThreshold = *file.Migration.SuggestionThreshold
	}
	if file.Migration.RenameThreshold != nil {
		m.RenameThreshold = *file.Migration.RenameThreshold
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	cfg.configDir = filepath.Dir(absPath)

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("log_level must be one of: debug, info, warn, error")
	}

	// Source validation
	if cfg.Source.Kind == "" {
		return nil, fmt.Errorf("source.kind is required")
	}
	if _, err := newSchemaSource(cfg.Source); err != nil {
		return nil, err
	}
	switch cfg.Source.Kind {
	case "csv":
		if cfg.Source.Path == "" {
			return nil, fmt.Errorf("source.path is required for csv sources")
		}
	case "remote":
		if cfg.Source.URL == "" {
			return nil, fmt.Errorf("source.url is required for remote sources")
		}
	default:
		if cfg.Source.DSN == "" {
			return nil, fmt.Errorf("source.dsn is required for %s sources", cfg.Source.Kind)
		}
	}

	if cfg.Target.Kind == "" {
		cfg.Target.Kind = "postgres"
	}
	switch cfg.Target.Kind {
	case "postgres":
		if cfg.Target.DSN == "" {
			return nil, fmt.Errorf("target.dsn is required for postgres targets")
		}
	case "memory":
	default:
		return nil, fmt.Errorf("target.kind must be one of: postgres, memory")
	}

	if !cfg.Kafka.Disabled && len(cfg.Kafka.Brokers) == 0 {
		return nil, fmt.Errorf("kafka.brokers is required unless kafka.disabled is set")
	}
	if cfg.Kafka.TopicPrefix == "" {
		return nil, fmt.Errorf("kafka.topic_prefix must not be empty")
	}

	if m.BatchSize <= 0 {
		m.BatchSize = 100
	}
	if m.PollTimeout <= 0 {
		m.PollTimeout = time.Second
	}
	if m.MaxRetries < 0 {
		return nil, fmt.Errorf("migration.max_retries must not be negative")
	}
	if m.RetryDelay < 0 {
		return nil, fmt.Errorf("migration.retry_delay must not be negative")
	}
	if m.SuggestionThreshold < 0 || m.SuggestionThreshold > 100 {
		return nil, fmt.Errorf("migration.suggestion_threshold must be 0..100")
	}
	if m.RenameThreshold < 0 || m.RenameThreshold > 1 {
		return nil, fmt.Errorf("migration.rename_threshold must be 0..1")
	}

	return &cfg, nil
}

// resolvePath resolves a path relative to the config file directory.
func (c *HubConfig) resolvePath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.configDir, p)
}

func defaultMigrationConfig() MigrationConfig {
	return MigrationConfig{
		BatchSize:           100,
		PollTimeout:         time.Second,
		MaxRetries:          3,
		RetryDelay:          500 * time.Millisecond,
		SuggestionThreshold: 60,
		RenameThreshold:     0.5,
	}
}
