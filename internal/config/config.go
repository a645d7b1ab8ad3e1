// Package config loads placecore's startup configuration from
// environment variables (PLACECORE_*), an optional TOML file, and an
// optional YAML override file, using github.com/spf13/viper with
// github.com/BurntSushi/toml and gopkg.in/yaml.v3 decoders registered.
// Mirrors the teacher's internal/config package's viper-backed
// flag/env layer plus internal/config/yaml_config.go's project-local
// YAML override file, collapsed into one loader since this domain has
// no per-command CLI flag layer to merge in ahead of it.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

// Config is the full set of startup knobs: backend selection, storage
// location, accepted licenses, moderated-tag seed rules, search/index
// flush debounce, and reminder-task timing.
type Config struct {
	// Storage backend selection (spec.md §4.2/C3): "memory", "sqlite"
	// or "dolt".
	Backend     string        `mapstructure:"backend"`
	Path        string        `mapstructure:"path"`
	OpenTimeout time.Duration `mapstructure:"open_timeout"`

	// Dolt-only server mode (internal/storage/dolt.Config).
	ServerMode bool   `mapstructure:"server_mode"`
	ServerHost string `mapstructure:"server_host"`
	ServerPort int    `mapstructure:"server_port"`
	ServerUser string `mapstructure:"server_user"`
	Database   string `mapstructure:"database"`

	// AcceptedLicenses gates create_place (apperr.LicenseNotAccepted).
	AcceptedLicenses []string `mapstructure:"accepted_licenses"`

	// ModeratedTagSeeds bootstraps an organization's reserved-tag
	// rules at startup (internal/clearance), keyed by organization id.
	ModeratedTagSeeds []ModeratedTagSeed `mapstructure:"moderated_tag_seeds"`

	// IndexFlushDebounce bounds how long search.Index.FlushIndex may
	// be deferred; the in-memory index is synchronous today (spec.md
	// §4.5) so this only matters if a future backend batches flushes.
	IndexFlushDebounce time.Duration `mapstructure:"index_flush_debounce"`

	// Reminder task timing (spec.md §5, internal/workflow/reminder.go).
	ReminderInterval      time.Duration `mapstructure:"reminder_interval"`
	ReminderNotUpdatedFor time.Duration `mapstructure:"reminder_not_updated_for"`
	ReminderResendPeriod  time.Duration `mapstructure:"reminder_resend_period"`
	ReminderPageSize      int           `mapstructure:"reminder_page_size"`

	// ReindexInterval drives the crash-recovery reindex pass (spec.md
	// §5, workflow.ReindexStalePlaces).
	ReindexInterval time.Duration `mapstructure:"reindex_interval"`
}

// ModeratedTagSeed bootstraps one organization's moderated-tag rule
// from configuration rather than requiring an operator to call
// RegisterModeratedTag out of band.
type ModeratedTagSeed struct {
	OrgID            string `mapstructure:"org_id"`
	Label            string `mapstructure:"label"`
	AllowAdd         bool   `mapstructure:"allow_add"`
	AllowRemove      bool   `mapstructure:"allow_remove"`
	RequireClearance bool   `mapstructure:"require_clearance"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("backend", "sqlite")
	v.SetDefault("path", "placecore.db")
	v.SetDefault("open_timeout", 10*time.Second)
	v.SetDefault("index_flush_debounce", 0)
	v.SetDefault("reminder_interval", 24*time.Hour)
	v.SetDefault("reminder_not_updated_for", 365*24*time.Hour)
	v.SetDefault("reminder_resend_period", 30*24*time.Hour)
	v.SetDefault("reminder_page_size", 100)
	v.SetDefault("reindex_interval", time.Hour)
}

// Options controls where Load looks for file-based configuration.
// Either path may be empty, in which case that layer is skipped.
type Options struct {
	// TOMLPath is the primary config file, read first.
	TOMLPath string
	// YAMLPath is a project-local override file, merged in on top of
	// TOMLPath, mirroring the teacher's config.yaml override layer.
	YAMLPath string
}

// Load builds a Config from defaults, an optional TOML file, an
// optional YAML override file, and PLACECORE_*-prefixed environment
// variables, in ascending priority order.
func Load(opts Options) (*Config, error) {
	v := viper.New()
	defaults(v)

	v.SetEnvPrefix("placecore")
	v.AutomaticEnv()

	// The primary file is TOML, decoded with BurntSushi/toml (viper's
	// own TOML support pulls in a different parser; this keeps the
	// dependency the teacher's stack actually carries load-bearing)
	// and merged into viper as a settings map.
	if opts.TOMLPath != "" {
		var raw map[string]any
		if _, err := toml.DecodeFile(opts.TOMLPath, &raw); err != nil {
			return nil, fmt.Errorf("read toml config %s: %w", opts.TOMLPath, err)
		}
		if err := v.MergeConfigMap(raw); err != nil {
			return nil, fmt.Errorf("merge toml config %s: %w", opts.TOMLPath, err)
		}
	}

	if opts.YAMLPath != "" {
		ov := viper.New()
		ov.SetConfigFile(opts.YAMLPath)
		ov.SetConfigType("yaml")
		if err := ov.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read yaml override %s: %w", opts.YAMLPath, err)
		}
		if err := v.MergeConfigMap(ov.AllSettings()); err != nil {
			return nil, fmt.Errorf("merge yaml override %s: %w", opts.YAMLPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
