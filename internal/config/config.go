// Package config provides Viper-based configuration loading for skirmish.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings for the report archive.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// Validate checks the connection settings.
//
// Postcondition: Returns nil if valid, or an error listing every violation.
func (d DatabaseConfig) Validate() error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// File receives log output instead of stderr when non-empty, keeping the
	// terminal free for narration.
	File string `mapstructure:"file"`
}

// BattleConfig holds engine settings for one battle.
type BattleConfig struct {
	// Seed selects a seeded random source for replays; 0 uses crypto randomness.
	Seed uint64 `mapstructure:"seed"`
	// TieBreak orders equal-speed actors: "jitter" or "roster".
	TieBreak string `mapstructure:"tie_break"`
	// Auto lets AI behaviors drive the player's party.
	Auto bool `mapstructure:"auto"`
	// MaxRounds ends the battle in a draw after this many rounds; 0 is unlimited.
	MaxRounds int `mapstructure:"max_rounds"`
	// Color enables ANSI colors in narration.
	Color bool `mapstructure:"color"`
	// MaxInputAttempts bounds invalid menu inputs per prompt; 0 is unlimited.
	MaxInputAttempts int `mapstructure:"max_input_attempts"`
	// LogDraws logs every random draw at debug level.
	LogDraws bool `mapstructure:"log_draws"`
}

// ContentConfig locates the YAML and Lua content handed to the engine.
type ContentConfig struct {
	StatusDir        string `mapstructure:"status_dir"`
	SkillDir         string `mapstructure:"skill_dir"`
	ItemDir          string `mapstructure:"item_dir"`
	ActorDir         string `mapstructure:"actor_dir"`
	DomainDir        string `mapstructure:"domain_dir"`
	ScriptDir        string `mapstructure:"script_dir"`
	EncounterFile    string `mapstructure:"encounter_file"`
	InstructionLimit int    `mapstructure:"instruction_limit"`
}

// ArchiveConfig controls storage of finished battle reports.
type ArchiveConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Timeout bounds each archive database operation.
	Timeout time.Duration `mapstructure:"timeout"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Battle   BattleConfig   `mapstructure:"battle"`
	Content  ContentConfig  `mapstructure:"content"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	Database DatabaseConfig `mapstructure:"database"`
}

// Validate checks all configuration invariants. Database settings are only
// checked when the archive is enabled.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateBattle(c.Battle); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Archive.Enabled {
		if c.Archive.Timeout <= 0 {
			errs = append(errs, "archive.timeout must be positive")
		}
		if err := c.Database.Validate(); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateBattle(b BattleConfig) error {
	var errs []string
	if b.TieBreak != "jitter" && b.TieBreak != "roster" {
		errs = append(errs, fmt.Sprintf("battle.tie_break must be one of [jitter, roster], got %q", b.TieBreak))
	}
	if b.MaxRounds < 0 {
		errs = append(errs, fmt.Sprintf("battle.max_rounds must be >= 0, got %d", b.MaxRounds))
	}
	if b.MaxInputAttempts < 0 {
		errs = append(errs, fmt.Sprintf("battle.max_input_attempts must be >= 0, got %d", b.MaxInputAttempts))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	var errs []string
	if c.ActorDir == "" {
		errs = append(errs, "content.actor_dir must not be empty")
	}
	if c.EncounterFile == "" {
		errs = append(errs, "content.encounter_file must not be empty")
	}
	if c.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("content.instruction_limit must be >= 0, got %d", c.InstructionLimit))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with SKIRMISH_ prefix
	v.SetEnvPrefix("SKIRMISH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file", "")

	v.SetDefault("battle.seed", 0)
	v.SetDefault("battle.tie_break", "jitter")
	v.SetDefault("battle.auto", false)
	v.SetDefault("battle.max_rounds", 0)
	v.SetDefault("battle.color", true)
	v.SetDefault("battle.max_input_attempts", 0)
	v.SetDefault("battle.log_draws", false)

	v.SetDefault("content.status_dir", "content/statuses")
	v.SetDefault("content.skill_dir", "content/skills")
	v.SetDefault("content.item_dir", "content/items")
	v.SetDefault("content.actor_dir", "content/actors")
	v.SetDefault("content.domain_dir", "content/ai")
	v.SetDefault("content.script_dir", "content/scripts")
	v.SetDefault("content.encounter_file", "content/encounters/crossroads.yaml")
	v.SetDefault("content.instruction_limit", 100000)

	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.timeout", "10s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "skirmish")
	v.SetDefault("database.password", "skirmish")
	v.SetDefault("database.name", "skirmish")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "1h")
}
