// Package config provides Viper-based configuration loading for the character
// generator.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Alignments lists the nine canonical alignments.
var Alignments = []string{
	"Lawful Good", "Neutral Good", "Chaotic Good",
	"Lawful Neutral", "True Neutral", "Chaotic Neutral",
	"Lawful Evil", "Neutral Evil", "Chaotic Evil",
}

// MaxThreshold is the largest score sum six rolled abilities can reach.
const MaxThreshold = 108

// GenerationConfig holds the top-level choices of one generated character.
type GenerationConfig struct {
	Race       string `mapstructure:"race"`
	Subrace    string `mapstructure:"subrace"`
	Sex        string `mapstructure:"sex"`
	Background string `mapstructure:"background"`
	Alignment  string `mapstructure:"alignment"`
	Class      string `mapstructure:"klass"`
	Subclass   string `mapstructure:"subclass"`
	Level      int    `mapstructure:"level"`
	// Threshold is the minimum sum of the six rolled scores.
	Threshold int `mapstructure:"threshold"`
	// RollHP rolls hit points per level instead of taking the average.
	RollHP bool `mapstructure:"roll_hp"`
	// Random answers every prompt with a random choice.
	Random bool `mapstructure:"random"`
	// Seed makes dice and random choices reproducible; 0 uses crypto randomness.
	Seed uint64 `mapstructure:"seed"`
}

// HTTPConfig holds the sheet endpoint settings.
type HTTPConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// CatalogConfig locates the rule catalog.
type CatalogConfig struct {
	// Dir is a directory of catalog YAML files; empty uses the embedded catalog.
	Dir string `mapstructure:"dir"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds OpenTelemetry tracing settings. The exporter reads
// the standard OTEL_* environment variables.
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

// Config is the top-level application configuration.
type Config struct {
	Generation GenerationConfig `mapstructure:"generation"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"race":       "generation.race",
	"subrace":    "generation.subrace",
	"sex":        "generation.sex",
	"background": "generation.background",
	"alignment":  "generation.alignment",
	"klass":      "generation.klass",
	"subclass":   "generation.subclass",
	"level":      "generation.level",
	"threshold":  "generation.threshold",
	"roll-hp":    "generation.roll_hp",
	"random":     "generation.random",
	"seed":       "generation.seed",
	"host":       "http.host",
	"port":       "http.port",
	"catalog":    "catalog.dir",
	"log-level":  "logging.level",
	"log-format": "logging.format",
	"trace":      "telemetry.enabled",
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateGeneration(c.Generation); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateHTTP(c.HTTP); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Telemetry.Enabled && c.Telemetry.ServiceName == "" {
		errs = append(errs, "telemetry.service_name must not be empty when tracing is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateGeneration(g GenerationConfig) error {
	var errs []string
	if g.Race == "" {
		errs = append(errs, "generation.race must not be empty")
	}
	if g.Class == "" {
		errs = append(errs, "generation.klass must not be empty")
	}
	if g.Level < 1 || g.Level > 20 {
		errs = append(errs, fmt.Sprintf("generation.level must be 1-20, got %d", g.Level))
	}
	if g.Sex != "Female" && g.Sex != "Male" {
		errs = append(errs, fmt.Sprintf("generation.sex must be one of [Female, Male], got %q", g.Sex))
	}
	if g.Alignment != "" && !slices.Contains(Alignments, g.Alignment) {
		errs = append(errs, fmt.Sprintf("generation.alignment must be one of %v, got %q", Alignments, g.Alignment))
	}
	if g.Threshold < 0 || g.Threshold > MaxThreshold {
		errs = append(errs, fmt.Sprintf("generation.threshold must be 0-%d, got %d", MaxThreshold, g.Threshold))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateHTTP(h HTTPConfig) error {
	var errs []string
	if h.Host == "" {
		errs = append(errs, "http.host must not be empty")
	}
	if h.Port < 1 || h.Port > 65535 {
		errs = append(errs, fmt.Sprintf("http.port must be 1-65535, got %d", h.Port))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
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

// Load builds the configuration from, in rising precedence: defaults, the
// optional YAML file at path, a .env file in the working directory,
// CHARSHEET_ environment variables, and the changed flags of flags. The
// result is validated.
//
// Precondition: path is empty or names a readable YAML file; flags may be nil.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("reading .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("CHARSHEET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := bindFlags(v, flags); err != nil {
		return Config{}, err
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

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	if flags == nil {
		return nil
	}
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag %q: %w", name, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("generation.race", "Human")
	v.SetDefault("generation.subrace", "")
	v.SetDefault("generation.sex", "Female")
	v.SetDefault("generation.background", "")
	v.SetDefault("generation.alignment", "True Neutral")
	v.SetDefault("generation.klass", "Fighter")
	v.SetDefault("generation.subclass", "")
	v.SetDefault("generation.level", 1)
	v.SetDefault("generation.threshold", 65)
	v.SetDefault("generation.roll_hp", false)
	v.SetDefault("generation.random", false)
	v.SetDefault("generation.seed", 0)

	v.SetDefault("http.host", "127.0.0.1")
	v.SetDefault("http.port", 5000)

	v.SetDefault("catalog.dir", "")

	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "charsheet")
}
