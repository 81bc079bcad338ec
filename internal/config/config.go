// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Convert() ConvertConfig
	Countries() map[string]CountryConfig

	// Convert Setters
	SetConvertNameMode(string)
	SetConvertCountry(string)
	SetConvertDedupe(string)
	SetConvertFormat(string)
	SetConvertNoColor(bool)
	SetConvertNormalizeNames(bool)
}

// Config holds the entire application configuration.
// Fields are exported for viper's decoder; callers go through the Interface getters.
type Config struct {
	LoggerCfg    LoggerConfig             `mapstructure:"logger" yaml:"logger"`
	ConvertCfg   ConvertConfig            `mapstructure:"convert" yaml:"convert"`
	CountriesCfg map[string]CountryConfig `mapstructure:"countries" yaml:"countries" validate:"dive,keys,len=2,endkeys"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig   { return c.LoggerCfg }
func (c *Config) Convert() ConvertConfig { return c.ConvertCfg }

// Countries returns a copy keyed by upper-case region code.
func (c *Config) Countries() map[string]CountryConfig {
	out := make(map[string]CountryConfig, len(c.CountriesCfg))
	for region, cc := range c.CountriesCfg {
		out[strings.ToUpper(region)] = cc
	}
	return out
}

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetConvertNameMode(m string)     { c.ConvertCfg.NameMode = m }
func (c *Config) SetConvertCountry(s string)      { c.ConvertCfg.Country = strings.ToUpper(s) }
func (c *Config) SetConvertDedupe(d string)       { c.ConvertCfg.Dedupe = d }
func (c *Config) SetConvertFormat(f string)       { c.ConvertCfg.Format = f }
func (c *Config) SetConvertNoColor(b bool)        { c.ConvertCfg.NoColor = b }
func (c *Config) SetConvertNormalizeNames(b bool) { c.ConvertCfg.NormalizeNames = b }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format" validate:"omitempty,oneof=console json"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size" validate:"gte=0"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups" validate:"gte=0"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age" validate:"gte=0"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// ConvertConfig holds the settings for a conversion run. Most of them are
// usually supplied through flags on the convert command.
type ConvertConfig struct {
	NameMode       string `mapstructure:"name_mode" yaml:"name_mode" validate:"oneof=first last both"`
	Country        string `mapstructure:"country" yaml:"country" validate:"omitempty,len=2"`
	Dedupe         string `mapstructure:"dedupe" yaml:"dedupe" validate:"oneof=none phone"`
	Format         string `mapstructure:"format" yaml:"format" validate:"oneof=csv vcf"`
	NoColor        bool   `mapstructure:"no_color" yaml:"no_color"`
	NormalizeNames bool   `mapstructure:"normalize_names" yaml:"normalize_names"`
	// ProgressThreshold is the contact count at which the progress bar is shown.
	ProgressThreshold int `mapstructure:"progress_threshold" yaml:"progress_threshold" validate:"gte=0"`
}

// CountryConfig describes the local numbering conventions of one region.
type CountryConfig struct {
	CallingCode        string   `mapstructure:"calling_code" yaml:"calling_code" validate:"omitempty,numeric"`
	MinLength          int      `mapstructure:"min_length" yaml:"min_length" validate:"gte=0"`
	SubscriberPrefixes []string `mapstructure:"subscriber_prefixes" yaml:"subscriber_prefixes" validate:"dive,numeric"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Defaults are static, so this only fires on a programming error.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "warn")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "tgcontacts")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Convert --
	v.SetDefault("convert.name_mode", "both")
	v.SetDefault("convert.country", "")
	v.SetDefault("convert.dedupe", "none")
	v.SetDefault("convert.format", "csv")
	v.SetDefault("convert.no_color", false)
	v.SetDefault("convert.normalize_names", false)
	v.SetDefault("convert.progress_threshold", 100)

	// -- Countries --
	v.SetDefault("countries", map[string]interface{}{
		"KE": map[string]interface{}{
			"calling_code":        "254",
			"min_length":          9,
			"subscriber_prefixes": []string{"7"},
		},
	})
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.ConvertCfg.Country = strings.ToUpper(cfg.ConvertCfg.Country)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate checks the configuration for required fields and sane values.
// Missing calling codes are resolved in place from the region code.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if err := c.resolveCountries(); err != nil {
		return fmt.Errorf("countries configuration invalid: %w", err)
	}
	return nil
}
