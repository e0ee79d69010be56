package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/akashicode/pdf2text/internal/extract"
	"github.com/akashicode/pdf2text/internal/ocr"
	"github.com/akashicode/pdf2text/internal/reader"
)

// ErrNilConfig is returned when a nil Config is provided.
var ErrNilConfig = errors.New("config is nil")

// EnvPrefix is prepended to environment overrides, e.g. PDF2TEXT_RENDER_SCALE.
const EnvPrefix = "PDF2TEXT"

// Config holds the full application configuration.
type Config struct {
	Mode        string       `mapstructure:"mode" yaml:"mode"`
	Jobs        int          `mapstructure:"jobs" yaml:"jobs"`
	TextBackend string       `mapstructure:"text_backend" yaml:"text_backend"`
	Auto        AutoConfig   `mapstructure:"auto" yaml:"auto"`
	Render      RenderConfig `mapstructure:"render" yaml:"render"`
	OCR         OCRConfig    `mapstructure:"ocr" yaml:"ocr"`
	Log         LogConfig    `mapstructure:"log" yaml:"log"`
}

// AutoConfig tunes the auto-mode heuristic.
type AutoConfig struct {
	// Threshold is the trimmed text-layer length below which OCR runs
	Threshold int `mapstructure:"threshold" yaml:"threshold"`
}

// RenderConfig tunes page rasterization for OCR.
type RenderConfig struct {
	// Scale multiplies the page's natural size before rendering
	Scale float64 `mapstructure:"scale" yaml:"scale"`
}

// OCRConfig holds the OCR engine options.
type OCRConfig struct {
	Languages        []string `mapstructure:"languages" yaml:"languages"`
	FallbackLanguage string   `mapstructure:"fallback_language" yaml:"fallback_language"`
	TessdataPrefix   string   `mapstructure:"tessdata_prefix" yaml:"tessdata_prefix,omitempty"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	oc := ocr.DefaultConfig()
	return Config{
		Mode:        string(extract.ModeAuto),
		Jobs:        1,
		TextBackend: string(reader.BackendMuPDF),
		Auto:        AutoConfig{Threshold: extract.DefaultAutoThreshold},
		Render:      RenderConfig{Scale: extract.DefaultRenderScale},
		OCR: OCRConfig{
			Languages:        oc.PrimaryLanguages,
			FallbackLanguage: oc.FallbackLanguage,
		},
		Log: LogConfig{Level: "warn"},
	}
}

// SetDefaults registers defaults and environment bindings on v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("mode", d.Mode)
	v.SetDefault("jobs", d.Jobs)
	v.SetDefault("text_backend", d.TextBackend)
	v.SetDefault("auto.threshold", d.Auto.Threshold)
	v.SetDefault("render.scale", d.Render.Scale)
	v.SetDefault("ocr.languages", d.OCR.Languages)
	v.SetDefault("ocr.fallback_language", d.OCR.FallbackLanguage)
	v.SetDefault("ocr.tessdata_prefix", "")
	v.SetDefault("log.level", d.Log.Level)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads the Viper-populated config into a Config struct.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom unmarshals and validates the configuration held by v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every setting is usable.
func Validate(cfg *Config) error {
	if cfg == nil {
		return ErrNilConfig
	}
	if _, err := extract.ParseMode(cfg.Mode); err != nil {
		return fmt.Errorf("config mode: %w", err)
	}
	if _, err := reader.ParseTextBackend(cfg.TextBackend); err != nil {
		return fmt.Errorf("config text_backend: %w", err)
	}
	if cfg.Jobs < 1 {
		return fmt.Errorf("config jobs must be at least 1, got %d", cfg.Jobs)
	}
	if cfg.Auto.Threshold < 0 {
		return fmt.Errorf("config auto.threshold must not be negative, got %d", cfg.Auto.Threshold)
	}
	if cfg.Render.Scale <= 0 {
		return fmt.Errorf("config render.scale must be positive, got %v", cfg.Render.Scale)
	}
	if err := cfg.OCROptions().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// OCROptions converts the OCR section into engine options.
func (c *Config) OCROptions() ocr.Config {
	return ocr.Config{
		PrimaryLanguages: c.OCR.Languages,
		FallbackLanguage: c.OCR.FallbackLanguage,
		AssetPaths:       ocr.AssetPaths{TessdataPrefix: c.OCR.TessdataPrefix},
	}
}
