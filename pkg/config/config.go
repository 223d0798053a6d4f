// Package config provides configuration types, defaults and loading for unot.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/JCorners68/unot/pkg/lru"
	"github.com/JCorners68/unot/pkg/rewrite"
)

// EnvPrefix prefixes environment overrides: UNOT_CACHE_SIZE, UNOT_LOG_LEVEL.
const EnvPrefix = "UNOT"

// LocalFile is the per-project config file looked up in the working directory.
const LocalFile = ".unot.yaml"

// Config holds all configuration options for unot.
type Config struct {
	StrictHyphen   bool                 `mapstructure:"strict_hyphen"`
	StrictVariable bool                 `mapstructure:"strict_variable"`
	VariantGroup   bool                 `mapstructure:"variant_group"`
	CacheSize      int                  `mapstructure:"cache_size"`
	Rules          []rewrite.CustomRule `mapstructure:"rules"`
	Stylesheets    []string             `mapstructure:"stylesheets"` // CSS files or directories for css/check
	UnoConfig      string               `mapstructure:"uno_config"`  // Shortcut source; found by walking up when empty
	Extensions     []string             `mapstructure:"extensions"`
	Excludes       []string             `mapstructure:"excludes"`
	Log            LogConfig            `mapstructure:"log"`
}

// LogConfig holds logging options.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // zerolog level name
	Format string `mapstructure:"format"` // "console" (default) or "json"
}

// Defaults returns a Config with every default filled in.
func Defaults() Config {
	return Config{
		VariantGroup: true,
		CacheSize:    lru.DefaultCapacity,
		Extensions:   []string{".html", ".htm", ".vue", ".jsx", ".tsx", ".js", ".ts", ".svelte", ".astro"},
		Excludes:     []string{"node_modules", "dist", ".git", ".nuxt", ".next", "build"},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// SetDefaults registers the defaults on v so that environment variables
// can override every key.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("strict_hyphen", d.StrictHyphen)
	v.SetDefault("strict_variable", d.StrictVariable)
	v.SetDefault("variant_group", d.VariantGroup)
	v.SetDefault("cache_size", d.CacheSize)
	v.SetDefault("rules", []rewrite.CustomRule{})
	v.SetDefault("stylesheets", []string{})
	v.SetDefault("uno_config", d.UnoConfig)
	v.SetDefault("extensions", d.Extensions)
	v.SetDefault("excludes", d.Excludes)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Load reads configuration into v and decodes it. An explicit file must
// exist. Otherwise the lookup order is:
//  1. .unot.yaml (current directory)
//  2. ~/.config/unot/config.yaml (user config)
//
// Missing files are not an error; defaults and environment still apply.
// Flags bound to v before Load take precedence over both.
func Load(v *viper.Viper, file string) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else if _, err := os.Stat(LocalFile); err == nil {
		v.SetConfigFile(LocalFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "unot"))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// Validate checks every option and reports all problems at once.
func Validate(cfg Config) error {
	var errs error
	if cfg.CacheSize <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("cache_size must be positive, got %d", cfg.CacheSize))
	}
	if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch cfg.Log.Format {
	case "", "console", "json":
	default:
		errs = multierr.Append(errs, fmt.Errorf("log.format must be console or json, got %q", cfg.Log.Format))
	}
	for i, r := range cfg.Rules {
		if r.Pattern == "" {
			errs = multierr.Append(errs, fmt.Errorf("rule %d: pattern is required", i))
			continue
		}
		if _, err := rewrite.New(rewrite.Options{CustomRules: []rewrite.CustomRule{r}}); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("rule %d: %w", i, err))
		}
	}
	for _, p := range cfg.Stylesheets {
		if _, err := os.Stat(p); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("stylesheets: %w", err))
		}
	}
	return errs
}

// RewriteOptions converts cfg into engine options with a cache of
// cfg.CacheSize entries.
func (cfg Config) RewriteOptions(log zerolog.Logger) rewrite.Options {
	return rewrite.Options{
		StrictHyphen:   cfg.StrictHyphen,
		StrictVariable: cfg.StrictVariable,
		VariantGroup:   cfg.VariantGroup,
		CustomRules:    cfg.Rules,
		Cache:          lru.New[string, string](cfg.CacheSize),
		Logger:         log,
	}
}
