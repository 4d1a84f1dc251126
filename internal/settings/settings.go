// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package settings resolves configuration from viper (config file, env and
// flags), the .secrets/ directory and .env files. The resulting
// types.Settings is handed to the pipeline read-only.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pdiddy/exercise-engine/internal/secrets"
	"github.com/pdiddy/exercise-engine/pkg/types"
)

// EnvPrefix prefixes every environment override, e.g. EXERCISE_ENGINE_TEXT_MODEL.
const EnvPrefix = "EXERCISE_ENGINE"

// Config is the full application configuration.
type Config struct {
	types.Settings `mapstructure:",squash"`

	Raster types.RasterConfig `mapstructure:"raster" yaml:"raster"`
	Store  types.StoreConfig  `mapstructure:"store" yaml:"store"`
	Log    LogConfig          `mapstructure:"log" yaml:"log"`
	Server ServerConfig       `mapstructure:"server" yaml:"server"`
}

// LogConfig selects the diagnostic log level and format.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// ServerConfig holds the HTTP API listen address.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// SetDefaults registers every key with its default so environment
// overrides apply even when no config file exists.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("provider", string(types.ProviderOpenAI))
	v.SetDefault("credential", "")
	v.SetDefault("base_url", "")
	v.SetDefault("vision_model", "gpt-4o")
	v.SetDefault("text_model", "gpt-4o")
	v.SetDefault("prompt_full_text", DefaultPromptFullText)
	v.SetDefault("prompt_core", DefaultPromptCore)
	v.SetDefault("prompt_transform", DefaultPromptTransform)
	v.SetDefault("topics", []string{})
	v.SetDefault("extraction_max_tokens", 4096)
	v.SetDefault("transform_max_tokens", 1024)
	v.SetDefault("image_detail", "high")
	v.SetDefault("concurrency", 1)
	v.SetDefault("timeout", "0s")

	v.SetDefault("raster.dpi", 144)
	v.SetDefault("raster.max_pages", 0)

	v.SetDefault("store.data_dir", defaultDataDir())
	v.SetDefault("store.max_sessions", 20)

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")

	v.SetDefault("server.addr", ":8080")
}

// Configure points v at the config file, or at exercise-engine.yaml in the
// working directory and ~/.config/exercise-engine/, and enables env overrides.
func Configure(v *viper.Viper, cfgFile string) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("exercise-engine")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "exercise-engine"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
}

// ReadConfig reads the configured file. A missing default file is not an
// error; the returned path is empty in that case.
func ReadConfig(v *viper.Viper) (string, error) {
	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case err == nil:
		return v.ConfigFileUsed(), nil
	case errors.As(err, &notFound):
		return "", nil
	default:
		return "", fmt.Errorf("reading config: %w", err)
	}
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are skipped; existing variables win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Load decodes v into a Config and fills an empty credential from the
// provider's key file or conventional environment variable.
func Load(v *viper.Viper, keys secrets.Set) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}

	cfg.Provider = types.Provider(strings.ToLower(strings.TrimSpace(string(cfg.Provider))))
	switch cfg.Provider {
	case "":
		cfg.Provider = types.ProviderOpenAI
	case types.ProviderOpenAI, types.ProviderGemini, types.ProviderOllama:
	default:
		return Config{}, types.ConfigurationError(fmt.Sprintf("unsupported provider %q", cfg.Provider))
	}

	if strings.TrimSpace(cfg.Credential) == "" {
		cfg.Credential = keys.Credential(cfg.Provider)
	}
	cfg.Topics = normalizeTopics(cfg.Topics)
	return cfg, nil
}

// normalizeTopics trims topics and drops blanks and duplicates, keeping order.
func normalizeTopics(topics []string) []string {
	seen := make(map[string]bool, len(topics))
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "exercise-engine")
	}
	return ".exercise-engine"
}
