// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/exercise-engine/internal/secrets"
	"github.com/pdiddy/exercise-engine/pkg/types"
)

func newViper(t *testing.T, yaml string) *viper.Viper {
	t.Helper()
	v := viper.New()
	cfgFile := ""
	if yaml != "" {
		cfgFile = filepath.Join(t.TempDir(), "exercise-engine.yaml")
		require.NoError(t, os.WriteFile(cfgFile, []byte(yaml), 0o644))
	}
	Configure(v, cfgFile)
	if cfgFile != "" {
		_, err := ReadConfig(v)
		require.NoError(t, err)
	}
	return v
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load(newViper(t, ""), nil)
	require.NoError(t, err)

	assert.Equal(t, types.ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "gpt-4o", cfg.VisionModel)
	assert.Equal(t, "gpt-4o", cfg.TextModel)
	assert.Equal(t, DefaultPromptFullText, cfg.PromptFullText)
	assert.Equal(t, DefaultPromptCore, cfg.PromptCore)
	assert.Equal(t, DefaultPromptTransform, cfg.PromptTransform)
	assert.Empty(t, cfg.Topics)
	assert.Equal(t, 4096, cfg.ExtractionMaxTokens)
	assert.Equal(t, 1024, cfg.TransformMaxTokens)
	assert.Equal(t, "high", cfg.ImageDetail)
	assert.Equal(t, 1, cfg.Concurrency)
	assert.Equal(t, 144.0, cfg.Raster.DPI)
	assert.Equal(t, 20, cfg.Store.MaxSessions)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.False(t, cfg.HasCredential())
}

func TestLoad_File(t *testing.T) {
	cfg, err := Load(newViper(t, `
provider: Gemini
vision_model: gemini-1.5-pro
topics: [" Space ", "Zoo", "Space", ""]
concurrency: 4
timeout: 90s
raster:
  dpi: 200
  max_pages: 30
store:
  data_dir: /tmp/ee
log:
  level: debug
`), map[string]string{secrets.GeminiKey: "AIza-secret"})
	require.NoError(t, err)

	assert.Equal(t, types.ProviderGemini, cfg.Provider)
	assert.Equal(t, "gemini-1.5-pro", cfg.VisionModel)
	assert.Equal(t, []string{"Space", "Zoo"}, cfg.Topics)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, 200.0, cfg.Raster.DPI)
	assert.Equal(t, 30, cfg.Raster.MaxPages)
	assert.Equal(t, "/tmp/ee", cfg.Store.DataDir)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "AIza-secret", cfg.Credential)
}

func TestLoad_CredentialPrecedence(t *testing.T) {
	t.Run("explicit credential wins", func(t *testing.T) {
		t.Setenv(EnvPrefix+"_CREDENTIAL", "sk-env")
		cfg, err := Load(newViper(t, ""), map[string]string{secrets.OpenAIKey: "sk-secret"})
		require.NoError(t, err)
		assert.Equal(t, "sk-env", cfg.Credential)
	})

	t.Run("secret file before provider env", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-openai-env")
		cfg, err := Load(newViper(t, ""), map[string]string{secrets.OpenAIKey: "sk-secret"})
		require.NoError(t, err)
		assert.Equal(t, "sk-secret", cfg.Credential)
	})

	t.Run("provider env as fallback", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-openai-env")
		cfg, err := Load(newViper(t, ""), nil)
		require.NoError(t, err)
		assert.Equal(t, "sk-openai-env", cfg.Credential)
	})

	t.Run("ollama needs none", func(t *testing.T) {
		cfg, err := Load(newViper(t, "provider: ollama\n"), nil)
		require.NoError(t, err)
		assert.Empty(t, cfg.Credential)
		assert.True(t, cfg.HasCredential())
	})
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv(EnvPrefix+"_TEXT_MODEL", "gpt-4o-mini")
	t.Setenv(EnvPrefix+"_RASTER_MAX_PAGES", "12")

	cfg, err := Load(newViper(t, ""), nil)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", cfg.TextModel)
	assert.Equal(t, 12, cfg.Raster.MaxPages)
}

func TestLoad_UnknownProvider(t *testing.T) {
	_, err := Load(newViper(t, "provider: claude\n"), nil)
	assert.True(t, types.IsKind(err, types.KindConfiguration))
}

func TestReadConfig_MissingDefaultFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	v := viper.New()
	Configure(v, "")
	path, err := ReadConfig(v)
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("EXERCISE_ENGINE_DOTENV_TEST=loaded\n"), 0o644))
	t.Setenv("EXERCISE_ENGINE_DOTENV_TEST", "")
	os.Unsetenv("EXERCISE_ENGINE_DOTENV_TEST")

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), envFile))
	assert.Equal(t, "loaded", os.Getenv("EXERCISE_ENGINE_DOTENV_TEST"))
}
