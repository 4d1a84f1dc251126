// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/exercise-engine/pkg/types"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  Set
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, OpenAIKey, "  sk-abc123  \n")
				writeFile(t, dir, GeminiKey, "AIzaXYZ789")
				return dir
			},
			want: Set{OpenAIKey: "sk-abc123", GeminiKey: "AIzaXYZ789"},
		},
		{
			name: "missing directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: Set{},
		},
		{
			name: "skips blank files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, OpenAIKey, "valid-key")
				writeFile(t, dir, GeminiKey, "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: Set{OpenAIKey: "valid-key"},
		},
		{
			name: "skips dotfiles and directories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, GeminiKey, "AIza123")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: Set{GeminiKey: "AIza123"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t), zerolog.Nop())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read files without permission bits")
	}
	dir := t.TempDir()
	writeFile(t, dir, OpenAIKey, "sk-123")

	badPath := filepath.Join(dir, GeminiKey)
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	var logBuf bytes.Buffer
	got, err := Load(dir, zerolog.New(&logBuf))
	require.NoError(t, err)
	assert.Equal(t, Set{OpenAIKey: "sk-123"}, got)
	assert.Contains(t, logBuf.String(), GeminiKey)
}

func TestSet_Credential(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("GEMINI_API_KEY", "")

	s := Set{GeminiKey: "AIza-file"}
	assert.Equal(t, "sk-env", s.Credential(types.ProviderOpenAI))
	assert.Equal(t, "AIza-file", s.Credential(types.ProviderGemini))
	assert.Empty(t, s.Credential(types.ProviderOllama))

	s[OpenAIKey] = "sk-file"
	assert.Equal(t, "sk-file", s.Credential(types.ProviderOpenAI))
}

func TestSet_Names(t *testing.T) {
	assert.Equal(t, []string{GeminiKey, OpenAIKey}, Set{OpenAIKey: "a", GeminiKey: "b"}.Names())
	assert.Empty(t, Set{}.Names())
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
