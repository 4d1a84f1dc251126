// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads provider API keys from a directory of plain-text
// files. Each file holds one secret: the filename is the key name and the
// trimmed contents are the value.
//
// Recognized key files: openai-api-key, gemini-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/exercise-engine/pkg/types"
)

// Key file names for the model providers.
const (
	OpenAIKey = "openai-api-key"
	GeminiKey = "gemini-api-key"
)

// Set maps key file names to their values.
type Set map[string]string

// providerKeys lists the key file and conventional environment variable
// for each provider that needs a credential.
var providerKeys = map[types.Provider]struct{ file, env string }{
	types.ProviderOpenAI: {OpenAIKey, "OPENAI_API_KEY"},
	types.ProviderGemini: {GeminiKey, "GEMINI_API_KEY"},
}

// Load reads every regular file in dir. A missing directory yields an empty
// Set. Unreadable files are logged and skipped.
func Load(dir string, log zerolog.Logger) (Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Set{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	set := make(Set)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn().Err(err).Str("secret", name).Msg("could not read secret")
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			set[name] = value
		}
	}
	return set, nil
}

// Names returns the loaded key names in sorted order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Credential returns the API key for p: the provider's key file first, then
// its environment variable. Providers without a key file return "".
func (s Set) Credential(p types.Provider) string {
	k, ok := providerKeys[p]
	if !ok {
		return ""
	}
	if v := s[k.file]; v != "" {
		return v
	}
	return strings.TrimSpace(os.Getenv(k.env))
}
