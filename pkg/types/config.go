// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strings"
	"time"
)

// Provider identifies the remote completion service behind the model gateway.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
	ProviderOllama Provider = "ollama"
)

// RequiresCredential reports whether calls to the provider need an API key.
// A local Ollama server accepts unauthenticated requests.
func (p Provider) RequiresCredential() bool {
	return p != ProviderOllama
}

// Settings holds everything the pipeline reads from the settings collaborator.
// The core treats Settings as read-only.
type Settings struct {
	// Provider selects the gateway backend (default openai).
	Provider Provider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Credential is the bearer API key sent with every remote request.
	Credential string `json:"-" yaml:"credential,omitempty" mapstructure:"credential"`

	// BaseURL overrides the provider endpoint (e.g. an OpenAI-compatible proxy).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// VisionModel is the model used for full-text extraction from page images.
	VisionModel string `json:"vision_model" yaml:"vision_model" mapstructure:"vision_model"`

	// TextModel is the model used for core extraction and transformation.
	TextModel string `json:"text_model" yaml:"text_model" mapstructure:"text_model"`

	// PromptFullText instructs the vision model to transcribe the exercises.
	PromptFullText string `json:"prompt_full_text" yaml:"prompt_full_text" mapstructure:"prompt_full_text"`

	// PromptCore instructs the text model to reduce exercises to calculations.
	PromptCore string `json:"prompt_core" yaml:"prompt_core" mapstructure:"prompt_core"`

	// PromptTransform instructs the text model to rewrite an exercise into a topic.
	PromptTransform string `json:"prompt_transform" yaml:"prompt_transform" mapstructure:"prompt_transform"`

	// Topics is the ordered set of candidate target topics.
	Topics []string `json:"topics" yaml:"topics" mapstructure:"topics"`

	// ExtractionMaxTokens bounds the output of both extraction calls (default 4096).
	ExtractionMaxTokens int `json:"extraction_max_tokens" yaml:"extraction_max_tokens" mapstructure:"extraction_max_tokens"`

	// TransformMaxTokens bounds the output of each transformation call (default 1024).
	TransformMaxTokens int `json:"transform_max_tokens" yaml:"transform_max_tokens" mapstructure:"transform_max_tokens"`

	// ImageDetail is the vision detail hint sent with each page ("high", "low", "auto").
	ImageDetail string `json:"image_detail" yaml:"image_detail" mapstructure:"image_detail"`

	// Concurrency is the number of transformation calls allowed in flight (default 1).
	Concurrency int `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency"`

	// Timeout bounds a single remote request. Zero means no client-side timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// HasCredential reports whether the configured provider can be called.
func (s Settings) HasCredential() bool {
	return !s.Provider.RequiresCredential() || strings.TrimSpace(s.Credential) != ""
}

// HasTopic reports whether topic is one of the configured candidate topics.
func (s Settings) HasTopic(topic string) bool {
	for _, t := range s.Topics {
		if t == topic {
			return true
		}
	}
	return false
}

// RasterConfig holds settings for page rasterization.
type RasterConfig struct {
	// DPI is the render resolution (default 144, twice the PDF user-space scale).
	DPI float64 `json:"dpi" yaml:"dpi" mapstructure:"dpi"`

	// MaxPages rejects documents with more pages than this. Zero disables the check.
	MaxPages int `json:"max_pages" yaml:"max_pages" mapstructure:"max_pages"`
}

// StoreConfig holds settings for the session history database.
type StoreConfig struct {
	// DataDir is the directory holding sessions.db.
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`

	// MaxSessions limits session listings (default 20).
	MaxSessions int `json:"max_sessions" yaml:"max_sessions" mapstructure:"max_sessions"`
}
