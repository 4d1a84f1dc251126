// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	olla "github.com/ollama/ollama/api"

	"github.com/pdiddy/exercise-engine/pkg/types"
)

const (
	// DefaultOllamaURL is the address of a locally running Ollama server.
	DefaultOllamaURL = "http://localhost:11434"

	// DefaultOllamaModel is a vision-capable model commonly pulled locally.
	DefaultOllamaModel = "llava"
)

// Ollama talks to the chat endpoint of an Ollama server.
type Ollama struct {
	client *olla.Client
}

// NewOllama creates a client for s.BaseURL, or the local default.
func NewOllama(s types.Settings) (*Ollama, error) {
	baseURL := s.BaseURL
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, types.ConfigurationError(fmt.Sprintf("invalid ollama base URL %q: %v", baseURL, err))
	}
	hc := &http.Client{Timeout: s.Timeout}
	return &Ollama{client: olla.NewClient(parsed, hc)}, nil
}

// VisionComplete attaches the page images to a single user message.
func (o *Ollama) VisionComplete(ctx context.Context, instructions string, images []types.PageImage, model string, opts ...Option) (string, error) {
	imgs := make([]olla.ImageData, len(images))
	for i, img := range images {
		imgs[i] = olla.ImageData(img.Data)
	}
	msg := olla.Message{Role: "user", Content: instructions, Images: imgs}
	return o.chat(ctx, model, applyOptions(opts), msg, visionFailure)
}

// TextComplete sends one text user message.
func (o *Ollama) TextComplete(ctx context.Context, instructions, inputText, model string, opts ...Option) (string, error) {
	msg := olla.Message{Role: "user", Content: ComposeText(instructions, inputText)}
	return o.chat(ctx, model, applyOptions(opts), msg, textFailure)
}

func (o *Ollama) chat(ctx context.Context, model string, co CallOptions, msg olla.Message, failure string) (string, error) {
	stream := false
	req := &olla.ChatRequest{
		Model:    modelOrDefault(model, DefaultOllamaModel),
		Messages: []olla.Message{msg},
		Stream:   &stream,
		Options:  map[string]any{"num_predict": co.MaxTokens},
	}

	var content strings.Builder
	err := o.client.Chat(ctx, req, func(resp olla.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", classifyOllama(err, failure)
	}
	return content.String(), nil
}

func classifyOllama(err error, failure string) error {
	var statusErr olla.StatusError
	var syntaxErr *json.SyntaxError

	switch {
	case errors.As(err, &statusErr):
		return rejection(statusErr.ErrorMessage, failure)
	case errors.As(err, &syntaxErr):
		return types.MalformedResponse("response could not be decoded", err)
	default:
		return transportError(err)
	}
}
