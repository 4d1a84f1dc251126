// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gateway

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/pdiddy/exercise-engine/pkg/types"
)

// DefaultGeminiModel is used when the Gemini backend gets no model name.
const DefaultGeminiModel = "gemini-1.5-flash"

// Gemini talks to the Google generative language API.
type Gemini struct {
	client *genai.Client
}

// NewGemini creates a client authenticated with s.Credential.
func NewGemini(ctx context.Context, s types.Settings) (*Gemini, error) {
	opts := []option.ClientOption{option.WithAPIKey(s.Credential)}
	if s.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(s.BaseURL))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, types.NewError(types.KindConfiguration, "creating gemini client", err)
	}
	return &Gemini{client: client}, nil
}

// Close releases the underlying connection.
func (g *Gemini) Close() error {
	return g.client.Close()
}

// VisionComplete sends the instructions and every page as inline image data.
func (g *Gemini) VisionComplete(ctx context.Context, instructions string, images []types.PageImage, model string, opts ...Option) (string, error) {
	parts := make([]genai.Part, 0, len(images)+1)
	parts = append(parts, genai.Text(instructions))
	for _, img := range images {
		mime := img.MIMEType
		if mime == "" {
			mime = "image/png"
		}
		parts = append(parts, genai.Blob{MIMEType: mime, Data: img.Data})
	}
	return g.generate(ctx, model, applyOptions(opts), parts, visionFailure)
}

// TextComplete sends one text part.
func (g *Gemini) TextComplete(ctx context.Context, instructions, inputText, model string, opts ...Option) (string, error) {
	parts := []genai.Part{genai.Text(ComposeText(instructions, inputText))}
	return g.generate(ctx, model, applyOptions(opts), parts, textFailure)
}

func (g *Gemini) generate(ctx context.Context, model string, co CallOptions, parts []genai.Part, failure string) (string, error) {
	m := g.client.GenerativeModel(modelOrDefault(model, DefaultGeminiModel))
	m.SetMaxOutputTokens(int32(co.MaxTokens))
	m.SetCandidateCount(1)

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", classifyGemini(err, failure)
	}
	return geminiText(resp)
}

// geminiText concatenates the text parts of the first candidate.
func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", types.MalformedResponse("response contained no candidates", nil)
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String(), nil
}

func classifyGemini(err error, failure string) error {
	var apiErr *googleapi.Error
	var blocked *genai.BlockedError

	switch {
	case errors.As(err, &apiErr):
		return rejection(apiErr.Message, failure)
	case errors.As(err, &blocked):
		return rejection(blocked.Error(), failure)
	default:
		return transportError(err)
	}
}
