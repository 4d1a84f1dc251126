// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	openai "github.com/meguminnnnnnnnn/go-openai"

	"github.com/pdiddy/exercise-engine/pkg/types"
)

// OpenAI talks to the chat-completions endpoint of an OpenAI-compatible service.
type OpenAI struct {
	client *openai.Client
}

// NewOpenAI creates a client authenticated with s.Credential. A non-empty
// s.BaseURL replaces the public endpoint.
func NewOpenAI(s types.Settings) *OpenAI {
	config := openai.DefaultConfig(s.Credential)
	if s.BaseURL != "" {
		config.BaseURL = strings.TrimRight(s.BaseURL, "/")
	}
	config.HTTPClient = &http.Client{Timeout: s.Timeout}
	return &OpenAI{client: openai.NewClientWithConfig(config)}
}

// VisionComplete sends one user message holding the instructions followed by
// every page as an inline data URL.
func (o *OpenAI) VisionComplete(ctx context.Context, instructions string, images []types.PageImage, model string, opts ...Option) (string, error) {
	co := applyOptions(opts)

	parts := make([]openai.ChatMessagePart, 0, len(images)+1)
	parts = append(parts, openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeText,
		Text: instructions,
	})
	for _, img := range images {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    dataURL(img),
				Detail: openai.ImageURLDetail(co.ImageDetail),
			},
		})
	}

	req := openai.ChatCompletionRequest{
		Model:     modelOrDefault(model, DefaultModel),
		MaxTokens: co.MaxTokens,
		Messages: []openai.ChatCompletionMessage{{
			Role:         openai.ChatMessageRoleUser,
			MultiContent: parts,
		}},
	}
	return o.complete(ctx, req, visionFailure)
}

// TextComplete sends one plain-text user message.
func (o *OpenAI) TextComplete(ctx context.Context, instructions, inputText, model string, opts ...Option) (string, error) {
	co := applyOptions(opts)

	req := openai.ChatCompletionRequest{
		Model:     modelOrDefault(model, DefaultModel),
		MaxTokens: co.MaxTokens,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: ComposeText(instructions, inputText),
		}},
	}
	return o.complete(ctx, req, textFailure)
}

func (o *OpenAI) complete(ctx context.Context, req openai.ChatCompletionRequest, failure string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classifyOpenAI(err, failure)
	}
	if len(resp.Choices) == 0 {
		return "", types.MalformedResponse("response contained no choices", nil)
	}
	// An empty message is a valid answer and is returned as-is.
	return resp.Choices[0].Message.Content, nil
}

// classifyOpenAI maps client errors onto the pipeline error kinds. An error
// body from the service becomes a RemoteRejection carrying its message; a
// non-success status without a readable body gets the generic marker.
func classifyOpenAI(err error, failure string) error {
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	switch {
	case errors.As(err, &apiErr):
		return rejection(apiErr.Message, failure)
	case errors.As(err, &reqErr):
		return rejection("", failure)
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr), errors.Is(err, io.ErrUnexpectedEOF):
		return types.MalformedResponse("response could not be decoded", err)
	default:
		return transportError(err)
	}
}

func dataURL(img types.PageImage) string {
	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}
