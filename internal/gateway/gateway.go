// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gateway issues vision and text completion requests to a remote
// language model service. Backends share one contract: one synchronous
// request per call, the first generated message's text as the result, and
// failures classified as *types.Error. No backend retries.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/pdiddy/exercise-engine/pkg/types"
)

const (
	// DefaultModel is the baseline model identifier used when none is configured.
	DefaultModel = "gpt-4o"

	// DefaultMaxTokens bounds the output length when no option overrides it.
	DefaultMaxTokens = 4096

	// DefaultImageDetail is the vision detail hint sent with each page.
	DefaultImageDetail = "high"

	// textLeadIn separates the instructions from the input text in text requests.
	textLeadIn = "Here is the text containing the exercises:"

	visionFailure = "vision request failed"
	textFailure   = "text request failed"
)

// Gateway is the single abstraction over the remote completion service.
type Gateway interface {
	// VisionComplete sends instructions and page images, in page order, and
	// returns the generated text.
	VisionComplete(ctx context.Context, instructions string, images []types.PageImage, model string, opts ...Option) (string, error)

	// TextComplete sends instructions followed by inputText and returns the
	// generated text.
	TextComplete(ctx context.Context, instructions, inputText, model string, opts ...Option) (string, error)
}

// CallOptions holds per-call request parameters.
type CallOptions struct {
	MaxTokens   int
	ImageDetail string
}

// Option adjusts CallOptions for a single call.
type Option func(*CallOptions)

// WithMaxTokens sets the maximum output length. Values <= 0 are ignored.
func WithMaxTokens(n int) Option {
	return func(o *CallOptions) {
		if n > 0 {
			o.MaxTokens = n
		}
	}
}

// WithImageDetail sets the vision detail hint. Empty values are ignored.
func WithImageDetail(detail string) Option {
	return func(o *CallOptions) {
		if detail != "" {
			o.ImageDetail = detail
		}
	}
}

func applyOptions(opts []Option) CallOptions {
	o := CallOptions{MaxTokens: DefaultMaxTokens, ImageDetail: DefaultImageDetail}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ComposeText builds the user message for a text completion. An empty input
// sends the instructions alone.
func ComposeText(instructions, inputText string) string {
	if strings.TrimSpace(inputText) == "" {
		return instructions
	}
	return fmt.Sprintf("%s\n\n%s\n\n%s", instructions, textLeadIn, inputText)
}

// modelOrDefault returns model, or fallback when model is blank.
func modelOrDefault(model, fallback string) string {
	if m := strings.TrimSpace(model); m != "" {
		return m
	}
	return fallback
}

// New returns the backend selected by s.Provider.
func New(ctx context.Context, s types.Settings) (Gateway, error) {
	switch s.Provider {
	case "", types.ProviderOpenAI:
		return NewOpenAI(s), nil
	case types.ProviderGemini:
		return NewGemini(ctx, s)
	case types.ProviderOllama:
		return NewOllama(s)
	default:
		return nil, types.ConfigurationError(fmt.Sprintf("unsupported provider %q", s.Provider))
	}
}

// transportError wraps a failure that prevented the call from completing.
// Context cancellation is kept in the chain so callers can detect it.
func transportError(err error) *types.Error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		return types.TransportError("request cancelled", err)
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return types.TransportError("request timed out", err)
	default:
		return types.TransportError("request could not be completed", err)
	}
}

// rejection returns a RemoteRejection carrying message, or the generic
// failure marker when the remote sent none.
func rejection(message, fallback string) *types.Error {
	if strings.TrimSpace(message) == "" {
		message = fallback
	}
	return types.RemoteRejection(message)
}
