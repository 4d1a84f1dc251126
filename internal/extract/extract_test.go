package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/exercise-engine/internal/gateway/gatewaytest"
	"github.com/pdiddy/exercise-engine/pkg/types"
)

func testSettings() types.Settings {
	return types.Settings{
		Provider:            types.ProviderOpenAI,
		Credential:          "sk-test",
		VisionModel:         "vision-model",
		TextModel:           "text-model",
		PromptFullText:      "transcribe",
		PromptCore:          "reduce",
		ExtractionMaxTokens: 4096,
		ImageDetail:         "high",
	}
}

var testImages = []types.PageImage{
	{PageNumber: 1, MIMEType: "image/png", Data: []byte("p1")},
	{PageNumber: 2, MIMEType: "image/png", Data: []byte("p2")},
}

type eventLog []types.Event

func (l *eventLog) record(ev types.Event) { *l = append(*l, ev) }

func (l eventLog) summary() []string {
	out := make([]string, len(l))
	for i, ev := range l {
		out[i] = string(ev.Stage) + ":" + string(ev.Type)
	}
	return out
}

func TestRun(t *testing.T) {
	fake := &gatewaytest.Fake{
		VisionFunc: func(context.Context, string, []types.PageImage) (string, error) {
			return "1. Ein Schiff", nil
		},
		TextFunc: func(_ context.Context, _, input string) (string, error) {
			return "1. 15 × 40 = ?", nil
		},
	}
	var events eventLog

	result, err := New(fake, zerolog.Nop()).Run(context.Background(), testImages, testSettings(), events.record)
	require.NoError(t, err)
	assert.Equal(t, types.ExtractionResult{FullText: "1. Ein Schiff", CoreText: "1. 15 × 40 = ?"}, result)

	calls := fake.Calls()
	require.Len(t, calls, 2)

	assert.True(t, calls[0].Vision)
	assert.Equal(t, "transcribe", calls[0].Instructions)
	assert.Equal(t, 2, calls[0].Images)
	assert.Equal(t, "vision-model", calls[0].Model)
	assert.Equal(t, 4096, calls[0].Options.MaxTokens)
	assert.Equal(t, "high", calls[0].Options.ImageDetail)

	assert.False(t, calls[1].Vision)
	assert.Equal(t, "reduce", calls[1].Instructions)
	assert.Equal(t, "1. Ein Schiff", calls[1].Input)
	assert.Equal(t, "text-model", calls[1].Model)

	assert.Equal(t, []string{
		"full_text:started", "full_text:completed",
		"core_text:started", "core_text:completed",
	}, events.summary())
}

func TestRun_VisionFailureSkipsText(t *testing.T) {
	rejected := types.RemoteRejection("Incorrect API key provided")
	fake := &gatewaytest.Fake{
		VisionFunc: func(context.Context, string, []types.PageImage) (string, error) {
			return "", rejected
		},
	}
	var events eventLog

	result, err := New(fake, zerolog.Nop()).Run(context.Background(), testImages, testSettings(), events.record)
	require.Error(t, err)
	assert.ErrorIs(t, err, rejected)
	assert.Equal(t, types.KindRemoteRejection, types.KindOf(err))
	assert.Empty(t, result.FullText)

	vision, text := fake.Count()
	assert.Equal(t, 1, vision)
	assert.Equal(t, 0, text)
	assert.Equal(t, []string{"full_text:started", "full_text:failed"}, events.summary())
}

func TestRun_TextFailureKeepsFullText(t *testing.T) {
	fake := &gatewaytest.Fake{
		VisionFunc: func(context.Context, string, []types.PageImage) (string, error) {
			return "1. Ein Zug", nil
		},
		TextFunc: func(context.Context, string, string) (string, error) {
			return "", types.MalformedResponse("response contained no choices", nil)
		},
	}
	var events eventLog

	result, err := New(fake, zerolog.Nop()).Run(context.Background(), testImages, testSettings(), events.record)
	assert.True(t, types.IsKind(err, types.KindMalformedResponse))
	assert.Equal(t, "1. Ein Zug", result.FullText)
	assert.Empty(t, result.CoreText)

	vision, text := fake.Count()
	assert.Equal(t, 1, vision)
	assert.Equal(t, 1, text)
	assert.Equal(t, []string{
		"full_text:started", "full_text:completed",
		"core_text:started", "core_text:failed",
	}, events.summary())
}

func TestRun_Preconditions(t *testing.T) {
	tests := []struct {
		name     string
		settings func() types.Settings
		images   []types.PageImage
	}{
		{
			name: "missing credential",
			settings: func() types.Settings {
				s := testSettings()
				s.Credential = "  "
				return s
			},
			images: testImages,
		},
		{
			name:     "no images",
			settings: testSettings,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &gatewaytest.Fake{}
			_, err := New(fake, zerolog.Nop()).Run(context.Background(), tt.images, tt.settings(), nil)
			assert.True(t, types.IsKind(err, types.KindConfiguration))
			assert.Empty(t, fake.Calls())
		})
	}
}

func TestRun_OllamaNeedsNoCredential(t *testing.T) {
	fake := &gatewaytest.Fake{
		VisionFunc: func(context.Context, string, []types.PageImage) (string, error) { return "1. a", nil },
		TextFunc:   func(context.Context, string, string) (string, error) { return "1. b", nil },
	}
	s := testSettings()
	s.Provider = types.ProviderOllama
	s.Credential = ""

	_, err := New(fake, zerolog.Nop()).Run(context.Background(), testImages, s, nil)
	assert.NoError(t, err)
}

func TestRun_Cancelled(t *testing.T) {
	fake := &gatewaytest.Fake{
		VisionFunc: func(ctx context.Context, _ string, _ []types.PageImage) (string, error) {
			return "", types.TransportError("request cancelled", ctx.Err())
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(fake, zerolog.Nop()).Run(ctx, testImages, testSettings(), nil)
	assert.True(t, errors.Is(err, context.Canceled))
	vision, text := fake.Count()
	assert.Equal(t, 1, vision)
	assert.Equal(t, 0, text)
}
