// Package extract runs the two-step extraction protocol: a vision call that
// transcribes the exercises from page images, then a text call that reduces
// the transcription to bare calculations. Step 2 starts only after step 1
// succeeds; neither step is retried.
package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/exercise-engine/internal/gateway"
	"github.com/pdiddy/exercise-engine/pkg/types"
)

// Orchestrator sequences the two model calls of one extraction run.
type Orchestrator struct {
	gw  gateway.Gateway
	log zerolog.Logger
}

// New returns an Orchestrator issuing its calls through gw.
func New(gw gateway.Gateway, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{gw: gw, log: log.With().Str("component", "extract").Logger()}
}

// Run transcribes images and reduces the transcription. When the reduction
// fails the returned result still carries FullText alongside the error.
func (o *Orchestrator) Run(ctx context.Context, images []types.PageImage, s types.Settings, progress types.ProgressFunc) (types.ExtractionResult, error) {
	var result types.ExtractionResult

	if !s.HasCredential() {
		return result, types.ConfigurationError(fmt.Sprintf("no API key configured for provider %s", providerName(s)))
	}
	if len(images) == 0 {
		return result, types.ConfigurationError("no page images to extract from")
	}

	opts := []gateway.Option{
		gateway.WithMaxTokens(s.ExtractionMaxTokens),
		gateway.WithImageDetail(s.ImageDetail),
	}

	fullText, err := o.step(ctx, types.StageFullText, progress, func(ctx context.Context) (string, error) {
		return o.gw.VisionComplete(ctx, s.PromptFullText, images, s.VisionModel, opts...)
	})
	if err != nil {
		return result, fmt.Errorf("extracting full text: %w", err)
	}
	result.FullText = fullText

	coreText, err := o.step(ctx, types.StageCoreText, progress, func(ctx context.Context) (string, error) {
		return o.gw.TextComplete(ctx, s.PromptCore, fullText, s.TextModel, opts...)
	})
	if err != nil {
		return result, fmt.Errorf("extracting core text: %w", err)
	}
	result.CoreText = coreText

	return result, nil
}

// step runs one remote call bracketed by started and completed/failed events.
func (o *Orchestrator) step(ctx context.Context, stage types.Stage, progress types.ProgressFunc, call func(context.Context) (string, error)) (string, error) {
	progress.Emit(types.Event{Type: types.EventStarted, Stage: stage})
	start := time.Now()

	text, err := call(ctx)
	if err != nil {
		o.log.Error().Err(err).Str("stage", string(stage)).Dur("elapsed", time.Since(start)).Msg("extraction step failed")
		progress.Emit(types.Event{Type: types.EventFailed, Stage: stage, Message: err.Error()})
		return "", err
	}

	o.log.Debug().Str("stage", string(stage)).Int("chars", len(text)).Dur("elapsed", time.Since(start)).Msg("extraction step completed")
	progress.Emit(types.Event{Type: types.EventCompleted, Stage: stage})
	return text, nil
}

func providerName(s types.Settings) string {
	if s.Provider == "" {
		return string(types.ProviderOpenAI)
	}
	return string(s.Provider)
}
