// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package transform rewrites task records into a target topic, one text
// completion per record. Calls run one at a time by default; with a higher
// concurrency setting they run in parallel up to that limit. In both modes
// results are returned in input order, and the first failure aborts the run
// and discards every result.
package transform

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/exercise-engine/internal/gateway"
	"github.com/pdiddy/exercise-engine/pkg/types"
)

// DefaultMaxTokens bounds each rewritten exercise.
const DefaultMaxTokens = 1024

// promptTmpl composes the per-record instructions from the configured
// transformation prompt, both texts of the record and the topic.
var promptTmpl = template.Must(template.New("transform").Parse(`{{.Instructions}}

ORIGINAL EXERCISE (full text):
{{.FullText}}

CORE EXERCISE (calculation):
{{.CoreText}}

TARGET TOPIC: {{.Topic}}

Rewrite the exercise into the topic "{{.Topic}}" now:`))

type promptData struct {
	Instructions string
	FullText     string
	CoreText     string
	Topic        string
}

// RenderPrompt builds the request instructions for one record.
func RenderPrompt(instructions string, rec types.TaskRecord, topic string) (string, error) {
	var buf bytes.Buffer
	err := promptTmpl.Execute(&buf, promptData{
		Instructions: strings.TrimSpace(instructions),
		FullText:     rec.FullText,
		CoreText:     rec.CoreText,
		Topic:        topic,
	})
	if err != nil {
		return "", fmt.Errorf("rendering transform prompt: %w", err)
	}
	return buf.String(), nil
}

// Orchestrator issues the per-record transformation calls.
type Orchestrator struct {
	gw  gateway.Gateway
	log zerolog.Logger
}

// New returns an Orchestrator issuing its calls through gw.
func New(gw gateway.Gateway, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{gw: gw, log: log.With().Str("component", "transform").Logger()}
}

// Run transforms records into topic. The returned slice has one entry per
// record in the same order, or is nil when any call failed. With
// Concurrency > 1 progress is called from several goroutines.
func (o *Orchestrator) Run(ctx context.Context, records []types.TaskRecord, topic string, s types.Settings, progress types.ProgressFunc) ([]types.TransformedTask, error) {
	topic = strings.TrimSpace(topic)
	if !s.HasCredential() {
		return nil, types.ConfigurationError("no API key configured; set one before transforming")
	}
	if topic == "" {
		return nil, types.ConfigurationError("no target topic selected")
	}

	total := len(records)
	results := make([]types.TransformedTask, total)
	if total == 0 {
		return results, nil
	}

	maxTokens := s.TransformMaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	limit := s.Concurrency
	if limit < 1 {
		limit = 1
	}

	o.log.Info().Int("tasks", total).Str("topic", topic).Int("concurrency", limit).Msg("transforming")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, rec := range records {
		// Stop scheduling once a call has failed.
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			progress.Emit(types.Event{Type: types.EventStarted, Stage: types.StageTransform, Index: i + 1, Total: total})

			content, err := o.transformOne(gctx, rec, topic, s, maxTokens)
			if err != nil {
				o.log.Error().Err(err).Int("task", rec.Index).Msg("transform failed")
				progress.Emit(types.Event{Type: types.EventFailed, Stage: types.StageTransform, Index: i + 1, Total: total, Message: err.Error()})
				return fmt.Errorf("transforming exercise %d: %w", rec.Index, err)
			}

			results[i] = types.TransformedTask{Index: rec.Index, Topic: topic, Content: content}
			progress.Emit(types.Event{Type: types.EventCompleted, Stage: types.StageTransform, Index: i + 1, Total: total})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// Skipped records leave zero values behind; only a cancelled caller
	// context gets here without an error from the group.
	if err := ctx.Err(); err != nil {
		return nil, types.TransportError("request cancelled", err)
	}
	return results, nil
}

func (o *Orchestrator) transformOne(ctx context.Context, rec types.TaskRecord, topic string, s types.Settings, maxTokens int) (string, error) {
	prompt, err := RenderPrompt(s.PromptTransform, rec, topic)
	if err != nil {
		return "", err
	}
	text, err := o.gw.TextComplete(ctx, prompt, "", s.TextModel, gateway.WithMaxTokens(maxTokens))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
