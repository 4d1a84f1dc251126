// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session owns the pipeline state of the current document. A
// Workspace holds at most one Session; starting an analysis replaces it
// wholesale. Stages receive their inputs explicitly and never read shared
// state.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pdiddy/exercise-engine/internal/tasks"
	"github.com/pdiddy/exercise-engine/pkg/types"
)

// ErrNoSession is returned when a transformation is requested before any
// document was analyzed.
var ErrNoSession = errors.New("no analyzed document; run an analysis first")

// Rasterizer turns a document into ordered page images.
type Rasterizer interface {
	Rasterize(ctx context.Context, data []byte) ([]types.PageImage, error)
}

// Extractor runs the two-step extraction protocol.
type Extractor interface {
	Run(ctx context.Context, images []types.PageImage, s types.Settings, progress types.ProgressFunc) (types.ExtractionResult, error)
}

// Transformer rewrites task records into a topic.
type Transformer interface {
	Run(ctx context.Context, records []types.TaskRecord, topic string, s types.Settings, progress types.ProgressFunc) ([]types.TransformedTask, error)
}

// Recorder persists session history. Recording failures are logged and
// never fail a run.
type Recorder interface {
	SaveAnalysis(ctx context.Context, sess types.Session) error
	SaveTransformation(ctx context.Context, sessionID, topic string, tasks []types.TransformedTask) error
}

// Config wires a Workspace to its collaborators. Recorder may be nil.
type Config struct {
	Rasterizer  Rasterizer
	Extractor   Extractor
	Transformer Transformer
	Recorder    Recorder

	// Settings is read at the start of every run.
	Settings func() types.Settings

	Log zerolog.Logger
}

// Workspace holds the current session.
type Workspace struct {
	cfg Config
	log zerolog.Logger

	mu      sync.Mutex
	current *types.Session
}

// New returns an empty Workspace.
func New(cfg Config) *Workspace {
	return &Workspace{
		cfg: cfg,
		log: cfg.Log.With().Str("component", "session").Logger(),
	}
}

// Current returns a copy of the current session.
func (w *Workspace) Current() (types.Session, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current == nil {
		return types.Session{}, false
	}
	return clone(w.current), true
}

// Restore makes sess the current session, e.g. one loaded from history.
func (w *Workspace) Restore(sess types.Session) {
	c := clone(&sess)
	w.mu.Lock()
	w.current = &c
	w.mu.Unlock()
}

// Analyze starts a new session for document and runs rasterization,
// extraction, segmentation and pairing. The new session becomes current as
// soon as the run starts. On failure it keeps whatever was computed before
// the failing step, and its task list stays empty.
func (w *Workspace) Analyze(ctx context.Context, document string, data []byte, progress types.ProgressFunc) (types.Session, error) {
	s := w.cfg.Settings()
	sess := &types.Session{
		ID:        uuid.NewString(),
		Document:  document,
		CreatedAt: time.Now().UTC(),
	}
	w.mu.Lock()
	w.current = sess
	w.mu.Unlock()

	log := w.log.With().Str("session", sess.ID).Str("document", document).Logger()

	// Check the credential before rendering pages.
	if !s.HasCredential() {
		return w.snapshot(sess), types.ConfigurationError(fmt.Sprintf("no API key configured for provider %s", providerOrDefault(s.Provider)))
	}

	progress.Emit(types.Event{Type: types.EventStarted, Stage: types.StageRasterize})
	images, err := w.cfg.Rasterizer.Rasterize(ctx, data)
	if err != nil {
		progress.Emit(types.Event{Type: types.EventFailed, Stage: types.StageRasterize, Message: err.Error()})
		return w.snapshot(sess), fmt.Errorf("rasterizing %s: %w", document, err)
	}
	progress.Emit(types.Event{Type: types.EventCompleted, Stage: types.StageRasterize, Total: len(images)})
	log.Info().Int("pages", len(images)).Msg("document rasterized")

	w.update(sess, func(cur *types.Session) {
		cur.Images = images
		cur.Pages = len(images)
	})

	result, err := w.cfg.Extractor.Run(ctx, images, s, progress)
	w.update(sess, func(cur *types.Session) { cur.Extraction = result })
	if err != nil {
		return w.snapshot(sess), err
	}

	records := tasks.Parse(result)
	w.update(sess, func(cur *types.Session) { cur.Tasks = records })
	log.Info().Int("tasks", len(records)).Msg("document analyzed")

	snap := w.snapshot(sess)
	if w.cfg.Recorder != nil {
		if err := w.cfg.Recorder.SaveAnalysis(ctx, snap); err != nil {
			log.Warn().Err(err).Msg("recording analysis")
		}
	}
	return snap, nil
}

// Transform rewrites the current session's tasks into topic. The session's
// transformed tasks are replaced only when every record succeeds.
func (w *Workspace) Transform(ctx context.Context, topic string, progress types.ProgressFunc) ([]types.TransformedTask, error) {
	w.mu.Lock()
	sess := w.current
	var records []types.TaskRecord
	if sess != nil {
		records = append(records, sess.Tasks...)
	}
	w.mu.Unlock()

	if sess == nil {
		return nil, ErrNoSession
	}
	if len(records) == 0 {
		return nil, types.ConfigurationError("no exercises to transform; analyze a document first")
	}

	out, err := w.cfg.Transformer.Run(ctx, records, topic, w.cfg.Settings(), progress)
	if err != nil {
		return nil, err
	}

	w.update(sess, func(cur *types.Session) {
		cur.Topic = out[0].Topic
		cur.Transformed = out
	})

	if w.cfg.Recorder != nil {
		if err := w.cfg.Recorder.SaveTransformation(ctx, sess.ID, out[0].Topic, out); err != nil {
			w.log.Warn().Err(err).Str("session", sess.ID).Msg("recording transformation")
		}
	}
	return append([]types.TransformedTask(nil), out...), nil
}

func (w *Workspace) update(sess *types.Session, fn func(*types.Session)) {
	w.mu.Lock()
	fn(sess)
	w.mu.Unlock()
}

func (w *Workspace) snapshot(sess *types.Session) types.Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	return clone(sess)
}

// clone copies sess deeply enough that callers cannot alter workspace state.
// Image bytes are shared; they are never modified after rasterization.
func clone(sess *types.Session) types.Session {
	c := *sess
	c.Images = append([]types.PageImage(nil), sess.Images...)
	c.Tasks = append([]types.TaskRecord(nil), sess.Tasks...)
	c.Transformed = append([]types.TransformedTask(nil), sess.Transformed...)
	return c
}

func providerOrDefault(p types.Provider) types.Provider {
	if p == "" {
		return types.ProviderOpenAI
	}
	return p
}
