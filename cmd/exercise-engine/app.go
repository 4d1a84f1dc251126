// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/exercise-engine/internal/extract"
	"github.com/pdiddy/exercise-engine/internal/gateway"
	"github.com/pdiddy/exercise-engine/internal/raster"
	"github.com/pdiddy/exercise-engine/internal/session"
	"github.com/pdiddy/exercise-engine/internal/store"
	"github.com/pdiddy/exercise-engine/internal/transform"
	"github.com/pdiddy/exercise-engine/pkg/types"
)

// app holds the collaborators shared by the pipeline subcommands.
type app struct {
	store     *store.Store
	gw        gateway.Gateway
	workspace *session.Workspace
}

func newApp(ctx context.Context) (*app, error) {
	st, err := store.NewStore(cfg.Store)
	if err != nil {
		return nil, err
	}

	gw, err := gateway.New(ctx, cfg.Settings)
	if err != nil {
		st.Close()
		return nil, err
	}

	ws := session.New(session.Config{
		Rasterizer:  raster.New(cfg.Raster),
		Extractor:   extract.New(gw, logger),
		Transformer: transform.New(gw, logger),
		Recorder:    st,
		Settings:    func() types.Settings { return cfg.Settings },
		Log:         logger,
	})

	return &app{store: st, gw: gw, workspace: ws}, nil
}

func (a *app) Close() {
	if c, ok := a.gw.(io.Closer); ok {
		_ = c.Close()
	}
	_ = a.store.Close()
}

// loadSession returns the stored session with id, or the latest one when id
// is empty.
func (a *app) loadSession(ctx context.Context, id string) (types.Session, error) {
	if id == "" || id == "latest" {
		sess, err := a.store.Latest(ctx)
		if errors.Is(err, store.ErrNotFound) {
			return types.Session{}, session.ErrNoSession
		}
		return sess, err
	}
	return a.store.Load(ctx, id)
}

// describeError turns a pipeline error into the line shown to the user. The
// underlying cause, such as a refused connection, is kept.
func describeError(err error) string {
	var perr *types.Error
	if !errors.As(err, &perr) {
		return err.Error()
	}
	switch perr.Kind {
	case types.KindTransport:
		return fmt.Sprintf("could not reach the provider: %s", perr.Detail())
	case types.KindRemoteRejection:
		return fmt.Sprintf("the provider rejected the request: %s", perr.Detail())
	case types.KindMalformedResponse:
		return fmt.Sprintf("unexpected response from the provider: %s", perr.Detail())
	case types.KindRasterize:
		return fmt.Sprintf("could not read the document: %s", perr.Detail())
	default:
		return perr.Detail()
	}
}

// writeOutput renders to the file named by --output, or to stdout when the
// flag is empty or undefined.
func writeOutput(cmd *cobra.Command, render func(io.Writer) error) error {
	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		return render(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
