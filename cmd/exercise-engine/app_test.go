// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/exercise-engine/pkg/types"
)

func TestDescribeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("extracting full text: %w", types.TransportError("request timed out", nil)), "could not reach the provider: request timed out"},
		{types.RemoteRejection("invalid api key"), "the provider rejected the request: invalid api key"},
		{types.MalformedResponse("vision request failed", nil), "unexpected response from the provider: vision request failed"},
		{types.RasterizeError("document has no pages", nil), "could not read the document: document has no pages"},
		{
			fmt.Errorf("extracting full text: %w", types.TransportError("request could not be completed", errors.New("dial tcp 127.0.0.1:1: connect: connection refused"))),
			"could not reach the provider: request could not be completed: dial tcp 127.0.0.1:1: connect: connection refused",
		},
		{types.MalformedResponse("response could not be decoded", errors.New("unexpected EOF")), "unexpected response from the provider: response could not be decoded: unexpected EOF"},
		{types.ConfigurationError("no topic given"), "no topic given"},
		{errors.New("plain"), "plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, describeError(tt.err))
	}
}

func TestProgressView(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	p := &progressView{out: &buf}

	p.Handle(types.Event{Type: types.EventStarted, Stage: types.StageFullText})
	p.Handle(types.Event{Type: types.EventCompleted, Stage: types.StageFullText})
	p.Handle(types.Event{Type: types.EventStarted, Stage: types.StageCoreText})
	p.Handle(types.Event{Type: types.EventFailed, Stage: types.StageCoreText})
	p.Done()

	out := buf.String()
	assert.Contains(t, out, "✓ Reading exercises from the page images")
	assert.Contains(t, out, "✗ Extracting the calculations")
}

func TestProgressView_TransformFailureStopsBar(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	p := &progressView{out: &buf}

	p.Handle(types.Event{Type: types.EventStarted, Stage: types.StageTransform, Index: 1, Total: 3})
	p.Handle(types.Event{Type: types.EventFailed, Stage: types.StageTransform, Index: 1, Total: 3})
	p.Handle(types.Event{Type: types.EventStarted, Stage: types.StageTransform, Index: 2, Total: 3})
	p.Done()

	assert.Contains(t, buf.String(), "✗ exercise 1 of 3")
	assert.Nil(t, p.bar)
}

func TestProgressView_Quiet(t *testing.T) {
	var buf bytes.Buffer
	p := &progressView{out: &buf, quiet: true}
	p.Handle(types.Event{Type: types.EventCompleted, Stage: types.StageRasterize, Total: 2})
	assert.Empty(t, buf.String())
}
