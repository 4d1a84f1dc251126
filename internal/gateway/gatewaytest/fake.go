// Package gatewaytest provides a scripted gateway.Gateway for tests.
package gatewaytest

import (
	"context"
	"sync"

	"github.com/pdiddy/exercise-engine/internal/gateway"
	"github.com/pdiddy/exercise-engine/pkg/types"
)

// Call records one request made to the Fake.
type Call struct {
	Vision       bool
	Instructions string
	Input        string
	Images       int
	Model        string
	Options      gateway.CallOptions
}

// Fake answers requests with VisionFunc and TextFunc and records every call.
// A nil func returns an empty string.
type Fake struct {
	VisionFunc func(ctx context.Context, instructions string, images []types.PageImage) (string, error)
	TextFunc   func(ctx context.Context, instructions, input string) (string, error)

	mu    sync.Mutex
	calls []Call
}

func (f *Fake) VisionComplete(ctx context.Context, instructions string, images []types.PageImage, model string, opts ...gateway.Option) (string, error) {
	f.record(Call{Vision: true, Instructions: instructions, Images: len(images), Model: model, Options: resolve(opts)})
	if f.VisionFunc == nil {
		return "", nil
	}
	return f.VisionFunc(ctx, instructions, images)
}

func (f *Fake) TextComplete(ctx context.Context, instructions, input, model string, opts ...gateway.Option) (string, error) {
	f.record(Call{Instructions: instructions, Input: input, Model: model, Options: resolve(opts)})
	if f.TextFunc == nil {
		return "", nil
	}
	return f.TextFunc(ctx, instructions, input)
}

// Calls returns a copy of the recorded calls in arrival order.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Count returns the number of vision and text calls made.
func (f *Fake) Count() (vision, text int) {
	for _, c := range f.Calls() {
		if c.Vision {
			vision++
		} else {
			text++
		}
	}
	return vision, text
}

func (f *Fake) record(c Call) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
}

func resolve(opts []gateway.Option) gateway.CallOptions {
	var co gateway.CallOptions
	for _, opt := range opts {
		opt(&co)
	}
	return co
}
