// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/pdiddy/exercise-engine/pkg/types"
)

var stageLabels = map[types.Stage]string{
	types.StageRasterize: "Rendering pages",
	types.StageFullText:  "Reading exercises from the page images",
	types.StageCoreText:  "Extracting the calculations",
	types.StageTransform: "Rewriting exercises",
}

// progressView renders pipeline events on stderr: a spinner while a single
// remote call is pending and a bar while exercises are rewritten.
type progressView struct {
	out   io.Writer
	quiet bool

	mu     sync.Mutex
	spin   *spinner.Spinner
	bar    *progressbar.ProgressBar
	failed bool
}

func newProgressView(quiet bool) *progressView {
	return &progressView{out: os.Stderr, quiet: quiet}
}

// Handle is a types.ProgressFunc.
func (p *progressView) Handle(ev types.Event) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if ev.Stage == types.StageTransform {
		p.handleTransform(ev)
		return
	}

	label := stageLabels[ev.Stage]
	switch ev.Type {
	case types.EventStarted:
		p.stopSpinner()
		p.spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(p.out))
		p.spin.Suffix = " " + label + "..."
		p.spin.Start()
	case types.EventCompleted:
		p.stopSpinner()
		if ev.Total > 0 {
			label = fmt.Sprintf("%s (%d)", label, ev.Total)
		}
		fmt.Fprintln(p.out, color.GreenString("✓ %s", label))
	case types.EventFailed:
		p.stopSpinner()
		fmt.Fprintln(p.out, color.RedString("✗ %s", label))
	}
}

func (p *progressView) handleTransform(ev types.Event) {
	if p.failed {
		return
	}
	switch ev.Type {
	case types.EventStarted:
		if p.bar == nil {
			p.bar = progressbar.NewOptions(ev.Total,
				progressbar.OptionSetWriter(p.out),
				progressbar.OptionSetDescription(stageLabels[types.StageTransform]),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetItsString("exercises"),
				progressbar.OptionSetRenderBlankState(true),
				progressbar.OptionOnCompletion(func() { fmt.Fprintln(p.out) }),
			)
		}
	case types.EventCompleted:
		if p.bar != nil {
			_ = p.bar.Add(1)
		}
	case types.EventFailed:
		if p.bar != nil {
			_ = p.bar.Clear()
			p.bar = nil
		}
		p.failed = true
		fmt.Fprintln(p.out, color.RedString("✗ exercise %d of %d", ev.Index, ev.Total))
	}
}

// Done stops any running spinner or bar.
func (p *progressView) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopSpinner()
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
}

func (p *progressView) stopSpinner() {
	if p.spin != nil {
		p.spin.Stop()
		p.spin = nil
	}
}

func success(format string, args ...any) {
	fmt.Fprintln(os.Stderr, color.GreenString("✓ "+format, args...))
}

func warning(format string, args ...any) {
	fmt.Fprintln(os.Stderr, color.YellowString("⚠ "+format, args...))
}
