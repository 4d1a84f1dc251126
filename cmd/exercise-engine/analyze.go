// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/exercise-engine/internal/export"
	"github.com/pdiddy/exercise-engine/internal/raster"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <document.pdf>",
	Short: "Extract the exercises of a worksheet PDF",
	Long: `Analyze renders every page of the document, asks the vision model to
transcribe the exercises, reduces them to their calculations, and pairs the
two into numbered exercises. The result is stored as the latest session.

With --topic the exercises are rewritten into that topic right away.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("topic", "", "rewrite the exercises into this topic after analysis")
	analyzeCmd.Flags().StringP("format", "f", "text", "output format: text, markdown, yaml or json")
	analyzeCmd.Flags().StringP("output", "o", "", "write the result to this file instead of stdout")
	analyzeCmd.Flags().String("pages-dir", "", "also write the rendered page images to this directory")
	analyzeCmd.Flags().BoolP("quiet", "q", false, "suppress progress output")

	rootCmd.AddCommand(analyzeCmd)
}

// analyzeOptions carries the analyze flags.
type analyzeOptions struct {
	topic    string
	format   export.Format
	pagesDir string
	quiet    bool
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	formatName, _ := cmd.Flags().GetString("format")
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}
	opts := analyzeOptions{format: format}
	opts.topic, _ = cmd.Flags().GetString("topic")
	opts.pagesDir, _ = cmd.Flags().GetString("pages-dir")
	opts.quiet, _ = cmd.Flags().GetBool("quiet")

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading document: %w", err)
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	return a.analyze(cmd, filepath.Base(args[0]), data, opts)
}

// analyze runs the analysis and writes the session. When extraction stops
// after the full text was read, that text is still written before the error
// is returned.
func (a *app) analyze(cmd *cobra.Command, document string, data []byte, opts analyzeOptions) error {
	ctx := cmd.Context()

	view := newProgressView(opts.quiet)
	sess, err := a.workspace.Analyze(ctx, document, data, view.Handle)
	view.Done()
	if err != nil {
		if strings.TrimSpace(sess.Extraction.FullText) == "" {
			return err
		}
		if werr := writeOutput(cmd, func(w io.Writer) error { return export.Write(w, sess, opts.format) }); werr != nil {
			logger.Warn().Err(werr).Msg("writing partial result")
		} else if !opts.quiet {
			warning("Only the full text could be extracted")
		}
		return err
	}
	if !opts.quiet {
		success("Found %d exercises on %d pages (session %s)", len(sess.Tasks), sess.Pages, sess.ID)
	}

	if opts.pagesDir != "" {
		paths, err := raster.WritePages(opts.pagesDir, sess.Images)
		if err != nil {
			return err
		}
		if !opts.quiet {
			success("Wrote %d page images to %s", len(paths), opts.pagesDir)
		}
	}

	if opts.topic != "" {
		warnUnknownTopic(opts.topic)
		view := newProgressView(opts.quiet)
		_, err := a.workspace.Transform(ctx, opts.topic, view.Handle)
		view.Done()
		if err != nil {
			return err
		}
		sess, _ = a.workspace.Current()
	}

	return writeOutput(cmd, func(w io.Writer) error { return export.Write(w, sess, opts.format) })
}
