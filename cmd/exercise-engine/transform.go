// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/exercise-engine/internal/export"
)

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Rewrite the exercises of a session into a topic",
	Long: `Transform rewrites every exercise of a stored session into the target
topic, keeping the numbers and operations of each calculation. The latest
session is used unless --session names another one.

The result replaces the session's previous transformation only when every
exercise was rewritten.`,
	Args: cobra.NoArgs,
	RunE: runTransform,
}

func init() {
	transformCmd.Flags().StringP("topic", "t", "", "target topic (required)")
	transformCmd.Flags().String("session", "", "session ID to transform (default: latest)")
	transformCmd.Flags().Int("concurrency", 0, "rewrite up to this many exercises at once")
	transformCmd.Flags().StringP("format", "f", "text", "output format: text, markdown, yaml or json")
	transformCmd.Flags().StringP("output", "o", "", "write the result to this file instead of stdout")
	transformCmd.Flags().BoolP("quiet", "q", false, "suppress progress output")
	_ = transformCmd.MarkFlagRequired("topic")

	_ = v.BindPFlag("concurrency", transformCmd.Flags().Lookup("concurrency"))

	rootCmd.AddCommand(transformCmd)
}

func runTransform(cmd *cobra.Command, args []string) error {
	formatName, _ := cmd.Flags().GetString("format")
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}
	topic, _ := cmd.Flags().GetString("topic")
	id, _ := cmd.Flags().GetString("session")
	quiet, _ := cmd.Flags().GetBool("quiet")

	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sess, err := a.loadSession(ctx, id)
	if err != nil {
		return err
	}
	a.workspace.Restore(sess)
	warnUnknownTopic(topic)

	view := newProgressView(quiet)
	out, err := a.workspace.Transform(ctx, topic, view.Handle)
	view.Done()
	if err != nil {
		return err
	}
	if !quiet {
		success("Rewrote %d exercises from %s into %q", len(out), sess.Document, out[0].Topic)
	}

	return writeOutput(cmd, func(w io.Writer) error {
		if format == export.FormatText {
			_, err := fmt.Fprintln(w, export.Text(out))
			return err
		}
		current, _ := a.workspace.Current()
		return export.Write(w, current, format)
	})
}

// warnUnknownTopic notes a topic that is not in the configured list. Free
// topics are allowed.
func warnUnknownTopic(topic string) {
	topic = strings.TrimSpace(topic)
	if topic == "" || len(cfg.Topics) == 0 || cfg.HasTopic(topic) {
		return
	}
	warning("%q is not one of the configured topics (%s)", topic, strings.Join(cfg.Topics, ", "))
}
