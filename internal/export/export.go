// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export renders sessions and transformed tasks as plain text,
// Markdown, YAML or JSON.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/exercise-engine/pkg/types"
)

// Format names an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatYAML     Format = "yaml"
	FormatJSON     Format = "json"
)

// ParseFormat accepts a format name or common alias.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, markdown, yaml or json)", s)
	}
}

const separator = "\n\n---\n\n"

// Text joins transformed tasks into one copyable block, one
// "Exercise N (topic):" section per task.
func Text(tasks []types.TransformedTask) string {
	blocks := make([]string, len(tasks))
	for i, t := range tasks {
		blocks[i] = fmt.Sprintf("Exercise %d (%s):\n%s", t.Index, t.Topic, t.Content)
	}
	return strings.Join(blocks, separator)
}

// Records renders task records as numbered full/core pairs, used when a
// session has no transformation yet.
func Records(records []types.TaskRecord) string {
	blocks := make([]string, len(records))
	for i, r := range records {
		blocks[i] = fmt.Sprintf("Exercise %d:\n%s\n\nCalculation:\n%s", r.Index, orDash(r.FullText), orDash(r.CoreText))
	}
	return strings.Join(blocks, separator)
}

// Markdown renders a whole session.
func Markdown(sess types.Session) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", sess.Document)
	fmt.Fprintf(&b, "- Session: `%s`\n", sess.ID)
	if !sess.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "- Analyzed: %s\n", sess.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintf(&b, "- Pages: %d\n- Exercises: %d\n\n", sess.Pages, len(sess.Tasks))

	b.WriteString("## Exercises\n\n")
	if len(sess.Tasks) == 0 {
		b.WriteString("_No exercises found._\n\n")
		if full := strings.TrimSpace(sess.Extraction.FullText); full != "" {
			fmt.Fprintf(&b, "## Full text\n\n%s\n\n", full)
		}
	}
	for _, t := range sess.Tasks {
		fmt.Fprintf(&b, "### Exercise %d\n\n%s\n\n", t.Index, orDash(t.FullText))
		fmt.Fprintf(&b, "```\n%s\n```\n\n", orDash(t.CoreText))
	}

	if len(sess.Transformed) > 0 {
		fmt.Fprintf(&b, "## Transformed: %s\n\n", sess.Topic)
		for _, t := range sess.Transformed {
			fmt.Fprintf(&b, "### Exercise %d\n\n%s\n\n", t.Index, t.Content)
		}
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// Write renders sess to w in the given format. The text format prints the
// transformation when there is one, the task records otherwise, and the raw
// full text when extraction stopped before any task was paired.
func Write(w io.Writer, sess types.Session, format Format) error {
	switch format {
	case FormatText:
		var out string
		switch {
		case len(sess.Transformed) > 0:
			out = Text(sess.Transformed)
		case len(sess.Tasks) > 0:
			out = Records(sess.Tasks)
		default:
			out = strings.TrimSpace(sess.Extraction.FullText)
		}
		_, err := fmt.Fprintln(w, out)
		return err
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(sess))
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(sess); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(sess); err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
