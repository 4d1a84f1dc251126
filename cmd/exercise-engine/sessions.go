// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/exercise-engine/internal/export"
	"github.com/pdiddy/exercise-engine/internal/store"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List analyzed documents, newest first",
	Args:  cobra.NoArgs,
	RunE:  runSessions,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print a stored session (default: latest)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSessionsShow,
}

func init() {
	sessionsCmd.Flags().Int("limit", 0, "maximum number of sessions (default: store.max_sessions)")
	sessionsCmd.Flags().Bool("json", false, "output as JSON")
	sessionsShowCmd.Flags().StringP("format", "f", "markdown", "output format: text, markdown, yaml or json")

	sessionsCmd.AddCommand(sessionsShowCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func openStore() (*store.Store, error) {
	return store.NewStore(cfg.Store)
}

func runSessions(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	list, err := st.Sessions(cmd.Context(), limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	if len(list) == 0 {
		fmt.Fprintln(out, "No sessions yet. Run \"exercise-engine analyze <document.pdf>\".")
		return nil
	}

	fmt.Fprintf(out, "%-36s  %-16s  %-30s  %5s  %9s  %s\n",
		"ID", "Analyzed", "Document", "Pages", "Exercises", "Topic")
	fmt.Fprintln(out, strings.Repeat("-", 112))
	for _, s := range list {
		document := s.Document
		if len(document) > 30 {
			document = document[:27] + "..."
		}
		topic := s.Topic
		if topic == "" {
			topic = "-"
		}
		fmt.Fprintf(out, "%-36s  %-16s  %-30s  %5d  %9d  %s\n",
			s.ID, s.CreatedAt.Local().Format("2006-01-02 15:04"), document, s.Pages, s.Tasks, topic)
	}
	return nil
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	formatName, _ := cmd.Flags().GetString("format")
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	id := ""
	if len(args) == 1 {
		id = args[0]
	}
	a := &app{store: st}
	sess, err := a.loadSession(cmd.Context(), id)
	if err != nil {
		return err
	}
	return export.Write(cmd.OutOrStdout(), sess, format)
}
