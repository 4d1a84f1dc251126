package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List the configured target topics",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if len(cfg.Topics) == 0 {
			fmt.Fprintln(out, "No topics configured. Add a \"topics\" list to exercise-engine.yaml.")
			return
		}
		for _, t := range cfg.Topics {
			fmt.Fprintln(out, t)
		}
	},
}

func init() {
	rootCmd.AddCommand(topicsCmd)
}
