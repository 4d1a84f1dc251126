// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the exercise-engine CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/exercise-engine/internal/logging"
	"github.com/pdiddy/exercise-engine/internal/secrets"
	"github.com/pdiddy/exercise-engine/internal/settings"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	v      = viper.New()
	cfg    settings.Config
	logger zerolog.Logger
)

// rootCmd is the base command for the exercise-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "exercise-engine",
	Short: "Turn worksheet PDFs into exercises rewritten for a new topic",
	Long: `exercise-engine reads a worksheet PDF, asks a vision model to transcribe
its exercises, reduces each exercise to its calculation, and rewrites the
exercises into a target topic while keeping the numbers and operations.

Run "analyze" on a document first, then "transform" the latest session into
a topic. Sessions are kept in a local SQLite history.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./exercise-engine.yaml or ~/.config/exercise-engine/exercise-engine.yaml)")
	pf.String("provider", "", "completion provider: openai, gemini or ollama")
	pf.String("base-url", "", "override the provider endpoint")
	pf.String("vision-model", "", "model used to read page images")
	pf.String("text-model", "", "model used for core extraction and transformation")
	pf.String("data-dir", "", "directory holding the session history")
	pf.String("log-level", "", "diagnostic log level (trace, debug, info, warn, error)")
	pf.String("log-format", "", "diagnostic log format (console or json)")
	pf.Bool("no-color", false, "disable colored output")

	_ = v.BindPFlag("provider", pf.Lookup("provider"))
	_ = v.BindPFlag("base_url", pf.Lookup("base-url"))
	_ = v.BindPFlag("vision_model", pf.Lookup("vision-model"))
	_ = v.BindPFlag("text_model", pf.Lookup("text-model"))
	_ = v.BindPFlag("store.data_dir", pf.Lookup("data-dir"))
	_ = v.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = v.BindPFlag("log.format", pf.Lookup("log-format"))
}

func loadConfig(cmd *cobra.Command, args []string) error {
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		color.NoColor = true
	}

	if err := settings.LoadDotEnv(".env"); err != nil {
		return err
	}

	keys, err := secrets.Load(".secrets/", logging.New(logging.Config{Level: "warn"}))
	if err != nil {
		return err
	}

	cfgFile, _ := cmd.Flags().GetString("config")
	settings.Configure(v, cfgFile)
	used, err := settings.ReadConfig(v)
	if err != nil {
		return err
	}

	cfg, err = settings.Load(v, keys)
	if err != nil {
		return err
	}

	logger = logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if used != "" {
		logger.Debug().Str("file", used).Msg("using config file")
	}
	if len(keys) > 0 {
		logger.Debug().Strs("keys", keys.Names()).Msg("loaded secrets")
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("✗ %s", describeError(err)))
		os.Exit(1)
	}
}
