// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/exercise-engine/internal/raster"
)

var pagesCmd = &cobra.Command{
	Use:   "pages <document.pdf>",
	Short: "Render the pages of a PDF to PNG files",
	Long: `Pages renders every page of the document the way analyze does and writes
them as page_001.png, page_002.png, ... without calling any model. Use it
to check what the vision model will see.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		dpi, _ := cmd.Flags().GetFloat64("dpi")

		rc := cfg.Raster
		if dpi > 0 {
			rc.DPI = dpi
		}
		images, err := raster.New(rc).RasterizeFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		paths, err := raster.WritePages(out, images)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		success("Rendered %d pages", len(paths))
		return nil
	},
}

func init() {
	pagesCmd.Flags().StringP("out", "o", "pages", "output directory")
	pagesCmd.Flags().Float64("dpi", 0, "render resolution (default: raster.dpi)")

	rootCmd.AddCommand(pagesCmd)
}
