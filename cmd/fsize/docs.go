package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

var docsCmd = &cobra.Command{
	Use:    "gen-docs",
	Short:  "Generate documentation for fsize",
	Hidden: true,
	RunE:   runGenDocs,
}

func init() {
	docsCmd.Flags().String("dir", "docs", "output directory")
	docsCmd.Flags().String("format", "man", "output format (man or markdown)")
}

func runGenDocs(cmd *cobra.Command, _ []string) error {
	dir, _ := cmd.Flags().GetString("dir")       //nolint:errcheck // flag name is hardcoded
	format, _ := cmd.Flags().GetString("format") //nolint:errcheck // flag name is hardcoded

	if format != "man" && format != "markdown" {
		return fmt.Errorf("unknown format %q (use man or markdown)", format)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Error("create output dir failed", "dir", dir, "error", err)
		return &exitError{code: 1}
	}

	root := cmd.Root()
	root.DisableAutoGenTag = true

	var err error
	if format == "man" {
		header := &doc.GenManHeader{
			Title:   "FSIZE",
			Section: "1",
			Source:  "fsize " + version,
		}
		err = doc.GenManTree(root, header, dir)
	} else {
		err = doc.GenMarkdownTree(root, dir)
	}
	if err != nil {
		slog.Error("generate docs failed", "dir", dir, "format", format, "error", err)
		return &exitError{code: 1}
	}
	return nil
}
