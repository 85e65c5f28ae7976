package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bamsammich/fsize/internal/inspect"
	"github.com/bamsammich/fsize/internal/platform"
	"github.com/bamsammich/fsize/internal/region"
	"github.com/bamsammich/fsize/internal/size"
)

func newCreateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create <path>...",
		Short: "Create empty owner-only files, truncating existing ones",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			m := a.manager()
			failed := false
			for _, path := range args {
				if err := m.CreateFile(path); err != nil {
					failed = true
					continue
				}
				if !a.quiet {
					fmt.Fprintf(a.stdout, "created %s\n", path)
				}
			}
			if failed {
				return &exitError{code: 1}
			}
			return nil
		},
	}
}

func newExtendCmd(a *app) *cobra.Command {
	var (
		create bool
		verify bool
	)

	cmd := &cobra.Command{
		Use:   "extend <path> <size>",
		Short: "Grow a file to at least SIZE bytes (e.g. 10000, 4K, 1.5G)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			n, err := size.Parse(args[1])
			if err != nil {
				return err
			}
			verify = a.verifyDefault(cmd, verify)
			m := a.manager()

			if create {
				if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
					if err := m.CreateFile(path); err != nil {
						return &exitError{code: 1}
					}
				}
			}

			before := currentSize(path)
			if err := m.ExtendFile(path, n); err != nil {
				return &exitError{code: 1}
			}

			if verify && n > before {
				if err := verifyZeros(a, path, before, n); err != nil {
					return err
				}
			}

			if !a.quiet {
				fmt.Fprintf(a.stdout, "%s: %s (%d bytes, strategy %s)\n",
					path, size.Format(max(before, n)), max(before, n), m.Strategy())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&create, "create", false, "create the file first if it does not exist")
	cmd.Flags().BoolVar(&verify, "verify", false, "map the file and check the added range reads as zeros")
	return cmd
}

func newInspectCmd(a *app) *cobra.Command {
	var hash bool

	cmd := &cobra.Command{
		Use:   "inspect <path>...",
		Short: "Show length, allocation and optional BLAKE3 digest of files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PATH\tSIZE\tDATA\tHOLES\tMODE\tDIGEST")

			failed := false
			for _, path := range args {
				r, err := inspect.Inspect(path, inspect.Options{Hash: hash})
				if err != nil {
					a.logger.Error("inspect failed", "path", path, "error", err)
					failed = true
					continue
				}
				digest := "-"
				if r.Digest != "" {
					digest = r.Digest
				}
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t%s\n",
					r.Path, r.Size, r.DataBytes, r.HoleBytes, r.Mode, digest)
			}
			if err := tw.Flush(); err != nil {
				return a.fail("write report failed", err)
			}
			if failed {
				return &exitError{code: 1}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&hash, "hash", false, "compute the BLAKE3-256 digest of each file")
	return cmd
}

func newMapCmd(a *app) *cobra.Command {
	var create bool

	cmd := &cobra.Command{
		Use:   "map <path> <size>",
		Short: "Grow a file, map it read-write and fault in every page",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			path := args[0]
			n, err := size.Parse(args[1])
			if err != nil {
				return err
			}
			m := a.manager()

			if create {
				if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
					if err := m.CreateFile(path); err != nil {
						return &exitError{code: 1}
					}
				}
			}

			before := currentSize(path)
			r, err := region.Map(m, path, n)
			if err != nil {
				return a.fail("map failed", err, "path", path, "size", n)
			}
			pages := r.Touch(0)
			zero := before >= n || region.IsZero(r.Bytes()[before:])
			if err := r.Close(); err != nil {
				a.logger.Error("unmap failed", "path", path, "error", err)
				return &exitError{code: 1}
			}
			if !zero {
				a.logger.Error("extended range is not zero-filled", "path", path, "from", before, "to", n)
				return &exitError{code: 1}
			}

			if !a.quiet {
				fmt.Fprintf(a.stdout, "%s: mapped %s, %d pages\n", path, size.Format(n), pages)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&create, "create", false, "create the file first if it does not exist")
	return cmd
}

// currentSize returns the length of path, or 0 if it cannot be stat'ed.
func currentSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}

func verifyZeros(a *app, path string, from, to int64) error {
	r, err := region.Map(a.manager(), path, to)
	if err != nil {
		return a.fail("verify: map failed", err, "path", path)
	}
	zero := region.IsZero(r.Bytes()[from:to])
	if err := r.Close(); err != nil {
		a.logger.Error("verify: unmap failed", "path", path, "error", err)
		return &exitError{code: 1}
	}
	if !zero {
		a.logger.Error("verify: extended range is not zero-filled", "path", path, "from", from, "to", to)
		return &exitError{code: 1}
	}
	a.logger.Debug("verified zero fill", "path", path, "from", from, "to", to)
	return nil
}

// fail logs err and returns exit status 1. Errors from the filesize Manager
// were already logged where they happened and are not logged again.
func (a *app) fail(msg string, err error, attrs ...any) error {
	if _, reported := platform.KindOf(err); !reported {
		a.logger.Error(msg, append(attrs, "error", err)...)
	}
	return &exitError{code: 1}
}
