package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bamsammich/fsize/internal/config"
	"github.com/bamsammich/fsize/internal/filesize"
	"github.com/bamsammich/fsize/internal/logging"
	"github.com/bamsammich/fsize/internal/platform"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// strategyFlag is a pflag.Value that validates --strategy while parsing.
type strategyFlag struct {
	strategy platform.Strategy
}

var _ pflag.Value = (*strategyFlag)(nil)

func (f *strategyFlag) String() string { return f.strategy.String() }
func (*strategyFlag) Type() string     { return "strategy" }

func (f *strategyFlag) Set(val string) error {
	s, err := platform.ParseStrategy(val)
	if err != nil {
		return err
	}
	f.strategy = s
	return nil
}

// app holds state shared by all subcommands.
type app struct {
	stdout io.Writer
	stderr io.Writer

	verbose  bool
	quiet    bool
	logFile  string
	strategy strategyFlag
	reserve  bool

	cfg     config.Config
	logger  *slog.Logger
	closers []io.Closer
}

func run(args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	defer a.close()

	rootCmd := newRootCmd(a)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(*exitError); ok {
			return exitErr.code
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}

func newRootCmd(a *app) *cobra.Command {
	var showVersion bool

	rootCmd := &cobra.Command{
		Use:   "fsize",
		Short: "Create backing files and grow them to a size that is safe to mmap",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if showVersion {
				fmt.Fprintf(a.stdout, "fsize %s\n", version)
				return nil
			}
			return cmd.Help()
		},
	}

	rootCmd.Flags().BoolVar(&showVersion, "version", false, "print version and exit")

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	pf.BoolVarP(&a.quiet, "quiet", "q", false, "suppress all output except errors")
	pf.StringVar(&a.logFile, "log", "", "write structured JSON log to FILE")
	pf.Var(&a.strategy, "strategy", "extension strategy: auto, truncate or fill")
	pf.BoolVar(&a.reserve, "reserve", false, "allocate blocks with fallocate before growing (truncate strategy)")

	rootCmd.AddCommand(
		newCreateCmd(a),
		newExtendCmd(a),
		newInspectCmd(a),
		newMapCmd(a),
		docsCmd,
	)
	return rootCmd
}

// setup loads the config file and configures logging. Flags explicitly set
// on the command line win over config values.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, cfgErr := config.Load()

	logLevel := slog.LevelInfo
	if cfg.Defaults.LogLevel != nil {
		lvl, err := logging.ParseLevel(*cfg.Defaults.LogLevel)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		logLevel = lvl
	}
	if a.verbose {
		logLevel = slog.LevelDebug
	} else if a.quiet {
		logLevel = slog.LevelWarn
	}

	textHandler := slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: logLevel})
	var logHandler slog.Handler = textHandler
	a.logger = slog.New(textHandler)
	if a.logFile != "" {
		lf, err := os.Create(a.logFile)
		if err != nil {
			return a.fail("open log file failed", err, "path", a.logFile)
		}
		a.closers = append(a.closers, lf)
		jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{Level: slog.LevelDebug})
		logHandler = logging.NewMultiHandler(textHandler, jsonHandler)
	}
	a.logger = slog.New(logHandler)
	slog.SetDefault(a.logger)

	if cfgErr != nil {
		a.logger.Warn("failed to load config", "path", config.Path(), "error", cfgErr)
		cfg = config.Config{}
	}
	a.cfg = cfg

	return applyConfigDefaults(cmd, cfg.Defaults, &a.strategy, &a.reserve)
}

// applyConfigDefaults applies config file defaults for flags not explicitly set on the CLI.
func applyConfigDefaults(
	cmd *cobra.Command,
	defaults config.DefaultsConfig,
	strategy *strategyFlag,
	reserve *bool,
) error {
	if !cmd.Flags().Changed("strategy") && defaults.Strategy != nil {
		if err := strategy.Set(*defaults.Strategy); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	if !cmd.Flags().Changed("reserve") && defaults.Reserve != nil {
		*reserve = *defaults.Reserve
	}
	return nil
}

// verifyDefault resolves a --verify flag against the config file.
func (a *app) verifyDefault(cmd *cobra.Command, flag bool) bool {
	if !cmd.Flags().Changed("verify") && a.cfg.Defaults.Verify != nil {
		return *a.cfg.Defaults.Verify
	}
	return flag
}

func (a *app) manager() *filesize.Manager {
	ext := platform.New(a.strategy.strategy, platform.WithReserve(a.reserve))
	return filesize.New(ext, a.logger)
}

func (a *app) close() {
	for _, c := range a.closers {
		c.Close()
	}
}

// exitError carries an exit status for failures that were already reported.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
