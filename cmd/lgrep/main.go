package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/lgrep/internal/config"
	"github.com/standardbeagle/lgrep/internal/debug"
	"github.com/standardbeagle/lgrep/internal/display"
	lgerrors "github.com/standardbeagle/lgrep/internal/errors"
	"github.com/standardbeagle/lgrep/internal/version"
)

const (
	appName   = "lgrep"
	usageLine = "USAGE: lgrep [flags] [-r] <pattern> <path>"

	exitOK      = 0
	exitFailure = 1
)

var Version = version.Version

// runner carries the streams and diagnostics shared by the app's hooks
type runner struct {
	stdout   io.Writer
	stderr   io.Writer
	reporter *display.Reporter
}

func init() {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintln(c.App.Writer, version.FullInfo())
	}
}

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit status
func run(args []string, stdout, stderr io.Writer) int {
	r := &runner{
		stdout:   stdout,
		stderr:   stderr,
		reporter: display.NewReporter(stderr, appName, display.ColorAuto),
	}

	err := newApp(r).Run(args)
	if err == nil {
		return exitOK
	}

	var argErr *lgerrors.ArgumentError
	var exitErr cli.ExitCoder
	switch {
	case errors.As(err, &argErr):
		r.reporter.Fail(argErr)
		fmt.Fprintln(stderr, usageLine)
		fmt.Fprintf(stderr, "Run '%s --help' for the list of flags.\n", appName)
		return exitFailure
	case errors.As(err, &exitErr):
		// already reported by the action
		return exitErr.ExitCode()
	default:
		r.reporter.Fail(err)
		return exitFailure
	}
}

func newApp(r *runner) *cli.App {
	return &cli.App{
		Name:                   appName,
		Usage:                  "Report every line of a file, or of every file under a directory, that contains a pattern",
		UsageText:              "lgrep [flags] <pattern> <file>\nlgrep [flags] -r <pattern> <directory>",
		Version:                Version,
		HideHelpCommand:        true,
		UseShortOptionHandling: true,
		Writer:                 r.stdout,
		ErrWriter:              r.stderr,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "recursive",
				Aliases: []string{"r"},
				Usage:   "Search every file below <path>",
			},
			&cli.BoolFlag{
				Name:    "with-filename",
				Aliases: []string{"H"},
				Usage:   "Prefix each match with the file path",
			},
			&cli.BoolFlag{
				Name:  "spans",
				Usage: "Show byte and character spans of each match",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print one JSON object per match",
			},
			&cli.StringFlag{
				Name:  "color",
				Usage: "Highlight matches: auto, always or never",
			},
			&cli.StringFlag{
				Name:  "encoding",
				Usage: "Source text encoding (e.g. utf-8, utf-16le, latin1, shift_jis)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Only search files matching glob patterns (e.g., --include '**/*.go')",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Skip files and directories matching glob patterns (e.g., --exclude '**/vendor')",
			},
			&cli.BoolFlag{
				Name:  "gitignore",
				Usage: "Skip paths ignored by the root .gitignore",
			},
			&cli.IntFlag{
				Name:   "batch-size",
				Usage:  "Directory entries read per listing call",
				Hidden: true,
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (default: .lgrep.kdl, .lgrep.toml or .lgrep.yaml in <path>)",
			},
			&cli.StringFlag{
				Name:  "debug-log",
				Usage: "Write debug output to a rotating log file",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Print the search banner and debug output to stderr",
			},
		},
		OnUsageError: func(c *cli.Context, err error, isSubcommand bool) error {
			return lgerrors.NewArgumentError(err.Error())
		},
		ExitErrHandler: func(c *cli.Context, err error) {
			// exit codes are mapped by run
		},
		Action: r.searchCommand,
	}
}

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context, target string) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"), target)
	if err != nil {
		return nil, err
	}

	if c.IsSet("encoding") {
		cfg.Search.Encoding = c.String("encoding")
	}
	if includeFlags := c.StringSlice("include"); len(includeFlags) > 0 {
		cfg.Walk.Include = includeFlags
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Walk.Exclude = config.DeduplicatePatterns(append(cfg.Walk.Exclude, excludeFlags...))
	}
	if c.IsSet("gitignore") {
		cfg.Walk.RespectGitignore = c.Bool("gitignore")
	}
	if c.IsSet("batch-size") {
		cfg.Walk.BatchSize = c.Int("batch-size")
	}
	if c.IsSet("color") {
		cfg.Output.Color = c.String("color")
	}
	if c.IsSet("with-filename") {
		cfg.Output.WithFilename = c.Bool("with-filename")
	}
	if c.IsSet("spans") {
		cfg.Output.Spans = c.Bool("spans")
	}
	if c.IsSet("json") {
		cfg.Output.JSON = c.Bool("json")
	}
	if c.IsSet("debug-log") {
		cfg.Log.File = c.String("debug-log")
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogging routes debug output for the run. The returned func restores
// the previous state.
func (r *runner) setupLogging(c *cli.Context, cfg *config.Config) (func(), error) {
	verbose := c.Bool("verbose")
	if cfg.Log.File == "" && !verbose {
		return func() {}, nil
	}

	debug.SetEnabled(true)
	if cfg.Log.File != "" {
		err := debug.InitDebugLogFile(debug.LogFileConfig{
			Path:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
			Compress:   cfg.Log.Compress,
		})
		if err != nil {
			debug.SetEnabled(false)
			return nil, err
		}
	} else {
		debug.SetDebugOutput(r.stderr)
	}

	return func() {
		debug.CloseDebugLog()
		debug.SetDebugOutput(nil)
		debug.SetEnabled(false)
	}, nil
}
