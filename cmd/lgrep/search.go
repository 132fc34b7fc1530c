package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/lgrep/internal/config"
	"github.com/standardbeagle/lgrep/internal/debug"
	"github.com/standardbeagle/lgrep/internal/display"
	lgerrors "github.com/standardbeagle/lgrep/internal/errors"
	"github.com/standardbeagle/lgrep/internal/search"
	"github.com/standardbeagle/lgrep/internal/walker"
)

func (r *runner) searchCommand(c *cli.Context) error {
	switch {
	case c.NArg() < 2:
		return lgerrors.NewArgumentError("not enough arguments")
	case c.NArg() > 2:
		return lgerrors.NewArgumentError(fmt.Sprintf("too many arguments: %q", c.Args().Slice()[2:]))
	}
	needle, target := c.Args().Get(0), c.Args().Get(1)

	cfg, err := loadConfigWithOverrides(c, target)
	if err != nil {
		return r.fatal(err)
	}
	r.reporter = display.NewReporter(r.stderr, appName, cfg.Output.Color)

	restore, err := r.setupLogging(c, cfg)
	if err != nil {
		return r.fatal(err)
	}
	defer restore()

	if c.Bool("verbose") {
		r.reporter.Banner(needle, target)
	}

	root, _ := os.Getwd()
	printer := display.NewPrinter(r.stdout, needle, display.Options{
		Color:        cfg.Output.Color,
		WithFilename: cfg.Output.WithFilename,
		Spans:        cfg.Output.Spans,
		JSON:         cfg.Output.JSON,
		Root:         root,
	})
	opts := search.Options{
		Encoding:     cfg.Search.Encoding,
		MaxLineBytes: cfg.Search.MaxLineBytes,
	}

	if !c.Bool("recursive") {
		if err := searchOne(printer, target, needle, opts); err != nil {
			return r.fatal(err)
		}
		return nil
	}
	return r.searchTree(printer, cfg, target, needle, opts)
}

// searchTree searches every file below root. Traversal errors and files that
// cannot be read are reported and skipped; only a root that cannot be walked
// is fatal.
func (r *runner) searchTree(printer *display.Printer, cfg *config.Config, root, needle string, opts search.Options) error {
	filter, err := walker.FilterFromConfig(root, cfg)
	if err != nil {
		return r.fatal(err)
	}

	w, err := walker.New(root, walker.WithBatchSize(cfg.Walk.BatchSize), walker.WithFilter(filter))
	if err != nil {
		// -r on a single file searches just that file
		if lgerrors.KindOf(err) == lgerrors.ErrorTypeNotDirectory {
			if err := searchOne(printer, root, needle, opts); err != nil {
				return r.fatal(err)
			}
			return nil
		}
		return r.fatal(err)
	}

	for path, walkErr := range w.All() {
		if walkErr != nil {
			r.reporter.Warn(walkErr)
			continue
		}
		if err := searchOne(printer, path, needle, opts); err != nil {
			var fileErr *lgerrors.FileError
			if !errors.As(err, &fileErr) {
				// the printer failed, so stdout is gone
				return r.fatal(err)
			}
			r.reporter.Warn(err)
		}
	}

	stats := w.Stats()
	debug.LogWalk("walked %d files in %d directories (%d errors, %d pruned), %d matches, %d warnings",
		stats.Files, stats.Directories, stats.Errors, stats.Pruned, printer.Count(), r.reporter.Count())
	return nil
}

func searchOne(printer *display.Printer, path, needle string, opts search.Options) error {
	return search.StreamFile(path, needle, opts, func(rec search.MatchRecord) error {
		return printer.Match(path, rec)
	})
}

// fatal reports err and ends the run with a failure status
func (r *runner) fatal(err error) error {
	if lgerrors.KindOf(err) == lgerrors.ErrorTypeIsDirectory {
		err = fmt.Errorf("%w (use -r to search a directory)", err)
	}
	r.reporter.Fail(err)
	return cli.Exit("", exitFailure)
}
