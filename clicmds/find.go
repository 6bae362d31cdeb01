package clicmds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gitlab.com/browserker/locate/browserk"
	"gitlab.com/browserker/locate/scanner"
)

// ErrNoMatch is returned by find --first when a target had no element
var ErrNoMatch = errors.New("no element found")

// FindFlags for the find command
func FindFlags() []cli.Flag {
	return append([]cli.Flag{
		&cli.StringSliceFlag{
			Name:  "by",
			Usage: "strategy=query locator, repeat to add fallbacks in order (id, name, css, xpath, tag, class, link, partiallink)",
		},
		&cli.BoolFlag{
			Name:  "first",
			Usage: "only report the first element, fail when a target has none",
			Value: false,
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "print results as json",
			Value: false,
		},
		&cli.BoolFlag{
			Name:  "nocolor",
			Usage: "disable colored output",
			Value: false,
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "give up on the whole run after this long, 0 for no limit",
			Value: 0,
		},
	}, sharedFlags()...)
}

// Find runs the ordered locator against every target given as an argument
// or listed in the config.
func Find(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	targets := cfg.URLs
	if ctx.NArg() > 0 {
		targets = ctx.Args().Slice()
	}
	if len(targets) == 0 {
		return errors.New("no targets, pass urls or files as arguments or set urls in the config")
	}
	if len(cfg.Locators) == 0 {
		return errors.New("no locators, pass at least one --by")
	}

	runCtx, cancel := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if timeout := ctx.Duration("timeout"); timeout > 0 {
		var timeoutCancel context.CancelFunc
		runCtx, timeoutCancel = context.WithTimeout(runCtx, timeout)
		defer timeoutCancel()
	}
	runCtx = log.Logger.WithContext(runCtx)

	opener, closeOpener, err := newOpener(runCtx, cfg)
	if err != nil {
		return err
	}
	defer closeOpener()

	runner, err := scanner.New(cfg, opener)
	if err != nil {
		return err
	}

	log.Info().Str("locator", runner.Locator().String()).Int("targets", len(targets)).Msg("locating")
	results, err := runner.Run(runCtx, targets)
	if err != nil {
		return err
	}

	if ctx.Bool("nocolor") {
		color.NoColor = true
	}
	if ctx.Bool("json") {
		err = printJSON(ctx.App.Writer, results)
	} else {
		printResults(ctx.App.Writer, results)
	}
	if err != nil {
		return err
	}

	if cfg.First {
		missing := 0
		for _, r := range results {
			if !r.Matched() {
				missing++
			}
		}
		if missing > 0 {
			return errors.Wrapf(ErrNoMatch, "%d of %d targets", missing, len(results))
		}
	}
	return nil
}

// newOpener picks the static document or chrome tab search
func newOpener(ctx context.Context, cfg *browserk.Config) (scanner.Opener, func(), error) {
	if !cfg.UseBrowser {
		return scanner.NewDocumentOpener(), func() {}, nil
	}

	opener, err := scanner.NewBrowserOpener(cfg)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to start browsers")
	}
	return opener, func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()
		if err := opener.Close(closeCtx); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("failed to close browsers")
		}
	}, nil
}

func printJSON(w io.Writer, results []*scanner.Result) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printResults(w io.Writer, results []*scanner.Result) {
	title := color.New(color.FgWhite, color.Bold).SprintFunc()
	label := color.New(color.FgYellow).SprintFunc()
	value := color.New(color.FgCyan).SprintFunc()
	tag := color.New(color.FgGreen).SprintFunc()
	errorText := color.New(color.FgRed).SprintFunc()

	for _, r := range results {
		fmt.Fprintf(w, "%s %s\n", title("Target:"), r.Target)
		fmt.Fprintf(w, "  %s %s\n", label("Locator:"), r.Locator)
		if r.Error != "" {
			fmt.Fprintf(w, "  %s\n", errorText(r.Error))
			continue
		}
		fmt.Fprintf(w, "  %s %s\n", label("Found:"), value(len(r.Elements)))
		for i, e := range r.Elements {
			fmt.Fprintf(w, "    %d. %s", i+1, tag("<"+e.Tag+">"))
			if e.ID != "" {
				fmt.Fprintf(w, " %s=%s", label("id"), value(e.ID))
			}
			if e.Name != "" {
				fmt.Fprintf(w, " %s=%s", label("name"), value(e.Name))
			}
			if e.Class != "" {
				fmt.Fprintf(w, " %s=%s", label("class"), value(e.Class))
			}
			if e.Href != "" {
				fmt.Fprintf(w, " %s=%s", label("href"), value(e.Href))
			}
			if e.Text != "" {
				fmt.Fprintf(w, " %q", e.Text)
			}
			fmt.Fprintln(w)
		}
	}
}
