package clicmds

import (
	"github.com/urfave/cli/v2"
	"gitlab.com/browserker/locate/browserk"
)

// loadConfig reads --config if given, then lets any flag that was set
// override it.
func loadConfig(ctx *cli.Context) (*browserk.Config, error) {
	cfg := browserk.DefaultConfig()
	if path := ctx.String("config"); path != "" {
		var err error
		if cfg, err = browserk.LoadConfig(path); err != nil {
			return nil, err
		}
		if !ctx.IsSet("log-level") && !ctx.Bool("debug") && cfg.LogLevel != "" {
			if err := setLevel(cfg.LogLevel); err != nil {
				return nil, err
			}
		}
	}

	if ctx.IsSet("by") {
		cfg.Locators = ctx.StringSlice("by")
	}
	if ctx.IsSet("first") {
		cfg.First = ctx.Bool("first")
	}
	if ctx.IsSet("browser") {
		cfg.UseBrowser = ctx.Bool("browser")
	}
	if ctx.IsSet("numbrowsers") || cfg.NumBrowsers == 0 {
		cfg.NumBrowsers = ctx.Int("numbrowsers")
	}
	if ctx.IsSet("concurrency") || cfg.Concurrency == 0 {
		cfg.Concurrency = ctx.Int("concurrency")
	}
	if ctx.IsSet("navtimeout") {
		cfg.NavigationTimeout = ctx.Int("navtimeout")
	}
	if ctx.IsSet("chrome") {
		cfg.ChromePath = ctx.String("chrome")
	}
	return cfg, nil
}

func sharedFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "toml or yaml config to use",
			Value: "",
		},
		&cli.BoolFlag{
			Name:  "browser",
			Usage: "search a live chrome tab instead of the static html",
			Value: false,
		},
		&cli.IntFlag{
			Name:  "numbrowsers",
			Usage: "max number of browsers to use in parallel",
			Value: 1,
		},
		&cli.IntFlag{
			Name:  "concurrency",
			Usage: "max number of targets searched at once",
			Value: 4,
		},
		&cli.IntFlag{
			Name:  "navtimeout",
			Usage: "seconds to wait for a target to load",
			Value: 30,
		},
		&cli.StringFlag{
			Name:  "chrome",
			Usage: "chrome executable, overrides BROWSERKER_CHROME",
			Value: "",
		},
	}
}
