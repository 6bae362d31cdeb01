package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gitlab.com/browserker/locate/clicmds"
)

func main() {
	app := cli.NewApp()
	app.Name = "browserker-locate"
	app.Version = "0.1"
	app.Usage = "Find elements with ordered fallback locators"
	app.DisableSliceFlagSeparator = true
	app.Flags = clicmds.GlobalFlags()
	app.Before = clicmds.SetupLogging
	app.Commands = []*cli.Command{
		{
			Name:      "find",
			Aliases:   []string{"f"},
			Usage:     "run an ordered locator against urls or html files",
			ArgsUsage: "[targets...]",
			Action:    clicmds.Find,
			Flags:     clicmds.FindFlags(),
		},
		{
			Name:    "serve",
			Aliases: []string{"s"},
			Usage:   "serve the locate tool over mcp",
			Action:  clicmds.Serve,
			Flags:   clicmds.ServeFlags(),
		},
	}
	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Msg("browserker-locate failed")
	}
}
