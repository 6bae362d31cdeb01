package clicmds

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

// GlobalFlags apply to every command
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "trace, debug, info, warn or error",
			Value: "info",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "shortcut for --log-level debug",
			Value: false,
		},
	}
}

// SetupLogging sends the global logger to stderr at the requested level
func SetupLogging(ctx *cli.Context) error {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	// contexts without a logger of their own still log
	zerolog.DefaultContextLogger = &log.Logger

	level := ctx.String("log-level")
	if ctx.Bool("debug") {
		level = "debug"
	}
	return setLevel(level)
}

func setLevel(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return errors.Wrapf(err, "invalid log level %s", level)
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}
