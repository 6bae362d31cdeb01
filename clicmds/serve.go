package clicmds

import (
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gitlab.com/browserker/locate/mcpserver"
)

// ServeFlags for the serve command
func ServeFlags() []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{
			Name:  "host",
			Usage: "address to listen on",
			Value: "localhost",
		},
		&cli.IntFlag{
			Name:  "port",
			Usage: "port to listen on",
			Value: 8080,
		},
		&cli.BoolFlag{
			Name:  "allow-files",
			Usage: "let clients search local files and file:// urls",
			Value: false,
		},
	}, sharedFlags()...)
}

// Serve the locate tool over MCP
func Serve(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	if ctx.IsSet("allow-files") {
		cfg.AllowFiles = ctx.Bool("allow-files")
	}
	if cfg.AllowFiles {
		log.Warn().Msg("clients may read local files through the locate tool")
	}

	runCtx := log.Logger.WithContext(ctx.Context)
	opener, closeOpener, err := newOpener(runCtx, cfg)
	if err != nil {
		return err
	}
	defer closeOpener()

	s := mcpserver.New(ctx.String("host"), ctx.Int("port"), cfg, opener)
	s.Init()
	return s.Start()
}
