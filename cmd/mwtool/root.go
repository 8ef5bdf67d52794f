package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/olgasafonova/mediawiki-client/internal/ftb"
	"github.com/olgasafonova/mediawiki-client/wiki"
)

// app carries what every subcommand shares: bound flags, output and logger
type app struct {
	v      *viper.Viper
	out    io.Writer
	level  *slog.LevelVar
	logger *slog.Logger
}

func newRootCommand(out, errOut io.Writer) *cobra.Command {
	a := &app{v: viper.New(), out: out, level: new(slog.LevelVar)}
	a.level.Set(slog.LevelWarn)
	a.logger = slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: a.level}))

	root := &cobra.Command{
		Use:   "mwtool",
		Short: "MediaWiki maintenance tool",
		Long: `mwtool talks to a MediaWiki API with a cookie session, typed tokens and
continuation-aware list queries.

Connection settings come from --config (JSON or YAML, e.g. ftb.json) and
MEDIAWIKI_* environment variables, the environment taking precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if a.v.GetBool("verbose") {
				a.level.Set(slog.LevelDebug)
			}
			switch f := a.format(); f {
			case formatTable, formatJSON, formatYAML:
				return nil
			default:
				return fmt.Errorf("unknown output format %q (table, json, yaml)", f)
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringP("config", "c", "", "config file (JSON or YAML)")
	flags.StringP("output", "o", formatTable, "output format (table, json, yaml)")
	flags.BoolP("verbose", "v", false, "verbose logging")
	for _, name := range []string{"config", "output", "verbose"} {
		_ = a.v.BindPFlag(name, flags.Lookup(name))
	}

	root.AddCommand(
		a.tokenCommand(),
		a.recentChangesCommand(),
		a.downloadCommand(),
		a.uploadCommand(),
		a.exportCommand(),
		a.tilesCommand(),
		a.sheetsCommand(),
		a.oresCommand(),
		a.importTilesCommand(),
		a.purgeCommand(),
		a.verifyOresCommand(),
		a.moveOresCommand(),
	)
	return root
}

// session loads the config and opens a session, logging in when credentials are set
func (a *app) session(ctx context.Context) (*wiki.Session, error) {
	cfg, err := wiki.LoadConfig(a.v.GetString("config"))
	if err != nil {
		return nil, err
	}
	return wiki.New(ctx, cfg, a.logger)
}

func (a *app) ftbClient(ctx context.Context) (*ftb.Client, error) {
	s, err := a.session(ctx)
	if err != nil {
		return nil, err
	}
	return ftb.NewClient(s), nil
}
