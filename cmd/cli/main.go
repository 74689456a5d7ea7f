package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/admetrics/cmd/cli/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		commands.Globals `embed:""`

		Config  kong.ConfigFlag  `help:"YAML configuration file." type:"path"`
		Version kong.VersionFlag `help:"Print version information and quit."`

		Login   commands.LoginCmd   `cmd:"" help:"Log in and save the session"`
		Logout  commands.LogoutCmd  `cmd:"" help:"Forget the saved session"`
		Whoami  commands.WhoamiCmd  `cmd:"" help:"Show the saved session"`
		Metrics commands.MetricsCmd `cmd:"" help:"Print one page of metrics"`
		Browse  commands.BrowseCmd  `cmd:"" help:"Browse metrics interactively" default:"1"`
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := kong.Parse(&cli,
		kong.Name("admetrics"),
		kong.Description("Ad campaign metrics from the terminal."),
		kong.Vars{
			"version": version,
		},
		kong.Configuration(commands.YAMLConfig, "~/.admetrics/config.yaml"),
		kong.BindTo(ctx, (*context.Context)(nil)))

	globals := cli.Globals
	globals.Version = version

	err := cmd.Run(&globals)
	cmd.FatalIfErrorf(err)
}
