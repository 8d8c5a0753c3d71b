package main

import (
	"strings"

	"github.com/alecthomas/kong"
	"github.com/lox/headsup/internal/bot"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command.
type Globals struct {
	Config string `short:"c" default:"headsup.hcl" type:"path" help:"HCL configuration file (missing file means defaults)"`
}

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Play     PlayCmd          `cmd:"" default:"1" help:"Play heads-up against the computer"`
	Simulate SimulateCmd      `cmd:"" help:"Play bot-vs-bot games and report results"`
	Eval     EvalCmd          `cmd:"" help:"Evaluate a hand"`
	Migrate  MigrateCmd       `cmd:"" help:"Apply history database migrations"`
	History  HistoryCmd       `cmd:"" help:"Show recorded games and hands"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("headsup"),
		kong.Description("Heads-up no-limit Texas Hold'em against a computer opponent"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version":    version,
			"strategies": strings.Join(bot.Strategies(), ", "),
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
