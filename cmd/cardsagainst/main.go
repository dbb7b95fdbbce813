package main

import (
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version     kong.VersionFlag `short:"v" help:"Show version"`
	Server      ServerCmd        `cmd:"" help:"Run the game server"`
	ValidateKey ValidateKeyCmd   `cmd:"" name:"validate-key" help:"Check an OpenAI API key against the hosted backend"`
	Leaderboard LeaderboardCmd   `cmd:"" help:"Print the all-time round win standings"`
}

func main() {
	// Best effort: a missing .env is fine
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("cardsagainst"),
		kong.Description("Multiplayer card-matching party game server with LLM-driven bot seats"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
