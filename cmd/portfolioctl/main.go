package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	for _, c := range Commands {
		commander.Register(c, "")
	}

	flag.StringVar(&serverURL, "server", defaultServerURL(), "Base URL of the portfolio HTTP API.")
	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
