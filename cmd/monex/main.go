package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/google/subcommands"

	"monex/internal/app"
	"monex/internal/cli"
	"monex/internal/config"
	"monex/internal/logger"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	var opened *app.App
	env := &cli.Env{
		Out: os.Stdout,
		Err: os.Stderr,
		Open: func() (*app.App, error) {
			if opened != nil {
				return opened, nil
			}
			cfg, err := config.Load()
			if err != nil {
				return nil, fmt.Errorf("failed to load configuration: %w", err)
			}
			// The CLI only reports warnings unless LOG_LEVEL asks for more.
			level := cfg.LogLevel
			if level == "" {
				level = "warn"
			}
			logger.Init(cfg.Env, level)

			opened, err = app.New(cfg)
			return opened, err
		},
	}
	cli.Register(commander, env)

	flag.Parse()
	status := commander.Execute(context.Background())

	if opened != nil {
		opened.Close()
	}
	logger.Sync()
	os.Exit(int(status))
}
