package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/isdelr/leadgate-be/internal/extractor"
	"github.com/isdelr/leadgate-be/internal/logger"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()
	logger.Init(os.Getenv("LOG_LEVEL"), true)

	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, extractor.ErrNotLoggedIn) {
			fmt.Fprintln(os.Stderr, "Not logged in. Run: extractor login")
			os.Exit(1)
		}
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func run(args []string) error {
	cmd := extractor.ParseCommand(args)
	if cmd == extractor.CommandHelp {
		fmt.Fprint(os.Stderr, extractor.Usage)
		return nil
	}

	cfg, err := extractor.LoadConfig()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet(string(cmd), flag.ContinueOnError)
	fs.StringVar(&cfg.BackendURL, "backend", cfg.BackendURL, "backend API base URL")
	fs.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "directory for CSV exports")
	email := fs.String("email", "", "account email (login)")
	schedule := fs.String("schedule", "", "cron expression for repeated runs (scrape)")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := extractor.NewApp(cfg, os.Stdin, os.Stdout)

	switch cmd {
	case extractor.CommandLogin:
		return app.Login(ctx, *email)
	case extractor.CommandLogout:
		return app.Logout()
	case extractor.CommandStatus:
		return app.Status(ctx)
	case extractor.CommandScrape:
		if *schedule == "" {
			return app.Scrape(ctx)
		}
		scheduler, err := extractor.NewScheduler(*schedule, app.Scrape)
		if err != nil {
			return err
		}
		scheduler.Run(ctx)
		return nil
	}
	return nil
}
