package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adda-Baaj/khobor-digest/internal/app"
	"github.com/Adda-Baaj/khobor-digest/internal/config"
	"github.com/Adda-Baaj/khobor-digest/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configFile string
		dryRun     bool
		logLevel   string
		envFile    string
	)

	flags := pflag.NewFlagSet("digest", pflag.ContinueOnError)
	flags.StringVarP(&configFile, "config", "c", "", "optional config file (yaml, json or toml)")
	flags.BoolVar(&dryRun, "dry-run", false, "print the text digest to stdout instead of delivering it")
	flags.StringVar(&logLevel, "log-level", "", "override the log level (debug, info, warn, error)")
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load %s: %v\n", envFile, err)
		return 1
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner, err := app.Build(ctx, cfg, app.BuildOptions{DryRun: dryRun, Stdout: os.Stdout}, log)
	if err != nil {
		log.ErrorObj("setup failed", "setup_error", map[string]any{"error": err.Error()})
		return 1
	}

	if err := runner.Run(ctx); err != nil {
		log.ErrorObj("digest run failed", "run_error", map[string]any{"error": err.Error()})
		return 1
	}
	return 0
}
