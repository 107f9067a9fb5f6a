package main

import (
	"context"
	"flag"
	"os"

	"github.com/rakesh-kumar-k/jokegen/internal/app"
	"github.com/rakesh-kumar-k/jokegen/internal/config"
	"github.com/rakesh-kumar-k/jokegen/internal/logging"
)

func runUI(args []string) error {
	fs := flag.NewFlagSet("ui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	flags := registerCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := resolveSettings(flags)
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs go to a file.
	logPath, err := cfg.LogFile()
	if err != nil {
		return err
	}
	logger, closeLog, err := logging.NewFile(logPath, logging.ParseLevel(cfg.LogLevel()))
	if err != nil {
		return err
	}
	defer closeLog()
	logger.Info("starting ui",
		logging.F("server", cfg.ServerAddress()),
		logging.F("transport", cfg.Variant()))

	orch := buildOrchestrator(cfg, logger)
	orch.Start(context.Background())
	return app.Run(orch, cfg.Variant() == config.VariantSocket)
}
