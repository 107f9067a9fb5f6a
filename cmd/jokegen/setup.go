package main

import (
	"context"
	"flag"
	"strings"

	"github.com/google/uuid"

	"github.com/rakesh-kumar-k/jokegen/internal/chat"
	"github.com/rakesh-kumar-k/jokegen/internal/config"
	"github.com/rakesh-kumar-k/jokegen/internal/logging"
	"github.com/rakesh-kumar-k/jokegen/internal/transport"
)

type commonFlags struct {
	server    string
	transport string
	logLevel  string
}

func registerCommonFlags(fs *flag.FlagSet) *commonFlags {
	flags := &commonFlags{}
	fs.StringVar(&flags.server, "server", "", "backend host:port")
	fs.StringVar(&flags.transport, "transport", "", `transport variant: "sse" or "socket"`)
	fs.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	return flags
}

// resolveSettings loads the config file and applies flag overrides on top.
func resolveSettings(flags *commonFlags) (config.Settings, error) {
	cfg, err := config.LoadSettings()
	if err != nil {
		return config.Settings{}, err
	}
	if value := strings.TrimSpace(flags.server); value != "" {
		cfg.Server.Address = value
	}
	if value := strings.TrimSpace(flags.transport); value != "" {
		cfg.Transport.Variant = value
	}
	if value := strings.TrimSpace(flags.logLevel); value != "" {
		cfg.Logging.Level = value
	}
	return cfg, nil
}

// buildOrchestrator wires the transport variant selected by the settings.
func buildOrchestrator(cfg config.Settings, logger logging.Logger) *chat.Orchestrator {
	if cfg.Variant() == config.VariantSocket {
		sessionID := uuid.NewString()
		return chat.New(chat.Config{
			Variant:        chat.VariantSocket,
			ReconnectDelay: cfg.ReconnectDelay(),
			Logger:         logger,
			Dial: func(ctx context.Context, handler transport.Handler) (transport.Session, error) {
				return transport.DialSocket(ctx, cfg.SocketURL(sessionID), handler, logger)
			},
		})
	}
	return chat.New(chat.Config{
		Variant: chat.VariantStream,
		Logger:  logger,
		OpenStream: func(ctx context.Context, topic string, handler transport.Handler) (transport.Session, error) {
			return transport.OpenStream(ctx, cfg.StreamURL(topic), handler, logger)
		},
	})
}
