package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rakesh-kumar-k/jokegen/internal/chat"
	"github.com/rakesh-kumar-k/jokegen/internal/config"
	"github.com/rakesh-kumar-k/jokegen/internal/logging"
	"github.com/rakesh-kumar-k/jokegen/internal/types"
)

const connectWait = 15 * time.Second

// runAsk requests one joke headlessly: progress goes to stderr, the joke to
// stdout.
func runAsk(args []string) error {
	fs := flag.NewFlagSet("ask", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	flags := registerCommonFlags(fs)
	timeout := fs.Duration("timeout", 2*time.Minute, "give up after this long")
	quiet := fs.Bool("quiet", false, "suppress progress output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	topic := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if topic == "" {
		return errors.New("usage: jokegen ask <topic>")
	}

	cfg, err := resolveSettings(flags)
	if err != nil {
		return err
	}
	logger := logging.New(os.Stderr, logging.ParseLevel(cfg.LogLevel()))

	orch := buildOrchestrator(cfg, logger)
	defer orch.Close()

	updates := make(chan chat.Snapshot, 64)
	orch.SetOnChange(func(snapshot chat.Snapshot) { updates <- snapshot })
	orch.Start(context.Background())

	deadline := time.After(*timeout)
	if cfg.Variant() == config.VariantSocket {
		if err := awaitConnected(orch, updates); err != nil {
			return err
		}
	}
	if err := orch.Submit(topic); err != nil {
		return err
	}

	lastNote := ""
	for {
		select {
		case snapshot := <-updates:
			if !*quiet && snapshot.Agent != nil && snapshot.Agent.Note != lastNote {
				lastNote = snapshot.Agent.Note
				fmt.Fprintln(os.Stderr, "· "+snapshot.Agent.Note)
			}
			switch snapshot.Phase {
			case types.TurnCompleted:
				joke, _ := snapshot.LastJoke()
				fmt.Println(joke)
				return nil
			case types.TurnFailed:
				return fmt.Errorf("turn failed: %s", snapshot.Failure)
			}
		case <-deadline:
			return errors.New("timed out waiting for the joke")
		}
	}
}

func awaitConnected(orch *chat.Orchestrator, updates <-chan chat.Snapshot) error {
	if orch.Snapshot().Connection == types.ConnectionConnected {
		return nil
	}
	wait := time.After(connectWait)
	for {
		select {
		case snapshot := <-updates:
			if snapshot.Connection == types.ConnectionConnected {
				return nil
			}
		case <-wait:
			return errors.New("timed out waiting for the socket connection")
		}
	}
}
