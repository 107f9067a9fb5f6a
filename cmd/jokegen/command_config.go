package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// runConfig prints the resolved settings, file values merged with flag
// overrides, as TOML.
func runConfig(args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	flags := registerCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := resolveSettings(flags)
	if err != nil {
		return err
	}
	out, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	os.Stdout.Write(out)
	return nil
}
