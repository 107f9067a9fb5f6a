package main

import (
	"fmt"
	"os"
)

const usageText = `jokegen is a terminal client for a multi-agent joke backend.

Usage:
  jokegen [command] [flags]

Commands:
  ui       run the terminal UI (default)
  ask      request one joke and print it
  config   print the resolved configuration
  version  print the version
  help     show help

Flags (ui and ask):
  --server ADDR      backend host:port (default from config)
  --transport KIND   "sse" or "socket" (default from config)
  --log-level LEVEL  debug, info, warn or error

Examples:
  jokegen
  jokegen ask cats
  jokegen ask --transport socket "Monday mornings"
`

const version = "dev"

func printUsage() {
	fmt.Fprint(os.Stderr, usageText)
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		exitOnErr("ui", runUI(nil))
		return
	}

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
	case "version", "--version":
		fmt.Println("jokegen " + version)
	case "ui":
		exitOnErr("ui", runUI(args[1:]))
	case "ask":
		exitOnErr("ask", runAsk(args[1:]))
	case "config":
		exitOnErr("config", runConfig(args[1:]))
	default:
		// Bare topic shorthand: `jokegen cats` behaves like `jokegen ask cats`.
		if args[0] != "" && args[0][0] == '-' {
			exitOnErr("ui", runUI(args))
			return
		}
		exitOnErr("ask", runAsk(args))
	}
}

func exitOnErr(command string, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "jokegen %s: %v\n", command, err)
	os.Exit(1)
}
