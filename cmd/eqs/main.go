// Package main provides eqs, a command line tool to inspect and combine
// serialized tensor maps.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
)

const version = "v0.1.0-dev"

const usage = `Usage: eqs [global flags] COMMAND [flags] ARGS

Commands:
  version    Show version
  inspect    Print the keys and block shapes of maps
  join       Join maps along samples or properties
  drop       Remove blocks by key
  compare    Check that two maps are equal within a tolerance

Global flags:
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "eqs: %v\n", err)
		}
		os.Exit(1)
	}
}

// run executes one command line. Output goes to stdout, logs and usage to
// stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	global := flag.NewFlagSet("eqs", flag.ContinueOnError)
	global.SetOutput(stderr)

	var (
		configFile = global.String("config", "", "Path to JSON config file")
		root       = global.String("root", "", "Directory of the local store (overrides config)")
		verbose    = global.Bool("v", false, "Enable debug logging")
	)
	global.Usage = func() {
		fmt.Fprint(stderr, usage)
		global.PrintDefaults()
	}

	if err := global.Parse(args); err != nil {
		return errUsage
	}
	if global.NArg() == 0 {
		global.Usage()
		return errUsage
	}

	command, rest := global.Arg(0), global.Args()[1:]
	if command == "version" {
		fmt.Fprintf(stdout, "eqs %s\n", version)
		return nil
	}

	cfg := DefaultConfig()
	if *configFile != "" {
		loaded, err := LoadConfig(*configFile)
		if err != nil {
			return err
		}
		cfg = *loaded
	}
	if *root != "" {
		cfg.Store.Kind = "local"
		cfg.Store.Root = *root
	}
	if *verbose {
		cfg.LogLevel = "debug"
	}

	env, err := newEnv(ctx, &cfg, stdout, stderr)
	if err != nil {
		return err
	}

	switch command {
	case "inspect":
		return env.inspect(ctx, rest)
	case "join":
		return env.join(ctx, rest)
	case "drop":
		return env.drop(ctx, rest)
	case "compare":
		return env.compare(ctx, rest)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", command)
		global.Usage()
		return errUsage
	}
}
