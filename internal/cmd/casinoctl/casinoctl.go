// Package casinoctl implements the casinoctl command line: running command
// scripts against a store and auditing game odds.
package casinoctl

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/xtding233/casino-core/internal/config"
	"github.com/xtding233/casino-core/internal/engine"
	"github.com/xtding233/casino-core/internal/event"
	"github.com/xtding233/casino-core/internal/sim"
	"github.com/xtding233/casino-core/internal/store"
	boltstore "github.com/xtding233/casino-core/internal/store/bbolt"
)

const usage = `usage: casinoctl <command> [flags]

commands:
  run       execute a YAML command script
  simulate  estimate return-to-player with random seeds
  seed      print a fresh random seed
  kinds     list command kinds accepted by scripts`

// ErrUsage is returned when no command is given.
var ErrUsage = errors.New(usage)

// Run dispatches args[0] to its subcommand.
func Run(ctx context.Context, args []string, out, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if len(args) == 0 {
		return ErrUsage
	}
	name, rest := args[0], args[1:]
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(errOut)

	switch name {
	case "run":
		cfg, err := ParseRunConfig(fs, rest)
		if err != nil {
			return err
		}
		return RunScriptFile(ctx, cfg, out, errOut)
	case "simulate":
		cfg, err := ParseSimConfig(fs, rest)
		if err != nil {
			return err
		}
		return Simulate(cfg, out)
	case "seed":
		_, err := fmt.Fprintln(out, sim.NewSeed(sim.DefaultRNG()).String())
		return err
	case "kinds":
		e, err := engine.New(engine.Options{Store: store.NewMemory(), Oracle: "oracle"})
		if err != nil {
			return err
		}
		for _, k := range e.Kinds() {
			if _, err := fmt.Fprintln(out, k); err != nil {
				return err
			}
		}
		return nil
	case "help", "-h", "--help":
		_, err := fmt.Fprintln(out, usage)
		return err
	default:
		return fmt.Errorf("unknown command %q\n%s", name, usage)
	}
}

// openStore returns a bbolt store for path, or an in-memory store when path
// is empty.
func openStore(path string) (store.Store, error) {
	if path == "" {
		return store.NewMemory(), nil
	}
	return boltstore.Open(path)
}

// openEvents returns the JSONL sink and a close func. An empty path writes
// to out.
func openEvents(path string, out io.Writer) (event.Sink, func() error, error) {
	if path == "" {
		return event.NewWriter(out), func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open events: %w", err)
	}
	return event.NewWriter(f), f.Close, nil
}

func newLogger(cfg config.Config, errOut io.Writer) (*logrus.Logger, error) {
	l, err := cfg.Logger()
	if err != nil {
		return nil, err
	}
	l.SetOutput(errOut)
	return l, nil
}
