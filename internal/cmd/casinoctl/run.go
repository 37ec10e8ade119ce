package casinoctl

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/xtding233/casino-core/internal/apperr"
	"github.com/xtding233/casino-core/internal/config"
	"github.com/xtding233/casino-core/internal/engine"
	"github.com/xtding233/casino-core/internal/game"
	"github.com/xtding233/casino-core/internal/pool"
	"github.com/xtding233/casino-core/internal/token"
)

// RunConfig holds run command configuration.
type RunConfig struct {
	config.Config
	Script string
}

// ParseRunConfig reads the environment and then flags into a RunConfig. The
// script may also be given as the first positional argument.
func ParseRunConfig(fs *flag.FlagSet, args []string) (RunConfig, error) {
	base, err := config.Load(".env")
	if err != nil {
		return RunConfig{}, err
	}
	cfg := RunConfig{Config: base}

	fs.StringVar(&cfg.Script, "script", "", "path to YAML command script")
	fs.StringVar(&cfg.StorePath, "store", cfg.StorePath, "bbolt database file (empty keeps state in memory)")
	fs.StringVar(&cfg.ConfigDir, "config-dir", cfg.ConfigDir, "directory holding games/*.yaml")
	fs.StringVar(&cfg.EventsPath, "events", cfg.EventsPath, "file to append JSONL events to (empty = stdout)")
	fs.StringVar(&cfg.Oracle, "oracle", cfg.Oracle, "default random-value authority for new pools")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	if err := fs.Parse(args); err != nil {
		return RunConfig{}, err
	}
	if cfg.Script == "" && fs.NArg() > 0 {
		cfg.Script = fs.Arg(0)
	}
	return cfg, nil
}

// Script is a sequence of steps executed in order.
type Script struct {
	Steps []Step `yaml:"steps"`
}

// Step is one script entry. A step either mints tokens, advances the script
// clock, or executes a command; Expect names the error code the command must
// fail with.
type Step struct {
	As      string        `yaml:"as"`
	Do      engine.Kind   `yaml:"do"`
	With    yaml.Node     `yaml:"with"`
	Expect  apperr.Code   `yaml:"expect"`
	Mint    *MintStep     `yaml:"mint"`
	Advance time.Duration `yaml:"advance"`
}

// MintStep deposits tokens outside of any command.
type MintStep struct {
	Asset   token.Asset `yaml:"asset"`
	Account string      `yaml:"account"`
	Amount  uint64      `yaml:"amount"`
}

// Clock is the script's time. It stands still between steps and moves only
// on advance steps, so a script replays the same way every run.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts a clock at start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Runner executes scripts against an engine.
type Runner struct {
	Engine  *engine.Engine
	Configs game.Resolver
	Clock   *Clock
	Log     logrus.FieldLogger
}

// RunScriptFile wires a store, event sink and engine from cfg and runs the
// script file.
func RunScriptFile(ctx context.Context, cfg RunConfig, out, errOut io.Writer) error {
	if cfg.Script == "" {
		return errors.New("script path is required")
	}
	raw, err := os.ReadFile(cfg.Script)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	var script Script
	if err := yaml.Unmarshal(raw, &script); err != nil {
		return fmt.Errorf("decode script: %w", err)
	}

	log, err := newLogger(cfg.Config, errOut)
	if err != nil {
		return err
	}
	st, err := openStore(cfg.StorePath)
	if err != nil {
		return err
	}
	defer st.Close()
	sink, closeSink, err := openEvents(cfg.EventsPath, out)
	if err != nil {
		return err
	}
	defer closeSink()

	clock := NewClock(time.Now().UTC().Truncate(time.Second))
	e, err := engine.New(engine.Options{
		Store:    st,
		Sink:     sink,
		Log:      log,
		Oracle:   cfg.Oracle,
		Policies: cfg.Policies(),
		Now:      clock.Now,
	})
	if err != nil {
		return err
	}
	r := &Runner{Engine: e, Configs: game.NewLoader(cfg.ConfigDir), Clock: clock, Log: log}
	return r.Run(ctx, script)
}

// Run executes every step, stopping at the first step whose outcome differs
// from what it expects.
func (r *Runner) Run(ctx context.Context, s Script) error {
	for i, step := range s.Steps {
		if err := r.step(ctx, i+1, step); err != nil {
			return err
		}
	}
	r.Log.WithField("steps", len(s.Steps)).Info("script finished")
	return nil
}

func (r *Runner) step(ctx context.Context, n int, step Step) error {
	if step.Mint != nil {
		m := step.Mint
		if err := r.Engine.Mint(ctx, m.Asset, m.Account, m.Amount); err != nil {
			return fmt.Errorf("step %d (mint %s): %w", n, m.Account, err)
		}
	}
	if step.Advance > 0 {
		r.Clock.Advance(step.Advance)
	}
	if step.Do == "" {
		return nil
	}

	cmd, err := r.decode(step)
	if err != nil {
		return fmt.Errorf("step %d (%s): %w", n, step.Do, err)
	}
	res, err := r.Engine.Execute(ctx, step.As, cmd)
	if step.Expect != "" {
		if got := apperr.CodeOf(err); err == nil || got != step.Expect {
			return fmt.Errorf("step %d (%s by %s): expected %s, got %v", n, step.Do, step.As, step.Expect, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("step %d (%s by %s): %w", n, step.Do, step.As, err)
	}
	r.Log.WithFields(logrus.Fields{
		"step":   n,
		"ref":    res.Ref,
		"payout": res.Payout,
	}).Debug("step done")
	return nil
}

// decode builds the step's command. An initialize_game step without a config
// takes one from the YAML config tree.
func (r *Runner) decode(step Step) (engine.Command, error) {
	cmd, err := r.Engine.NewCommand(step.Do)
	if err != nil {
		return nil, err
	}
	if step.With.Kind != 0 {
		if err := step.With.Decode(cmd); err != nil {
			return nil, fmt.Errorf("decode with: %w", err)
		}
	}
	if ig, ok := cmd.(*engine.InitializeGame); ok && ig.Config == (pool.Config{}) && r.Configs != nil {
		_, cfg, err := r.Configs.Resolve(ig.Variant, ig.Pool, game.Overrides{})
		if err != nil {
			return nil, err
		}
		ig.Config = cfg
	}
	return cmd, nil
}
