// Package engine dispatches casino commands.
//
// Every command runs inside a single store Update: handlers validate first
// and only then write, and any error rolls the whole transaction back. Events
// collected while handling are published after the commit, so a rejected
// command publishes nothing.
package engine

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/xtding233/casino-core/internal/apperr"
	"github.com/xtding233/casino-core/internal/event"
	"github.com/xtding233/casino-core/internal/outcome"
	"github.com/xtding233/casino-core/internal/pool"
	"github.com/xtding233/casino-core/internal/round"
	"github.com/xtding233/casino-core/internal/store"
)

var (
	// ErrStoreRequired indicates a missing store.
	ErrStoreRequired = errors.New("store is required")
	// ErrOracleRequired indicates a missing default random-value authority.
	ErrOracleRequired = errors.New("oracle principal is required")
)

// Policies are the tunable rules that stand in for external feeds.
type Policies struct {
	// BettingWindow is added to a round's start time to set its deadline.
	BettingWindow time.Duration
	// CrashHouseEdgeBps shapes the crash distribution. It is independent of
	// the pool's house_edge_bps, which only scales payouts.
	CrashHouseEdgeBps uint16
	// Cashout supplies the live crash multiplier.
	Cashout round.CashoutMultiplier
}

// DefaultPolicies are a 10 second window, a 3% crash edge and the
// elapsed-time cash-out multiplier.
func DefaultPolicies() Policies {
	return Policies{
		BettingWindow:     round.DefaultBettingWindow,
		CrashHouseEdgeBps: outcome.DefaultCrashEdgeBps,
		Cashout:           round.DefaultCashout(),
	}
}

// Options configures an Engine.
type Options struct {
	Store    store.Store
	Sink     event.Sink
	Log      logrus.FieldLogger
	Oracle   string
	Policies Policies
	Now      func() time.Time
	NewID    func() string
}

// Engine executes commands against a store.
type Engine struct {
	store    store.Store
	sink     event.Sink
	log      logrus.FieldLogger
	oracle   string
	policies Policies
	now      func() time.Time
	newID    func() string
	commands registry
}

// Result reports what a committed command produced.
type Result struct {
	Kind   Kind
	Events []event.Event
	// Ref is the id of the record the command created, if any: a wager id,
	// a gacha pull id, or a round number.
	Ref string
	// Payout is the amount transferred to a player by this command.
	Payout uint64
}

// New validates options and registers every command handler.
func New(opts Options) (*Engine, error) {
	if opts.Store == nil {
		return nil, ErrStoreRequired
	}
	if opts.Oracle == "" {
		return nil, ErrOracleRequired
	}
	e := &Engine{
		store:    opts.Store,
		sink:     opts.Sink,
		log:      opts.Log,
		oracle:   opts.Oracle,
		policies: opts.Policies,
		now:      opts.Now,
		newID:    opts.NewID,
	}
	if e.sink == nil {
		e.sink = event.Discard{}
	}
	if e.log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		e.log = l
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	defaults := DefaultPolicies()
	if e.policies.BettingWindow <= 0 {
		e.policies.BettingWindow = defaults.BettingWindow
	}
	if e.policies.Cashout == nil {
		e.policies.Cashout = defaults.Cashout
	}
	e.registerPoolCommands()
	e.registerWagerCommands()
	e.registerRoundCommands()
	return e, nil
}

// txn is the per-command state handed to handlers.
type txn struct {
	tx     store.Tx
	actor  string
	now    time.Time
	events []event.Event
	result Result
}

func (t *txn) emit(typ event.Type, pool string) event.Event {
	return event.New(typ, pool, t.actor, t.now)
}

func (t *txn) publish(e event.Event) {
	t.events = append(t.events, e)
}

// Execute runs cmd on behalf of actor. On success the returned Result holds
// the committed events. A non-nil Result with a non-nil error means the
// command committed but the sink failed to publish.
func (e *Engine) Execute(ctx context.Context, actor string, cmd Command) (*Result, error) {
	if isNil(cmd) {
		return nil, apperr.ErrInvalidRequest.With("command", "nil")
	}
	kind := cmd.Kind()
	log := e.log.WithFields(logrus.Fields{
		"command": string(kind),
		"pool":    cmd.PoolSlug(),
		"actor":   actor,
	})

	def, err := e.commands.lookup(kind)
	if err != nil {
		return nil, err
	}
	if err := checkActor(actor); err != nil {
		log.WithField("code", apperr.CodeOf(err)).Warn("command rejected")
		return nil, err
	}

	var t *txn
	err = e.store.Update(ctx, func(tx store.Tx) error {
		t = &txn{tx: tx, actor: actor, now: e.now(), result: Result{Kind: kind}}
		return def.handle(t, cmd)
	})
	if err != nil {
		log.WithFields(logrus.Fields{
			"code":  apperr.CodeOf(err),
			"class": apperr.ClassOf(err).String(),
		}).WithError(err).Warn("command rejected")
		return nil, err
	}

	res := t.result
	res.Events = t.events
	log.WithFields(logrus.Fields{
		"events": len(res.Events),
		"ref":    res.Ref,
	}).Info("command committed")

	if len(res.Events) > 0 {
		if err := e.sink.Publish(ctx, res.Events); err != nil {
			log.WithError(err).Error("publish events")
			return &res, fmt.Errorf("publish events: %w", err)
		}
	}
	return &res, nil
}

// isNil also catches typed nil pointers, whose value methods would panic.
func isNil(cmd Command) bool {
	if cmd == nil {
		return true
	}
	v := reflect.ValueOf(cmd)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// checkActor rejects an empty caller and any caller named like a pool's
// escrow or fee account, which would otherwise transfer to itself.
func checkActor(actor string) error {
	if actor == "" {
		return apperr.ErrUnauthorized.With("reason", "missing actor")
	}
	if pool.IsSystemAccount(actor) {
		return apperr.ErrUnauthorized.With("reason", "reserved account")
	}
	return nil
}

// handle adapts a typed handler so it accepts both T and *T.
func handle[T Command](kind Kind, zero func() Command, fn func(*txn, T) error) definition {
	return definition{
		kind: kind,
		new:  zero,
		handle: func(t *txn, cmd Command) error {
			if c, ok := cmd.(T); ok {
				return fn(t, c)
			}
			if c, ok := any(cmd).(*T); ok && c != nil {
				return fn(t, *c)
			}
			return apperr.ErrInvalidRequest.With("command", string(kind))
		},
	}
}
