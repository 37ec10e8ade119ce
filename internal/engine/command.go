package engine

import (
	"sort"

	"github.com/xtding233/casino-core/internal/apperr"
	"github.com/xtding233/casino-core/internal/outcome"
	"github.com/xtding233/casino-core/internal/pool"
)

// Kind identifies a command variant.
type Kind string

const (
	KindInitializeGame  Kind = "initialize_game"
	KindFundPool        Kind = "fund_pool"
	KindWithdraw        Kind = "withdraw"
	KindSetActive       Kind = "set_active"
	KindPlayCoinflip    Kind = "play_coinflip"
	KindResolveCoinflip Kind = "resolve_coinflip"
	KindPullGacha       Kind = "pull_gacha"
	KindResolveGacha    Kind = "resolve_gacha"
	KindStartRound      Kind = "start_round"
	KindJoinCrash       Kind = "join_crash"
	KindEnterJackpot    Kind = "enter_jackpot"
	KindActivateRound   Kind = "activate_round"
	KindCashout         Kind = "cashout"
	KindResolveRound    Kind = "resolve_round"
)

// Command is one tagged request against a pool.
type Command interface {
	Kind() Kind
	PoolSlug() string
}

// InitializeGame creates a pool owned by the caller. Oracle defaults to the
// engine's configured random-value authority.
type InitializeGame struct {
	Pool    string       `yaml:"pool" json:"pool"`
	Variant pool.Variant `yaml:"variant" json:"variant"`
	Config  pool.Config  `yaml:"config" json:"config"`
	Oracle  string       `yaml:"oracle" json:"oracle"`
}

// FundPool moves tokens from the authority into escrow.
type FundPool struct {
	Pool   string `yaml:"pool" json:"pool"`
	Amount uint64 `yaml:"amount" json:"amount"`
}

// Withdraw moves tokens from escrow to the authority.
type Withdraw struct {
	Pool   string `yaml:"pool" json:"pool"`
	Amount uint64 `yaml:"amount" json:"amount"`
}

// SetActive pauses or resumes a pool.
type SetActive struct {
	Pool   string `yaml:"pool" json:"pool"`
	Active bool   `yaml:"active" json:"active"`
}

// PlayCoinflip places a coinflip wager for the caller.
type PlayCoinflip struct {
	Pool   string       `yaml:"pool" json:"pool"`
	Amount uint64       `yaml:"amount" json:"amount"`
	Choice outcome.Side `yaml:"choice" json:"choice"`
}

// ResolveCoinflip settles the player's pending coinflip wager.
type ResolveCoinflip struct {
	Pool   string       `yaml:"pool" json:"pool"`
	Player string       `yaml:"player" json:"player"`
	Seed   outcome.Seed `yaml:"seed" json:"seed"`
}

// PullGacha buys a batch of pulls at min_bet each.
type PullGacha struct {
	Pool  string `yaml:"pool" json:"pool"`
	Pulls int    `yaml:"pulls" json:"pulls"`
}

// ResolveGacha settles a pull batch.
type ResolveGacha struct {
	Pool   string       `yaml:"pool" json:"pool"`
	PullID string       `yaml:"pull_id" json:"pull_id"`
	Seed   outcome.Seed `yaml:"seed" json:"seed"`
}

// StartRound opens the next round of a crash or jackpot pool.
type StartRound struct {
	Pool string `yaml:"pool" json:"pool"`
}

// JoinCrash stakes amount in the current crash round.
type JoinCrash struct {
	Pool   string `yaml:"pool" json:"pool"`
	Amount uint64 `yaml:"amount" json:"amount"`
}

// EnterJackpot buys tickets in the current jackpot round at min_bet each.
type EnterJackpot struct {
	Pool    string `yaml:"pool" json:"pool"`
	Tickets uint64 `yaml:"tickets" json:"tickets"`
}

// ActivateRound closes betting on the current crash round.
type ActivateRound struct {
	Pool string `yaml:"pool" json:"pool"`
}

// Cashout takes the caller out of a crash round. Round 0 means the pool's
// current round; an older round that is still active can be named directly.
type Cashout struct {
	Pool  string `yaml:"pool" json:"pool"`
	Round uint64 `yaml:"round" json:"round"`
}

// ResolveRound ends a round with the oracle's seed. Round 0 means the
// pool's current round.
type ResolveRound struct {
	Pool  string       `yaml:"pool" json:"pool"`
	Round uint64       `yaml:"round" json:"round"`
	Seed  outcome.Seed `yaml:"seed" json:"seed"`
}

func (InitializeGame) Kind() Kind  { return KindInitializeGame }
func (FundPool) Kind() Kind        { return KindFundPool }
func (Withdraw) Kind() Kind        { return KindWithdraw }
func (SetActive) Kind() Kind       { return KindSetActive }
func (PlayCoinflip) Kind() Kind    { return KindPlayCoinflip }
func (ResolveCoinflip) Kind() Kind { return KindResolveCoinflip }
func (PullGacha) Kind() Kind       { return KindPullGacha }
func (ResolveGacha) Kind() Kind    { return KindResolveGacha }
func (StartRound) Kind() Kind      { return KindStartRound }
func (JoinCrash) Kind() Kind       { return KindJoinCrash }
func (EnterJackpot) Kind() Kind    { return KindEnterJackpot }
func (ActivateRound) Kind() Kind   { return KindActivateRound }
func (Cashout) Kind() Kind         { return KindCashout }
func (ResolveRound) Kind() Kind    { return KindResolveRound }

func (c InitializeGame) PoolSlug() string  { return c.Pool }
func (c FundPool) PoolSlug() string        { return c.Pool }
func (c Withdraw) PoolSlug() string        { return c.Pool }
func (c SetActive) PoolSlug() string       { return c.Pool }
func (c PlayCoinflip) PoolSlug() string    { return c.Pool }
func (c ResolveCoinflip) PoolSlug() string { return c.Pool }
func (c PullGacha) PoolSlug() string       { return c.Pool }
func (c ResolveGacha) PoolSlug() string    { return c.Pool }
func (c StartRound) PoolSlug() string      { return c.Pool }
func (c JoinCrash) PoolSlug() string       { return c.Pool }
func (c EnterJackpot) PoolSlug() string    { return c.Pool }
func (c ActivateRound) PoolSlug() string   { return c.Pool }
func (c Cashout) PoolSlug() string         { return c.Pool }
func (c ResolveRound) PoolSlug() string    { return c.Pool }

// definition registers how a command kind is built and handled.
type definition struct {
	kind   Kind
	new    func() Command
	handle func(*txn, Command) error
}

// registry maps kinds to definitions.
type registry struct {
	defs map[Kind]definition
}

func (r *registry) register(def definition) {
	if r.defs == nil {
		r.defs = make(map[Kind]definition)
	}
	r.defs[def.kind] = def
}

func (r *registry) lookup(k Kind) (definition, error) {
	def, ok := r.defs[k]
	if !ok {
		return definition{}, apperr.ErrInvalidRequest.With("command", string(k))
	}
	return def, nil
}

// Kinds lists the registered command kinds in sorted order.
func (e *Engine) Kinds() []Kind {
	out := make([]Kind, 0, len(e.commands.defs))
	for k := range e.commands.defs {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NewCommand returns a pointer to a zero command of kind k, ready to be
// decoded into from a script.
func (e *Engine) NewCommand(k Kind) (Command, error) {
	def, err := e.commands.lookup(k)
	if err != nil {
		return nil, err
	}
	return def.new(), nil
}
