// Package event describes the state transitions published to off-system
// observers such as indexers and UIs.
package event

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"sync"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// Type identifies the transition.
type Type string

const (
	GameInitialized   Type = "game.initialized"
	PoolFunded        Type = "pool.funded"
	FeesWithdrawn     Type = "pool.fees_withdrawn"
	PoolStatusChanged Type = "pool.status_changed"
	WagerPlaced       Type = "wager.placed"
	WagerResolved     Type = "wager.resolved"
	RoundStarted      Type = "round.started"
	RoundActivated    Type = "round.activated"
	RoundEnded        Type = "round.ended"
	CashedOut         Type = "round.cashed_out"
	JackpotWon        Type = "jackpot.won"
	GachaPull         Type = "gacha.pull"
)

// Event is one published transition. Fields carry the record values that
// changed; 64-bit amounts are kept as uint64 until encoding.
type Event struct {
	Type   Type
	Pool   string
	Actor  string
	At     time.Time
	Fields map[string]any
}

// New creates an event with an empty field set.
func New(typ Type, pool, actor string, at time.Time) Event {
	return Event{Type: typ, Pool: pool, Actor: actor, At: at, Fields: map[string]any{}}
}

// With sets a field and returns the event for chaining.
func (e Event) With(key string, value any) Event {
	if e.Fields == nil {
		e.Fields = map[string]any{}
	}
	e.Fields[key] = value
	return e
}

// Uint returns a numeric field, or 0.
func (e Event) Uint(key string) uint64 {
	switch v := e.Fields[key].(type) {
	case uint64:
		return v
	case uint32:
		return uint64(v)
	case int:
		return uint64(v)
	}
	return 0
}

// Text returns a string field, or "".
func (e Event) Text(key string) string {
	v, _ := e.Fields[key].(string)
	return v
}

// Struct converts the event into a protobuf Struct. Unsigned integers become
// decimal strings, as protojson renders 64-bit integers, so large amounts
// survive JSON consumers that parse numbers as doubles.
func (e Event) Struct() (*structpb.Struct, error) {
	fields := make(map[string]any, len(e.Fields))
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v, err := normalize(e.Fields[k])
		if err != nil {
			return nil, fmt.Errorf("event %s field %s: %w", e.Type, k, err)
		}
		fields[k] = v
	}
	return structpb.NewStruct(map[string]any{
		"type":   string(e.Type),
		"pool":   e.Pool,
		"actor":  e.Actor,
		"at":     e.At.UTC().Format(time.RFC3339Nano),
		"fields": fields,
	})
}

func normalize(v any) (any, error) {
	switch t := v.(type) {
	case uint64:
		return strconv.FormatUint(t, 10), nil
	case uint32:
		return strconv.FormatUint(uint64(t), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(t), 10), nil
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano), nil
	case fmt.Stringer:
		return t.String(), nil
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, nil
	case string, bool, int, int64, float64, nil:
		return t, nil
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.String {
		return rv.String(), nil
	}
	return nil, fmt.Errorf("unsupported value %T", v)
}

// Sink receives the events of one committed command, in order.
type Sink interface {
	Publish(ctx context.Context, events []Event) error
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, []Event) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, events []Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// OfType filters the recorded events.
func (r *Recorder) OfType(t Type) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Multi fans out to several sinks, stopping at the first error.
type Multi []Sink

func (m Multi) Publish(ctx context.Context, events []Event) error {
	for _, s := range m {
		if err := s.Publish(ctx, events); err != nil {
			return err
		}
	}
	return nil
}
