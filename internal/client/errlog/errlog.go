// Package errlog keeps a local, persisted list of the client's notable log
// records so they can be shown or exported for support.
//
// Tracker is a logging.Logger decorator: every record is forwarded to the
// wrapped logger, and Info, Warn and Error records are also appended to a
// list capped at MaxEntries. The list is stored as JSON under
// keystore.KeyErrorLogs after each append. Problems with that storage are
// reported to the wrapped logger only, never recorded in the list itself.
package errlog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrijs2005/mobapp/internal/client/repositories/keystore"
	"github.com/dmitrijs2005/mobapp/internal/logging"
	"github.com/google/uuid"
)

const MaxEntries = 100

const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

type Entry struct {
	ID          string         `json:"id"`
	Timestamp   time.Time      `json:"timestamp"`
	Level       string         `json:"level"`
	Message     string         `json:"message"`
	Context     map[string]any `json:"context,omitempty"`
	Environment string         `json:"environment"`
}

// journal is the state shared by a Tracker and all loggers derived from it
// with With.
type journal struct {
	mu      sync.Mutex
	entries []Entry
	store   keystore.Store
	env     string
	now     func() time.Time
}

type Tracker struct {
	j     *journal
	next  logging.Logger
	attrs []any
}

// New returns a Tracker that forwards to next and persists into store.
// environment is stamped on every entry. Call Load to pick up entries from a
// previous run.
func New(next logging.Logger, store keystore.Store, environment string) *Tracker {
	return &Tracker{
		j: &journal{
			store: store,
			env:   environment,
			now:   time.Now,
		},
		next: next,
	}
}

// Load replaces the in-memory list with the persisted one. A missing or
// corrupt list leaves it empty.
func (t *Tracker) Load(ctx context.Context) {
	raw, ok, err := t.j.store.Get(ctx, keystore.KeyErrorLogs)
	if err != nil {
		t.next.Error(ctx, "failed to load error log", "error", err)
		return
	}
	if !ok {
		return
	}

	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		t.next.Warn(ctx, "discarding unreadable error log", "error", err)
		return
	}
	if len(entries) > MaxEntries {
		entries = entries[len(entries)-MaxEntries:]
	}

	t.j.mu.Lock()
	t.j.entries = entries
	t.j.mu.Unlock()
}

func (t *Tracker) Debug(ctx context.Context, msg string, args ...any) {
	t.next.Debug(ctx, msg, args...)
}

func (t *Tracker) Info(ctx context.Context, msg string, args ...any) {
	t.next.Info(ctx, msg, args...)
	t.record(ctx, LevelInfo, msg, args)
}

func (t *Tracker) Warn(ctx context.Context, msg string, args ...any) {
	t.next.Warn(ctx, msg, args...)
	t.record(ctx, LevelWarning, msg, args)
}

func (t *Tracker) Error(ctx context.Context, msg string, args ...any) {
	t.next.Error(ctx, msg, args...)
	t.record(ctx, LevelError, msg, args)
}

func (t *Tracker) With(args ...any) logging.Logger {
	attrs := make([]any, 0, len(t.attrs)+len(args))
	attrs = append(attrs, t.attrs...)
	attrs = append(attrs, args...)
	return &Tracker{j: t.j, next: t.next.With(args...), attrs: attrs}
}

// Entries returns a copy of the list, oldest first.
func (t *Tracker) Entries() []Entry {
	t.j.mu.Lock()
	defer t.j.mu.Unlock()
	out := make([]Entry, len(t.j.entries))
	copy(out, t.j.entries)
	return out
}

// Clear empties the list and removes it from storage.
func (t *Tracker) Clear(ctx context.Context) error {
	t.j.mu.Lock()
	defer t.j.mu.Unlock()
	t.j.entries = nil
	if err := t.j.store.Remove(ctx, keystore.KeyErrorLogs); err != nil {
		return fmt.Errorf("clear error log: %w", err)
	}
	return nil
}

// Export renders the list as indented JSON.
func (t *Tracker) Export() (string, error) {
	b, err := json.MarshalIndent(t.Entries(), "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (t *Tracker) record(ctx context.Context, level, msg string, args []any) {
	all := args
	if len(t.attrs) > 0 {
		all = append(append([]any{}, t.attrs...), args...)
	}

	e := Entry{
		ID:          uuid.NewString(),
		Timestamp:   t.j.now().UTC(),
		Level:       level,
		Message:     msg,
		Context:     contextMap(all),
		Environment: t.j.env,
	}

	t.j.mu.Lock()
	defer t.j.mu.Unlock()

	t.j.entries = append(t.j.entries, e)
	if len(t.j.entries) > MaxEntries {
		t.j.entries = append([]Entry(nil), t.j.entries[len(t.j.entries)-MaxEntries:]...)
	}

	raw, err := json.Marshal(t.j.entries)
	if err != nil {
		t.next.Error(ctx, "failed to encode error log", "error", err)
		return
	}
	if err := t.j.store.Set(ctx, keystore.KeyErrorLogs, string(raw)); err != nil {
		t.next.Error(ctx, "failed to persist error log", "error", err)
	}
}

// contextMap turns slog-style key/value args into a JSON-friendly map.
func contextMap(args []any) map[string]any {
	if len(args) == 0 {
		return nil
	}

	r := slog.NewRecord(time.Time{}, slog.LevelInfo, "", 0)
	r.Add(args...)

	out := make(map[string]any, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		out[a.Key] = attrValue(a.Value)
		return true
	})
	return out
}

func attrValue(v slog.Value) any {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindGroup:
		m := map[string]any{}
		for _, a := range v.Group() {
			m[a.Key] = attrValue(a.Value)
		}
		return m
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339Nano)
	case slog.KindAny:
		switch x := v.Any().(type) {
		case error:
			return x.Error()
		case fmt.Stringer:
			return x.String()
		default:
			return x
		}
	default:
		return v.Any()
	}
}

var _ logging.Logger = (*Tracker)(nil)
