package errlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/mobapp/internal/client/repositories/keystore"
	"github.com/dmitrijs2005/mobapp/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTracker(t *testing.T, store keystore.Store) (*Tracker, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	tr := New(logging.New(&buf, "text", "debug"), store, "staging")
	tr.j.now = func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) }
	return tr, &buf
}

func TestTracker_RecordsInfoWarnErrorButNotDebug(t *testing.T) {
	tr, buf := newTracker(t, keystore.NewMemoryStore())
	ctx := context.Background()

	tr.Debug(ctx, "noise")
	tr.Info(ctx, "hello", "user_id", "42")
	tr.Warn(ctx, "careful")
	tr.Error(ctx, "broken", "error", errors.New("boom"), "status", 500)

	entries := tr.Entries()
	require.Len(t, entries, 3)

	assert.Equal(t, LevelInfo, entries[0].Level)
	assert.Equal(t, "hello", entries[0].Message)
	assert.Equal(t, map[string]any{"user_id": "42"}, entries[0].Context)
	assert.Equal(t, "staging", entries[0].Environment)
	assert.NotEmpty(t, entries[0].ID)
	assert.Equal(t, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC), entries[0].Timestamp)

	assert.Equal(t, LevelWarning, entries[1].Level)
	assert.Nil(t, entries[1].Context)

	assert.Equal(t, LevelError, entries[2].Level)
	assert.Equal(t, "boom", entries[2].Context["error"])
	assert.EqualValues(t, 500, entries[2].Context["status"])

	out := buf.String()
	for _, msg := range []string{"noise", "hello", "careful", "broken"} {
		assert.Contains(t, out, msg, "forwarded to the wrapped logger")
	}
}

func TestTracker_IDsAreUnique(t *testing.T) {
	tr, _ := newTracker(t, keystore.NewMemoryStore())
	for i := 0; i < 10; i++ {
		tr.Info(context.Background(), "same time")
	}

	seen := map[string]bool{}
	for _, e := range tr.Entries() {
		require.False(t, seen[e.ID])
		seen[e.ID] = true
	}
}

func TestTracker_KeepsLastMaxEntries(t *testing.T) {
	store := keystore.NewMemoryStore()
	tr, _ := newTracker(t, store)
	ctx := context.Background()

	for i := 0; i < MaxEntries+25; i++ {
		tr.Error(ctx, fmt.Sprintf("e%d", i))
	}

	entries := tr.Entries()
	require.Len(t, entries, MaxEntries)
	assert.Equal(t, "e25", entries[0].Message)
	assert.Equal(t, fmt.Sprintf("e%d", MaxEntries+24), entries[MaxEntries-1].Message)

	raw, ok, err := store.Get(ctx, keystore.KeyErrorLogs)
	require.NoError(t, err)
	require.True(t, ok)
	var persisted []Entry
	require.NoError(t, json.Unmarshal([]byte(raw), &persisted))
	assert.Len(t, persisted, MaxEntries)
}

func TestTracker_LoadRestoresPreviousRun(t *testing.T) {
	store := keystore.NewMemoryStore()
	ctx := context.Background()

	first, _ := newTracker(t, store)
	first.Warn(ctx, "from last run", "attempt", 3)

	second, _ := newTracker(t, store)
	second.Load(ctx)

	entries := second.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "from last run", entries[0].Message)
	assert.EqualValues(t, 3, entries[0].Context["attempt"])
}

func TestTracker_LoadCorruptList(t *testing.T) {
	store := keystore.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, keystore.KeyErrorLogs, "{not json"))

	tr, buf := newTracker(t, store)
	tr.Load(ctx)

	assert.Empty(t, tr.Entries())
	assert.Contains(t, buf.String(), "discarding unreadable error log")
}

func TestTracker_WithAddsContext(t *testing.T) {
	tr, _ := newTracker(t, keystore.NewMemoryStore())
	child := tr.With("component", "session")

	child.Error(context.Background(), "failed", "op", "login")

	entries := tr.Entries()
	require.Len(t, entries, 1, "children share the parent's list")
	assert.Equal(t, map[string]any{"component": "session", "op": "login"}, entries[0].Context)
}

type failingStore struct{ keystore.MemoryStore }

func (*failingStore) Set(context.Context, string, string) error { return errors.New("disk full") }
func (*failingStore) Remove(context.Context, ...string) error    { return errors.New("disk full") }
func (*failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk full")
}

func TestTracker_StorageFailuresGoToWrappedLoggerOnly(t *testing.T) {
	tr, buf := newTracker(t, &failingStore{})
	ctx := context.Background()

	tr.Load(ctx)
	tr.Error(ctx, "real problem")

	entries := tr.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "real problem", entries[0].Message)

	out := buf.String()
	assert.Contains(t, out, "failed to load error log")
	assert.Contains(t, out, "failed to persist error log")

	require.Error(t, tr.Clear(ctx))
	assert.Empty(t, tr.Entries())
}

func TestTracker_ClearAndExport(t *testing.T) {
	store := keystore.NewMemoryStore()
	tr, _ := newTracker(t, store)
	ctx := context.Background()

	tr.Info(ctx, "one")
	tr.Error(ctx, "two")

	out, err := tr.Export()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "[\n  {"))
	var decoded []Entry
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Len(t, decoded, 2)

	require.NoError(t, tr.Clear(ctx))
	assert.Empty(t, tr.Entries())
	_, ok, _ := store.Get(ctx, keystore.KeyErrorLogs)
	assert.False(t, ok)

	out, err = tr.Export()
	require.NoError(t, err)
	assert.Equal(t, "[]", out)
}

func TestContextMap_ValueKinds(t *testing.T) {
	m := contextMap([]any{
		"dur", 1500 * time.Millisecond,
		"when", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		"ok", true,
		"stringer", time.March,
		"lonely",
	})

	assert.Equal(t, "1.5s", m["dur"])
	assert.Equal(t, "2025-01-02T03:04:05Z", m["when"])
	assert.Equal(t, true, m["ok"])
	assert.Equal(t, "March", m["stringer"])
	assert.Equal(t, "lonely", m["!BADKEY"])
}
