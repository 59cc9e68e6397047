package keystore

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, db, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return s
}

func TestSQLite_SetThenGet(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, KeyAuthToken, "tok-1"))

	v, ok, err := s.Get(ctx, KeyAuthToken)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "tok-1", v)
}

func TestSQLite_GetAbsent(t *testing.T) {
	s := openStore(t)

	v, ok, err := s.Get(context.Background(), "nope")
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, v)
}

func TestSQLite_SetOverwrites(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", "old"))
	require.NoError(t, s.Set(ctx, "k", "new"))

	v, _, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "new", v)
}

func TestSQLite_RemoveSeveralKeys(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	for _, k := range AuthKeys {
		require.NoError(t, s.Set(ctx, k, "x"))
	}
	require.NoError(t, s.Set(ctx, KeyErrorLogs, "[]"))

	require.NoError(t, s.Remove(ctx, AuthKeys...))
	require.NoError(t, s.Remove(ctx, AuthKeys...), "removing missing keys is not an error")
	require.NoError(t, s.Remove(ctx))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{KeyErrorLogs}, keys)
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "kv.db")

	s, db, err := OpenSQLite(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, KeyUserData, `{"id":"1"}`))
	require.NoError(t, db.Close())

	s, db, err = OpenSQLite(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()

	v, ok, err := s.Get(ctx, KeyUserData)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"id":"1"}`, v)
}

func TestOpenSQLite_BadPath(t *testing.T) {
	_, _, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "missing", "dir", "kv.db"))
	require.Error(t, err)
}

func newMock(t *testing.T) (*SQLiteStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteStore(db), mock
}

func TestSQLite_GetDriverError(t *testing.T) {
	s, mock := newMock(t)
	boom := errors.New("disk I/O error")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv WHERE key = ?`)).
		WithArgs(KeyAuthToken).
		WillReturnError(boom)

	_, ok, err := s.Get(context.Background(), KeyAuthToken)
	require.ErrorIs(t, err, boom)
	require.False(t, ok)
	require.Contains(t, err.Error(), KeyAuthToken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLite_SetDriverError(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectExec(`INSERT INTO kv`).
		WithArgs("k", "v").
		WillReturnError(sql.ErrConnDone)

	err := s.Set(context.Background(), "k", "v")
	require.ErrorIs(t, err, sql.ErrConnDone)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLite_RemoveBuildsPlaceholders(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM kv WHERE key IN (?,?,?)`)).
		WithArgs(KeyAuthToken, KeyRefreshToken, KeyUserData).
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, s.Remove(context.Background(), AuthKeys...))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLite_RemoveDriverError(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectExec(`DELETE FROM kv`).WillReturnError(sql.ErrConnDone)

	require.ErrorIs(t, s.Remove(context.Background(), "a"), sql.ErrConnDone)
}

func TestSQLite_KeysScanError(t *testing.T) {
	s, mock := newMock(t)

	rows := sqlmock.NewRows([]string{"key"}).AddRow("a").RowError(0, errors.New("row broke"))
	mock.ExpectQuery(`SELECT key FROM kv`).WillReturnRows(rows)

	_, err := s.Keys(context.Background())
	require.Error(t, err)
}
