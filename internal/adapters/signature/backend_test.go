package signature

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	store, err := NewRedisStore(context.Background(), "redis://"+server.Addr()+"/0", "signatures", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, server
}

func TestRedisStore_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	store, server := newTestRedisStore(t)

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	want := map[string]string{
		"default": "Best,\nJane",
		"work":    "Regards,\nJane Doe",
	}
	require.NoError(t, store.Save(ctx, want))
	assert.Equal(t, "Best,\nJane", server.HGet("signatures", "default"))

	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRedisStore_SaveReplacesHash(t *testing.T) {
	ctx := context.Background()
	store, server := newTestRedisStore(t)

	require.NoError(t, store.Save(ctx, map[string]string{"default": "Jane", "work": "J. Doe"}))
	require.NoError(t, store.Save(ctx, map[string]string{"work": "Regards"}))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"work": "Regards"}, got)

	require.NoError(t, store.Save(ctx, map[string]string{}))
	assert.False(t, server.Exists("signatures"))

	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisStore_ServerGone(t *testing.T) {
	store, server := newTestRedisStore(t)
	server.Close()

	_, err := store.Load(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read signatures from redis")
}

func newMockMySQLStore(t *testing.T) (*MySQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &MySQLStore{sqlStore{db: db, logger: zap.NewNop(), driver: "mysql"}}, mock
}

func TestMySQLStore_Load(t *testing.T) {
	store, mock := newMockMySQLStore(t)
	mock.ExpectQuery("SELECT name, body FROM signatures").
		WillReturnRows(sqlmock.NewRows([]string{"name", "body"}).
			AddRow("default", "Best,\nJane").
			AddRow("work", "Regards"))

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"default": "Best,\nJane", "work": "Regards"}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLStore_SaveReplacesRows(t *testing.T) {
	store, mock := newMockMySQLStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM signatures").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectPrepare("INSERT INTO signatures").
		ExpectExec().
		WithArgs("default", "Jane").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, store.Save(context.Background(), map[string]string{"default": "Jane"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLStore_SaveRollsBackOnInsertFailure(t *testing.T) {
	store, mock := newMockMySQLStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM signatures").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectPrepare("INSERT INTO signatures").
		ExpectExec().
		WithArgs("default", "Jane").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := store.Save(context.Background(), map[string]string{"default": "Jane"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return NewPostgresStoreWithPool(pool, zap.NewNop()), pool
}

func TestPostgresStore_Load(t *testing.T) {
	store, mock := newMockPostgresStore(t)
	mock.ExpectQuery("SELECT name, body FROM signatures").
		WillReturnRows(pgxmock.NewRows([]string{"name", "body"}).AddRow("default", "Jane"))

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"default": "Jane"}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveReplacesRows(t *testing.T) {
	store, mock := newMockPostgresStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM signatures").WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec("INSERT INTO signatures").
		WithArgs("default", "Jane").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, store.Save(context.Background(), map[string]string{"default": "Jane"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveRollsBackOnFailure(t *testing.T) {
	store, mock := newMockPostgresStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM signatures").WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	err := store.Save(context.Background(), map[string]string{"default": "Jane"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to clear signatures")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnavailableStore(t *testing.T) {
	cause := errors.New("connection refused")
	store := NewUnavailableStore(cause)

	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, store.Save(context.Background(), map[string]string{}), cause)
}
