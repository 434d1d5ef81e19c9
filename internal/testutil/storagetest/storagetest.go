// Package storagetest runs tests against every storage backend.
package storagetest

import (
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/blog/internal/repository"
	"github.com/nkiryanov/blog/internal/repository/badgerdb"
	"github.com/nkiryanov/blog/internal/repository/postgres"
	"github.com/nkiryanov/blog/internal/testutil"
)

// Give fn storage isolated from other calls
// Everything written is dropped when the test ends
type InStorageFunc func(t *testing.T, fn func(storage repository.Storage))

// Open in-memory badger closed on test cleanup
func OpenBadger(t *testing.T) *badger.DB {
	t.Helper()

	db, err := badgerdb.Open("", nil)
	require.NoError(t, err, "in-memory badger should open")
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	return db
}

// Run test once for every storage backend: badger (in-memory) and postgres (in container)
func ForEachStorage(t *testing.T, test func(t *testing.T, inStorage InStorageFunc)) {
	t.Run("badger", func(t *testing.T) {
		test(t, func(t *testing.T, fn func(repository.Storage)) {
			fn(badgerdb.NewStorage(OpenBadger(t)))
		})
	})

	t.Run("postgres", func(t *testing.T) {
		pg := testutil.StartPostgresContainer(t)
		t.Cleanup(pg.Terminate)

		test(t, func(t *testing.T, fn func(repository.Storage)) {
			testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
				fn(postgres.NewStorage(tx))
			})
		})
	})
}
