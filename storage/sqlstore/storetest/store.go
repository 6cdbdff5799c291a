// Package storetest provides migrated in-memory stores for tests.
package storetest

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/flashbots/fee-manager/storage/sqlstore"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// NewStore returns a migrated SQLite store private to the test.
func NewStore(tb testing.TB) *sqlstore.Store {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())

	store, err := sqlstore.Open(context.Background(), TestLog(), sqlstore.DriverSQLite, dsn)
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = store.Close() })

	require.NoError(tb, store.Migrate(context.Background()))

	return store
}

// TestLog returns a logger writing nowhere.
func TestLog() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)

	return logrus.NewEntry(log)
}
