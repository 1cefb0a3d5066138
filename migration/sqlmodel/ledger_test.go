package sqlmodel

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crestfall/migrate/e"
	"github.com/crestfall/migrate/sql"
)

// Integration test against a real Postgres instance. It creates and drops
// the ledger table in the configured database.
func TestLedgerLifecycle(t *testing.T) {
	if os.Getenv("DBHOST") == "" {
		t.Skip("set DBHOST/DBPORT/DBUSER/DBPASS/DBNAME to run")
	}

	db, err := sql.NewPostgresConn(nil)
	require.NoError(t, err)
	defer func() {
		_, _ = db.Exec("DROP TABLE IF EXISTS " + LedgerTableName)
	}()

	exists, err := LedgerTableExists(db)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, LedgerTableCreate(db))
	}

	exists, err = LedgerTableExists(db)
	require.NoError(t, err)
	assert.True(t, exists)

	// Empty ledger
	leList, _, err := LedgerEntryGet(db, &LedgerEntryGetParam{OrderByID: "asc"})
	require.NoError(t, err)
	assert.Empty(t, leList)

	_, err = LedgerEntryGetLatest(db)
	require.Error(t, err)
	assert.True(t, e.ContainsError(err, e.MsgLedgerNone))

	// Append preserves application order
	first := "2023_05_01_101112_000001_add_users_table"
	second := "2023_05_02_090000_000002_add_orders_table"

	id, err := LedgerEntryInsert(db, first)
	require.NoError(t, err)
	assert.Greater(t, id, 0)

	_, err = LedgerEntryInsert(db, second)
	require.NoError(t, err)

	// Duplicate identifiers are rejected by the unique index
	_, err = LedgerEntryInsert(db, first)
	require.Error(t, err)
	assert.True(t, e.IsPQError(err, e.PQErr23505UniqueViolation))

	leList, _, err = LedgerEntryGet(db, &LedgerEntryGetParam{OrderByID: "asc"})
	require.NoError(t, err)
	require.Len(t, leList, 2)
	assert.Equal(t, first, leList[0].Migration)
	assert.Equal(t, second, leList[1].Migration)

	le, err := LedgerEntryGetLatest(db)
	require.NoError(t, err)
	assert.Equal(t, second, le.Migration)

	// Delete is keyed by identifier and is a no-op when absent
	require.NoError(t, LedgerEntryDelete(db, first))
	require.NoError(t, LedgerEntryDelete(db, first))

	leList, _, err = LedgerEntryGet(db, &LedgerEntryGetParam{OrderByID: "asc"})
	require.NoError(t, err)
	require.Len(t, leList, 1)
	assert.Equal(t, second, leList[0].Migration)

	// Advisory lock round trip
	require.NoError(t, LedgerLock(db))
	require.NoError(t, LedgerUnlock(db))
}
