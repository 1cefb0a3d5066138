package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConnectionStr(t *testing.T) {
	cp := &ConnParam{
		Host:     "db.internal",
		Port:     "5432",
		User:     "app",
		Password: "secret",
		DBName:   "appdb",
	}

	assert.Equal(t,
		"host=db.internal port=5432 user=app password=secret dbname=appdb sslmode=require",
		GetConnectionStr(cp))

	cp.SSLMode = "sslmode=disable"
	cp.SearchPath = "search_path=app"
	assert.Equal(t,
		"host=db.internal port=5432 user=app password=secret dbname=appdb sslmode=disable search_path=app",
		GetConnectionStr(cp))
}

func TestGetConnParamFromENV(t *testing.T) {
	t.Setenv("DBHOST", "db.internal")
	t.Setenv("DBPORT", "5432")
	t.Setenv("DBUSER", "app")
	t.Setenv("DBPASS", "secret")
	t.Setenv("DBNAME", "appdb")
	t.Setenv("SSLMODE", "disable")
	t.Setenv("DBSEARCHPATH", "app")

	cp := GetConnParamFromENV()
	assert.Equal(t, "db.internal", cp.Host)
	assert.Equal(t, "5432", cp.Port)
	assert.Equal(t, "app", cp.User)
	assert.Equal(t, "secret", cp.Password)
	assert.Equal(t, "appdb", cp.DBName)
	assert.Equal(t, "sslmode=disable", cp.SSLMode)
	assert.Equal(t, "search_path=app", cp.SearchPath)
}

func TestBuildersUseDollarPlaceholders(t *testing.T) {
	c := &Connection{}

	stmt, bindList, err := c.Insert("migration_ledger").
		Columns("migration").
		Values("2023_05_01_101112_123456_add_users_table").
		Suffix("RETURNING migration_ledger_id").
		ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"INSERT INTO migration_ledger (migration) VALUES ($1) RETURNING migration_ledger_id",
		stmt)
	assert.Equal(t,
		[]interface{}{"2023_05_01_101112_123456_add_users_table"}, bindList)

	stmt, bindList, err = c.Select("migration").
		From("migration_ledger").
		Where("migration=?", "x").
		OrderBy("migration_ledger_id asc").
		ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT migration FROM migration_ledger WHERE migration=$1 ORDER BY migration_ledger_id asc",
		stmt)
	assert.Equal(t, []interface{}{"x"}, bindList)

	stmt, bindList, err = c.Delete("migration_ledger").
		Where("migration=?", "x").
		ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"DELETE FROM migration_ledger WHERE migration=$1", stmt)
	assert.Equal(t, []interface{}{"x"}, bindList)
}
