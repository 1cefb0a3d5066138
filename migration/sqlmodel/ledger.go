package sqlmodel

import (
	gosql "database/sql"
	_ "embed"
	"fmt"
	"strings"

	"github.com/crestfall/migrate/e"
	"github.com/crestfall/migrate/migration/model"
	"github.com/crestfall/migrate/sql"
)

const (
	LedgerTableName     = "migration_ledger"
	LedgerDefaultSortBy = "migration_ledger_id"

	// ledgerLockKey the advisory lock key used to exclude concurrent
	// runners; shared by every instance pointed at the same database
	ledgerLockKey = int64(4063404945)

	ECode000301 = e.Code0003 + "01"
	ECode000302 = e.Code0003 + "02"
	ECode000303 = e.Code0003 + "03"
	ECode000304 = e.Code0003 + "04"
	ECode000305 = e.Code0003 + "05"
	ECode000306 = e.Code0003 + "06"
	ECode000307 = e.Code0003 + "07"
	ECode000308 = e.Code0003 + "08"
	ECode000309 = e.Code0003 + "09"
	ECode00030A = e.Code0003 + "0A"
	ECode00030B = e.Code0003 + "0B"
	ECode00030C = e.Code0003 + "0C"
	ECode00030D = e.Code0003 + "0D"
	ECode00030E = e.Code0003 + "0E"
	ECode00030F = e.Code0003 + "0F"
)

// The ledger schema is embedded so applications that include this package
// can install it without shipping extra files

//go:embed db/ledger.sql
var ledgerSchemaSQL string

// LedgerEntryGetParam get params
type LedgerEntryGetParam struct {
	Limit     uint64
	Offset    uint64
	ID        *int
	Migration *string
	FlagCount bool
	OrderByID string
}

// LedgerTableCreate creates the ledger table. Not idempotent; callers check
// LedgerTableExists first.
func LedgerTableCreate(db *sql.Connection) (err error) {
	if _, err := db.Exec(ledgerSchemaSQL); err != nil {
		return e.W(err, ECode000301)
	}

	return nil
}

// LedgerTableExists reports whether the ledger table exists in the connected
// database
func LedgerTableExists(db *sql.Connection) (exists bool, err error) {
	var reg gosql.NullString
	row := db.QueryRow("SELECT to_regclass($1)", LedgerTableName)
	if err := row.Scan(&reg); err != nil {
		return false, e.W(err, ECode000302)
	}

	return reg.Valid, nil
}

// LedgerEntryInsert appends an entry for the migration, returning the new id
func LedgerEntryInsert(db *sql.Connection, migration string) (id int, err error) {
	ib := db.Insert(LedgerTableName).
		Columns("migration").
		Values(migration).
		Suffix("RETURNING migration_ledger_id")

	id, err = db.ExecInsertReturningID(ib)
	if err != nil {
		if e.IsPQError(err, e.PQErr42P01) {
			return 0, e.W(err, ECode000303, e.MsgLedgerNotInstalled)
		}
		return 0, e.W(err, ECode000304,
			fmt.Sprintf("migration: %s", migration))
	}

	return id, nil
}

// LedgerEntryDelete deletes the entry matching the migration. Deleting an
// absent migration is not an error.
func LedgerEntryDelete(db *sql.Connection, migration string) (err error) {
	delB := db.Delete(LedgerTableName).
		Where("migration=?", migration)

	if err := db.ExecDelete(delB); err != nil {
		return e.W(err, ECode000305,
			fmt.Sprintf("migration: %s", migration))
	}

	return nil
}

// LedgerEntryGet performs select
func LedgerEntryGet(db *sql.Connection,
	p *LedgerEntryGetParam) (leList []*model.LedgerEntry, count int, err error) {
	fields := `migration_ledger_id,migration,created_on`

	sb := db.Select("{fields}").
		From(LedgerTableName)

	if p.Limit > 0 {
		sb = sb.Limit(p.Limit)
	}

	if p.ID != nil && *p.ID >= 0 {
		sb = sb.Where("migration_ledger_id=?", *p.ID)
	}

	if p.Migration != nil {
		sb = sb.Where("migration=?", *p.Migration)
	}

	stmt, bindList, err := sb.ToSql()
	if err != nil {
		return nil, 0, e.W(err, ECode000306)
	}

	if p.FlagCount {
		row := db.QueryRow(strings.Replace(stmt, "{fields}", "count(*)", 1), bindList...)
		if err := row.Scan(&count); err != nil {
			return nil, 0, e.W(err, ECode000307,
				fmt.Sprintf("stmt: %s | bindList: %v", stmt, bindList))
		}
	}

	sb = sb.Offset(p.Offset)

	if p.OrderByID != "" {
		sb = sb.OrderBy(fmt.Sprintf("%s %s", LedgerDefaultSortBy, p.OrderByID))
	}

	stmt, bindList, err = sb.ToSql()
	if err != nil {
		return nil, 0, e.W(err, ECode000308)
	}
	stmt = strings.Replace(stmt, "{fields}", fields, 1)

	rows, err := db.Query(stmt, bindList...)
	if err != nil {
		if e.IsPQError(err, e.PQErr42P01) {
			return nil, 0, e.W(err, ECode000309, e.MsgLedgerNotInstalled)
		}
		return nil, 0, e.W(err, ECode00030A,
			fmt.Sprintf("bindList: %v", bindList))
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		le := &model.LedgerEntry{}
		if err := rows.Scan(&le.ID, &le.Migration, &le.CreatedOn); err != nil {
			return nil, 0, e.W(err, ECode00030B,
				fmt.Sprintf("stmt: %s | bindList: %v", stmt, bindList))
		}

		leList = append(leList, le)
	}

	return leList, count, nil
}

// LedgerEntryGetLatest retrieves the most recently applied entry
func LedgerEntryGetLatest(db *sql.Connection) (le *model.LedgerEntry, err error) {
	leList, _, err := LedgerEntryGet(db, &LedgerEntryGetParam{
		Limit:     1,
		OrderByID: "desc",
	})
	if err != nil {
		return nil, e.W(err, ECode00030C)
	}

	if len(leList) != 1 {
		return nil, e.N(ECode00030D, e.MsgLedgerNone)
	}

	return leList[0], nil
}

// LedgerLock blocks until the ledger advisory lock is acquired. It excludes
// concurrent migration runners sharing the same database.
func LedgerLock(db *sql.Connection) (err error) {
	if _, err := db.Exec("SELECT pg_advisory_lock($1)", ledgerLockKey); err != nil {
		return e.W(err, ECode00030E)
	}

	return nil
}

// LedgerUnlock releases the ledger advisory lock
func LedgerUnlock(db *sql.Connection) (err error) {
	if _, err := db.Exec("SELECT pg_advisory_unlock($1)", ledgerLockKey); err != nil {
		return e.W(err, ECode00030F)
	}

	return nil
}
