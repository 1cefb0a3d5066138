package migration

import (
	"github.com/crestfall/migrate/e"
	"github.com/crestfall/migrate/migration/model"
	"github.com/crestfall/migrate/migration/sqlmodel"
	"github.com/crestfall/migrate/sql"
)

const (
	ECode000501 = e.Code0005 + "01"
	ECode000502 = e.Code0005 + "02"
	ECode000503 = e.Code0005 + "03"
	ECode000504 = e.Code0005 + "04"
	ECode000505 = e.Code0005 + "05"
	ECode000506 = e.Code0005 + "06"
	ECode000507 = e.Code0005 + "07"
	ECode000508 = e.Code0005 + "08"
)

// SQLLedger is the Postgres Ledger: one table with an autoincrementing id
// and a unique indexed migration column, rows ordered by id in application
// order
type SQLLedger struct {
	db *sql.Connection
}

// interface guard
var _ Ledger = (*SQLLedger)(nil)

// NewSQLLedger initializes a ledger on the passed connection
func NewSQLLedger(db *sql.Connection) (l *SQLLedger) {
	return &SQLLedger{
		db: db,
	}
}

// Exists reports whether the ledger table has been created
func (l *SQLLedger) Exists() (ok bool, err error) {
	ok, err = sqlmodel.LedgerTableExists(l.db)
	if err != nil {
		return false, e.W(err, ECode000501)
	}

	return ok, nil
}

// Initialize creates the ledger table
func (l *SQLLedger) Initialize() (err error) {
	if err := sqlmodel.LedgerTableCreate(l.db); err != nil {
		return e.W(err, ECode000502)
	}

	return nil
}

// ListApplied returns the applied identifiers in application order
func (l *SQLLedger) ListApplied() (identifiers []string, err error) {
	leList, _, err := sqlmodel.LedgerEntryGet(l.db, &sqlmodel.LedgerEntryGetParam{
		OrderByID: "asc",
	})
	if err != nil {
		return nil, e.W(err, ECode000503)
	}

	identifiers = make([]string, 0, len(leList))
	for _, le := range leList {
		identifiers = append(identifiers, le.Migration)
	}

	return identifiers, nil
}

// RecordApplied appends an entry for the identifier
func (l *SQLLedger) RecordApplied(identifier string) (err error) {
	if _, err := sqlmodel.LedgerEntryInsert(l.db, identifier); err != nil {
		return e.W(err, ECode000504, e.MsgLedgerWriteFailed, identifier)
	}

	return nil
}

// RemoveApplied deletes the entry for the identifier; removing an absent
// identifier is a no-op
func (l *SQLLedger) RemoveApplied(identifier string) (err error) {
	if err := sqlmodel.LedgerEntryDelete(l.db, identifier); err != nil {
		return e.W(err, ECode000505, e.MsgLedgerWriteFailed, identifier)
	}

	return nil
}

// Entries returns the full ledger rows in application order
func (l *SQLLedger) Entries() (leList []*model.LedgerEntry, err error) {
	leList, _, err = sqlmodel.LedgerEntryGet(l.db, &sqlmodel.LedgerEntryGetParam{
		OrderByID: "asc",
	})
	if err != nil {
		return nil, e.W(err, ECode000506)
	}

	return leList, nil
}

// Latest returns the most recently applied entry
func (l *SQLLedger) Latest() (le *model.LedgerEntry, err error) {
	le, err = sqlmodel.LedgerEntryGetLatest(l.db)
	if err != nil {
		return nil, e.W(err, ECode000507)
	}

	return le, nil
}

// Lock blocks until this database's migration advisory lock is acquired.
// Two racing deploys serialize on it; the engine itself does not take the
// lock.
func (l *SQLLedger) Lock() (err error) {
	if err := sqlmodel.LedgerLock(l.db); err != nil {
		return e.W(err, ECode000508)
	}

	return nil
}

// Unlock releases the migration advisory lock
func (l *SQLLedger) Unlock() (err error) {
	return sqlmodel.LedgerUnlock(l.db)
}
