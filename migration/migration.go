// Package migration tracks and applies an ordered set of one-way-by-default
// change scripts against a Postgres database. Scripts are Go types that
// register themselves at compile time; the set of applied scripts is recorded
// in a ledger table so each script runs at most once, in identifier order,
// across process restarts.
//
// Basic Usage sample:
//
// Errors should be handled, but ignored for example code
// en, _ := migration.NewEngine(&migration.Config{DB: db})
// ran, _ := en.RunPending()
//
// Example migration script
//
// type AddUsersTable2023_05_01_101112_123456 struct{}
//
// func (m AddUsersTable2023_05_01_101112_123456) Up(db *sql.Connection) (err error) {
// 	_, err = db.Exec(`CREATE TABLE users (...)`)
// 	return err
// }
//
// func (m AddUsersTable2023_05_01_101112_123456) Down(db *sql.Connection) (err error) {
// 	_, err = db.Exec(`DROP TABLE users`)
// 	return err
// }
//
// func init() {
// 	migration.Register("2023_05_01_101112_123456_add_users_table",
// 		func() migration.Script {
// 			return AddUsersTable2023_05_01_101112_123456{}
// 		})
// }
//
// A script's apply and its ledger write are each all-or-nothing, but not
// atomic as a pair: a crash between them leaves the script's effects in
// place with no ledger entry, and the next run will execute it again. That
// window is an accepted operational caveat; recovery is manual inspection.
package migration

import (
	"github.com/crestfall/migrate/e"
	"github.com/crestfall/migrate/sql"
)

// Script is the executable unit bound to one migration identifier. Up applies
// the migration and Down reverts it, each reporting failure by returning a
// non-nil error.
type Script interface {
	Up(db *sql.Connection) error
	Down(db *sql.Connection) error
}

// ScriptStore enumerates the available migration identifiers and materializes
// the script matching a given identifier
type ScriptStore interface {
	// ListAll returns every discoverable identifier in deterministic
	// (lexical) order
	ListAll() ([]string, error)
	// Exists reports whether a script is registered for the identifier
	Exists(identifier string) bool
	// Load materializes the script for the identifier
	Load(identifier string) (Script, error)
}

// Ledger is the durable record of which migrations have been applied, in
// application order
type Ledger interface {
	// Exists reports whether the ledger medium has been initialized
	Exists() (bool, error)
	// Initialize creates the ledger medium
	Initialize() error
	// ListApplied returns the applied identifiers in application order
	ListApplied() ([]string, error)
	// RecordApplied appends an entry for the identifier
	RecordApplied(identifier string) error
	// RemoveApplied deletes the entry for the identifier. Removing an
	// absent identifier is not an error
	RemoveApplied(identifier string) error
}

// IsUnresolvable reports whether the error indicates a script could not be
// located or constructed for an identifier. This is an authoring error and
// is never retried.
func IsUnresolvable(err error) bool {
	return e.ContainsError(err, e.MsgMigrationUnresolvable)
}

// IsApplyFailed reports whether the error indicates a script's Up reported
// failure. The ledger is untouched in that case.
func IsApplyFailed(err error) bool {
	return e.ContainsError(err, e.MsgMigrationApplyFailed)
}

// IsRollbackFailed reports whether the error indicates a script's Down
// reported failure. The ledger entry is preserved in that case.
func IsRollbackFailed(err error) bool {
	return e.ContainsError(err, e.MsgMigrationRollbackFailed)
}

// IsLedgerWrite reports whether the error indicates the ledger medium failed
// while recording or removing an entry
func IsLedgerWrite(err error) bool {
	return e.ContainsError(err, e.MsgLedgerWriteFailed)
}
