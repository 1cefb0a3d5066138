package migration

import (
	"github.com/crestfall/migrate/e"
	"github.com/crestfall/migrate/sql"
	"github.com/rs/zerolog/log"
)

const (
	ECode000101 = e.Code0001 + "01"
	ECode000102 = e.Code0001 + "02"
	ECode000103 = e.Code0001 + "03"
	ECode000104 = e.Code0001 + "04"
	ECode000105 = e.Code0001 + "05"
	ECode000106 = e.Code0001 + "06"
	ECode000107 = e.Code0001 + "07"
	ECode000108 = e.Code0001 + "08"
	ECode000109 = e.Code0001 + "09"
	ECode00010A = e.Code0001 + "0A"
	ECode00010B = e.Code0001 + "0B"
	ECode00010C = e.Code0001 + "0C"
	ECode00010D = e.Code0001 + "0D"
	ECode00010E = e.Code0001 + "0E"
	ECode00010F = e.Code0001 + "0F"
	ECode00010G = e.Code0001 + "0G"
)

// Config configures an Engine. DB is handed to each script's Up/Down and
// backs the default ledger; Ledger and Scripts default to the SQL ledger on
// DB and the default registry. DB may only be omitted when a Ledger is
// injected.
type Config struct {
	DB      *sql.Connection
	Ledger  Ledger
	Scripts ScriptStore
}

// Engine orchestrates the script store and the ledger. It owns no persistent
// state itself and assumes single-writer access to the ledger medium; see
// SQLLedger.Lock for excluding concurrent runners.
type Engine struct {
	db      *sql.Connection
	ledger  Ledger
	scripts ScriptStore
}

// NewEngine initializes a new engine, creating the ledger medium if it does
// not exist yet
func NewEngine(cfg *Config) (en *Engine, err error) {
	if cfg == nil || (cfg.DB == nil && cfg.Ledger == nil) {
		return nil, e.N(ECode000101, "a db connection or ledger is required")
	}

	en = &Engine{
		db:      cfg.DB,
		ledger:  cfg.Ledger,
		scripts: cfg.Scripts,
	}

	if en.ledger == nil {
		en.ledger = NewSQLLedger(cfg.DB)
	}
	if en.scripts == nil {
		en.scripts = DefaultRegistry()
	}

	ok, err := en.ledger.Exists()
	if err != nil {
		return nil, e.W(err, ECode000102)
	}
	if !ok {
		if err := en.ledger.Initialize(); err != nil {
			return nil, e.W(err, ECode000103)
		}
	}

	return en, nil
}

// Pending returns every identifier known to the script store but absent from
// the ledger, preserving the script store's enumeration order. It has no
// side effects and is repeatable.
func (en *Engine) Pending() (pending []string, err error) {
	all, err := en.scripts.ListAll()
	if err != nil {
		return nil, e.W(err, ECode000104)
	}

	applied, err := en.ledger.ListApplied()
	if err != nil {
		return nil, e.W(err, ECode000105)
	}

	appliedMap := make(map[string]struct{}, len(applied))
	for _, identifier := range applied {
		appliedMap[identifier] = struct{}{}
	}

	pending = make([]string, 0, len(all))
	for _, identifier := range all {
		if _, ok := appliedMap[identifier]; !ok {
			pending = append(pending, identifier)
		}
	}

	return pending, nil
}

// Resolve materializes the script for the identifier. Failure here is an
// authoring/configuration error and is never retried.
func (en *Engine) Resolve(identifier string) (s Script, err error) {
	s, err = en.scripts.Load(identifier)
	if err != nil {
		return nil, e.W(err, ECode000106)
	}

	return s, nil
}

// Apply resolves and runs the script's Up. If Up reports failure, no ledger
// entry is written and the identifier stays pending. If Up succeeds, the
// identifier is appended to the ledger; a failure of that write must
// propagate, as silently losing it would re-execute the migration on the
// next run.
func (en *Engine) Apply(identifier string) (err error) {
	s, err := en.Resolve(identifier)
	if err != nil {
		return e.W(err, ECode000107)
	}

	if err := en.runScript(s.Up); err != nil {
		return e.W(err, ECode000108, e.MsgMigrationApplyFailed, identifier)
	}

	if err := en.ledger.RecordApplied(identifier); err != nil {
		return e.W(err, ECode000109)
	}

	log.Info().Msgf("applied migration '%s'", identifier)

	return nil
}

// RunPending applies each pending migration strictly in order, stopping at
// the first failure and returning the identifiers that ran successfully. A
// later invocation recomputes the pending set and resumes from the failure
// point.
func (en *Engine) RunPending() (ran []string, err error) {
	pending, err := en.Pending()
	if err != nil {
		return nil, e.W(err, ECode00010A)
	}

	for _, identifier := range pending {
		if err := en.Apply(identifier); err != nil {
			return ran, e.W(err, ECode00010B)
		}
		ran = append(ran, identifier)
	}

	return ran, nil
}

// Rollback resolves and runs the script's Down. If Down reports failure, the
// ledger entry is left intact so the migration is still considered applied.
// If Down succeeds, the ledger entry is removed and the identifier becomes
// pending again. Any applied identifier may be targeted; restricting
// rollback to the most recent entry is caller policy.
func (en *Engine) Rollback(identifier string) (err error) {
	s, err := en.Resolve(identifier)
	if err != nil {
		return e.W(err, ECode00010C)
	}

	if err := en.runScript(s.Down); err != nil {
		return e.W(err, ECode00010D, e.MsgMigrationRollbackFailed, identifier)
	}

	if err := en.ledger.RemoveApplied(identifier); err != nil {
		return e.W(err, ECode00010E)
	}

	log.Info().Msgf("rolled back migration '%s'", identifier)

	return nil
}

// runScript executes the script operation inside a transaction when a
// connection is present, so a failed operation leaves no partial effects
// behind. The connection routes the script's own Exec/Query calls through
// the open transaction automatically.
func (en *Engine) runScript(op func(db *sql.Connection) error) (err error) {
	if en.db == nil {
		return op(nil)
	}

	if err := en.db.Begin(); err != nil {
		return e.W(err, ECode00010F)
	}

	if err := op(en.db); err != nil {
		en.db.RollbackIfInTxn()
		return err
	}

	if err := en.db.Commit(); err != nil {
		return e.W(err, ECode00010G)
	}

	return nil
}

// Ledger returns the engine's ledger
func (en *Engine) Ledger() Ledger {
	return en.ledger
}

// Scripts returns the engine's script store
func (en *Engine) Scripts() ScriptStore {
	return en.scripts
}
