package e

// This defines reusable error messages

const (
	MsgUnknownInternalServerError = "Unknown Internal Server Error"

	// migrations
	MsgMigrationUnresolvable   = "Migration cannot be resolved"
	MsgMigrationApplyFailed    = "Migration apply failed"
	MsgMigrationRollbackFailed = "Migration rollback failed"
	MsgMigrationNameInvalid    = "Invalid migration name"
	MsgIdentifierInvalid       = "Invalid migration identifier"

	// ledger
	MsgLedgerWriteFailed  = "Ledger write failed"
	MsgLedgerNotInstalled = "Ledger not installed"
	MsgLedgerEntryDNE     = "Ledger entry does not exist"
	MsgLedgerNone         = "No ledger entries exist yet"
)
