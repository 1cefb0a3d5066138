package model

// LedgerEntry is one applied-migration record. Rows are ordered by ID, which
// reflects application order.
type LedgerEntry struct {
	ID        int
	Migration string
	CreatedOn string
}
