package e

// Constants in here define error codes that are unique to a package/function.
// The first two characters define the package, within this repo, and the
// second two characters define the file within that package. Call sites
// append a two character unique id within the file, forming constants like
// ECode000101. Valid values for the characters are: 0-9 and A-Z.

const (
	// package: migration
	Code0001 = "0001" // package:migration | migration/engine.go
	Code0002 = "0002" // package:migration | migration/registry.go
	Code0003 = "0003" // package:migration/sqlmodel | migration/sqlmodel/ledger.go
	Code0004 = "0004" // package:migration | migration/identifier.go
	Code0005 = "0005" // package:migration | migration/ledger.go

	// package: scaffold
	Code0101 = "0101" // package:scaffold | scaffold/scaffold.go

	// package: sql
	Code0202 = "0202" // package:sql | sql/row.go
	Code0203 = "0203" // package:sql | sql/sql.go
	Code0206 = "0206" // package:sql | sql/rows.go
)
