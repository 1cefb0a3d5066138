package migration

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/crestfall/migrate/e"
)

const (
	// IdentifierTimeFormat the timestamp prefix layout of an identifier
	IdentifierTimeFormat = "2006_01_02_150405"

	ECode000401 = e.Code0004 + "01"
	ECode000402 = e.Code0004 + "02"
)

var (
	// An identifier is the timestamp, a microsecond disambiguator and the
	// snake_case name, e.g. 2023_05_01_101112_123456_add_users_table.
	// Lexical order of identifiers built this way matches creation order.
	identifierRegexp = regexp.MustCompile(`^\d{4}_\d{2}_\d{2}_\d{6}_\d{6}_[a-z][a-z0-9_]*$`)
	nameRegexp       = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

// NewIdentifier builds the identifier for a new migration from the passed
// snake_case name and creation time
func NewIdentifier(name string, t time.Time) (identifier string, err error) {
	if !nameRegexp.MatchString(name) {
		return "", e.N(ECode000401, e.MsgMigrationNameInvalid, name)
	}

	return fmt.Sprintf("%s_%06d_%s",
		t.Format(IdentifierTimeFormat), t.Nanosecond()/1000, name), nil
}

// ValidIdentifier reports whether the passed string is a well formed
// migration identifier
func ValidIdentifier(identifier string) bool {
	return identifierRegexp.MatchString(identifier)
}

// TypeName derives the script's Go type name from its identifier: the
// date/time segments are stripped, the remaining words are capitalized and
// concatenated, and the date/time segments are appended.
// 2023_05_01_101112_123456_add_users_table becomes
// AddUsersTable2023_05_01_101112_123456
func TypeName(identifier string) (name string, err error) {
	if !ValidIdentifier(identifier) {
		return "", e.N(ECode000402, e.MsgIdentifierInvalid, identifier)
	}

	parts := strings.Split(identifier, "_")

	var i int
	for i = 0; i < len(parts); i++ {
		if !allDigits(parts[i]) {
			break
		}
	}

	var b strings.Builder
	for _, w := range parts[i:] {
		if w == "" {
			continue
		}
		_, _ = b.WriteString(strings.ToUpper(w[:1]))
		_, _ = b.WriteString(w[1:])
	}
	_, _ = b.WriteString(strings.Join(parts[:i], "_"))

	return b.String(), nil
}

// allDigits reports whether s is non empty and contains only 0-9
func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
