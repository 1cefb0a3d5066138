package migration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crestfall/migrate/e"
)

func TestNewIdentifier(t *testing.T) {
	created := time.Date(2023, 5, 1, 10, 11, 12, 123456000, time.UTC)

	identifier, err := NewIdentifier("add_users_table", created)
	require.NoError(t, err)
	assert.Equal(t, "2023_05_01_101112_123456_add_users_table", identifier)
	assert.True(t, ValidIdentifier(identifier))
}

func TestNewIdentifierRejectsBadNames(t *testing.T) {
	created := time.Date(2023, 5, 1, 10, 11, 12, 0, time.UTC)

	for _, name := range []string{
		"",
		"Add_Users",
		"add-users",
		"2users",
		"add users",
	} {
		_, err := NewIdentifier(name, created)
		require.Error(t, err, "name: %q", name)
		assert.True(t, e.ContainsError(err, e.MsgMigrationNameInvalid))
	}
}

func TestIdentifierOrderMatchesCreationOrder(t *testing.T) {
	earlier := time.Date(2023, 5, 1, 10, 11, 12, 123456000, time.UTC)
	later := earlier.Add(time.Microsecond)

	first, err := NewIdentifier("zz_last_name", earlier)
	require.NoError(t, err)
	second, err := NewIdentifier("aa_first_name", later)
	require.NoError(t, err)

	// Lexical order follows creation time, not the human name
	assert.Less(t, first, second)
}

func TestTypeName(t *testing.T) {
	tests := []struct {
		identifier string
		expected   string
	}{
		{
			identifier: "2023_05_01_101112_123456_add_users_table",
			expected:   "AddUsersTable2023_05_01_101112_123456",
		},
		{
			identifier: "2024_12_31_235959_000001_seed",
			expected:   "Seed2024_12_31_235959_000001",
		},
		{
			identifier: "2023_05_01_101112_123456_drop_idx2_col",
			expected:   "DropIdx2Col2023_05_01_101112_123456",
		},
	}

	for _, tt := range tests {
		name, err := TypeName(tt.identifier)
		require.NoError(t, err, "identifier: %s", tt.identifier)
		assert.Equal(t, tt.expected, name)
	}
}

func TestTypeNameRejectsMalformedIdentifiers(t *testing.T) {
	for _, identifier := range []string{
		"",
		"add_users_table",
		"2023_05_01_add_users_table",
		"2023_05_01_101112_123456_",
		"2023_05_01_101112_123456_Add",
	} {
		_, err := TypeName(identifier)
		require.Error(t, err, "identifier: %q", identifier)
		assert.True(t, e.ContainsError(err, e.MsgIdentifierInvalid))
		assert.False(t, ValidIdentifier(identifier))
	}
}
