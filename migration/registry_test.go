package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryListAllSortsLexically(t *testing.T) {
	r := NewRegistry()

	for _, identifier := range []string{
		idAddInvoices,
		idAddUsers,
		idAddOrders,
	} {
		require.NoError(t, r.Add(identifier, func() Script { return testScript{} }))
	}

	identifiers, err := r.ListAll()
	require.NoError(t, err)
	assert.Equal(t,
		[]string{idAddUsers, idAddOrders, idAddInvoices}, identifiers)
}

func TestRegistryAddValidation(t *testing.T) {
	r := NewRegistry()

	// Malformed identifier
	err := r.Add("add_users_table", func() Script { return testScript{} })
	assert.Error(t, err)

	// Nil factory
	err = r.Add(idAddUsers, nil)
	assert.Error(t, err)

	// Duplicate
	require.NoError(t, r.Add(idAddUsers, func() Script { return testScript{} }))
	err = r.Add(idAddUsers, func() Script { return testScript{} })
	assert.Error(t, err)
}

func TestRegistryExistsAndLoad(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(idAddUsers, func() Script { return testScript{} }))

	assert.True(t, r.Exists(idAddUsers))
	assert.False(t, r.Exists(idAddOrders))

	s, err := r.Load(idAddUsers)
	require.NoError(t, err)
	assert.NotNil(t, s)

	_, err = r.Load(idAddOrders)
	require.Error(t, err)
	assert.True(t, IsUnresolvable(err))
}

func TestRegistryLoadNilScript(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(idAddUsers, func() Script { return nil }))

	_, err := r.Load(idAddUsers)
	require.Error(t, err)
	assert.True(t, IsUnresolvable(err))
}

func TestRegisterPanicsOnBadRegistration(t *testing.T) {
	assert.Panics(t, func() {
		Register("not_an_identifier", func() Script { return testScript{} })
	})
}
