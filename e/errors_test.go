package e

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNCreatesCodedError(t *testing.T) {
	err := N("000101", "something broke")
	require.Error(t, err)

	assert.True(t, ContainsError(err, "000101"))
	assert.True(t, ContainsError(err, "something broke"))
}

func TestWWrapsAndPreservesMessages(t *testing.T) {
	inner := N("000101", MsgLedgerWriteFailed)
	outer := W(inner, "000202")

	assert.True(t, ContainsError(outer, "000101"))
	assert.True(t, ContainsError(outer, "000202"))
	assert.True(t, ContainsError(outer, MsgLedgerWriteFailed))
}

func TestWOfPlainError(t *testing.T) {
	plain := assert.AnError
	wrapped := W(plain, "000303", "extra detail")

	assert.True(t, ContainsError(wrapped, "000303"))
	assert.True(t, ContainsError(wrapped, "extra detail"))
	assert.True(t, ContainsError(wrapped, plain.Error()))

	ee := AsExtendedError(wrapped)
	require.NotNil(t, ee)
	assert.True(t, ee.IsError(plain))
}

func TestContainsErrorNil(t *testing.T) {
	assert.False(t, ContainsError(nil, "anything"))
}
