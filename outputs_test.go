package ordr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputs_GetAndTake(t *testing.T) {
	o := newOutputs()
	o.set(idOf[alpha](), "alpha", alpha{V: 7})

	got, ok := Get[alpha](o)
	require.True(t, ok)
	assert.Equal(t, 7, got.V)

	// Get does not consume the value.
	got2, ok := Get[alpha](o)
	require.True(t, ok)
	assert.Equal(t, 7, got2.V)

	taken, ok := Take[alpha](o)
	require.True(t, ok)
	assert.Equal(t, 7, taken.V)

	_, ok = Get[alpha](o)
	assert.False(t, ok, "Take should remove the value")
}

func TestOutputs_Get_AbsentType(t *testing.T) {
	o := newOutputs()
	_, ok := Get[beta](o)
	assert.False(t, ok)
}

func TestOutputs_All(t *testing.T) {
	o := newOutputs()
	o.set(idOf[alpha](), "alpha", alpha{V: 1})
	o.set(idOf[beta](), "beta", beta{V: 2})

	entries := o.All()
	assert.Len(t, entries, 2)
	assert.Equal(t, 2, o.Len())
}
