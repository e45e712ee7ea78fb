package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifier_ScanMatch(t *testing.T) {
	v := New("eq_1700000000_a1b2c3d4")
	require.NoError(t, v.Scan("eq_1700000000_a1b2c3d4"))
	assert.True(t, v.Verified())
	assert.Equal(t, MethodScanned, v.Method())
	assert.Empty(t, v.LastError())
}

func TestVerifier_ScanMismatch(t *testing.T) {
	v := New("eq_1700000000_a1b2c3d4")
	err := v.Scan("eq_1700000000_ffffffff")
	require.Error(t, err)
	assert.False(t, v.Verified())
	assert.Equal(t, MethodNone, v.Method())
	assert.Contains(t, v.LastError(), "eq_1700000000_a1b2c3d4")

	// Matching is case sensitive; IDs are exact strings.
	require.Error(t, v.Scan("EQ_1700000000_A1B2C3D4"))
}

func TestVerifier_MismatchThenMatch(t *testing.T) {
	v := New("eq_1")
	require.Error(t, v.Scan("eq_2"))
	require.NoError(t, v.Scan("eq_1"))
	assert.True(t, v.Verified())
	assert.Empty(t, v.LastError())
}

func TestVerifier_ConfirmManually(t *testing.T) {
	v := New("eq_1")
	v.ConfirmManually()
	assert.True(t, v.Verified())
	assert.Equal(t, MethodManual, v.Method())
}

func TestVerifier_Reset(t *testing.T) {
	v := New("eq_1")
	require.NoError(t, v.Scan("eq_1"))
	v.Reset()
	assert.False(t, v.Verified())
	assert.Equal(t, MethodNone, v.Method())
}
