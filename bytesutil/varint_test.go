package bytesutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarInt_SingleByte(t *testing.T) {
	v, n, err := VarInt([]byte{0xFC})
	require.NoError(t, err)
	assert.Equal(t, uint64(0xFC), v)
	assert.Equal(t, 1, n)
}

func TestVarInt_FDPrefix(t *testing.T) {
	v, n, err := VarInt([]byte{0xFD, 0x34, 0x12})
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1234), v)
	assert.Equal(t, 3, n)
}

func TestVarInt_FEPrefix(t *testing.T) {
	v, n, err := VarInt([]byte{0xFE, 0x01, 0x00, 0x00, 0x00})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)
	assert.Equal(t, 5, n)
}

func TestVarInt_FFPrefix(t *testing.T) {
	v, n, err := VarInt([]byte{0xFF, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)
	assert.Equal(t, 9, n)
}

func TestVarInt_TruncatedBufferIsMalformed(t *testing.T) {
	_, _, err := VarInt([]byte{0xFE, 0x01, 0x00})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MALFORMED_VARINT")
}

func TestVarInt_EmptyBufferIsMalformed(t *testing.T) {
	_, _, err := VarInt(nil)
	require.Error(t, err)
}
