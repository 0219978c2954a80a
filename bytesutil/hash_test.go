package bytesutil

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// genesisHeaderHex is the 80-byte header of the Bitcoin genesis block.
const genesisHeaderHex = "01000000" +
	"0000000000000000000000000000000000000000000000000000000000000000" +
	"3ba3edfd7a7b12b27ac72c3e67768f617fc81bc3888a51323a9fb8aa4b1e5e4a" +
	"29ab5f49ffff001d1dac2b7c"

func TestDoubleSHA256_GenesisHeaderHash(t *testing.T) {
	raw, err := hex.DecodeString(genesisHeaderHex)
	require.NoError(t, err)
	require.Len(t, raw, 80)

	h := DoubleSHA256(raw)
	assert.Equal(t, "000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f", HashHex(h))
}

func TestReverseBytes_RoundTrips(t *testing.T) {
	b := []byte{1, 2, 3, 4}
	assert.Equal(t, []byte{4, 3, 2, 1}, ReverseBytes(b))
	assert.Equal(t, b, ReverseBytes(ReverseBytes(b)))
}
