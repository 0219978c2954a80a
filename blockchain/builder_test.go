package blockchain

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fungibit/chainscan/bytesutil"
	"github.com/fungibit/chainscan/chainstream"
	"github.com/fungibit/chainscan/model"
)

func frame(payload []byte) []byte {
	out := make([]byte, 8+len(payload))
	binary.LittleEndian.PutUint32(out[0:4], 0xD9B4BEF9)
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(payload)))
	copy(out[8:], payload)
	return out
}

func TestBuilder_PopulatesChainAsItIterates(t *testing.T) {
	dir := t.TempDir()

	var zero bytesutil.Hash
	var all []byte
	prev := zero
	for i := 0; i < 5; i++ {
		header := model.BlockHeader{Version: 1, PrevHash: prev, Nonce: uint32(i)}
		payload := append([]byte{}, header.Bytes()...)
		payload = append(payload, 0x00) // tx count 0
		b, err := model.DecodeBlock(payload)
		require.NoError(t, err)
		prev = b.Hash()
		all = append(all, frame(payload)...)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blk00000.dat"), all, 0o644))

	blocks := chainstream.NewBlockStream(dir, "blk*.dat", chainstream.WithSafetyMargin(0))
	builder := NewBuilder(blocks)

	for {
		_, ok, err := builder.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
	}

	chain := builder.Chain()
	require.Equal(t, 5, chain.Len())
	require.Equal(t, int32(4), chain.Height())

	g, ok := chain.Genesis()
	require.True(t, ok)
	require.Equal(t, int32(0), g.Height)
}
