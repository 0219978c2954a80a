package model

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const genesisHeaderHex = "01000000" +
	"0000000000000000000000000000000000000000000000000000000000000000" +
	"3ba3edfd7a7b12b27ac72c3e67768f617fc81bc3888a51323a9fb8aa4b1e5e4a" +
	"29ab5f49ffff001d1dac2b7c"

const genesisCoinbaseTxHex2 = genesisCoinbaseTxHex

func genesisBlockPayload(t *testing.T) []byte {
	header, err := hex.DecodeString(genesisHeaderHex)
	require.NoError(t, err)

	coinbase, err := hex.DecodeString(genesisCoinbaseTxHex2)
	require.NoError(t, err)

	payload := append([]byte{}, header...)
	payload = append(payload, 0x01) // tx count varint: 1
	payload = append(payload, coinbase...)

	return payload
}

func TestDecodeBlock_GenesisHash(t *testing.T) {
	block, err := DecodeBlock(genesisBlockPayload(t))
	require.NoError(t, err)

	assert.Equal(t, "000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f", block.Hash().String())
	assert.Equal(t, int32(-1), block.Height)
	assert.Equal(t, uint64(1), block.TxCount())
}

func TestDecodeBlock_TooShortIsCorruption(t *testing.T) {
	_, err := DecodeBlock(make([]byte, 10))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CORRUPTION")
}

func TestBlockTransactions_IsLazyAndRestartable(t *testing.T) {
	block, err := DecodeBlock(genesisBlockPayload(t))
	require.NoError(t, err)

	first := block.Transactions(false)
	tx, ok, err := first.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b", tx.TxID.String())

	_, ok, err = first.Next()
	require.NoError(t, err)
	assert.False(t, ok)

	// A fresh iterator restarts from the beginning of the tx section.
	second := block.Transactions(false)
	tx2, ok, err := second.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, tx.TxID, tx2.TxID)
}
