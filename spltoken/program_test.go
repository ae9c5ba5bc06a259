package spltoken

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encode(t *testing.T, layout interface{}, size int) []byte {
	buf := new(bytes.Buffer)
	require.NoError(t, binary.Write(buf, binary.LittleEndian, layout))
	return append(buf.Bytes(), make([]byte, size-buf.Len())...)
}

func TestParseUser(t *testing.T) {
	key, mint, owner := solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()
	data := encode(t, &UserLayout{Mint: mint, Owner: owner, Amount: 123_456, State: 1}, TokenLayoutSize)

	user, err := ParseUser(key, data)
	require.NoError(t, err)
	assert.Equal(t, mint, user.Mint)
	assert.Equal(t, owner, user.Owner)
	assert.Equal(t, uint64(123_456), user.Amount)

	user, err = ParseUser(key, append(data, make([]byte, 100)...))
	require.NoError(t, err)
	assert.Equal(t, uint64(123_456), user.Amount)

	_, err = ParseUser(key, data[:64])
	require.Error(t, err)
}

func TestParseToken(t *testing.T) {
	key := solana.NewWallet().PublicKey()
	data := encode(t, &TokenLayout{Supply: 1_000_000_000_000_000, Decimals: 6, IsInitialized: 1}, MintLayoutSize)

	token, err := ParseToken(key, data)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000_000_000_000), token.Supply)
	assert.Equal(t, byte(6), token.Decimals)

	_, err = ParseToken(key, data[:40])
	require.Error(t, err)
}
