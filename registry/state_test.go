package registry

import (
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
)

func TestNetworkState(t *testing.T) {
	state := NewNetworkState()
	now := time.Unix(1_700_000_000, 0)
	state.now = func() time.Time { return now }

	assert.Equal(t, uint64(0), state.Slot())
	assert.True(t, state.Updated().IsZero())

	state.SetSlot(250_000_000)
	hash := solana.HashFromBytes([]byte("0123456789abcdef0123456789abcdef"))
	state.SetBlockhash(hash)

	assert.Equal(t, uint64(250_000_000), state.Slot())
	assert.Equal(t, hash, state.Blockhash())
	assert.Equal(t, now, state.Updated())
	assert.Equal(t, now, state.Now())
}
