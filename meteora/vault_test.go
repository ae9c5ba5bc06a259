package meteora

import (
	"context"
	"sync"
	"testing"

	"github.com/egaotan/solana-registry/program/programtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithdrawableAmount(t *testing.T) {
	state := VaultState{
		TotalAmount:             1_000,
		LastUpdatedLockedProfit: 400,
		LastReport:              10_000,
		LockedProfitDegradation: 1_000_000_000,
	}
	// duration * degradation == denominator
	assert.Equal(t, uint64(1_000), withdrawableAmount(state, 11_000))
	assert.Equal(t, uint64(600), withdrawableAmount(state, 10_000))
	assert.Equal(t, uint64(800), withdrawableAmount(state, 10_500))
	assert.Equal(t, uint64(1_000), withdrawableAmount(state, 50_000))
	assert.Equal(t, uint64(600), withdrawableAmount(state, 9_000), "report in the future counts as no elapsed time")
}

func TestVaultWithdrawableAmountUsesState(t *testing.T) {
	vault := NewVault(programtest.NewKey())
	vault.SetState(VaultState{TotalAmount: 5_000, LastUpdatedLockedProfit: 5_000, LastReport: 100})
	assert.Equal(t, uint64(0), vault.WithdrawableAmount(100))
}

func TestVaultCacheSingleInstance(t *testing.T) {
	cache := NewVaultCache()
	token := programtest.NewKey()

	const workers = 64
	vaults := make([]*Vault, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			vaults[i] = cache.GetOrCreate(token)
		}(i)
	}
	wg.Wait()

	for _, vault := range vaults {
		require.Same(t, vaults[0], vault)
	}
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, token, vaults[0].TokenMint)
	assert.False(t, vaults[0].Address.IsZero())

	other := cache.GetOrCreate(programtest.NewKey())
	assert.NotSame(t, vaults[0], other)
	assert.NotEqual(t, vaults[0].Address, other.Address)
	assert.Equal(t, 2, cache.Len())

	got, ok := cache.Get(token)
	require.True(t, ok)
	assert.Same(t, vaults[0], got)
}

func TestVaultAddressesAreDeterministic(t *testing.T) {
	token := programtest.NewKey()
	a, b := NewVault(token), NewVault(token)
	assert.Equal(t, a.Address, b.Address)
	assert.Equal(t, a.TokenVault, b.TokenVault)
	assert.Equal(t, a.LpMint, b.LpMint)
	assert.NotEqual(t, a.Address, a.TokenVault)
}

func TestVaultRefresh(t *testing.T) {
	vault := NewVault(programtest.NewKey())
	network := programtest.NewNetwork()
	layout := VaultLayout{
		Enabled:     1,
		TotalAmount: 9_000,
		TokenMint:   vault.TokenMint,
		LpMint:      vault.LpMint,
		LockedProfitTracker: LockedProfitTrackerLayout{
			LastUpdatedLockedProfit: 100,
			LastReport:              7,
			LockedProfitDegradation: 3,
		},
	}
	network.Accounts[vault.Address] = programtest.Encode(t, &layout, VaultSmallLayoutSize)
	network.Supplies[vault.LpMint] = 4_500

	require.NoError(t, vault.Refresh(context.Background(), network))
	assert.Equal(t, VaultState{
		Enabled:                 true,
		TotalAmount:             9_000,
		LastUpdatedLockedProfit: 100,
		LastReport:              7,
		LockedProfitDegradation: 3,
		LpSupply:                4_500,
	}, vault.State())

	network.Accounts[vault.Address] = make([]byte, 100)
	require.Error(t, vault.Refresh(context.Background(), network))
	assert.Equal(t, uint64(9_000), vault.State().TotalAmount)
}
