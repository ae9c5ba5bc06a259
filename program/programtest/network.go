// Package programtest provides an in-memory chain for pool tests.
package programtest

import (
	"bytes"
	"context"
	"encoding/binary"
	"sync"
	"testing"

	"github.com/egaotan/solana-registry/program"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

// Network serves account data, mint supplies and token balances from maps. Missing keys are not found.
type Network struct {
	mu       sync.Mutex
	fetches  map[solana.PublicKey]int
	Accounts map[solana.PublicKey][]byte
	Supplies map[solana.PublicKey]uint64
	Balances map[solana.PublicKey]uint64
}

func NewNetwork() *Network {
	return &Network{
		fetches:  make(map[solana.PublicKey]int),
		Accounts: make(map[solana.PublicKey][]byte),
		Supplies: make(map[solana.PublicKey]uint64),
		Balances: make(map[solana.PublicKey]uint64),
	}
}

func (n *Network) SetAccount(key solana.PublicKey, data []byte) {
	n.mu.Lock()
	n.Accounts[key] = data
	n.mu.Unlock()
}

func (n *Network) SetBalance(account solana.PublicKey, amount uint64) {
	n.mu.Lock()
	n.Balances[account] = amount
	n.mu.Unlock()
}

func (n *Network) SetSupply(mint solana.PublicKey, supply uint64) {
	n.mu.Lock()
	n.Supplies[mint] = supply
	n.mu.Unlock()
}

// Fetches is the number of AccountData calls made for key.
func (n *Network) Fetches(key solana.PublicKey) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.fetches[key]
}

func (n *Network) AccountData(ctx context.Context, key solana.PublicKey) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.fetches[key]++
	data, ok := n.Accounts[key]
	if !ok {
		return nil, program.ErrAccountNotFound
	}
	return data, nil
}

func (n *Network) TokenSupply(_ context.Context, mint solana.PublicKey) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	supply, ok := n.Supplies[mint]
	if !ok {
		return 0, program.ErrAccountNotFound
	}
	return supply, nil
}

func (n *Network) TokenAccountBalance(_ context.Context, account solana.PublicKey) (uint64, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	balance, ok := n.Balances[account]
	if !ok {
		return 0, program.ErrAccountNotFound
	}
	return balance, nil
}

// Encode writes layout little-endian and pads it to size.
func Encode(t *testing.T, layout interface{}, size int) []byte {
	buf := new(bytes.Buffer)
	require.NoError(t, binary.Write(buf, binary.LittleEndian, layout))
	data := buf.Bytes()
	require.LessOrEqual(t, len(data), size)
	return append(data, make([]byte, size-len(data))...)
}

func NewKey() solana.PublicKey {
	return solana.NewWallet().PublicKey()
}
