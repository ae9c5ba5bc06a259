package backend

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/egaotan/solana-registry/program"
	"github.com/egaotan/solana-registry/program/programtest"
	"github.com/egaotan/solana-registry/spltoken"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type nodeAccount struct {
	owner solana.PublicKey
	data  []byte
}

// fakeNode answers the json rpc methods the backend calls.
type fakeNode struct {
	t         *testing.T
	mu        sync.Mutex
	accounts  map[solana.PublicKey]nodeAccount
	calls     map[string]int
	slot      uint64
	blockhash solana.Hash
}

func newFakeNode(t *testing.T) (*fakeNode, *httptest.Server) {
	node := &fakeNode{
		t:        t,
		accounts: make(map[solana.PublicKey]nodeAccount),
		calls:    make(map[string]int),
	}
	server := httptest.NewServer(http.HandlerFunc(node.serve))
	t.Cleanup(server.Close)
	return node, server
}

func (n *fakeNode) set(key, owner solana.PublicKey, data []byte) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.accounts[key] = nodeAccount{owner: owner, data: data}
}

func (n *fakeNode) count(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[method]
}

func accountJSON(account nodeAccount) map[string]interface{} {
	return map[string]interface{}{
		"lamports":   1,
		"owner":      account.owner.String(),
		"data":       []string{base64.StdEncoding.EncodeToString(account.data), "base64"},
		"executable": false,
		"rentEpoch":  0,
	}
}

func (n *fakeNode) lookup(raw json.RawMessage) interface{} {
	var key string
	require.NoError(n.t, json.Unmarshal(raw, &key))
	account, ok := n.accounts[solana.MustPublicKeyFromBase58(key)]
	if !ok {
		return nil
	}
	return accountJSON(account)
}

func (n *fakeNode) serve(w http.ResponseWriter, r *http.Request) {
	req := rpcRequest{}
	require.NoError(n.t, json.NewDecoder(r.Body).Decode(&req))
	n.mu.Lock()
	n.calls[req.Method]++
	var result interface{}
	switch req.Method {
	case "getAccountInfo":
		result = map[string]interface{}{"context": map[string]uint64{"slot": n.slot}, "value": n.lookup(req.Params[0])}
	case "getMultipleAccounts":
		var keys []json.RawMessage
		require.NoError(n.t, json.Unmarshal(req.Params[0], &keys))
		values := make([]interface{}, 0, len(keys))
		for _, key := range keys {
			values = append(values, n.lookup(key))
		}
		result = map[string]interface{}{"context": map[string]uint64{"slot": n.slot}, "value": values}
	case "getProgramAccounts":
		var owner string
		require.NoError(n.t, json.Unmarshal(req.Params[0], &owner))
		opts := struct {
			Filters []struct {
				DataSize uint64 `json:"dataSize"`
			} `json:"filters"`
		}{}
		require.NoError(n.t, json.Unmarshal(req.Params[1], &opts))
		values := make([]interface{}, 0)
		for key, account := range n.accounts {
			if account.owner.String() != owner {
				continue
			}
			if len(opts.Filters) > 0 && uint64(len(account.data)) != opts.Filters[0].DataSize {
				continue
			}
			values = append(values, map[string]interface{}{"pubkey": key.String(), "account": accountJSON(account)})
		}
		result = values
	case "getSlot":
		result = n.slot
	case "getLatestBlockhash":
		result = map[string]interface{}{
			"context": map[string]uint64{"slot": n.slot},
			"value":   map[string]interface{}{"blockhash": n.blockhash.String(), "lastValidBlockHeight": n.slot + 150},
		}
	default:
		n.t.Errorf("unexpected method %s", req.Method)
	}
	n.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(n.t, json.NewEncoder(w).Encode(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      req.ID,
		"result":  result,
	}))
}

func newTestBackend(t *testing.T) (*Backend, *fakeNode) {
	node, server := newFakeNode(t)
	return NewBackend(context.Background(), server.URL, nil, nil), node
}

func TestAccountData(t *testing.T) {
	backend, node := newTestBackend(t)
	key := programtest.NewKey()
	node.set(key, program.MeteoraDammV2, []byte{1, 2, 3})

	data, err := backend.AccountData(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)

	_, err = backend.AccountData(context.Background(), programtest.NewKey())
	require.ErrorIs(t, err, program.ErrAccountNotFound)
}

func TestTokenAccountBalanceAndSupply(t *testing.T) {
	backend, node := newTestBackend(t)
	mint, account := programtest.NewKey(), programtest.NewKey()
	node.set(account, program.Token, programtest.Encode(t, &spltoken.UserLayout{Mint: mint, Amount: 42_000}, spltoken.TokenLayoutSize))
	node.set(mint, program.Token, programtest.Encode(t, &spltoken.TokenLayout{Supply: 7_000_000, Decimals: 6}, spltoken.MintLayoutSize))

	balance, err := backend.TokenAccountBalance(context.Background(), account)
	require.NoError(t, err)
	assert.Equal(t, uint64(42_000), balance)

	supply, err := backend.TokenSupply(context.Background(), mint)
	require.NoError(t, err)
	assert.Equal(t, uint64(7_000_000), supply)

	_, err = backend.TokenAccountBalance(context.Background(), mint)
	require.Error(t, err)
}

func TestAccountsBatches(t *testing.T) {
	backend, node := newTestBackend(t)
	keys := make([]solana.PublicKey, 0, 250)
	for i := 0; i < 250; i++ {
		key := programtest.NewKey()
		keys = append(keys, key)
		if i%50 != 0 {
			node.set(key, program.Token, []byte{byte(i)})
		}
	}

	accounts, err := backend.Accounts(context.Background(), keys)
	require.NoError(t, err)
	require.Len(t, accounts, 250)
	assert.Equal(t, 3, node.count("getMultipleAccounts"))
	for i, account := range accounts {
		if i%50 == 0 {
			assert.Nil(t, account)
			continue
		}
		require.NotNil(t, account)
		assert.Equal(t, keys[i], account.PubKey)
		assert.Equal(t, []byte{byte(i)}, account.Data)
	}
}

func TestProgramAccountsFiltersSize(t *testing.T) {
	backend, node := newTestBackend(t)
	match, short, other := programtest.NewKey(), programtest.NewKey(), programtest.NewKey()
	node.set(match, program.PumpSwap, make([]byte, 300))
	node.set(short, program.PumpSwap, make([]byte, 200))
	node.set(other, program.RaydiumCpmm, make([]byte, 300))

	accounts, err := backend.ProgramAccounts(context.Background(), program.PumpSwap, 300)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, match, accounts[0].PubKey)
	assert.Equal(t, program.PumpSwap, accounts[0].Owner)
}

type stateMirror struct {
	slot      uint64
	blockhash solana.Hash
}

func (m *stateMirror) SetSlot(slot uint64) {
	m.slot = slot
}

func (m *stateMirror) SetBlockhash(hash solana.Hash) {
	m.blockhash = hash
}

func TestUpdateState(t *testing.T) {
	backend, node := newTestBackend(t)
	node.slot = 1234
	node.blockhash = solana.Hash(programtest.NewKey())

	mirror := &stateMirror{}
	require.NoError(t, backend.UpdateState(mirror))
	assert.Equal(t, uint64(1234), mirror.slot)
	assert.Equal(t, node.blockhash, mirror.blockhash)
}

func TestStartStopsWithContext(t *testing.T) {
	node, server := newFakeNode(t)
	node.slot = 9
	ctx, cancel := context.WithCancel(context.Background())
	backend := NewBackend(ctx, server.URL, nil, nil)
	mirror := &syncMirror{}
	backend.Start(mirror, 10*time.Millisecond)
	require.Eventually(t, func() bool { return mirror.Slot() == 9 }, time.Second, 5*time.Millisecond)
	cancel()
	backend.Stop()
}

type syncMirror struct {
	mu   sync.Mutex
	slot uint64
}

func (m *syncMirror) SetSlot(slot uint64) {
	m.mu.Lock()
	m.slot = slot
	m.mu.Unlock()
}

func (m *syncMirror) SetBlockhash(solana.Hash) {}

func (m *syncMirror) Slot() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slot
}
