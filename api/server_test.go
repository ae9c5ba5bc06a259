package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/egaotan/solana-registry/metrics"
	"github.com/egaotan/solana-registry/program"
	"github.com/egaotan/solana-registry/program/programtest"
	"github.com/egaotan/solana-registry/pumpswap"
	"github.com/egaotan/solana-registry/registry"
	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	server  *Server
	network *programtest.Network
	reg     *registry.Registry
	pool    *pumpswap.Pool
}

func newFixture(t *testing.T) *fixture {
	network := programtest.NewNetwork()
	gatherer := prometheus.NewRegistry()
	reg := registry.New(network, nil, metrics.NewMetrics(gatherer, "registry"))
	layout := pumpswap.PoolLayout{
		Creator:               programtest.NewKey(),
		BaseMint:              programtest.NewKey(),
		QuoteMint:             program.SOL,
		LpMint:                programtest.NewKey(),
		PoolBaseTokenAccount:  programtest.NewKey(),
		PoolQuoteTokenAccount: programtest.NewKey(),
	}
	key := programtest.NewKey()
	parsed, err := pumpswap.ParsePool(key, programtest.Encode(t, &layout, pumpswap.PoolLayoutSize))
	require.NoError(t, err)
	pool := pumpswap.NewPool(key, parsed)
	reg.InsertPool(pool)
	return &fixture{
		server:  NewServer(reg, gatherer, ":0"),
		network: network,
		reg:     reg,
		pool:    pool,
	}
}

func (f *fixture) get(t *testing.T, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodGet, path, nil)
	require.NoError(t, err)
	f.server.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	f.reg.State().SetSlot(42)
	w := f.get(t, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","slot":42}`, w.Body.String())
}

func TestPair(t *testing.T) {
	f := newFixture(t)
	w := f.get(t, "/api/pairs/"+program.SOL.String()+"/"+f.pool.TokenA().String())
	require.Equal(t, http.StatusOK, w.Code)
	views := make([]PoolView, 0)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, f.pool.Address().String(), views[0].Address)
	assert.Equal(t, "pumpswap", views[0].Protocol)
	require.NotNil(t, views[0].TotalSwapFee)
	assert.Equal(t, "0.003", views[0].TotalSwapFee.String())

	w = f.get(t, "/api/pairs/"+program.SOL.String()+"/"+program.USDC.String())
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.get(t, "/api/pairs/bad/"+program.USDC.String())
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPoolRefresh(t *testing.T) {
	f := newFixture(t)
	f.network.SetBalance(f.pool.VaultA(), 1_000_000)
	f.network.SetBalance(f.pool.VaultB(), 4_000_000)

	w := f.get(t, "/api/pools/"+f.pool.VaultA().String())
	require.Equal(t, http.StatusOK, w.Code)
	view := PoolView{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, uint64(0), view.TokenAAmount)

	w = f.get(t, "/api/pools/"+f.pool.Address().String()+"?refresh=true")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, uint64(1_000_000), view.TokenAAmount)
	assert.Equal(t, uint64(4_000_000), view.TokenBAmount)
	assert.Equal(t, "4", view.PriceBOverA.String())
	assert.Equal(t, "0.25", view.PriceAOverB.String())

	w = f.get(t, "/api/pools/"+programtest.NewKey().String())
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPoolRefreshFailure(t *testing.T) {
	f := newFixture(t)
	w := f.get(t, "/api/pools/"+f.pool.Address().String()+"?refresh=true")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestLegit(t *testing.T) {
	f := newFixture(t)
	mint := programtest.NewKey()
	metadata := append([]byte{4}, program.RaydiumLaunchpadAuthority.Bytes()...)
	f.network.SetAccount(program.MetadataAddress(mint), metadata)

	w := f.get(t, "/api/tokens/"+mint.String()+"/legit")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"mint":"`+mint.String()+`","legit":true}`, w.Body.String())

	other := programtest.NewKey()
	w = f.get(t, "/api/tokens/"+other.String()+"/legit")
	assert.JSONEq(t, `{"mint":"`+other.String()+`","legit":false}`, w.Body.String())
}

func TestLegitIgnoresClientCancel(t *testing.T) {
	f := newFixture(t)
	mint := programtest.NewKey()
	metadata := append([]byte{4}, program.PumpBondingCurveAuthority.Bytes()...)
	f.network.SetAccount(program.MetadataAddress(mint), metadata)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "/api/tokens/"+mint.String()+"/legit", nil)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"mint":"`+mint.String()+`","legit":true}`, w.Body.String())
	assert.True(t, f.reg.IsLegitToken(context.Background(), mint))
	assert.Equal(t, 1, f.network.Fetches(program.MetadataAddress(mint)))
}

func TestNeighborsAndState(t *testing.T) {
	f := newFixture(t)
	w := f.get(t, "/api/tokens/"+program.SOL.String()+"/neighbors")
	require.Equal(t, http.StatusOK, w.Code)
	body := struct {
		Neighbors []string `json:"neighbors"`
	}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{f.pool.TokenA().String()}, body.Neighbors)

	hash := solana.Hash(programtest.NewKey())
	f.reg.State().SetSlot(7)
	f.reg.State().SetBlockhash(hash)
	w = f.get(t, "/api/state")
	require.Equal(t, http.StatusOK, w.Code)
	state := StateView{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Equal(t, uint64(7), state.Slot)
	assert.Equal(t, hash.String(), state.Blockhash)
	assert.Equal(t, 3, state.Stats.Addresses)
	assert.Equal(t, 1, state.Stats.Pairs)
}

func TestMetrics(t *testing.T) {
	f := newFixture(t)
	w := f.get(t, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `registry_pools_inserted_total{protocol="pumpswap"} 1`)
}
