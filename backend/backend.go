package backend

import (
	"context"
	"sync"
	"time"

	"github.com/egaotan/solana-registry/metrics"
	"github.com/egaotan/solana-registry/program"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

var _ program.Network = (*Backend)(nil)

// StateMirror receives the slot and blockhash polled from the node.
type StateMirror interface {
	SetSlot(slot uint64)
	SetBlockhash(hash solana.Hash)
}

// Backend is the rpc view of the chain shared by the loader and the pool refreshers.
type Backend struct {
	log        *zap.Logger
	metrics    *metrics.Metrics
	rpcClient  *rpc.Client
	endpoint   string
	commitment rpc.CommitmentType
	ctx        context.Context
	wg         sync.WaitGroup
}

func NewBackend(ctx context.Context, endpoint string, log *zap.Logger, m *metrics.Metrics) *Backend {
	if log == nil {
		log = zap.NewNop()
	}
	return &Backend{
		log:        log.Named("backend"),
		metrics:    m,
		rpcClient:  rpc.New(endpoint),
		endpoint:   endpoint,
		commitment: rpc.CommitmentConfirmed,
		ctx:        ctx,
	}
}

func (backend *Backend) Endpoint() string {
	return backend.endpoint
}

// Start polls the slot and the latest blockhash into state every interval until the context is done.
func (backend *Backend) Start(state StateMirror, interval time.Duration) {
	backend.wg.Add(1)
	go backend.refreshState(state, interval)
}

func (backend *Backend) Stop() {
	backend.wg.Wait()
}
