package loader

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/egaotan/solana-registry/backend"
	"github.com/egaotan/solana-registry/meteora"
	"github.com/egaotan/solana-registry/program"
	"github.com/egaotan/solana-registry/pumpswap"
	"github.com/egaotan/solana-registry/raydium"
	"github.com/egaotan/solana-registry/registry"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const DefaultWorkers = 8

// ProgramAccountSizes are the pool account sizes scanned with a data size filter.
// Protocols missing here are loaded by address.
var ProgramAccountSizes = map[program.Protocol]uint64{
	program.ProtocolMeteoraAmm:    uint64(meteora.AmmPoolLayoutSize),
	program.ProtocolMeteoraDammV2: uint64(meteora.DammV2PoolLayoutSize),
	program.ProtocolRaydiumAmmV4:  uint64(raydium.AmmV4LayoutSize),
	program.ProtocolRaydiumCpmm:   uint64(raydium.CpmmPoolLayoutSize),
	program.ProtocolPumpSwap:      uint64(pumpswap.PoolLayoutSize),
}

// AccountSource is the part of the backend the loader reads from.
type AccountSource interface {
	ProgramAccounts(ctx context.Context, program solana.PublicKey, dataSize uint64) ([]*backend.Account, error)
	Accounts(ctx context.Context, pubkeys []solana.PublicKey) ([]*backend.Account, error)
}

// Loader decodes pool accounts and inserts them into the registry.
type Loader struct {
	source   AccountSource
	registry *registry.Registry
	workers  int
	log      *zap.Logger

	configs    sync.Map
	configLoad singleflight.Group
}

func NewLoader(source AccountSource, reg *registry.Registry, workers int) *Loader {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Loader{
		source:   source,
		registry: reg,
		workers:  workers,
		log:      reg.Logger().Named("loader"),
	}
}

// LoadPools scans the programs of protocols concurrently, then decodes and inserts every account.
func (l *Loader) LoadPools(ctx context.Context, protocols []program.Protocol) (int, error) {
	results := make([][]*backend.Account, len(protocols))
	g, gctx := errgroup.WithContext(ctx)
	for i, protocol := range protocols {
		size, ok := ProgramAccountSizes[protocol]
		if !ok {
			return 0, fmt.Errorf("protocol(%s) has no fixed account size, load it by address", protocol)
		}
		i, protocol := i, protocol
		g.Go(func() error {
			started := time.Now()
			accounts, err := l.source.ProgramAccounts(gctx, protocol.ProgramID(), size)
			if err != nil {
				return fmt.Errorf("load %s err: %w", protocol, err)
			}
			l.registry.Metrics().Loaded(protocol.String(), len(accounts), started)
			l.log.Info("program accounts", zap.Stringer("protocol", protocol), zap.Int("accounts", len(accounts)),
				zap.Duration("elapsed", time.Since(started)))
			results[i] = accounts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	accounts := make([]*backend.Account, 0)
	for _, result := range results {
		accounts = append(accounts, result...)
	}
	return l.InsertAccounts(ctx, accounts)
}

// InsertAccounts splits accounts into one chunk per worker and decodes the chunks in parallel.
// Accounts that fail to decode are logged and skipped.
func (l *Loader) InsertAccounts(ctx context.Context, accounts []*backend.Account) (int, error) {
	inserted := atomic.Int64{}
	chunk := (len(accounts) + l.workers - 1) / l.workers
	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < len(accounts); start += chunk {
		end := start + chunk
		if end > len(accounts) {
			end = len(accounts)
		}
		part := accounts[start:end]
		g.Go(func() error {
			for _, account := range part {
				if err := gctx.Err(); err != nil {
					return err
				}
				if account == nil {
					continue
				}
				pool, err := l.Decode(gctx, account)
				if err != nil {
					l.log.Debug("decode account", zap.Stringer("account", account.PubKey), zap.Error(err))
					continue
				}
				if l.registry.InsertPool(pool) {
					inserted.Add(1)
				}
			}
			return nil
		})
	}
	err := g.Wait()
	return int(inserted.Load()), err
}

// LoadAddresses decodes the pools at keys, whatever protocol owns them.
func (l *Loader) LoadAddresses(ctx context.Context, keys []solana.PublicKey) (int, error) {
	accounts, err := l.source.Accounts(ctx, keys)
	if err != nil {
		return 0, err
	}
	return l.InsertAccounts(ctx, accounts)
}

// RefreshPools reloads the live state of pools with at most workers refreshes in flight.
// Pools that fail keep their decoded state and are counted as failed, only a cancelled ctx is an error.
func (l *Loader) RefreshPools(ctx context.Context, pools []program.Pool) (int, error) {
	refreshed := atomic.Int64{}
	failed := atomic.Int64{}
	started := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for _, pool := range pools {
		if err := gctx.Err(); err != nil {
			break
		}
		pool := pool
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := l.registry.RefreshPool(gctx, pool); err != nil {
				failed.Add(1)
				return nil
			}
			refreshed.Add(1)
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	l.log.Info("pools refreshed", zap.Int64("refreshed", refreshed.Load()), zap.Int64("failed", failed.Load()),
		zap.Duration("elapsed", time.Since(started)))
	return int(refreshed.Load()), err
}
