package store

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/egaotan/solana-registry/program"
	"go.uber.org/zap"
)

// Saver persists a batch of snapshots.
type Saver interface {
	SaveSnapshots(snapshots []*PriceSnapshot) error
}

// PoolSource lists the pools to snapshot.
type PoolSource interface {
	Pools() []program.Pool
}

// Store writes price snapshots in the background so the refresh path never waits on the database.
type Store struct {
	ctx          context.Context
	log          *zap.Logger
	saver        Saver
	snapshotChan chan []*PriceSnapshot
	dropped      atomic.Uint64
	wg           sync.WaitGroup
}

func NewStore(ctx context.Context, saver Saver, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		ctx:          ctx,
		log:          log.Named("store"),
		saver:        saver,
		snapshotChan: make(chan []*PriceSnapshot, 32),
	}
}

func (s *Store) Start() {
	s.wg.Add(1)
	go s.store()
}

// Stop waits for the writer to flush what is queued. The context must be done first.
func (s *Store) Stop() {
	s.wg.Wait()
}

// Record queues updates observed at slot. It returns false and drops them when the queue is full.
func (s *Store) Record(slot uint64, updates []*program.MarketUpdate) bool {
	snapshots := make([]*PriceSnapshot, 0, len(updates))
	for _, update := range updates {
		snapshots = append(snapshots, NewPriceSnapshot(slot, update))
	}
	select {
	case s.snapshotChan <- snapshots:
		return true
	default:
		s.dropped.Add(1)
		return false
	}
}

func (s *Store) Dropped() uint64 {
	return s.dropped.Load()
}

func (s *Store) save(snapshots []*PriceSnapshot) {
	if err := s.saver.SaveSnapshots(snapshots); err != nil {
		s.log.Warn("save snapshots", zap.Int("rows", len(snapshots)), zap.Error(err))
	}
}

func (s *Store) store() {
	defer s.wg.Done()
	for {
		select {
		case snapshots := <-s.snapshotChan:
			s.save(snapshots)
		case <-s.ctx.Done():
			for {
				select {
				case snapshots := <-s.snapshotChan:
					s.save(snapshots)
				default:
					s.log.Info("store exit", zap.Uint64("dropped", s.Dropped()))
					return
				}
			}
		}
	}
}

// SnapshotPools records every pool of source once.
func (s *Store) SnapshotPools(source PoolSource, clock program.Clock) bool {
	pools := source.Pools()
	updates := make([]*program.MarketUpdate, 0, len(pools))
	for _, pool := range pools {
		updates = append(updates, program.Snapshot(pool))
	}
	return s.Record(clock.Slot(), updates)
}

// StartSnapshots records every pool of source each interval until the context is done.
func (s *Store) StartSnapshots(source PoolSource, clock program.Clock, interval time.Duration) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if !s.SnapshotPools(source, clock) {
					s.log.Warn("snapshot queue is full")
				}
			case <-s.ctx.Done():
				return
			}
		}
	}()
}
