package registry

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/egaotan/solana-registry/program"
	"github.com/gagliardetto/solana-go"
)

var _ program.Clock = (*NetworkState)(nil)

// NetworkState mirrors the latest slot and blockhash. Fee schedules read their clock from it.
type NetworkState struct {
	slot atomic.Uint64

	mu        sync.RWMutex
	blockhash solana.Hash
	updated   time.Time
	now       func() time.Time
}

func NewNetworkState() *NetworkState {
	return &NetworkState{now: time.Now}
}

func (s *NetworkState) SetSlot(slot uint64) {
	s.slot.Store(slot)
	s.mu.Lock()
	s.updated = s.now()
	s.mu.Unlock()
}

func (s *NetworkState) SetBlockhash(hash solana.Hash) {
	s.mu.Lock()
	s.blockhash = hash
	s.updated = s.now()
	s.mu.Unlock()
}

func (s *NetworkState) Slot() uint64 {
	return s.slot.Load()
}

func (s *NetworkState) Blockhash() solana.Hash {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.blockhash
}

// Updated is when the slot or blockhash last changed.
func (s *NetworkState) Updated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updated
}

func (s *NetworkState) Now() time.Time {
	return s.now()
}
