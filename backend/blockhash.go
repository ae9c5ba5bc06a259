package backend

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

func (backend *Backend) refreshState(state StateMirror, interval time.Duration) {
	defer backend.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	if err := backend.UpdateState(state); err != nil {
		backend.log.Warn("update network state", zap.Error(err))
	}
	for {
		select {
		case <-ticker.C:
			if err := backend.UpdateState(state); err != nil {
				backend.log.Warn("update network state", zap.Error(err))
			}
		case <-backend.ctx.Done():
			backend.log.Info("network state refresher exit")
			return
		}
	}
}

// UpdateState fetches the current slot and the latest blockhash once.
func (backend *Backend) UpdateState(state StateMirror) error {
	slot, err := backend.rpcClient.GetSlot(backend.ctx, backend.commitment)
	if err != nil {
		return fmt.Errorf("get slot err: %w", err)
	}
	state.SetSlot(slot)
	backend.metrics.SetSlot(slot)
	result, err := backend.rpcClient.GetLatestBlockhash(backend.ctx, backend.commitment)
	if err != nil {
		return fmt.Errorf("get latest blockhash err: %w", err)
	}
	state.SetBlockhash(result.Value.Blockhash)
	backend.log.Debug("network state", zap.Uint64("slot", slot), zap.Stringer("blockhash", result.Value.Blockhash))
	return nil
}
