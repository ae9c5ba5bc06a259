package raydium

import (
	"sync"

	"github.com/egaotan/solana-registry/program"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// KnownCpmmConfigs seeds the CPMM fee table before the config accounts are loaded.
var KnownCpmmConfigs = map[solana.PublicKey]uint64{
	solana.MustPublicKeyFromBase58("B5u5x9S5pyaJdonf7bXUiEnBfEXsJWhNxXfLGAbRFtg2"): 15_000_000,
	solana.MustPublicKeyFromBase58("BgxH5ifebqHDuiADWKhLjXGP5hWZeZLoCdmeWJLkRqLP"): 3_000_000,
	solana.MustPublicKeyFromBase58("BhH6HphjBKXu2PkUc2aw3xEMdUvK14NXxE5LbNWZNZAA"): 5_000_000,
	solana.MustPublicKeyFromBase58("D4FPEruKEHrG5TenZ2mpDGEfu1iUvTiqBxvpU8HLBvC2"): 2_500_000,
	solana.MustPublicKeyFromBase58("2fGXL8uhqxJ4tpgtosHZXT4zcQap6j62z3bMDxdkMvy5"): 20_000_000,
	solana.MustPublicKeyFromBase58("G95xxie3XbkCqtE39GgQ9Ggc7xBC8Uceve7HFDEFApkc"): 10_000_000,
	solana.MustPublicKeyFromBase58("C7Cx2pMLtjybS3mDKSfsBj4zQ3PRZGkKt7RCYTTbCSx2"): 4_000_000,
}

// FeeTable maps a config account to its fee numerator. Unknown configs are charged the full fee.
type FeeTable struct {
	name   string
	log    *zap.Logger
	mu     sync.RWMutex
	fees   map[solana.PublicKey]uint64
	missed map[solana.PublicKey]bool
}

func NewFeeTable(name string, log *zap.Logger) *FeeTable {
	if log == nil {
		log = zap.NewNop()
	}
	return &FeeTable{
		name:   name,
		log:    log,
		fees:   make(map[solana.PublicKey]uint64),
		missed: make(map[solana.PublicKey]bool),
	}
}

func NewCpmmFeeTable(log *zap.Logger) *FeeTable {
	table := NewFeeTable("cpmm_config", log)
	for config, fee := range KnownCpmmConfigs {
		table.Set(config, fee)
	}
	return table
}

func NewPlatformFeeTable(log *zap.Logger) *FeeTable {
	return NewFeeTable("launchpad_platform", log)
}

func (t *FeeTable) Name() string {
	return t.name
}

func (t *FeeTable) Set(config solana.PublicKey, fee uint64) {
	t.mu.Lock()
	t.fees[config] = fee
	delete(t.missed, config)
	t.mu.Unlock()
}

func (t *FeeTable) Get(config solana.PublicKey) (uint64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	fee, ok := t.fees[config]
	return fee, ok
}

func (t *FeeTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.fees)
}

// Fee returns the fee of config, FeeDenominator when it is unknown. Each unknown config is logged once.
func (t *FeeTable) Fee(config solana.PublicKey) uint64 {
	if fee, ok := t.Get(config); ok {
		return fee
	}
	t.mu.Lock()
	logged := t.missed[config]
	t.missed[config] = true
	t.mu.Unlock()
	if !logged {
		t.log.Warn("unknown fee config, charging the full fee", zap.String("table", t.name), zap.Stringer("config", config))
	}
	return program.FeeDenominator
}
