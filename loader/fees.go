package loader

import (
	"context"
	"fmt"
	"time"

	"github.com/egaotan/solana-registry/program"
	"github.com/egaotan/solana-registry/raydium"
	"go.uber.org/zap"
)

// LoadCpmmConfigs fills the CPMM fee table from every config account of the program.
func (l *Loader) LoadCpmmConfigs(ctx context.Context) (int, error) {
	started := time.Now()
	accounts, err := l.source.ProgramAccounts(ctx, program.RaydiumCpmm, uint64(raydium.CpmmConfigLayoutSize))
	if err != nil {
		return 0, fmt.Errorf("load cpmm configs err: %w", err)
	}
	table := l.registry.CpmmFees()
	loaded := 0
	for _, account := range accounts {
		layout, err := raydium.ParseCpmmConfig(account.PubKey, account.Data)
		if err != nil {
			l.log.Debug("decode cpmm config", zap.Stringer("account", account.PubKey), zap.Error(err))
			continue
		}
		table.Set(account.PubKey, layout.ConfigFee())
		loaded++
	}
	l.registry.Metrics().Loaded(table.Name(), loaded, started)
	l.log.Info("cpmm configs", zap.Int("loaded", loaded), zap.Int("table", table.Len()))
	return loaded, nil
}

// LoadLaunchpadPlatformConfigs fills the launchpad platform fee table.
func (l *Loader) LoadLaunchpadPlatformConfigs(ctx context.Context) (int, error) {
	started := time.Now()
	accounts, err := l.source.ProgramAccounts(ctx, program.RaydiumLaunchpad, uint64(raydium.LaunchpadPlatformLayoutSize))
	if err != nil {
		return 0, fmt.Errorf("load launchpad platform configs err: %w", err)
	}
	table := l.registry.PlatformFees()
	loaded := 0
	for _, account := range accounts {
		layout, err := raydium.ParseLaunchpadPlatform(account.PubKey, account.Data)
		if err != nil {
			l.log.Debug("decode launchpad platform", zap.Stringer("account", account.PubKey), zap.Error(err))
			continue
		}
		table.Set(account.PubKey, layout.PlatformFee())
		loaded++
	}
	l.registry.Metrics().Loaded(table.Name(), loaded, started)
	l.log.Info("launchpad platform configs", zap.Int("loaded", loaded))
	return loaded, nil
}
