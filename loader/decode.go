package loader

import (
	"context"
	"fmt"

	"github.com/egaotan/solana-registry/backend"
	"github.com/egaotan/solana-registry/meteora"
	"github.com/egaotan/solana-registry/program"
	"github.com/egaotan/solana-registry/pumpfun"
	"github.com/egaotan/solana-registry/pumpswap"
	"github.com/egaotan/solana-registry/raydium"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// Decode builds the pool held by account, picking the decoder from the owner program.
func (l *Loader) Decode(ctx context.Context, account *backend.Account) (program.Pool, error) {
	key, data := account.PubKey, account.Data
	switch account.Owner {
	case program.MeteoraAmm:
		layout, err := meteora.ParseAmmPool(key, data)
		if err != nil {
			return nil, err
		}
		return meteora.NewAmmPool(key, layout, l.registry.Vaults(), l.registry.State()), nil
	case program.MeteoraDammV2:
		layout, err := meteora.ParseDammV2Pool(key, data)
		if err != nil {
			return nil, err
		}
		return meteora.NewDammV2Pool(key, layout), nil
	case program.MeteoraDbc:
		layout, err := meteora.ParseDbcPool(key, data)
		if err != nil {
			return nil, err
		}
		if layout.Discriminator != program.DbcVirtualPoolDiscriminator {
			return nil, fmt.Errorf("dbc account(%s) is not a virtual pool: %w", key, program.ErrInvalidAccount)
		}
		config, err := l.DbcConfig(ctx, layout.Config)
		if err != nil {
			return nil, err
		}
		return meteora.NewDbcPool(key, layout, config), nil
	case program.RaydiumAmmV4:
		layout, err := raydium.ParseAmmV4(key, data)
		if err != nil {
			return nil, err
		}
		return raydium.NewAmmV4Pool(key, layout), nil
	case program.RaydiumCpmm:
		layout, err := raydium.ParseCpmmPool(key, data)
		if err != nil {
			return nil, err
		}
		return raydium.NewCpmmPool(key, layout, l.registry.CpmmFees()), nil
	case program.RaydiumLaunchpad:
		layout, err := raydium.ParseLaunchpadPool(key, data)
		if err != nil {
			return nil, err
		}
		if layout.Discriminator != program.LaunchpadPoolDiscriminator {
			return nil, fmt.Errorf("launchpad account(%s) is not a pool: %w", key, program.ErrInvalidAccount)
		}
		return raydium.NewLaunchpadPool(key, layout, l.registry.PlatformFees()), nil
	case program.PumpSwap:
		layout, err := pumpswap.ParsePool(key, data)
		if err != nil {
			return nil, err
		}
		return pumpswap.NewPool(key, layout), nil
	case program.PumpBondingCurve:
		return nil, fmt.Errorf("bonding curve account(%s) must be loaded by mint: %w", key, program.ErrInvalidAccount)
	}
	return nil, fmt.Errorf("account(%s) owner(%s) is not a pool program: %w", key, account.Owner, program.ErrInvalidAccount)
}

// DbcConfig returns the launch config at key, fetching it once for every pool sharing it.
func (l *Loader) DbcConfig(ctx context.Context, key solana.PublicKey) (*meteora.DbcConfig, error) {
	if config, ok := l.configs.Load(key); ok {
		return config.(*meteora.DbcConfig), nil
	}
	config, err, _ := l.configLoad.Do(key.String(), func() (interface{}, error) {
		if config, ok := l.configs.Load(key); ok {
			return config, nil
		}
		data, err := l.registry.Network().AccountData(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("dbc config(%s) fetch err: %w", key, err)
		}
		layout, err := meteora.ParseDbcConfig(key, data)
		if err != nil {
			return nil, err
		}
		config := meteora.NewDbcConfig(key, layout)
		l.configs.Store(key, config)
		return config, nil
	})
	if err != nil {
		return nil, err
	}
	return config.(*meteora.DbcConfig), nil
}

// LoadBondingCurves loads the pumpfun curves of mints. Completed curves are skipped.
func (l *Loader) LoadBondingCurves(ctx context.Context, mints []solana.PublicKey) (int, error) {
	curves := make([]solana.PublicKey, 0, len(mints))
	for _, mint := range mints {
		curves = append(curves, program.BondingCurveAddress(mint))
	}
	accounts, err := l.source.Accounts(ctx, curves)
	if err != nil {
		return 0, err
	}
	inserted := 0
	for i, account := range accounts {
		if account == nil {
			continue
		}
		layout, err := pumpfun.ParseBondingCurve(account.PubKey, account.Data)
		if err != nil {
			l.log.Debug("decode bonding curve", zap.Stringer("mint", mints[i]), zap.Error(err))
			continue
		}
		curve := pumpfun.NewBondingCurve(mints[i], layout)
		if curve.Complete() {
			continue
		}
		if l.registry.InsertPool(curve) {
			inserted++
		}
	}
	return inserted, nil
}
