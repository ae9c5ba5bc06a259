package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/egaotan/solana-registry/api"
	"github.com/egaotan/solana-registry/backend"
	"github.com/egaotan/solana-registry/config"
	"github.com/egaotan/solana-registry/loader"
	"github.com/egaotan/solana-registry/metrics"
	"github.com/egaotan/solana-registry/registry"
	"github.com/egaotan/solana-registry/store"
	"github.com/egaotan/solana-registry/utils"
	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type service struct {
	cfg      config.Config
	log      *zap.Logger
	gatherer *prometheus.Registry
	backend  *backend.Backend
	registry *registry.Registry
	loader   *loader.Loader
}

func newService(ctx context.Context, cmd *cobra.Command) (*service, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := utils.NewLogger(cfg.LogPath, "registry", cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	node := cfg.Nodes[0]
	if cfg.DetectNodes {
		fastest, rtt, err := backend.DetectNodes(cfg.Nodes, log)
		if err != nil {
			return nil, err
		}
		log.Info("use node", zap.String("node", fastest), zap.Duration("rtt", rtt))
		node = fastest
	}

	gatherer := prometheus.NewRegistry()
	gatherer.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(gatherer, "registry")

	b := backend.NewBackend(ctx, node, log, m)
	reg := registry.New(b, log, m)
	if err := applyFees(reg, cfg); err != nil {
		return nil, err
	}
	return &service{
		cfg:      cfg,
		log:      log,
		gatherer: gatherer,
		backend:  b,
		registry: reg,
		loader:   loader.NewLoader(b, reg, cfg.Workers),
	}, nil
}

func applyFees(reg *registry.Registry, cfg config.Config) error {
	cpmm, err := config.ParseFees(cfg.CpmmFees)
	if err != nil {
		return err
	}
	for key, fee := range cpmm {
		reg.CpmmFees().Set(key, fee)
	}
	platforms, err := config.ParseFees(cfg.PlatformFees)
	if err != nil {
		return err
	}
	for key, fee := range platforms {
		reg.PlatformFees().Set(key, fee)
	}
	return nil
}

// loadFees fills the fee tables before any pool reads them. Failures leave the seeded tables in place.
func (svc *service) loadFees(ctx context.Context) {
	if _, err := svc.loader.LoadCpmmConfigs(ctx); err != nil {
		svc.log.Warn("load cpmm configs", zap.Error(err))
	}
	if _, err := svc.loader.LoadLaunchpadPlatformConfigs(ctx); err != nil {
		svc.log.Warn("load launchpad platform configs", zap.Error(err))
	}
}

func runRegistry(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newService(ctx, cmd)
	if err != nil {
		return err
	}
	defer svc.log.Sync()

	protocols, err := svc.cfg.ParsedProtocols()
	if err != nil {
		return err
	}
	addresses, err := config.ParseKeys(svc.cfg.PoolAddresses)
	if err != nil {
		return err
	}
	mints, err := config.ParseKeys(svc.cfg.CurveMints)
	if err != nil {
		return err
	}

	svc.backend.Start(svc.registry.State(), svc.cfg.StateInterval)
	defer svc.backend.Stop()
	defer stop()

	svc.loadFees(ctx)
	loaded, err := svc.loader.LoadPools(ctx, protocols)
	if err != nil {
		return err
	}
	if len(addresses) > 0 {
		n, err := svc.loader.LoadAddresses(ctx, addresses)
		if err != nil {
			return err
		}
		loaded += n
	}
	if len(mints) > 0 {
		n, err := svc.loader.LoadBondingCurves(ctx, mints)
		if err != nil {
			return err
		}
		loaded += n
	}
	svc.log.Info("pools loaded", zap.Int("pools", loaded), zap.Any("stats", svc.registry.Stats()))
	if svc.cfg.RefreshOnLoad {
		if _, err := svc.loader.RefreshPools(ctx, svc.registry.Pools()); err != nil {
			return err
		}
	}

	if svc.cfg.DB.Enabled() {
		db := svc.cfg.DB
		dao, err := store.NewDao(db.URL, db.Scheme, db.User, db.Passwd)
		if err != nil {
			return err
		}
		s := store.NewStore(ctx, dao, svc.log)
		s.Start()
		s.StartSnapshots(svc.registry, svc.registry.State(), svc.cfg.SnapshotInterval)
		defer s.Stop()
	}

	server := api.NewServer(svc.registry, svc.gatherer, svc.cfg.Listen)
	server.Start()
	<-ctx.Done()
	server.Stop()
	return nil
}

func runPool(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	address, err := solana.PublicKeyFromBase58(args[0])
	if err != nil {
		return fmt.Errorf("invalid pool address: %w", err)
	}
	svc, err := newService(ctx, cmd)
	if err != nil {
		return err
	}
	defer svc.log.Sync()

	if err := svc.backend.UpdateState(svc.registry.State()); err != nil {
		return err
	}
	svc.loadFees(ctx)
	if _, err := svc.loader.LoadAddresses(ctx, []solana.PublicKey{address}); err != nil {
		return err
	}
	pool, ok := svc.registry.PoolByAddress(address)
	if !ok {
		return fmt.Errorf("account(%s) is not a supported pool", address)
	}
	if err := svc.registry.RefreshPool(ctx, pool); err != nil {
		return err
	}
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(api.NewPoolView(pool, svc.registry.State()))
}

func runLegit(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mint, err := solana.PublicKeyFromBase58(args[0])
	if err != nil {
		return fmt.Errorf("invalid mint: %w", err)
	}
	svc, err := newService(ctx, cmd)
	if err != nil {
		return err
	}
	defer svc.log.Sync()

	fmt.Fprintf(cmd.OutOrStdout(), "%s legit: %t\n", mint, svc.registry.IsLegitToken(ctx, mint))
	return nil
}
