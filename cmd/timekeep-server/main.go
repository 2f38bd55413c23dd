package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/BrandonDHaskell/timekeep/internal/attendance"
	"github.com/BrandonDHaskell/timekeep/internal/attendance/service"
	"github.com/BrandonDHaskell/timekeep/internal/attendance/store/sqlite"
	"github.com/BrandonDHaskell/timekeep/internal/attendance/store/vendorsql"
	"github.com/BrandonDHaskell/timekeep/internal/config"
	"github.com/BrandonDHaskell/timekeep/internal/db"
	"github.com/BrandonDHaskell/timekeep/internal/grpcapi"
	"github.com/BrandonDHaskell/timekeep/internal/httpapi"
	"github.com/BrandonDHaskell/timekeep/internal/logging"
	"github.com/BrandonDHaskell/timekeep/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Format = cfg.Logging.Format
	logging.Init(logCfg)
	logger := logging.Component("timekeep-server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Local store
	localDB, err := db.Open(ctx, db.Config{Path: cfg.Store.Path, Env: cfg.Env})
	if err != nil {
		logger.Fatal().Err(err).Msg("open local store")
	}
	defer localDB.Close()
	writer := db.NewWorker(localDB)
	defer writer.Close()

	runStore := sqlite.NewReportRunStore(localDB, writer)
	snapshotStore := sqlite.NewMappingSnapshotStore(localDB, writer)

	// Vendor database
	vendorDB, err := db.OpenVendor(ctx, db.VendorConfig{Driver: cfg.Vendor.Driver, DSN: cfg.Vendor.DSN})
	if err != nil {
		logger.Fatal().Err(err).Msg("open vendor database")
	}
	defer vendorDB.Close()

	if err := maybeSeedVendor(ctx, cfg, vendorDB); err != nil {
		logger.Fatal().Err(err).Msg("seed dev vendor")
	}

	dialect, err := vendorsql.ForDriver(cfg.Vendor.Driver)
	if err != nil {
		logger.Fatal().Err(err).Msg("vendor dialect")
	}
	conn := vendorsql.NewConn(vendorDB, dialect, vendorsql.Options{
		QueryTimeout: cfg.Vendor.QueryTimeout,
		Breaker:      vendorsql.DefaultBreakerConfig(),
	})
	schema := attendance.NewSchemaResolver(vendorsql.NewCatalog(conn))
	vendor := vendorsql.NewStore(conn, schema)

	// Services
	swap := attendance.DefaultSwapConfig()
	swap.SampleLimit = cfg.Attendance.SwapSampleLimit
	swap.MinSamples = cfg.Attendance.SwapMinSamples
	swap.RatioThreshold = cfg.Attendance.SwapRatioThreshold
	mapping := attendance.NewMappingResolver(vendor, snapshotStore, attendance.MappingConfig{
		ManualSwap: cfg.Attendance.InOutSwap,
		TTL:        cfg.Attendance.MappingCacheTTL,
		Swap:       swap,
	})

	reports := service.NewReportService(service.Dependencies{
		Schema:    schema,
		Mapping:   mapping,
		Events:    vendor,
		Directory: vendor,
		Engine:    attendance.NewEngine(cfg.Attendance.Cutoff()),
		Runs:      runStore,
		Snapshots: snapshotStore,
	})

	pruner := service.NewRunPruner(runStore, service.PrunerConfig{
		RetentionDays: cfg.Retention.ReportRunDays,
		IntervalHours: cfg.Retention.PruneIntervalHours,
	}, logging.Logger())

	// HTTP
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:            logging.Logger(),
		Addr:              cfg.Server.HTTPAddr,
		Reports:           reports,
		Ready:             schema.Resolved,
		CORSOrigins:       cfg.Server.CORSOrigins,
		RateLimitRequests: cfg.Server.RateLimitRequests,
		RateLimitWindow:   cfg.Server.RateLimitWindow,
	})

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{})
	tree.AddAPIService(supervisor.NewHTTPService(srv, 0))
	if cfg.Server.GRPCAddr != "" {
		tree.AddAPIService(grpcapi.NewServer(grpcapi.Config{
			Addr:  cfg.Server.GRPCAddr,
			Ready: schema.Resolved,
		}, logging.Logger()))
	}
	tree.AddBackgroundService(supervisor.NewWarmupService("schema-warmup", 0, func(ctx context.Context) error {
		_, err := schema.Get(ctx)
		return err
	}))
	tree.AddBackgroundService(pruner)

	logger.Info().
		Str("http_addr", cfg.Server.HTTPAddr).
		Str("grpc_addr", cfg.Server.GRPCAddr).
		Str("vendor_driver", cfg.Vendor.Driver).
		Str("env", cfg.Env).
		Msg("starting")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("supervisor stopped")
	}
	logger.Info().Msg("shut down")
}

// maybeSeedVendor fills a SQLite vendor file with demo data in dev.
func maybeSeedVendor(ctx context.Context, cfg config.Config, vendorDB *sql.DB) error {
	if !cfg.DevSeedVendor || cfg.Env != "dev" || cfg.Vendor.Driver != "sqlite" {
		return nil
	}
	if err := db.SeedDevVendor(ctx, vendorDB, db.SeedVendorOptions{Days: 14}); err != nil {
		return err
	}
	logging.Info().Str("component", "db").Msg("dev vendor seeded")
	return nil
}
