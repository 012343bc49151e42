package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"seasonmarket/config"
	"seasonmarket/native/market"
	"seasonmarket/native/rng"
	"seasonmarket/observability/logging"
	"seasonmarket/rpc"
	"seasonmarket/state"
	"seasonmarket/storage"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./config.toml", "path to the marketd configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logging.Setup("marketd", cfg.Environment)

	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "market"))
	if err != nil {
		log.Error("failed to open database", slog.String("dataDir", cfg.DataDir), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	ledger := state.NewLedger(db)

	oracleSigner, err := config.DecodeAddress(cfg.OracleSigner)
	if err != nil {
		log.Error("invalid oracle signer", slog.String("error", err.Error()))
		os.Exit(1)
	}
	gateway := rng.NewGateway(oracleSigner)

	engine := market.NewEngine(ledger, gateway)
	if cfg.RequireRegistration {
		engine.SetRegistry(ledger)
	}

	if err := initSeason(engine, ledger, cfg, log); err != nil {
		log.Error("failed to initialize season", slog.String("error", err.Error()))
		os.Exit(1)
	}

	server := rpc.NewServer(ledger, engine, gateway, log, cfg.AdminToken)
	httpServer := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("marketd listening", slog.String("address", cfg.ListenAddress))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("shutdown failed", slog.String("error", err.Error()))
	}
}

// initSeason installs the configured season parameters on first boot. An
// already-initialized ledger keeps its stored season untouched.
func initSeason(engine *market.Engine, ledger *state.Ledger, cfg *config.Config, log *slog.Logger) error {
	season, err := cfg.MarketSeason()
	if err != nil {
		return err
	}
	if err := engine.InitSeason(ledger, season); err != nil {
		if errors.Is(err, market.ErrAlreadyInitialized) {
			log.Info("season already initialized, keeping stored parameters")
			return nil
		}
		return err
	}
	log.Info("season initialized",
		slog.Int64("startTime", season.StartTime),
		slog.Int64("endTime", season.EndTime),
	)
	return nil
}
