package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tokenbay/marketplace-backend/internal/adapter/custody"
	"github.com/tokenbay/marketplace-backend/internal/adapter/feed"
	"github.com/tokenbay/marketplace-backend/internal/adapter/httpapi"
	"github.com/tokenbay/marketplace-backend/internal/adapter/payment"
	"github.com/tokenbay/marketplace-backend/internal/adapter/store/memory"
	"github.com/tokenbay/marketplace-backend/internal/adapter/store/postgres"
	"github.com/tokenbay/marketplace-backend/internal/adapter/store/sqlite"
	"github.com/tokenbay/marketplace-backend/internal/config"
	"github.com/tokenbay/marketplace-backend/internal/domain"
	"github.com/tokenbay/marketplace-backend/internal/obs"
	"github.com/tokenbay/marketplace-backend/internal/usecase/marketplace"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	obs.InitLogger()

	// 1. Load configuration
	var cfg *config.Config
	if *configPath != "" {
		loaded, err := config.LoadAndValidate(*configPath)
		if err != nil {
			obs.Logger.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	// 2. Open the market store
	ctx := context.Background()
	store, closeStore, err := openStore(ctx, cfg.Storage)
	if err != nil {
		obs.Logger.Error("failed to open market store", "error", err, "driver", cfg.Storage.Driver)
		os.Exit(1)
	}
	defer closeStore()

	// 3. Wire collaborators and the event feed
	registry := custody.NewRegistry()
	payments := payment.NewLedger()
	hub := feed.NewHub(cfg.Feed.ClientBuffer)
	events := feed.Fanout{hub, feed.NewLogPublisher(obs.Logger)}

	// 4. Initialize the marketplace service
	market := marketplace.NewService(store, registry, payments, events,
		domain.Address(cfg.Market.OperatorAddress))

	// 5. Start the HTTP server
	api := httpapi.NewAPI(market, hub, registry)
	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: httpapi.NewRouter(api, cfg.Server.AuthToken),
	}

	go func() {
		obs.Logger.Info("marketplace server listening",
			"addr", cfg.Server.Addr,
			"storage", cfg.Storage.Driver,
			"operator", cfg.Market.OperatorAddress,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			obs.Logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	waitForShutdown(server)
}

// openStore selects the market store backend from configuration.
func openStore(ctx context.Context, cfg config.StorageConfig) (domain.MarketStore, func(), error) {
	switch cfg.Driver {
	case "postgres":
		db, err := postgres.NewDB(cfg.Postgres.ConnString())
		if err != nil {
			return nil, nil, err
		}
		if err := db.InitSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return postgres.NewMarketStore(db), func() { db.Close() }, nil
	case "sqlite":
		st, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { st.Close() }, nil
	default:
		return memory.New(), func() {}, nil
	}
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(server *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	obs.Logger.Info("shutting down", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		obs.Logger.Error("graceful shutdown failed", "error", err)
	}
	obs.Logger.Info("server stopped")
}
