package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	httpapi "github.com/foodchain/foodchain/internal/api/http"
	"github.com/foodchain/foodchain/internal/application/inspection"
	"github.com/foodchain/foodchain/internal/application/market"
	"github.com/foodchain/foodchain/internal/config"
	"github.com/foodchain/foodchain/internal/domain/event"
	"github.com/foodchain/foodchain/internal/domain/ledger"
	"github.com/foodchain/foodchain/internal/domain/party"
	"github.com/foodchain/foodchain/internal/domain/product"
	"github.com/foodchain/foodchain/internal/infrastructure/postgres"
	"github.com/foodchain/foodchain/internal/infrastructure/sse"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	ctx := context.Background()

	// chain log store
	var store ledger.Store = ledger.NewMemoryStore()
	if cfg.LedgerBackend == config.LedgerPostgres {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db error: %v", err)
		}
		defer pool.Close()

		repo := postgres.NewLedgerRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatalf("schema error: %v", err)
		}
		store = repo
	}

	// infrastructure
	sseHub := sse.NewHub()
	defer sseHub.Stop()

	// every chain event goes to the log and to connected stream clients
	sink := event.Multi{event.NewLogger(logger), sseHub}

	chainLog := ledger.NewLog(store)
	chain := party.NewChain(product.NewCatalogFactory(), chainLog, sink)
	engine := inspection.NewEngine(inspection.DefaultRules(), sink, logger)
	marketSvc := market.NewService(chain, chainLog, engine, logger)

	apiServer := httpapi.NewServer(marketSvc, sseHub)

	httpServer := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      apiServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// start server
	go func() {
		logger.Info().Str("addr", cfg.ServerAddr).Str("ledger", string(cfg.LedgerBackend)).
			Msg("http server started")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	_ = httpServer.Shutdown(ctxShutdown)
}
