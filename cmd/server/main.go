package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"snp/internal/config"
	"snp/internal/infra"
	"snp/internal/repository"
	"snp/internal/router"
	"snp/internal/telemetry"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: pretty in dev, JSON in prod
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing := telemetry.Setup(ctx, "snp-server", cfg.OTLPEndpoint, cfg.OTLPInsecure)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	if rdb == nil {
		log.Warn().Msg("REDIS_URL not set: catalog cache is per-process and failed steps are only logged")
	}

	repo, err := repository.Open(cfg, infra.NewHTTPClient(cfg.HTTPTimeout))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open ticket store")
	}

	dir, err := config.LoadSucursales(cfg.SucursalesFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load sucursales")
	}
	if dir.Vacio() {
		log.Warn().Str("file", cfg.SucursalesFile).Msg("branch directory empty: any branch name is accepted")
	}

	mailCB := infra.NewCircuitBreaker(infra.DefaultBreakerConfig())

	r := router.New(cfg, rdb, repo, dir, mailCB)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      otelhttp.NewHandler(r, "snp-server"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute, // a submission waits on up to six relays
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Str("store", cfg.StoreDriver).Msgf("SNP backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("tracing shutdown")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("server exited")
}
