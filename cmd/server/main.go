package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"invoiceku/backend/internal/cache"
	"invoiceku/backend/internal/catalog"
	"invoiceku/backend/internal/config"
	"invoiceku/backend/internal/httpapi"
	"invoiceku/backend/internal/logger"
	"invoiceku/backend/internal/pdfgen"
	"invoiceku/backend/internal/service"
	"invoiceku/backend/internal/store"
	filestore "invoiceku/backend/internal/store/file"
	"invoiceku/backend/internal/store/memory"
	pgstore "invoiceku/backend/internal/store/postgres"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, !cfg.IsProduction())
	log := logger.WithComponent("main")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var repo store.Repository
	closers := make([]func() error, 0, 2)

	switch {
	case cfg.DatabaseURL != "":
		pg, err := pgstore.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("postgres unavailable and DATABASE_URL is set; refusing to start with a fallback store")
		}
		repo = pg
		closers = append(closers, pg.Close)
		log.Info().Msg("repository: postgres")
	case cfg.DataDir != "":
		fs, err := filestore.New(cfg.DataDir)
		if err != nil {
			log.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("data directory unusable")
		}
		repo = fs
		log.Info().Str("dir", cfg.DataDir).Msg("repository: flat files")
	default:
		repo = memory.New()
		log.Info().Msg("repository: in-memory")
	}

	listCache := cache.InvoiceListCache(cache.NoopInvoiceListCache{})
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisInvoiceListCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis unavailable, using noop cache")
		} else {
			listCache = redisCache
			closers = append(closers, redisCache.Close)
			log.Info().Msg("cache: redis")
		}
	} else {
		log.Info().Msg("cache: noop")
	}

	renderer := pdfgen.NewMarotoRenderer(pdfgen.Profile{
		CompanyName:    cfg.CompanyName,
		CompanyAddress: cfg.CompanyAddress,
		CompanyPhone:   cfg.CompanyPhone,
		BankTransfer:   cfg.BankTransferInfo,
	})

	svc := service.New(repo, listCache, time.Duration(cfg.ListCacheTTLSeconds)*time.Second)
	api := httpapi.New(svc, renderer, catalog.Default(), cfg.AllowedOrigin, !cfg.IsProduction())

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Address()).Msg("invoice backend listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("shutdown error")
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Warn().Err(err).Msg("close error")
		}
	}

	log.Info().Msg("server stopped")
}
