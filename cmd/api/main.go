package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"medialib/internal/catalog"
	"medialib/internal/config"
	"medialib/internal/httpx"
	"medialib/internal/ingest"
	"medialib/internal/platform/logging"
	"medialib/internal/platform/openlibrary"
	"medialib/internal/store"
	"medialib/internal/web"
)

const (
	shutdownTimeout = 10 * time.Second
	ingestTimeout   = 10 * time.Minute
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "medialib: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.DB, log)
	if err != nil {
		return err
	}
	defer st.Close()

	catalogService := catalog.NewService(st.Repo, log)

	templates, err := web.LoadTemplates(cfg.TemplatesDir, log)
	if err != nil {
		return err
	}
	defer templates.Close()

	olClient := openlibrary.NewClient(cfg.Ingest.UserAgent, cfg.Ingest.RPS, 3)
	ingestService := ingest.NewService(olClient, catalogService, ingest.Config{
		Subjects: cfg.Ingest.Subjects,
		Limit:    cfg.Ingest.Limit,
	}, log)

	rateLimiter := httpx.NewRateLimitMiddleware(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)
	defer rateLimiter.Stop()

	router := newRouter(routerDeps{
		Catalog:        catalogService,
		Templates:      templates,
		Ingest:         ingestService,
		InternalSecret: cfg.InternalSecret,
		Ready:          st.Ping,
		HTTP:           cfg.HTTP,
		RateLimiter:    rateLimiter,
		Log:            log,
	})

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var scheduler *ingest.Scheduler
	if cfg.Ingest.Schedule != "" {
		scheduler, err = ingest.NewScheduler(ingestService, cfg.Ingest.Schedule, ingestTimeout, log)
		if err != nil {
			return err
		}
		scheduler.Start()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server", zap.String("addr", cfg.Addr), zap.String("driver", cfg.DB.Driver))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if scheduler != nil {
			scheduler.Stop(shutdownCtx)
		}
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
