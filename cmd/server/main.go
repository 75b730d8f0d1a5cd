package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Madhu0614/Ai-task-hub-madhu/internal/config"
	"github.com/Madhu0614/Ai-task-hub-madhu/internal/httpapi"
	"github.com/Madhu0614/Ai-task-hub-madhu/internal/hub"
	"github.com/Madhu0614/Ai-task-hub-madhu/internal/identity"
	"github.com/Madhu0614/Ai-task-hub-madhu/internal/metrics"
	"github.com/Madhu0614/Ai-task-hub-madhu/internal/room"
	"github.com/Madhu0614/Ai-task-hub-madhu/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := mustLogger(cfg.Debug)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st *store.Store
	var ids identity.Resolver
	if cfg.DatabaseURL != "" {
		st, err = store.Open(cfg.DatabaseURL, log.Named("store"))
		if err != nil {
			log.Fatal("open store", zap.Error(err))
		}
		ids = identity.StoreResolver{Store: st}
	} else {
		log.Warn("no DATABASE_URL, running without the REST surface")
	}

	m := metrics.New()
	defer m.Close()

	// Build the router *with* the hub injected
	h := hub.NewHub(ctx, room.Options{
		PresenceTTL: cfg.PresenceTTL,
		Logger:      log.Named("room"),
		Metrics:     m,
	})
	handler := httpapi.SetupRoutes(h, st, ids, m, log.Named("http"))

	srv := &http.Server{Addr: cfg.Addr, Handler: handler}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		h.Inbox() <- hub.ShutdownHub{}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func mustLogger(debug bool) *zap.Logger {
	var log *zap.Logger
	var err error
	if debug {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return log
}
