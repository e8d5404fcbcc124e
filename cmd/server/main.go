// Command server wires the staking ledger: stores, external collaborators,
// the audit pipeline, and the HTTP surface. Business logic lives in the
// internal service packages; main only assembles and runs them.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"stakeyard/internal/platform/config"
	"stakeyard/internal/platform/httpserver"
	"stakeyard/internal/platform/logger"
	platfredis "stakeyard/internal/platform/redis"
	"stakeyard/internal/staking/clients"
	"stakeyard/internal/staking/handler"
	"stakeyard/internal/staking/metrics"
	"stakeyard/internal/staking/service"
	memstore "stakeyard/internal/staking/store/memory"
	pgstore "stakeyard/internal/staking/store/postgres"
	"stakeyard/internal/staking/store/redisrank"
	httpapi "stakeyard/internal/transport/http"
	audit "stakeyard/pkg/platform/audit"
	auditkafka "stakeyard/pkg/platform/audit/kafka"
	auditmem "stakeyard/pkg/platform/audit/store/memory"
	auditworker "stakeyard/pkg/platform/audit/worker"
	"stakeyard/pkg/platform/middleware/auth"

	platfpg "stakeyard/internal/platform/postgres"
	"stakeyard/internal/staking/store"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores: postgres when a DSN is configured, in-memory otherwise.
	var stores store.Stores
	if cfg.PostgresDSN != "" {
		db, err := platfpg.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Error("postgres open failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := pgstore.Migrate(ctx, db); err != nil {
			log.Error("postgres migrate failed", "error", err)
			os.Exit(1)
		}
		stores = pgstore.NewStores(db)
		log.Info("using postgres stores")
	} else {
		stores = memstore.NewStores()
		log.Info("using in-memory stores")
	}

	// External collaborators.
	catalog, err := clients.NewCatalogClient(cfg.CatalogBaseURL, cfg.ExternalTimeout)
	if err != nil {
		log.Error("catalog client init failed", "error", err)
		os.Exit(1)
	}
	tokens, err := clients.NewTokenLedgerClient(cfg.TokenLedgerURL, cfg.ExternalTimeout)
	if err != nil {
		log.Error("token ledger client init failed", "error", err)
		os.Exit(1)
	}

	// Audit pipeline: in-memory trail, optional Kafka sink, buffered inbox.
	auditOpts := []audit.Option{audit.WithLogger(log)}
	if len(cfg.KafkaBrokers) > 0 {
		sink, err := auditkafka.NewSink(ctx, cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			log.Error("kafka sink init failed", "error", err)
			os.Exit(1)
		}
		defer sink.Close()
		auditOpts = append(auditOpts, audit.WithSink(sink))
		log.Info("audit events mirrored to kafka", "topic", cfg.AuditTopic)
	}
	publisher := audit.NewPublisher(auditmem.NewInMemoryStore(), auditOpts...)
	inbox := auditworker.NewInbox(cfg.AuditInboxSize, log)

	serviceOpts := []service.Option{
		service.WithAuditor(inbox),
		service.WithMetrics(metrics.New()),
		service.WithLogger(log),
	}

	// Optional Redis leaderboard mirror.
	handlerOpts := []handler.Option{handler.WithAuditReader(publisher)}
	if cfg.Redis.URL != "" {
		rdb, err := platfredis.New(cfg.Redis)
		if err != nil {
			log.Error("redis connect failed", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		board := redisrank.NewLeaderboard(rdb.Client)
		serviceOpts = append(serviceOpts, service.WithRateIndex(board))
		handlerOpts = append(handlerOpts, handler.WithRateIndex(board))
		log.Info("leaderboard mirrored to redis")
	}

	svc, err := service.New(stores, catalog, catalog, tokens, serviceOpts...)
	if err != nil {
		log.Error("service init failed", "error", err)
		os.Exit(1)
	}

	router := httpapi.NewRouter(httpapi.RouterDeps{
		Staking:    handler.New(svc, log, handlerOpts...),
		Verifier:   auth.NewJWTVerifier(cfg.JWTSigningKey, cfg.JWTTokenTTL),
		AdminToken: cfg.AdminToken,
		Logger:     log,
	})
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting stakeyard", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := auditworker.NewWorker(publisher, inbox.Events(), log).Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
