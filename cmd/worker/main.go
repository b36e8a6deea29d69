// The worker runs the experience-count reconciliation job, either once
// (--once) or on the configured cron schedule.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/placement-track/placement-track-backend/config"
	"github.com/placement-track/placement-track-backend/internal/auth"
	companiesrepo "github.com/placement-track/placement-track-backend/internal/companies/repository"
	experiencesrepo "github.com/placement-track/placement-track-backend/internal/experiences/repository"
	"github.com/placement-track/placement-track-backend/internal/logger"
	"github.com/placement-track/placement-track-backend/internal/reconcile"
	"github.com/placement-track/placement-track-backend/internal/store"
	"github.com/placement-track/placement-track-backend/internal/store/firestorestore"
	"github.com/placement-track/placement-track-backend/internal/store/pgstore"
	"github.com/placement-track/placement-track-backend/internal/store/redisstore"
)

func main() {
	once := flag.Bool("once", false, "run a single reconciliation pass and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, sync := logger.New(cfg.App.LogLevel, cfg.App.LogJSON)
	defer sync()

	docStore, err := buildStore(cfg)
	if err != nil {
		zl.Fatal("store init failed", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}

	reconciler := reconcile.New(
		companiesrepo.New(docStore),
		experiencesrepo.New(docStore, zl),
		zl,
	)

	if *once {
		report, err := reconciler.Run(context.Background())
		if err != nil {
			zl.Fatal("reconciliation failed", zap.Error(err))
		}
		zl.Info("reconciliation finished",
			zap.Int("checked", report.Checked),
			zap.Int("fixed", report.Fixed),
		)
		return
	}

	scheduler, err := reconcile.NewScheduler(reconciler, cfg.Reconcile.Schedule, zl)
	if err != nil {
		zl.Fatal("invalid reconcile schedule", zap.String("spec", cfg.Reconcile.Schedule), zap.Error(err))
	}
	scheduler.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down")
	scheduler.Stop()
}

func buildStore(cfg *config.Config) (store.DocumentStore, error) {
	switch cfg.Store.Backend {
	case "firestore":
		_, fsClient, err := auth.InitializeFirebase(&cfg.Firebase)
		if err != nil {
			return nil, err
		}
		return firestorestore.New(fsClient), nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return redisstore.New(client), nil

	case "postgres":
		db, err := sql.Open("postgres", cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		pg := pgstore.New(db)
		if err := pg.Migrate(context.Background()); err != nil {
			return nil, err
		}
		return pg, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}
