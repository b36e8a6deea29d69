package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	fbauth "firebase.google.com/go/v4/auth"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/placement-track/placement-track-backend/config"
	"github.com/placement-track/placement-track-backend/internal/auth"
	"github.com/placement-track/placement-track-backend/internal/bootstrap"
	"github.com/placement-track/placement-track-backend/internal/llm"
	"github.com/placement-track/placement-track-backend/internal/logger"
	"github.com/placement-track/placement-track-backend/internal/store"
	"github.com/placement-track/placement-track-backend/internal/store/firestorestore"
	"github.com/placement-track/placement-track-backend/internal/store/pgstore"
	"github.com/placement-track/placement-track-backend/internal/store/redisstore"
)

const serviceName = "placement-track-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, sync := logger.New(cfg.App.LogLevel, cfg.App.LogJSON)
	defer sync()

	bootstrap.SetGinMode(cfg.App.Environment)

	docStore, authClient, err := buildStore(cfg, zl)
	if err != nil {
		zl.Fatal("store init failed", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}

	var generator llm.TextGenerator = llm.Disabled{}
	if cfg.Gemini.APIKey != "" {
		gemini, err := llm.NewGeminiClient(context.Background(), cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			zl.Fatal("gemini init failed", zap.Error(err))
		}
		defer gemini.Close()
		generator = gemini
	} else {
		zl.Warn("GEMINI_API_KEY not set, summaries and assistant will be unavailable")
	}

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: serviceName,
		Version:     cfg.App.Version,
		Config:      cfg,
		Store:       docStore,
		AuthClient:  authClient,
		Generator:   generator,
		Logger:      zl,
	})

	zl.Info("listening",
		zap.String("port", cfg.Server.Port),
		zap.String("backend", cfg.Store.Backend),
		zap.String("env", cfg.App.Environment),
	)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		zl.Fatal("server exited", zap.Error(err))
	}
}

// buildStore wires the configured document store backend. Only the firestore
// backend yields a Firebase auth client; the others run with header-based
// identities unless a Firebase project is configured separately.
func buildStore(cfg *config.Config, zl *zap.Logger) (store.DocumentStore, *fbauth.Client, error) {
	switch cfg.Store.Backend {
	case "firestore":
		authClient, fsClient, err := auth.InitializeFirebase(&cfg.Firebase)
		if err != nil {
			return nil, nil, err
		}
		return firestorestore.New(fsClient), authClient, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return redisstore.New(client), maybeAuthClient(cfg, zl), nil

	case "postgres":
		db, err := sql.Open("postgres", cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		pg := pgstore.New(db)
		if err := pg.Migrate(context.Background()); err != nil {
			return nil, nil, err
		}
		return pg, maybeAuthClient(cfg, zl), nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

func maybeAuthClient(cfg *config.Config, zl *zap.Logger) *fbauth.Client {
	if cfg.Firebase.CredentialsPath == "" {
		return nil
	}
	authClient, _, err := auth.InitializeFirebase(&cfg.Firebase)
	if err != nil {
		zl.Warn("firebase auth unavailable, falling back to header identities", zap.Error(err))
		return nil
	}
	return authClient
}
