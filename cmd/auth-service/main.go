// cmd/auth-service/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"tenantgate/internal/auth"
	"tenantgate/internal/authapi"
	"tenantgate/pkg/config"
	"tenantgate/pkg/db"
	"tenantgate/pkg/logger"
	"tenantgate/pkg/middleware"
	"tenantgate/pkg/secrets"
	"tenantgate/pkg/tenants"
	"tenantgate/pkg/token"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatalw("configuration", "err", err)
	}

	hasher, err := secrets.New(cfg.SecretHashAlgo, cfg.BcryptCost)
	if err != nil {
		log.Fatalw("secret hasher", "err", err)
	}
	codec, err := token.NewCodec([]byte(cfg.JWTSecret), cfg.JWTExpiresIn)
	if err != nil {
		log.Fatalw("token codec", "err", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store := mustStore(ctx, cfg, log, hasher)
	cancel()

	svc, err := auth.NewService(store, hasher, codec, log)
	if err != nil {
		log.Fatalw("auth service", "err", err)
	}
	app := authapi.New(cfg, log, svc, codec)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Infow("auth-service listening", "addr", cfg.HTTPAddr, "env", cfg.Env, "token_ttl_sec", codec.ExpiresIn())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("ListenAndServe", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	ctx, cancel = context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warnw("shutdown", "err", err)
	}
	_ = middleware.ShutdownTracing(ctx)
	fmt.Println("auth-service stopped")
}

// mustStore picks the tenant backend: PostgreSQL, then Redis, then memory.
// Configured seeds are applied to whichever backend is selected; the memory
// store falls back to the development fixture.
func mustStore(ctx context.Context, cfg config.Config, log *zap.SugaredLogger, hasher secrets.Hasher) tenants.Store {
	seed, err := loadSeed(cfg)
	if err != nil {
		log.Fatalw("seed", "err", err)
	}

	var (
		store  tenants.Store
		writer tenants.Writer
	)
	if pool := db.MustConnect(ctx, cfg, log); pool != nil {
		pg := tenants.NewPostgresStore(pool, log)
		if err := tenants.EnsureSchema(ctx, pool); err != nil {
			log.Fatalw("schema", "err", err)
		}
		store, writer = pg, pg
	} else if rdb := db.MustRedis(ctx, cfg, log); rdb != nil {
		rs := tenants.NewRedisStore(rdb)
		store, writer = rs, rs
	} else {
		mem := tenants.NewMemoryStore()
		if len(seed) == 0 && cfg.IsDevelopment() {
			log.Infow("seeding development tenant", "client_id", tenants.DevSeed[0].ClientID)
			seed = tenants.DevSeed
		}
		store, writer = mem, mem
	}

	if err := tenants.Seed(ctx, writer, hasher, seed); err != nil {
		log.Fatalw("seed", "err", err)
	}
	if len(seed) > 0 {
		log.Infow("tenants seeded", "count", len(seed))
	}
	return store
}

func loadSeed(cfg config.Config) ([]tenants.SeedEntry, error) {
	if cfg.TenantSeedJSON != "" {
		return tenants.ParseSeed([]byte(cfg.TenantSeedJSON))
	}
	if cfg.TenantSeedFile != "" {
		data, err := os.ReadFile(cfg.TenantSeedFile)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", cfg.TenantSeedFile, err)
		}
		return tenants.ParseSeed(data)
	}
	return nil, nil
}
