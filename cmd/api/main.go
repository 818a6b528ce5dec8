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

	_ "github.com/accesskeeper/identity-system/docs"
	"github.com/accesskeeper/identity-system/internal/api"
	"github.com/accesskeeper/identity-system/internal/core/service"
	"github.com/accesskeeper/identity-system/internal/infrastructure/config"
	"github.com/accesskeeper/identity-system/internal/infrastructure/crypto"
	mongodb "github.com/accesskeeper/identity-system/internal/infrastructure/db/mongo"
	redisdb "github.com/accesskeeper/identity-system/internal/infrastructure/db/redis"
	"github.com/accesskeeper/identity-system/internal/infrastructure/queue"
	"github.com/accesskeeper/identity-system/internal/infrastructure/token"
	"github.com/accesskeeper/identity-system/pkg/logger"
)

const shutdownGrace = 10 * time.Second

// @title           Identity System API
// @version         1.0
// @description     Authentication, role-based authorization, and audited role escalation.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "identity-api",
	})

	// Startup precondition: without a signing secret the service must not
	// accept any traffic.
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is not set, refusing to start")
	}

	issuer, err := token.NewJWTIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("token issuer init failed")
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		_ = rdb.Close()
	}()

	userRepo := mongodb.NewUserRepository(db)
	authorityRepo := mongodb.NewRoleAuthorityRepository(client, db)
	eventStore := mongodb.NewSecurityEventRepository(db)

	dispatcher := queue.NewDispatcher(cfg.SecurityEventWorkers, eventStore, log)
	dispatcher.Start(ctx)

	hasher := crypto.NewArgon2Hasher(crypto.DefaultParams)
	authService := service.NewAuthService(userRepo, hasher, issuer, dispatcher, log)
	roleService := service.NewRoleService(userRepo, authorityRepo, dispatcher, log)
	throttle := redisdb.NewLoginThrottle(rdb, cfg.LoginMaxFailures, cfg.LoginFailureWindow)

	e := api.NewRouter(api.Deps{
		AuthService: authService,
		RoleService: roleService,
		TokenIssuer: issuer,
		Throttle:    throttle,
		Mongo:       db,
		Redis:       rdb,
		Logger:      log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
