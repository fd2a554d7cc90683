package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/vrjatclg/Time2Eat/internal/cache"
	"github.com/vrjatclg/Time2Eat/internal/config"
	"github.com/vrjatclg/Time2Eat/internal/database"
	"github.com/vrjatclg/Time2Eat/internal/events"
	"github.com/vrjatclg/Time2Eat/internal/handlers"
	"github.com/vrjatclg/Time2Eat/internal/logging"
	"github.com/vrjatclg/Time2Eat/internal/middleware"
	"github.com/vrjatclg/Time2Eat/internal/ordering"
	"github.com/vrjatclg/Time2Eat/internal/storage"
	"github.com/vrjatclg/Time2Eat/internal/store"
	"github.com/vrjatclg/Time2Eat/internal/store/memory"
)

func main() {
	config.Load()
	cfg := config.AppEnv
	logging.Setup(cfg.LogLevel, cfg.LogPretty)

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	st, cleanup := openStore(cfg)
	defer cleanup()

	if cfg.StaffEmail != "" && cfg.StaffPassword != "" {
		ctx, cancel := context.WithTimeout(rootCtx, 5*time.Second)
		if err := handlers.EnsureStaffAccount(ctx, st.Staff, cfg.StaffEmail, cfg.StaffPassword, time.Now().UTC()); err != nil {
			log.Error().Err(err).Msg("staff bootstrap failed")
		}
		cancel()
	}

	var publisher ordering.Publisher
	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, "time2eat", 1024)
		producer.Start(rootCtx)
		publisher = producer
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("event producer started")
	}

	var idem handlers.IdempotencyStore
	if cfg.RedisAddr != "" {
		rdb := cache.New(cfg.RedisAddr)
		defer rdb.Close()
		ctx, cancel := context.WithTimeout(rootCtx, 2*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis unreachable, idempotency lookups will fail open")
		}
		cancel()
		idem = cache.NewIdempotency(rdb)
	}

	svc := ordering.NewService(st, ordering.Options{
		CancelThreshold: cfg.CancelThreshold,
		CancelWindow:    cfg.CancelWindow,
		CodeAttempts:    cfg.CodeMaxAttempts,
		Publisher:       publisher,
	})

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(handlers.Deps{
		Service:     svc,
		Store:       st,
		Images:      storage.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL),
		Idempotency: idem,
		RateLimiter: middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 3*time.Minute),
		Tokens: handlers.TokenConfig{
			Secret:     cfg.JWTSecret,
			AccessTTL:  cfg.AccessTokenTTL,
			RefreshTTL: cfg.RefreshTokenTTL,
		},
		UploadDir: cfg.UploadDir,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	if producer != nil {
		producer.Close()
		producer.WaitClosed()
	}
	stop()
}

func openStore(cfg config.Config) (*store.Store, func()) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Warn().Msg("using in-memory store, data is lost on restart")
		st, _ := memory.New()
		return st, func() {}
	case config.DriverMongo:
	default:
		log.Fatal().Str("driver", cfg.StoreDriver).Msg("unknown STORE_DRIVER")
	}

	if cfg.MongoURI == "" {
		log.Fatal().Msg("MONGO_URI is required for the mongo store")
	}
	client, err := database.Connect(cfg.MongoURI)
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connect failed")
	}
	db := client.Database(cfg.DBName)
	log.Info().Str("db", db.Name()).Msg("MongoDB connected")

	if err := database.EnsureIndexes(db); err != nil {
		log.Warn().Err(err).Msg("index creation incomplete")
	}

	return database.NewStore(db), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
	}
}
