package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"interview-coach/internal/config"
	"interview-coach/internal/db"
	apihttp "interview-coach/internal/http"
	"interview-coach/internal/repository"
	"interview-coach/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	var memoryStore repository.MemoryStore = repository.NewInMemoryMemoryStore()
	var historyRepo repository.CategoryHistoryRepository = repository.NewMemoryCategoryHistory()
	var sessionRepo repository.SessionRepository = repository.NewMemorySessionRepository()
	if cfg.UsePostgres() {
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()

		if err := db.EnsureSchema(ctx, pool); err != nil {
			logger.Fatal("db schema", zap.Error(err))
		}
		historyRepo = repository.NewPgCategoryHistoryRepository(pool)
		sessionRepo = repository.NewPgSessionRepository(pool, logger)
		if cfg.MemoryStore == config.MemoryStorePostgres {
			memoryStore = repository.NewPgMemoryStore(pool)
		}
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory stores")
	}

	var locker service.UserLocker = service.NewKeyedMutexLocker()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()

		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-process user lock", zap.Error(err))
		} else {
			locker = service.NewRedisUserLocker(redisClient, cfg.LockTTL, cfg.LockWait)
		}
		cancel()
	}

	selector := service.NewCategorySelector(service.NewRandSource(cfg.RandomSeed))
	interviewSvc := service.NewInterviewService(logger, memoryStore, historyRepo, sessionRepo, locker, selector, cfg.StoreTimeout)
	interviewHandler := apihttp.NewInterviewHandler(logger, interviewSvc)
	router := apihttp.NewRouter(logger, interviewHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.Bool("postgres", cfg.UsePostgres()),
		zap.String("memory_store", cfg.MemoryStore),
	)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
