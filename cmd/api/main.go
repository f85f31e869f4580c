package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pocketjobs/pocketjobs-api/internal/config"
	"github.com/pocketjobs/pocketjobs-api/internal/database"
	"github.com/pocketjobs/pocketjobs-api/internal/handlers"
	"github.com/pocketjobs/pocketjobs-api/internal/logger"
	"github.com/pocketjobs/pocketjobs-api/internal/notify"
	"github.com/pocketjobs/pocketjobs-api/internal/services"
	"github.com/pocketjobs/pocketjobs-api/internal/store"
)

func main() {
	// .env is a dev convenience, absence is fine
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config: ", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		log.Fatal("logger: ", err)
	}
	defer func() { _ = zlog.Sync() }()

	db, err := database.Connect(cfg.PostgresDSN)
	if err != nil {
		zlog.Fatal("database connect failed", zap.Error(err))
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	}

	// Demo sessions run against the parallel table set; the services are
	// identical either way.
	tables := store.Live
	if cfg.DemoMode {
		tables = store.Demo
	}
	st := store.New(db, tables)

	appService := services.NewApplicationService(st, zlog)
	jobService := services.NewJobService(st)
	sink := notify.NewSink(st, rdb, zlog)

	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-User-ID", "X-User-Role"}
	r.Use(cors.New(corsConfig))
	r.Use(handlers.Identity())

	api := r.Group("/api/v1")
	handlers.Register(api,
		handlers.NewJobHandler(jobService, zlog),
		handlers.NewApplicationHandler(appService, sink, zlog),
	)

	zlog.Info("server starting",
		zap.String("addr", cfg.APIAddr),
		zap.Bool("demo_mode", cfg.DemoMode))
	if err := r.Run(cfg.APIAddr); err != nil {
		zlog.Fatal("server failed", zap.Error(err))
	}
}
