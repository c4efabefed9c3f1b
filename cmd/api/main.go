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

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"usercenter/internal/core/auth"
	"usercenter/internal/core/cache"
	"usercenter/internal/core/config"
	"usercenter/internal/core/database"
	"usercenter/internal/core/logger"
	"usercenter/internal/core/server"
	"usercenter/internal/events"
	"usercenter/internal/repo"
	"usercenter/internal/service"
	mdw "usercenter/internal/transport/http/middleware"
	"usercenter/internal/transport/http/router"
	"usercenter/pkg/utils"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, cleanup := newLogger(cfg)
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()
	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 数据库（失败会直接 Fatal）
	db := mustOpenDB(cfg, log)
	if cfg.DB.AutoMigrate {
		if err := database.Migrate(context.Background(), db, cfg.DB.Driver, "up", log); err != nil {
			log.Fatal("migrate failed", zap.Error(err))
		}
	}

	hasher := utils.NewPasswordHasher(cfg.Auth.BcryptCost)
	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.JWT.TTL(),
	}
	userRepo := repo.NewUserRepo(db)

	opts := []service.Option{service.WithLogger(log)}
	var rdb *redis.Client
	if cfg.Redis.Enable {
		var c *cache.Cache
		c, rdb = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatal("redis ping", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		opts = append(opts, service.WithStatusCache(c, time.Duration(cfg.Auth.StatusCacheTTLSec)*time.Second))
		log.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	}
	var pub *events.NatsPublisher
	if cfg.NATS.Enable {
		pub, err = events.NewNatsPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix)
		if err != nil {
			log.Fatal("nats connect", zap.String("url", cfg.NATS.URL), zap.Error(err))
		}
		opts = append(opts, service.WithEvents(pub))
		log.Info("nats connected", zap.String("url", cfg.NATS.URL))
	}

	users := service.NewUserService(userRepo, hasher, opts...)
	var status mdw.StatusChecker
	if cfg.Auth.CheckStatus {
		status = users
	}

	r := router.NewAPIEngine(router.Deps{
		Log:         log,
		JWT:         jwter,
		Users:       users,
		Auth:        service.NewAuthService(userRepo, hasher, jwter, log),
		Status:      status,
		Health:      database.Ping(db),
		CORSOrigins: cfg.CORS.AllowOrigins,
		Limits: router.Limits{
			RPS:           cfg.Server.RateLimitRPS,
			Burst:         cfg.Server.RateLimitBurst,
			MaxConcurrent: cfg.Server.MaxConcurrent,
			MaxBodyBytes:  cfg.Server.MaxBodyBytes,
		},
	})

	errLog, _ := logger.ToStdLogger(log.Named("http"), zapcore.ErrorLevel)
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
		errLog,
	)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("usercenter api starting",
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api", baseURL+"/api"),
		zap.Bool("check_status", cfg.Auth.CheckStatus),
	)

	go func() {
		if err := server.StartHTTP(srv, log); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("usercenter api start FAILED", zap.Error(err))
		}
	}()

	// 优雅关闭：先停 HTTP，再关下游连接
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	if pub != nil {
		if err := pub.Close(); err != nil {
			log.Warn("nats drain", zap.Error(err))
		}
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if err := database.Close(db); err != nil {
		log.Warn("db close", zap.Error(err))
	}
	log.Info("usercenter api stopped gracefully")
}

func newLogger(cfg *config.Config) (*zap.Logger, func()) {
	rot := cfg.Log.Rotate
	l, cleanup := logger.New(logger.Options{
		Level:     cfg.Log.Level,
		JSON:      cfg.Log.JSON,
		AddCaller: true,
		Rotate: logger.FileRotate{
			Enable:     rot.Enable,
			Filename:   rot.Filename,
			MaxSizeMB:  rot.MaxSizeMB,
			MaxBackups: rot.MaxBackups,
			MaxAgeDays: rot.MaxAgeDays,
			Compress:   rot.Compress,
		},
	})
	return l.With(zap.String("app", cfg.App.Name), zap.String("env", cfg.App.Env)), cleanup
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		SlowThreshold:      time.Duration(cfg.DB.SlowThresholdMs) * time.Millisecond,
		Logger:             l,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
