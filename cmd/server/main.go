package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/directory/api/handler"
	"github.com/fastygo/directory/internal/config"
	"github.com/fastygo/directory/internal/infrastructure/buffer"
	"github.com/fastygo/directory/internal/infrastructure/monitor"
	redisInfra "github.com/fastygo/directory/internal/infrastructure/redis"
	"github.com/fastygo/directory/internal/infrastructure/storage"
	"github.com/fastygo/directory/internal/middleware"
	"github.com/fastygo/directory/internal/router"
	"github.com/fastygo/directory/internal/services"
	"github.com/fastygo/directory/internal/services/lifecycle"
	"github.com/fastygo/directory/pkg/httpcontext"
	"github.com/fastygo/directory/pkg/logger"
	postUC "github.com/fastygo/directory/usecase/post"
	userUC "github.com/fastygo/directory/usecase/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, cancel := manager.Watch(context.Background())
	defer cancel()

	backend, err := storage.Open(appCtx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("database setup failed", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	manager.Register("database", func(ctx context.Context) error {
		backend.Close()
		return nil
	})

	var redisCheck monitor.Check
	var sender services.Sender = services.NewLogSender(zapLogger)
	if cfg.Redis.Enabled {
		redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
		if err != nil {
			zapLogger.Fatal("redis connection failed", zap.Error(err))
		}
		manager.Register("redis", func(ctx context.Context) error {
			return redisClient.Close()
		})
		redisCheck = func(ctx context.Context) error { return redisInfra.Ping(ctx, redisClient) }
		if cfg.Notify.Driver == config.NotifyDriverRedis {
			sender = services.NewRedisSender(redisClient, cfg.Notify.QueuePrefix)
		}
	}

	bufferStore, err := buffer.Open(cfg.Buffer.Path, "")
	if err != nil {
		zapLogger.Fatal("failed to open buffer store", zap.Error(err))
	}
	manager.Register("buffer", func(ctx context.Context) error {
		return bufferStore.Close()
	})

	mon := monitor.New(backend.Ping, redisCheck, bufferStore, cfg.Monitor.Interval, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	bufferProcessor, err := services.NewBufferProcessor(
		bufferStore,
		mon,
		sender,
		zapLogger,
		services.ProcessorConfig{
			Interval:   cfg.Buffer.SyncInterval,
			BatchSize:  cfg.Buffer.BatchSize,
			MaxRetries: cfg.Buffer.MaxRetry,
			Retention:  cfg.Buffer.Retention(),
		},
	)
	if err != nil {
		zapLogger.Fatal("buffer processor setup failed", zap.Error(err))
	}
	bufferProcessor.Start()
	manager.Register("buffer_processor", func(ctx context.Context) error {
		bufferProcessor.Stop(ctx)
		return nil
	})

	notifications := services.NewNotificationService(bufferProcessor, cfg.Notify.Channels, cfg.Notify.Timeout, zapLogger)
	manager.Register("notifications", notifications.Close)

	userUseCase := userUC.New(backend.Transactor, notifications, zapLogger)
	postUseCase := postUC.New(backend.Transactor, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		User:   apiHandler.NewUserHandler(userUseCase, ctxAdapter, zapLogger),
		Post:   apiHandler.NewPostHandler(postUseCase, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(mon, backend.Driver, ctxAdapter, zapLogger),
	}

	var authMiddleware middleware.Middleware
	if cfg.JWT.Secret != "" {
		authMiddleware = middleware.JWTAuth(cfg.JWT.Secret, cfg.JWT.Issuer, zapLogger)
	} else {
		zapLogger.Warn("JWT_SECRET not set, mutating routes are unauthenticated")
	}
	r := router.New(handlers, authMiddleware, zapLogger)

	server := &fasthttp.Server{
		Handler: middleware.Chain(r.Handler,
			middleware.CORS(cfg.HTTP.CORSOrigins),
			middleware.AccessLog(zapLogger),
		),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("database", backend.Driver),
			zap.Bool("redis", cfg.Redis.Enabled),
		)
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Error("server stopped", zap.Error(err))
			cancel()
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
