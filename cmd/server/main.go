package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/daybook/api/handler"
	"github.com/fastygo/daybook/internal/config"
	"github.com/fastygo/daybook/internal/infrastructure/blobstore"
	"github.com/fastygo/daybook/internal/infrastructure/buffer"
	"github.com/fastygo/daybook/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/daybook/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/daybook/internal/infrastructure/redis"
	"github.com/fastygo/daybook/internal/middleware"
	"github.com/fastygo/daybook/internal/router"
	"github.com/fastygo/daybook/internal/services"
	"github.com/fastygo/daybook/internal/services/lifecycle"
	"github.com/fastygo/daybook/pkg/httpcontext"
	"github.com/fastygo/daybook/pkg/localtime"
	"github.com/fastygo/daybook/pkg/logger"
	"github.com/fastygo/daybook/pkg/translator"
	"github.com/fastygo/daybook/repository/blob"
	"github.com/fastygo/daybook/repository/postgres"
	redisRepo "github.com/fastygo/daybook/repository/redis"
	analyticsUC "github.com/fastygo/daybook/usecase/analytics"
	authUC "github.com/fastygo/daybook/usecase/auth"
	journalUC "github.com/fastygo/daybook/usecase/journal"
	mediaUC "github.com/fastygo/daybook/usecase/media"
	profileUC "github.com/fastygo/daybook/usecase/profile"
	taskUC "github.com/fastygo/daybook/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	loc, err := localtime.LoadLocation(cfg.Locale.Timezone)
	if err != nil {
		zapLogger.Fatal("unknown timezone", zap.String("timezone", cfg.Locale.Timezone), zap.Error(err))
	}
	if cfg.JWT.Secret == "" {
		zapLogger.Warn("JWT_SECRET is empty; using an insecure development secret")
		cfg.JWT.Secret = "daybook-dev-secret"
	}

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.RegisterStop("postgres", func() { pgInfra.Close(pool, zapLogger) })

	redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.RegisterCloser("redis", redisClient)

	bufferStore, err := buffer.Open(cfg.Buffer.Path, "buffer")
	if err != nil {
		zapLogger.Fatal("failed to open buffer store", zap.Error(err))
	}
	manager.RegisterCloser("buffer", bufferStore)

	blobStore, err := blobstore.Open(cfg.Storage.Path, "objects")
	if err != nil {
		zapLogger.Fatal("failed to open object store", zap.Error(err))
	}
	manager.RegisterCloser("objects", blobStore)

	mon := monitor.New(pool, redisClient, bufferStore, blobStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.RegisterStop("monitor", mon.Stop)

	userRepo := postgres.NewUserRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	journalRepo := postgres.NewJournalRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.JWT.SessionTTL)
	objectStorage := blob.NewObjectStorage(blobStore, cfg.Storage.PublicURL)

	sweeper := services.NewObjectSweeper(
		bufferStore,
		objectStorage,
		mon,
		zapLogger,
		services.SweeperConfig{
			Interval:   cfg.Buffer.SweepInterval,
			BatchSize:  cfg.Buffer.BatchSize,
			MaxRetries: cfg.Buffer.MaxRetry,
			Retention:  time.Duration(cfg.Buffer.RetentionHours) * time.Hour,
		},
	)
	sweeper.Start()
	manager.Register("object_sweeper", sweeper.Stop)

	deleteQueue := services.NewBufferBridge(bufferStore, zapLogger)

	authUseCase := authUC.New(userRepo, sessionRepo, authUC.Config{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		AccessTTL:  cfg.JWT.AccessTTL,
		SessionTTL: cfg.JWT.SessionTTL,
	}, zapLogger)
	profileUseCase := profileUC.New(userRepo, zapLogger)
	taskUseCase := taskUC.New(taskRepo, loc, zapLogger)
	mediaUseCase := mediaUC.New(objectStorage, deleteQueue, cfg.Storage.MaxUploadBytes, zapLogger)
	journalUseCase := journalUC.New(journalRepo, mediaUseCase, loc, zapLogger)
	analyticsUseCase := analyticsUC.New(taskRepo, journalRepo, loc, zapLogger)

	deps := apiHandler.Deps{
		Adapter: httpcontext.NewAdapter(cfg.Context.RequestTimeout),
		Translator: translator.New(translator.Config{
			TranslationFolder: cfg.Locale.TranslationFolder,
			DefaultLanguage:   cfg.Locale.DefaultLanguage,
		}, zapLogger),
		Location: loc,
		Logger:   zapLogger,
	}

	handlers := router.Handlers{
		Auth:      apiHandler.NewAuthHandler(authUseCase, deps),
		Profile:   apiHandler.NewProfileHandler(profileUseCase, deps),
		Task:      apiHandler.NewTaskHandler(taskUseCase, deps),
		Journal:   apiHandler.NewJournalHandler(journalUseCase, deps),
		Media:     apiHandler.NewMediaHandler(mediaUseCase, deps),
		Analytics: apiHandler.NewAnalyticsHandler(analyticsUseCase, deps),
		Health:    apiHandler.NewHealthHandler(mon, deps),
	}

	authMiddleware := middleware.JWTAuth(authUseCase, cfg.Context.RequestTimeout, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler: middleware.Chain(r.Handler,
			middleware.Recover(zapLogger),
			middleware.AccessLog(zapLogger),
		),
		ReadTimeout:        cfg.HTTP.ReadTimeout,
		WriteTimeout:       cfg.HTTP.WriteTimeout,
		IdleTimeout:        cfg.HTTP.IdleTimeout,
		Concurrency:        cfg.HTTP.MaxConn,
		MaxRequestBodySize: cfg.Storage.MaxUploadBytes + 64<<10,
		Name:               cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("timezone", loc.String()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
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
