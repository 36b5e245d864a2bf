package app

import (
	"context"
	"course_market_backend/internal/config"
	"course_market_backend/internal/controller"
	"course_market_backend/internal/middleware"
	"course_market_backend/internal/repository"
	"course_market_backend/internal/service"
	"course_market_backend/internal/util"
	"course_market_backend/pkg/configwatcher"
	"course_market_backend/pkg/database"
	"course_market_backend/pkg/logger"
	"course_market_backend/pkg/monitoring"
	"course_market_backend/pkg/security"
	"course_market_backend/pkg/tracing"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	services        *services
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)

	// 后台协程（限流清理、配置监听）共用的生命周期
	ctx    context.Context
	cancel context.CancelFunc
}

type repositories struct {
	course      *repository.CourseRepository
	transaction *repository.TransactionRepository
	progress    *repository.ProgressRepository
}

type services struct {
	storage     *service.StorageService
	payment     *service.PaymentService
	course      *service.CourseService
	transaction *service.TransactionService
	progress    *service.ProgressService
}

type controllers struct {
	course      *controller.CourseController
	transaction *controller.TransactionController
	progress    *controller.ProgressController
	health      *controller.HealthController
}

// Dependencies 外部适配器；为空的字段由 New 按配置创建
type Dependencies struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Storage  *service.StorageService
	Payment  service.PaymentGateway
	Identity *util.IdentityVerifier
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		course:      repository.NewCourseRepository(db),
		transaction: repository.NewTransactionRepository(db),
		progress:    repository.NewProgressRepository(db),
	}
}

func initServices(repos *repositories, cfg *config.Config, deps *Dependencies) *services {
	s := &services{storage: deps.Storage}

	var guard service.PurchaseGuard = service.NoopPurchaseGuard{}
	if deps.Redis != nil {
		guard = service.NewRedisPurchaseGuard(deps.Redis, cfg.Redis.PurchaseLockTTL)
	}

	s.payment = service.NewPaymentService(deps.Payment, cfg.Payment)
	s.course = service.NewCourseService(repos.course, s.storage)
	s.transaction = service.NewTransactionService(repos.transaction, repos.progress, repos.course, guard)
	s.progress = service.NewProgressService(repos.progress, repos.course)
	return s
}

func initControllers(s *services, deps *Dependencies) *controllers {
	return &controllers{
		course:      controller.NewCourseController(s.course),
		transaction: controller.NewTransactionController(s.transaction, s.payment),
		progress:    controller.NewProgressController(s.progress),
		health:      controller.NewHealthController(deps.DB, deps.Redis),
	}
}

// New 组装路由与服务，不做任何外部连接，测试中直接传入内存数据库与假网关
func New(cfg *config.Config, deps Dependencies) (*App, error) {
	if deps.Identity == nil {
		identity, err := util.NewIdentityVerifier(&cfg.JWT)
		if err != nil {
			return nil, err
		}
		deps.Identity = identity
	}
	if deps.Storage == nil {
		deps.Storage = service.NewStorageService(cfg)
	}
	if deps.Payment == nil {
		deps.Payment = service.NewStripeGateway(cfg.Payment.StripeSecretKey)
	}

	app := &App{
		Config: cfg,
		DB:     deps.DB,
		Redis:  deps.Redis,
	}
	app.ctx, app.cancel = context.WithCancel(context.Background())

	repos := initRepositories(deps.DB)
	app.services = initServices(repos, cfg, &deps)
	ctrls := initControllers(app.services, &deps)

	// 热加载时只替换支付币种策略
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		app.services.payment.UpdatePolicy(newCfg.Payment)
	})

	monitoring.Init()

	router := gin.New()
	app.Router = router
	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, ctrls, deps.Identity)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app, nil
}

// NewApp 按配置连接数据库、Redis 与追踪后端
func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	gin.SetMode(cfg.Server.Mode)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		}
	}

	var tp *sdktrace.TracerProvider
	if cfg.Tracing.Enabled {
		tp, err = tracing.InitTracer(&cfg.Tracing)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app, err := New(cfg, Dependencies{DB: db, Redis: rdb})
	if err != nil {
		logger.Log.Fatal("Failed to assemble application", zap.Error(err))
	}
	app.tracer = tp
	return app
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiterFromConfig(a.ctx, cfg.RateLimit))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks() {
	if a.Config.Path == "" {
		return
	}

	go func() {
		err := configwatcher.WatchConfig(a.ctx, a.Config.Path, func(newCfg *config.Config) {
			for _, cb := range a.configCallbacks {
				cb(newCfg)
			}
		})
		if err != nil {
			logger.Log.Error("Config watcher stopped", zap.Error(err))
		}
	}()
}

// Close 停止后台协程，可重复调用
func (a *App) Close() {
	a.cancel()
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	a.startBackgroundTasks()

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
