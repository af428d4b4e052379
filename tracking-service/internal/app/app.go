package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/director74/order-tracking/pkg/auth"
	"github.com/director74/order-tracking/pkg/database"
	"github.com/director74/order-tracking/pkg/errors"
	"github.com/director74/order-tracking/pkg/logger"
	"github.com/director74/order-tracking/pkg/messaging"
	"github.com/director74/order-tracking/pkg/middleware"
	"github.com/director74/order-tracking/pkg/rabbitmq"
	"github.com/director74/order-tracking/pkg/redislock"
	"github.com/director74/order-tracking/tracking-service/config"
	httpController "github.com/director74/order-tracking/tracking-service/internal/controller/http"
	rabbitmqController "github.com/director74/order-tracking/tracking-service/internal/controller/rabbitmq"
	"github.com/director74/order-tracking/tracking-service/internal/entity"
	"github.com/director74/order-tracking/tracking-service/internal/light"
	"github.com/director74/order-tracking/tracking-service/internal/repo"
	"github.com/director74/order-tracking/tracking-service/internal/status"
	"github.com/director74/order-tracking/tracking-service/internal/usecase"
)

// App представляет приложение
type App struct {
	config     *config.Config
	logger     *zap.Logger
	httpServer *http.Server
	core       *core
	refresher  *usecase.Refresher
	jobs       *background
}

// core общие зависимости сервера и служебных команд
type core struct {
	db        *gorm.DB
	rabbitMQ  *rabbitmq.RabbitMQ
	redis     *redis.Client
	clock     usecase.Clock
	calc      *light.Calculator
	store     *repo.Store
	cache     repo.StatsCache
	events    *messaging.EventPublisher
	locker    usecase.Locker
	operators repo.OperatorRepository
}

// newCore подключается к хранилищам и собирает доменные зависимости.
// RabbitMQ и Redis необязательны: без них события не публикуются, а кэш и блокировка локальные.
func newCore(cfg *config.Config, l *zap.Logger) (*core, error) {
	loc, err := cfg.Tracking.Location()
	if err != nil {
		return nil, err
	}

	catalog, err := status.NewCatalog(status.DefaultConfig())
	if err != nil {
		return nil, errors.AppendPrefix(err, "некорректный каталог статусов")
	}

	calc, err := light.NewCalculator(cfg.Tracking.Rules, catalog, l)
	if err != nil {
		return nil, errors.AppendPrefix(err, "некорректные пороги светофора")
	}

	db, err := database.NewPostgresDB(cfg.Postgres)
	if err != nil {
		return nil, errors.AppendPrefix(err, "не удалось подключиться к базе данных")
	}

	if err := database.AutoMigrateWithCleanup(db, &entity.Order{}, &entity.StatusHistory{}, &entity.AuditLog{}, &entity.Operator{}); err != nil {
		return nil, errors.AppendPrefix(err, "не удалось выполнить миграцию")
	}

	c := &core{
		db:        db,
		clock:     usecase.Clock{Location: loc},
		calc:      calc,
		store:     repo.NewStore(db),
		cache:     repo.NopStatsCache{},
		locker:    redislock.NewLocal(),
		operators: repo.NewOperatorRepository(db),
	}

	if cfg.RabbitMQ.Enabled {
		rmq, err := messaging.InitRabbitMQ(cfg.RabbitMQ, l)
		if err != nil {
			c.close(l)
			return nil, errors.AppendPrefix(err, "не удалось подключиться к RabbitMQ")
		}
		c.rabbitMQ = rmq

		exchanges := map[string]string{
			cfg.Tracking.EventsExchange:  "topic",
			cfg.Tracking.CommandExchange: "topic",
		}
		// очереди команд объявляет RefreshConsumer
		queues := map[string]map[string]string{}

		if err := messaging.SetupExchangesAndQueues(rmq, exchanges, queues); err != nil {
			c.close(l)
			return nil, errors.AppendPrefix(err, "ошибка при настройке RabbitMQ")
		}
		c.events = messaging.NewEventPublisher(rmq, cfg.Tracking.EventsExchange, cfg.Tracking.PublishRetries, l)
	} else {
		l.Warn("RabbitMQ отключен, события заказов не публикуются")
		c.events = messaging.NewEventPublisher(nil, "", 0, l)
	}

	if cfg.Redis.Enabled() {
		c.redis = redislock.NewClient(cfg.Redis)
		if err := c.redis.Ping(context.Background()).Err(); err != nil {
			c.close(l)
			return nil, errors.AppendPrefix(err, "не удалось подключиться к Redis")
		}
		c.locker = redislock.New(c.redis, cfg.Tracking.RefreshLockTTL)
		c.cache = repo.NewRedisStatsCache(c.redis, cfg.Tracking.StatsCacheTTL, l)
	} else {
		l.Info("Redis не настроен, используется локальная блокировка пересчета без кэша сводки")
	}

	return c, nil
}

func (c *core) ledger(cfg *config.Config, l *zap.Logger) *usecase.Ledger {
	return usecase.NewLedger(c.store, c.calc, c.events, c.cache, usecase.LedgerOptions{
		Clock:             c.clock,
		OrderNumberPrefix: cfg.Tracking.OrderNumberPrefix,
		StrictTransitions: cfg.Tracking.StrictTransitions,
	}, l)
}

func (c *core) refresher(l *zap.Logger) *usecase.Refresher {
	return usecase.NewRefresher(c.store, c.calc, c.locker, c.events, c.cache, c.clock, l)
}

func (c *core) close(l *zap.Logger) error {
	errGroup := errors.NewErrorGroup()

	if c.rabbitMQ != nil {
		if err := c.rabbitMQ.Close(); err != nil {
			errGroup.AddPrefix(err, "ошибка при закрытии RabbitMQ")
		}
	}

	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			errGroup.AddPrefix(err, "ошибка при закрытии Redis")
		}
	}

	if c.db != nil {
		if err := database.CloseDB(c.db); err != nil {
			errGroup.AddPrefix(err, "ошибка при закрытии соединения с базой данных")
		}
	}

	if errGroup.HasErrors() {
		errors.LogError(l, errGroup, "Shutdown")
		return errGroup
	}
	return nil
}

func jwtManager(cfg *config.Config) *auth.JWTManager {
	jwtConfig := auth.NewConfig(cfg.JWT.SigningKey)
	jwtConfig.TokenTTL = cfg.JWT.TokenTTL
	jwtConfig.TokenIssuer = cfg.JWT.TokenIssuer
	jwtConfig.TokenAudiences = cfg.JWT.TokenAudiences
	return auth.NewJWTManager(jwtConfig)
}

func NewApp(cfg *config.Config) (*App, error) {
	l, err := logger.New(cfg.Log)
	if err != nil {
		return nil, errors.AppendPrefix(err, "не удалось создать логгер")
	}

	c, err := newCore(cfg, l)
	if err != nil {
		return nil, err
	}

	jwt := jwtManager(cfg)
	authMiddleware := auth.NewAuthMiddleware(jwt)
	internalMiddleware := middleware.NewInternalAuthMiddleware(&cfg.InternalAPI, l)

	// Создаем use cases
	authUseCase := usecase.NewAuthUseCase(c.operators, jwt, l)
	ledger := c.ledger(cfg, l)
	trackingUseCase := usecase.NewTrackingUseCase(c.store, c.calc, c.cache, c.clock, l)
	refresher := c.refresher(l)

	if err := authUseCase.EnsureAdmin(context.Background(), cfg.Tracking.AdminUsername, cfg.Tracking.AdminPassword); err != nil {
		c.close(l)
		return nil, err
	}

	if c.rabbitMQ != nil {
		refreshConsumer := rabbitmqController.NewRefreshConsumer(refresher, c.rabbitMQ,
			cfg.Tracking.CommandExchange, cfg.Tracking.RefreshQueue, cfg.Tracking.RefreshLockTTL, l)
		if err := refreshConsumer.Setup(); err != nil {
			// Пересчет по расписанию и через HTTP продолжит работать
			l.Warn("ошибка при настройке RefreshConsumer", zap.Error(err))
		}
	}

	// Создаем HTTP контроллеры
	authHandler := httpController.NewAuthHandler(authUseCase)
	orderHandler := httpController.NewOrderHandler(ledger, trackingUseCase, authMiddleware, l)
	internalHandler := httpController.NewInternalHandler(refresher, internalMiddleware)

	gin.SetMode(cfg.HTTP.GinMode)
	router := gin.New()

	router.Use(errors.RecoveryMiddleware(l))
	router.Use(logger.GinMiddleware(l))
	router.Use(errors.ErrorMiddleware())

	router.NoRoute(errors.NotFoundHandler())
	router.NoMethod(errors.MethodNotAllowedHandler())

	authHandler.RegisterRoutes(router)
	orderHandler.RegisterRoutes(router)
	internalHandler.RegisterRoutes(router)

	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	return &App{
		config:     cfg,
		logger:     l,
		httpServer: httpServer,
		core:       c,
		refresher:  refresher,
		jobs:       newBackground(),
	}, nil
}

// Run запускает приложение
func (a *App) Run() error {
	a.jobs.Go(func(ctx context.Context) {
		a.refresher.Run(ctx, a.config.Tracking.RefreshInterval)
	})

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP сервер запущен", zap.String("port", a.config.HTTP.Port))
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		a.logger.Info("получен сигнал завершения, закрываем приложение")
	case err := <-serverErr:
		a.logger.Error("ошибка HTTP сервера", zap.Error(err))
	}

	return a.Shutdown()
}

// Shutdown корректно завершает работу приложения
func (a *App) Shutdown() error {
	defer a.logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), a.config.HTTP.ShutdownTimeout)
	defer cancel()

	errGroup := errors.NewErrorGroup()

	// пересчет должен завершиться до закрытия базы и брокера
	if err := a.jobs.Stop(ctx); err != nil {
		errGroup.AddPrefix(err, "фоновый пересчет не завершился")
	}

	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			errGroup.AddPrefix(err, "ошибка при закрытии HTTP сервера")
		}
	}

	if err := a.core.close(a.logger); err != nil {
		errGroup.Add(err)
	}

	if errGroup.HasErrors() {
		return errGroup
	}

	a.logger.Info("приложение успешно завершено")
	return nil
}
