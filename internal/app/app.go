package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAYREKAS/CryptoSphereAPI/internal/config"
	"github.com/SAYREKAS/CryptoSphereAPI/internal/events"
	httphandler "github.com/SAYREKAS/CryptoSphereAPI/internal/handler/http"
	"github.com/SAYREKAS/CryptoSphereAPI/internal/handler/middleware"
	"github.com/SAYREKAS/CryptoSphereAPI/internal/repository"
	"github.com/SAYREKAS/CryptoSphereAPI/internal/service"
	"github.com/SAYREKAS/CryptoSphereAPI/internal/websocket"
	"github.com/SAYREKAS/CryptoSphereAPI/storage/postgres"
	redisstore "github.com/SAYREKAS/CryptoSphereAPI/storage/redis"
)

type App struct {
	cfg        *config.Config
	log        *slog.Logger
	httpServer *http.Server
	storage    *postgres.Storage
	redis      *redisstore.Client
	publisher  *events.Publisher
	wsManager  *websocket.Manager

	ctx    context.Context
	cancel context.CancelFunc
}

func New(log *slog.Logger, cfg *config.Config) *App {
	ctx, cancel := context.WithCancel(context.Background())

	storage, err := postgres.New(cfg.Database)
	if err != nil {
		cancel()
		panic(fmt.Errorf("failed to init storage: %w", err))
	}

	var redisClient *redisstore.Client
	if cfg.Redis.Enabled {
		redisClient = redisstore.New(cfg.Redis, log)
	} else {
		log.Info("redis disabled, statistics cache and websocket fan-out are off")
	}

	publisher := events.NewPublisher(cfg.Kafka, log)

	usersRepo := repository.NewUsersRepository(storage.DB)
	coinsRepo := repository.NewCoinsRepository(storage.DB)

	usersService := service.NewUsersService(usersRepo)
	coinsService := service.NewCoinsService(usersRepo, coinsRepo)
	transactionsService := service.NewTransactionsService(storage.DB, usersRepo, coinsRepo, redisClient, publisher, log)

	wsManager := websocket.NewManager(log)

	ginEngine := gin.New()
	ginEngine.Use(gin.Recovery(), middleware.RequestLogger(log))

	handler := httphandler.NewHandler(usersService, coinsService, transactionsService, wsManager, log)
	handler.RegisterRoutes(ginEngine)

	httpServer := &http.Server{
		Addr:    net.JoinHostPort("", strconv.FormatUint(uint64(cfg.HTTP.Port), 10)),
		Handler: ginEngine,
	}

	return &App{
		cfg:        cfg,
		log:        log,
		httpServer: httpServer,
		storage:    storage,
		redis:      redisClient,
		publisher:  publisher,
		wsManager:  wsManager,
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (a *App) Run() error {
	a.log.Info("starting application components...")

	var updates <-chan []byte
	if a.redis != nil {
		updates = a.redis.SubscribeStatsUpdates(a.ctx)
	}

	go func() {
		a.log.Info("websocket manager started")
		a.wsManager.Run(a.ctx, updates)
	}()

	a.log.Info("HTTP server is running", "addr", a.httpServer.Addr)

	if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	return nil
}

func (a *App) Stop() {
	a.log.Info("stopping application components gracefully...")

	a.cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.cfg.HTTP.Timeout)
	defer shutdownCancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.log.Warn("failed to gracefully shutdown HTTP server", "error", err)
	} else {
		a.log.Info("HTTP server stopped")
	}

	if err := a.publisher.Close(); err != nil {
		a.log.Warn("failed to close kafka publisher", "error", err)
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("failed to close redis client", "error", err)
		}
	}

	if err := a.storage.Stop(); err != nil {
		a.log.Error("failed to stop storage", "error", err)
	} else {
		a.log.Info("database connection closed")
	}
}
