package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	logger_adapter "github.com/apeiron-tech/Immoxperts-sub000/internal/adapters/logger"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/adapters/memory"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/adapters/metrics"
	postgres_adapter "github.com/apeiron-tech/Immoxperts-sub000/internal/adapters/postgres"
	rabbitmq_adapter "github.com/apeiron-tech/Immoxperts-sub000/internal/adapters/rabbitmq"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/adapters/rest"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/configs"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/constants"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/contracts"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/port"
	"github.com/apeiron-tech/Immoxperts-sub000/internal/core/usecase"
	fluentlogger "github.com/apeiron-tech/Immoxperts-sub000/pkg/fluent_logger"
	"github.com/apeiron-tech/Immoxperts-sub000/pkg/postgres"
	"github.com/apeiron-tech/Immoxperts-sub000/pkg/rabbitmq/rabbitmq_common"
	"github.com/apeiron-tech/Immoxperts-sub000/pkg/rabbitmq/rabbitmq_consumer"
	"github.com/apeiron-tech/Immoxperts-sub000/pkg/rabbitmq/rabbitmq_producer"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
)

type App struct {
	config    *configs.AppConfig
	apiServer *rest.Server

	dbPool          *pgxpool.Pool
	connManager     *rabbitmq_common.ConnectionManager
	eventProducer   *rabbitmq_producer.Publisher
	refreshListener port.EventListenerPort

	logger       port.LoggerPort
	fluentClient *fluent.Fluent
}

// closers - ресурсы, созданные до ошибки в NewApp; закрываются в обратном порядке
type closers []func()

func (c closers) closeAll() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

type storage struct {
	listings    port.ListingStorePort
	streetIndex port.StreetIndexPort
}

func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	var cleanup closers
	app := &App{config: appConfig}

	baseLogger, err := app.initLoggers(&cleanup)
	if err != nil {
		return nil, err
	}
	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	app.logger = appLogger

	if err := contracts.LoadSchemas(); err != nil {
		cleanup.closeAll()
		return nil, fmt.Errorf("failed to load event schemas: %w", err)
	}

	store, err := app.initStorage(baseLogger, &cleanup)
	if err != nil {
		appLogger.Error("Failed to initialize storage", err, nil)
		cleanup.closeAll()
		return nil, err
	}

	appMetrics := metrics.New()
	reporters := []port.RefreshReporterPort{appMetrics}

	if appConfig.RabbitMQ.Enabled {
		publisher, err := app.initRabbitMQ(baseLogger, &cleanup)
		if err != nil {
			appLogger.Error("Failed to initialize RabbitMQ", err, nil)
			cleanup.closeAll()
			return nil, err
		}
		reporters = append(reporters, publisher)
	}

	suggestUC := usecase.NewSuggestLocationsUseCase(store.listings)
	searchUC := usecase.NewSearchListingsUseCase(store.listings)
	streetSearchUC := usecase.NewSearchStreetsUseCase(store.streetIndex)
	fastStreetSearchUC := usecase.NewFastSearchStreetsUseCase(store.streetIndex)
	refreshUC := usecase.NewRefreshStreetIndexUseCase(store.streetIndex, reporters...)
	appLogger.Info("All use cases initialized.", nil)

	if appConfig.RabbitMQ.Enabled {
		listener, err := rabbitmq_adapter.NewRefreshRequestConsumerAdapter(refreshConsumerConfig(appConfig), refreshUC, baseLogger, app.connManager)
		if err != nil {
			appLogger.Error("Failed to create refresh request listener", err, nil)
			cleanup.closeAll()
			return nil, err
		}
		app.refreshListener = listener
		appLogger.Info("Refresh request listener initialized.", nil)
	}

	restCfg := rest.ServerConfig{
		Port:             appConfig.Rest.PORT,
		AllowedOrigins:   appConfig.Rest.AllowedOrigins,
		AdminTokenSecret: appConfig.Rest.AdminTokenSecret,
	}
	router := rest.NewRouter(
		restCfg,
		rest.NewSearchHandler(suggestUC, searchUC),
		rest.NewStreetSearchHandler(streetSearchUC, fastStreetSearchUC, refreshUC),
		rest.NewHealthHandler(store.listings),
		appMetrics,
		baseLogger,
	)
	app.apiServer = rest.NewServer(restCfg, router, baseLogger)
	appLogger.Info("REST API server configured.", nil)

	return app, nil
}

func (a *App) initLoggers(cleanup *closers) (port.LoggerPort, error) {
	cfg := a.config
	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    logger_adapter.ParseLevel(cfg.StdoutLogger.Level),
		UseColor: true,
	})
	activeLoggers := []port.LoggerPort{stdoutLogger}

	if cfg.FluentBit.Enabled {
		fluentClient, err := fluentlogger.NewClient(fluentlogger.Config{
			Host:      cfg.FluentBit.Host,
			Port:      cfg.FluentBit.Port,
			TagPrefix: cfg.AppName,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}
		a.fluentClient = fluentClient
		*cleanup = append(*cleanup, func() { _ = fluentClient.Close() })

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, logger_adapter.ParseLevel(cfg.FluentBit.Level))
		if err != nil {
			cleanup.closeAll()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiLoggerAdapter(activeLoggers...)
	if err != nil {
		cleanup.closeAll()
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{"service_name": cfg.AppName})
	baseLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers),
		"fluent_enabled": cfg.FluentBit.Enabled,
	})
	return baseLogger, nil
}

func (a *App) initStorage(baseLogger port.LoggerPort, cleanup *closers) (*storage, error) {
	cfg := a.config.Storage
	storageLogger := baseLogger.WithFields(port.Fields{"component": "storage", "driver": cfg.Driver})

	if cfg.Driver == configs.StorageDriverMemory {
		listings, index, err := memory.LoadSeed(cfg.MemorySeedPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load memory seed: %w", err)
		}
		storageLogger.Info("Memory storage initialized.", port.Fields{"seed_path": cfg.MemorySeedPath})
		return &storage{listings: listings, streetIndex: index}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	dbPool, err := postgres.NewClient(ctx, postgres.Config{
		DatabaseURL: cfg.DatabaseURL,
		MaxConns:    int32(cfg.MaxConns),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	a.dbPool = dbPool
	*cleanup = append(*cleanup, dbPool.Close)

	listings, err := postgres_adapter.NewListingRepository(dbPool, cfg.ListingsTable)
	if err != nil {
		return nil, err
	}
	index, err := postgres_adapter.NewStreetIndexRepository(dbPool, cfg.StreetIndexView)
	if err != nil {
		return nil, err
	}

	storageLogger.Info("PostgreSQL storage initialized.", port.Fields{
		"listings_table":    cfg.ListingsTable,
		"street_index_view": cfg.StreetIndexView,
	})
	return &storage{listings: listings, streetIndex: index}, nil
}

func (a *App) initRabbitMQ(baseLogger port.LoggerPort, cleanup *closers) (port.RefreshReporterPort, error) {
	rmqConfig := rabbitmq_common.Config{URL: a.config.RabbitMQ.URL}

	connManagerBridge := rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"}))
	connManager, err := rabbitmq_common.NewConnectionManager(rmqConfig, connManagerBridge)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection manager: %w", err)
	}
	a.connManager = connManager
	*cleanup = append(*cleanup, func() { _ = connManager.Close() })

	producer, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
		Config:                   rmqConfig,
		ExchangeName:             constants.SearchExchange,
		ExchangeType:             constants.SearchExchangeType,
		DurableExchange:          true,
		DeclareExchangeIfMissing: true,
		Logger:                   rabbitmq_adapter.NewPkgLoggerBridge(baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})),
	}, connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create event producer: %w", err)
	}
	a.eventProducer = producer
	*cleanup = append(*cleanup, func() { _ = producer.Close() })

	publisher, err := rabbitmq_adapter.NewRefreshEventPublisher(producer, constants.RoutingKeyStreetIndexRefreshed)
	if err != nil {
		return nil, err
	}
	return publisher, nil
}

func refreshConsumerConfig(cfg *configs.AppConfig) rabbitmq_consumer.ConsumerConfig {
	return rabbitmq_consumer.ConsumerConfig{
		Config:                 rabbitmq_common.Config{URL: cfg.RabbitMQ.URL},
		QueueName:              constants.QueueStreetIndexRefreshRequests,
		DeclareQueue:           true,
		DurableQueue:           true,
		ExchangeNameForBind:    constants.SearchExchange,
		ExchangeTypeForBind:    constants.SearchExchangeType,
		DeclareExchangeForBind: true,
		DurableExchangeForBind: true,
		RoutingKeyForBind:      constants.RoutingKeyStreetIndexRefresh,
		PrefetchCount:          1,
		ConsumerTag:            constants.ConsumerTagStreetIndexRefresh,

		EnableRetryMechanism: true,
		RetryExchange:        constants.RefreshRetryExchange,
		RetryQueue:           constants.RefreshRetryQueue,
		RetryTTL:             constants.RefreshRetryTTL,
		FinalDLXExchange:     constants.RefreshFinalDLXExchange,
		FinalDLQ:             constants.RefreshFinalDLQ,
		FinalDLQRoutingKey:   constants.RefreshFinalDLQRoutingKey,
		MaxRetries:           constants.RefreshMaxRetries,
	}
}

// Run запускает HTTP-сервер и слушателей и ждет сигнала завершения
func (a *App) Run() error {
	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()

	var wg sync.WaitGroup

	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := a.apiServer.Stop(shutdownCtx); err != nil {
			a.logger.Error("Error during API server shutdown", err, nil)
		}

		wg.Wait()

		if a.refreshListener != nil {
			if err := a.refreshListener.Close(); err != nil {
				a.logger.Error("Error closing refresh request listener", err, nil)
			}
		}
		if a.eventProducer != nil {
			if err := a.eventProducer.Close(); err != nil {
				a.logger.Error("Error closing event producer", err, nil)
			}
		}
		if a.connManager != nil {
			if err := a.connManager.Close(); err != nil {
				a.logger.Error("Error closing RabbitMQ connection", err, nil)
			}
		}
		if a.dbPool != nil {
			a.dbPool.Close()
			a.logger.Info("PostgreSQL pool closed.", nil)
		}

		a.logger.Info("Application shut down gracefully.", nil)

		if a.fluentClient != nil {
			if err := a.fluentClient.Close(); err != nil {
				fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
			}
		}
	}()

	a.logger.Info("Application is starting...", nil)
	errorsCh := make(chan error, 2)

	if a.refreshListener != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			listenerLogger := a.logger.WithFields(port.Fields{"listener_name": "Street Index Refresh Requests"})
			listenerLogger.Info("Starting listener...", nil)
			if err := a.refreshListener.Start(appCtx); err != nil {
				listenerLogger.Error("Listener stopped with an unexpected error", err, nil)
				errorsCh <- fmt.Errorf("refresh listener error: %w", err)
				return
			}
			listenerLogger.Info("Listener stopped gracefully.", nil)
		}()
	}

	go func() {
		if err := a.apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errorsCh <- fmt.Errorf("failed to start HTTP server: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var runErr error
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
	case runErr = <-errorsCh:
		a.logger.Error("Component failed, shutting down", runErr, nil)
	}

	cancelApp()
	return runErr
}
