// Package server wires drivers, the availability engine and the HTTP layer
// into one runnable service.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slotbook-service/internal/app/config"
	"slotbook-service/internal/app/contracts"
	"slotbook-service/internal/app/delivery/http/controllers"
	"slotbook-service/internal/app/delivery/http/middlewares"
	"slotbook-service/internal/app/delivery/http/routers"
	"slotbook-service/internal/app/drivers/database"
	"slotbook-service/internal/app/drivers/messaging"
	"slotbook-service/internal/app/services/core/availability"
	"slotbook-service/internal/app/services/core/engine"
	"slotbook-service/internal/app/services/core/reservation"
	"slotbook-service/internal/app/services/core/slot"
	"slotbook-service/internal/app/services/shared/ledger"
	"slotbook-service/internal/app/services/shared/locker"
	redisRepo "slotbook-service/internal/app/services/shared/redis"
	"slotbook-service/internal/app/services/shared/transport"
	"slotbook-service/internal/migration"
	"slotbook-service/internal/pkg/constvars"
	"slotbook-service/internal/pkg/exceptions"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Duplex is a transport that also delivers inbound messages.
type Duplex interface {
	contracts.Transport
	contracts.InboundSource
}

type App struct {
	Bootstrap *config.Bootstrap
	Engine    *engine.Engine
	Transport Duplex

	server *http.Server
	worker *availability.Worker
}

// New connects the configured drivers and builds the engine. Driver
// connection failures are fatal, matching the drivers package.
func New(ctx context.Context, driverConfig *config.DriverConfig, internalConfig *config.InternalConfig, log *zap.Logger) (*App, error) {
	bootstrap := &config.Bootstrap{
		Router:         chi.NewRouter(),
		Logger:         log,
		DriverConfig:   driverConfig,
		InternalConfig: internalConfig,
	}

	kind := internalConfig.Transport.Kind
	if kind == constvars.TransportRedis || internalConfig.Engine.RefreshWorker {
		bootstrap.Redis = database.NewRedisClient(driverConfig)
	}

	duplex, err := newTransport(bootstrap)
	if err != nil {
		_ = bootstrap.Shutdown(ctx)
		return nil, err
	}

	var (
		generatorOpts   []slot.Option
		coordinatorOpts = []reservation.Option{
			reservation.WithConfirmationTimeout(internalConfig.Engine.ConfirmationTimeout),
		}
		holdFinder contracts.HoldFinder
	)
	if internalConfig.Ledger.Enabled {
		bootstrap.Postgres = database.NewPostgresPool(ctx, driverConfig)
		if internalConfig.Ledger.AutoMigrate {
			applied, err := migration.Up(ctx, bootstrap.Postgres)
			if err != nil {
				_ = bootstrap.Shutdown(ctx)
				return nil, fmt.Errorf("migrate ledger: %w", err)
			}
			log.Info("ledger migrations applied", zap.Int("applied", applied))
		}
		holds := ledger.NewPostgresLedger(log, database.NewDB(bootstrap.Postgres))
		generatorOpts = append(generatorOpts, slot.WithAvailabilitySource(holds))
		coordinatorOpts = append(coordinatorOpts, reservation.WithLedger(holds))
		holdFinder = holds
	}

	channel := availability.NewChannel(log, duplex, availability.WithQueueSize(internalConfig.Engine.SubscriberQueueSize))
	coord := reservation.NewCoordinator(log, channel, duplex, coordinatorOpts...)
	eng := engine.NewEngine(log, slot.NewGenerator(log, generatorOpts...), channel, coord,
		engine.WithSuggestionLimit(internalConfig.Engine.SuggestionLimit),
	)

	app := &App{
		Bootstrap: bootstrap,
		Engine:    eng,
		Transport: duplex,
		server: &http.Server{
			Addr:              internalConfig.App.Port,
			Handler:           bootstrap.Router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	if bootstrap.Redis != nil && internalConfig.Engine.RefreshWorker {
		lockerSvc := locker.NewLockService(redisRepo.NewRedisRepository(bootstrap.Redis), log)
		app.worker = availability.NewWorker(log, internalConfig, lockerSvc, channel, duplex)
		bootstrap.WorkerStop = app.worker.Stop
	}

	bootstrap.EngineStop = func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := eng.Close(ctx); err != nil {
			log.Warn("engine closed with errors", zap.Error(err))
		}
		if closer, ok := duplex.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				log.Warn("transport closed with errors", zap.Error(err))
			}
		}
	}

	routers.SetupRoutes(
		bootstrap.Router,
		internalConfig,
		middlewares.NewMiddlewares(log, internalConfig),
		controllers.NewSlotController(log, eng, holdFinder, internalConfig),
	)
	return app, nil
}

func newTransport(bootstrap *config.Bootstrap) (Duplex, error) {
	cfg := bootstrap.InternalConfig.Transport
	switch cfg.Kind {
	case constvars.TransportMemory, "":
		return transport.NewMemory(0), nil
	case constvars.TransportRedis:
		return transport.NewRedisPubSub(bootstrap.Redis, bootstrap.Logger, cfg.OutboundChannel, cfg.InboundChannel), nil
	case constvars.TransportRabbitMQ:
		bootstrap.RabbitMQ = messaging.NewRabbitMQ(bootstrap.DriverConfig)
		return transport.NewRabbitMQ(bootstrap.RabbitMQ, bootstrap.Logger, cfg.OutboundQueue, cfg.InboundQueue, cfg.Prefetch)
	}
	return nil, exceptions.ErrTransportNotCapable(errors.New(cfg.Kind), cfg.Kind)
}

// Run serves HTTP, consumes inbound messages and runs the refresh worker
// until ctx ends, then shuts everything down within the configured timeout.
func (a *App) Run(ctx context.Context) error {
	log := a.Bootstrap.Logger.With(zap.String(constvars.LoggingMethodKey, "server.App.Run"))

	consumeCtx, stopConsuming := context.WithCancel(context.WithoutCancel(ctx))
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.Transport.Consume(consumeCtx, a.Engine.HandleInbound); err != nil {
			log.Error("inbound consumer stopped", zap.Error(err))
		}
	}()

	if a.worker != nil {
		a.worker.Start(context.WithoutCancel(ctx))
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-serveErr:
	}

	log.Info("waiting for pending requests to be processed")
	timeout := time.Duration(a.Bootstrap.InternalConfig.App.ShutdownTimeoutInSeconds) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("server forced to shutdown: %w", err))
	}
	stopConsuming()
	wg.Wait()

	if err := a.Bootstrap.Shutdown(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, err)
	}
	return runErr
}
