package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ambulink/dispatch-core/internal/api"
	"github.com/ambulink/dispatch-core/internal/api/handler"
	"github.com/ambulink/dispatch-core/internal/core/ports"
	"github.com/ambulink/dispatch-core/internal/core/service"
	"github.com/ambulink/dispatch-core/internal/infrastructure/db/memory"
	"github.com/ambulink/dispatch-core/internal/infrastructure/db/mongo"
	"github.com/ambulink/dispatch-core/internal/infrastructure/db/redis"
	"github.com/ambulink/dispatch-core/internal/infrastructure/location"
	"github.com/ambulink/dispatch-core/internal/infrastructure/queue"
	"github.com/ambulink/dispatch-core/internal/pkg/config"
	"github.com/ambulink/dispatch-core/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "dispatchd",
		Env:     cfg.Env,
	})

	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty; every /v1 request will be rejected")
	}

	app, err := build(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("startup failed")
		return err
	}
	defer app.close()

	app.dispatcher.Start(context.WithoutCancel(ctx))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("store", cfg.StoreDriver).Str("location_source", cfg.LocationSource).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := app.dispatcher.Stop(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("event dispatcher did not drain")
	}
	log.Info().Msg("stopped")
	return nil
}

// application holds everything build wires together.
type application struct {
	router     http.Handler
	dispatcher *queue.Dispatcher
	closers    []func()
}

func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// build is the composition root: config → store → redis → location source →
// event sinks → services → router.
func build(ctx context.Context, cfg *config.Config, log zerolog.Logger) (app *application, err error) {
	app = &application{}
	defer func() {
		if err != nil {
			app.close()
		}
	}()

	var (
		store   ports.RecordStore
		sinks   []ports.EventSink
		pingers []handler.Pinger
	)

	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, func() { _ = client.Disconnect(context.Background()) })

		ms := mongo.NewStore(client, db, log)
		if err := ms.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		store = ms
		sinks = append(sinks, mongo.NewAuditSink(db))
		pingers = append(pingers, mongo.NewPinger(client))
	default:
		ms := memory.NewStore()
		app.closers = append(app.closers, ms.Close)
		store = ms
	}

	var (
		rdb  *goredis.Client
		idem ports.IdempotencyStore
	)
	if cfg.Redis.Addr != "" {
		rdb, err = redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, func() { _ = rdb.Close() })

		idem = redis.NewIdempotencyStore(rdb)
		sinks = append(sinks, redis.NewPubSubSink(rdb))
		pingers = append(pingers, redis.NewPinger(rdb))
	}

	var (
		source   ports.LocationSource
		reporter handler.SampleReporter
	)
	switch cfg.LocationSource {
	case config.LocationMQTT:
		client, err := location.ConnectMQTT(cfg.MQTT.Broker, cfg.MQTT.ClientID, nil, func(o *mqtt.ClientOptions) {
			o.SetUsername(cfg.MQTT.Username)
			o.SetPassword(cfg.MQTT.Password)
			o.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
				log.Warn().Err(err).Msg("mqtt connection lost")
			})
		})
		if err != nil {
			return nil, err
		}
		src := location.NewMQTTSource(client, cfg.MQTT.TopicPrefix, log)
		app.closers = append(app.closers, src.Close)
		source = src
	default:
		if rdb == nil {
			return nil, fmt.Errorf("LOCATION_SOURCE=redis needs REDIS_ADDR")
		}
		src := location.NewRedisSource(rdb, log)
		app.closers = append(app.closers, src.Close)
		source = src
		reporter = src
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	app.dispatcher = queue.NewDispatcher(cfg.EventWorkers, sinks, log)
	dispatch := service.NewDispatchService(store, idem, app.dispatcher, loc, log)
	locationService := service.NewLocationService(source, cfg.FixPolicy(), log)

	app.router = api.NewRouter(api.Dependencies{
		Dispatch:  dispatch,
		Location:  locationService,
		Reporter:  reporter,
		Pingers:   pingers,
		JWTSecret: cfg.JWTSecret,
		Logger:    log,
	})
	return app, nil
}
