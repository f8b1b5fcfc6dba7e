package main

import (
	"context"
	"database/sql"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smart_ems/internal/alerting"
	"smart_ems/internal/config"
	"smart_ems/internal/diagnostics"
	"smart_ems/internal/handlers"
	"smart_ems/internal/logger"
	"smart_ems/internal/models"
	"smart_ems/internal/notify"
	"smart_ems/internal/repository"
	"smart_ems/internal/repository/db"
	"smart_ems/internal/server"
	"smart_ems/internal/service"
	"smart_ems/internal/telemetry"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const mqttDisconnectQuiesceMs = 250

func main() {
	// load configs/config.yml, EMS_* env overrides
	cfg, err := config.Load("configs")
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Get(cfg.Log.Level, cfg.Log.Format)

	// open DB
	sqlDB, err := openDB(cfg, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// build the fleet
	registry, err := buildRegistry(cfg)
	if err != nil {
		log.Fatalw("failed to build device fleet", "err", err)
	}
	log.Infow("fleet ready", "devices", registry.Len(), "seed", cfg.Simulation.Seed)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// optional broker connection
	var client mqtt.Client
	if cfg.MQTT.Enabled {
		client, err = notify.DialMQTT(cfg.MQTT.Broker, cfg.MQTT.ClientID)
		if err != nil {
			log.Fatalw("failed to connect to mqtt broker", "err", err, "broker", cfg.MQTT.Broker)
		}
		defer client.Disconnect(mqttDisconnectQuiesceMs)
		log.Infow("mqtt connected", "broker", cfg.MQTT.Broker)
	}

	source, err := buildSource(cfg, registry, client, log)
	if err != nil {
		log.Fatalw("failed to start reading source", "err", err)
	}
	if ingest, ok := source.(*notify.MQTTSource); ok {
		defer func() {
			if serr := ingest.Stop(); serr != nil {
				log.Warnw("mqtt unsubscribe failed", "err", serr)
			}
		}()
	}
	publisher, err := buildPublisher(ctx, cfg, client, log)
	if err != nil {
		log.Fatalw("failed to init publishers", "err", err)
	}

	// wire dependencies
	repos := repository.NewRepository(sqlDB)
	services := service.NewService(repos, service.Deps{
		Log:         log,
		Registry:    registry,
		Source:      source,
		Diagnostics: diagnostics.NewEngine(log),
		Alerts: alerting.NewEngine(log,
			alerting.WithClock(service.RealClock{}.Now),
			alerting.WithHistorySize(cfg.History.Size),
		),
		Publisher:       publisher,
		HistorySize:     cfg.History.Size,
		Retention:       cfg.Alerts.Retention,
		CleanupInterval: cfg.Alerts.CleanupInterval,
	})
	apiHandler := handlers.NewHandler(services, log, handlers.WithRetention(cfg.Alerts.Retention))

	// start the pipeline loop (via composed service)
	go services.Pipeline.Run(ctx, cfg.Simulation.Interval)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, cfg.Server.Port, apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

// openDB initializes the SQLite event log using configuration.
func openDB(cfg config.Config, log *logger.Logger) (*sql.DB, error) {
	dbPath := cfg.DB.Path
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "ems.db")
		dbPath = "ems.db"
	}
	return db.InitDB(dbPath)
}

func buildRegistry(cfg config.Config) (*telemetry.Registry, error) {
	devices, err := telemetry.DefaultFleet(cfg.Simulation.Fleet, rand.New(rand.NewSource(cfg.Simulation.Seed)))
	if err != nil {
		return nil, err
	}
	return telemetry.NewRegistry(devices)
}

// buildSource picks broker ingest when enabled, the synthetic generator otherwise.
func buildSource(cfg config.Config, registry *telemetry.Registry, client mqtt.Client, log *logger.Logger) (service.ReadingSource, error) {
	if cfg.MQTT.Enabled && cfg.MQTT.Ingest {
		src := notify.NewMQTTSource(client, cfg.MQTT.TopicPrefix, registry, log)
		if err := src.Start(); err != nil {
			return nil, err
		}
		log.Infow("reading source: mqtt ingest", "prefix", cfg.MQTT.TopicPrefix)
		return src, nil
	}
	log.Infow("reading source: synthetic generator")
	return telemetry.NewSyntheticSource(registry, telemetry.NewGenerator(log), cfg.Simulation.Seed), nil
}

func buildPublisher(ctx context.Context, cfg config.Config, client mqtt.Client, log *logger.Logger) (notify.Publisher, error) {
	var pubs notify.Multi
	if client != nil {
		pubs = append(pubs, notify.NewMQTTPublisher(client, cfg.MQTT.TopicPrefix, log))
	}
	if cfg.SNS.Enabled {
		minSev, err := models.ParseSeverity(cfg.SNS.MinSeverity)
		if err != nil {
			return nil, err
		}
		sns, err := notify.NewSNSNotifier(ctx, cfg.SNS.Region, cfg.SNS.TopicArn, minSev, log)
		if err != nil {
			return nil, err
		}
		pubs = append(pubs, sns)
	}
	if len(pubs) == 0 {
		return nil, nil
	}
	return pubs, nil
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		log.Infow("http server listening", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
