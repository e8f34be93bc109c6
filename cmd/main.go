package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "greenhouse_control/docs"
	"greenhouse_control/internal/config"
	"greenhouse_control/internal/handlers"
	"greenhouse_control/internal/logger"
	"greenhouse_control/internal/mqtt"
	"greenhouse_control/internal/repository"
	"greenhouse_control/internal/repository/db"
	"greenhouse_control/internal/server"
	"greenhouse_control/internal/service"
)

const shutdownTimeout = 10 * time.Second

// @title                       Greenhouse Control API
// @version                     1.0
// @description                 Token-authenticated control and telemetry API for the greenhouse (serre).
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the API token.
func main() {
	// load config.yml + environment
	cfg, err := config.Load()
	if err != nil {
		logger.Get("info").Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Init(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatalw("invalid config", "err", err)
	}

	// open DB
	conn, err := openDB(cfg.DB, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// control bus
	client, bridge, err := connectBus(cfg.MQTT, log)
	if err != nil {
		log.Fatalw("failed to start mqtt client", "err", err, "broker", cfg.MQTT.Broker)
	}

	// wire dependencies
	repos := repository.NewRepository(conn)
	var bus service.ControlBus = service.NopBus{}
	if bridge != nil {
		bus = bridge
	}
	services := service.NewService(repos, bus, service.Options{
		Token:            cfg.API.Token,
		AllowGlobal:      cfg.Failsafe.AllowGlobal,
		Actuators:        cfg.Actuators,
		SensorStaleAfter: cfg.Sensors.StaleAfter,
		StartedAt:        time.Now(),
	}, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := services.Restore(ctx); err != nil {
		log.Fatalw("failed to restore persisted state", "err", err)
	}

	if bridge != nil {
		if err := bridge.Attach(services.Failsafe, services.Sensors); err != nil {
			log.Fatalw("failed to subscribe to flow engine topics", "err", err)
		}
		services.SetFailsafeNotifier(bridge)
		if !client.IsConnected() {
			log.Warnw("mqtt broker unreachable; retrying in background", "broker", cfg.MQTT.Broker)
			bridge.HandleConnectionLost(mqtt.ErrNotConnected)
		}
		client.SetOnConnect(bridge.HandleConnect)
		client.SetOnDisconnect(bridge.HandleConnectionLost)
		if client.IsConnected() {
			bridge.HandleConnect()
		}
	}

	// start simulator (via composed service)
	if cfg.Sensors.Simulate {
		log.Infow("sensor simulator enabled", "tick", cfg.Sensors.SimulateTick)
		go services.Simulator.Run(ctx, cfg.Sensors.SimulateTick)
	}

	// start HTTP server
	apiHandler := handlers.NewHandler(services, log, cfg.RateLimit, cfg.HTTP)
	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, client, log)
}

// openDB initializes the SQLite database using configuration.
func openDB(cfg config.DBConfig, log *logger.Logger) (*sql.DB, error) {
	path := cfg.Path
	if path == "" {
		log.Infow("db.path not set in config; using default file", "default", "greenhouse.db")
		path = "greenhouse.db"
	}
	return db.InitDB(path)
}

// connectBus dials the broker when MQTT is enabled. Both results are nil otherwise.
// A broker that is down at start-up is retried in the background.
func connectBus(cfg config.MQTTConfig, log *logger.Logger) (*mqtt.Client, *mqtt.Bridge, error) {
	if !cfg.Enabled {
		log.Warnw("mqtt disabled; commands are not forwarded to the flow engine")
		return nil, nil, nil
	}
	client, err := mqtt.Connect(cfg)
	if err != nil {
		return nil, nil, err
	}
	client.SetLogger(log)
	log.Infow("mqtt client started", "broker", cfg.Broker, "prefix", cfg.TopicPrefix, "connected", client.IsConnected())
	return client, mqtt.NewBridge(client, client.Topics(), client.QoS(), log), nil
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "1880"
		}
		log.Infow("http server listening", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, client *mqtt.Client, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}

	if client != nil {
		if err := client.Close(); err != nil {
			log.Errorw("mqtt close failed", "err", err)
		}
	}
}
