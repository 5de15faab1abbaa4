package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"eskytrack/internal/api/router"
	"eskytrack/internal/cache"
	"eskytrack/internal/config"
	"eskytrack/internal/core/repository"
	"eskytrack/internal/core/service"
	"eskytrack/internal/logging"
	"eskytrack/internal/metrics"
	"eskytrack/internal/protocol/esky620"
	"eskytrack/internal/protocol/server"
	"eskytrack/internal/publish"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to YAML config file")
	tcpAddr := pflag.String("tcp-addr", "", "device listener address (overrides config)")
	httpAddr := pflag.String("http-addr", "", "HTTP API address (overrides config)")
	logLevel := pflag.String("log-level", "", "log level: debug, info, warn, error (overrides config)")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *tcpAddr != "" {
		cfg.Server.TCPAddr = *tcpAddr
	}
	if *httpAddr != "" {
		cfg.Server.HTTPAddr = *httpAddr
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	deviceRepo, positionRepo, err := openRepositories(cfg, logger)
	if err != nil {
		return err
	}

	redisCache := cache.New(cfg.Redis.URL, logger)
	defer redisCache.Close()

	publisher, err := openPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	ingestMetrics := metrics.NewIngest(reg)

	// Initialize services
	registry := service.NewDeviceRegistry(deviceRepo, redisCache, cfg.Redis.RegistryTTL, logger)
	decoder := esky620.NewDecoder(registry, esky620.WithLogger(logger.Named("esky620")))
	deviceService := service.NewDeviceService(deviceRepo, registry)
	positionService := service.NewPositionService(positionRepo, deviceRepo, decoder, publisher, ingestMetrics, logger)

	// Device listener
	tcpServer := server.NewTCPServer(cfg.Server.TCPAddr, cfg.Server.ReadTimeout,
		server.NewIngestHandler(positionService, logger), logger.Named("tcp"))
	if err := tcpServer.Start(); err != nil {
		return err
	}
	defer tcpServer.Stop()

	// HTTP API
	httpServer := &http.Server{
		Addr: cfg.Server.HTTPAddr,
		Handler: router.NewRouter(deviceService, positionService, router.Options{
			JWTSecret: cfg.Auth.JWTSecret,
			Gatherer:  reg,
			Logger:    logger.Named("http"),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("Shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(ctx)
}

func openRepositories(cfg *config.Config, logger *zap.Logger) (repository.DeviceRepository, repository.PositionRepository, error) {
	if cfg.MongoDB.URI == "" {
		logger.Warn("MongoDB URI not set, keeping devices and positions in memory")
		return repository.NewInMemoryDeviceRepository(), repository.NewInMemoryPositionRepository(), nil
	}

	db, err := config.ConnectMongoDB(cfg.MongoDB, logger)
	if err != nil {
		return nil, nil, err
	}

	deviceRepo := repository.NewMongoDeviceRepository(db)
	positionRepo := repository.NewMongoPositionRepository(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := deviceRepo.EnsureIndexes(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to create device indexes: %w", err)
	}
	if err := positionRepo.EnsureIndexes(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to create position indexes: %w", err)
	}
	return deviceRepo, positionRepo, nil
}

func openPublisher(cfg *config.Config, logger *zap.Logger) (publish.Publisher, error) {
	if cfg.MQTT.Broker == "" {
		logger.Info("MQTT broker not set, positions will not be published")
		return publish.NopPublisher{}, nil
	}
	return publish.NewMQTTPublisher(publish.MQTTConfig{
		Broker:      cfg.MQTT.Broker,
		ClientID:    cfg.MQTT.ClientID,
		TopicPrefix: cfg.MQTT.TopicPrefix,
		QoS:         cfg.MQTT.QoS,
	}, logger.Named("mqtt"))
}
