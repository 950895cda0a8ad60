package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	googlegrpc "google.golang.org/grpc"

	"travel-wallet/internal/api"
	"travel-wallet/internal/api/middleware"
	"travel-wallet/internal/cache"
	"travel-wallet/internal/config"
	"travel-wallet/internal/currency"
	"travel-wallet/internal/dialogue"
	"travel-wallet/internal/grpc"
	"travel-wallet/internal/kafka"
	"travel-wallet/internal/logger"
	"travel-wallet/internal/rates"
	"travel-wallet/internal/rates/exchangerate"
	"travel-wallet/internal/service"
	"travel-wallet/internal/storages"
	"travel-wallet/internal/storages/memory"
	"travel-wallet/internal/storages/postgres"
	"travel-wallet/internal/storages/redis"
	"travel-wallet/internal/telegram"
)

// @title Travel Wallet API
// @version 1.0
// @description Read-only API over travel wallet trips, expenses and exchange rates

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token issued by the /token bot command.

func main() {
	// Парсинг флагов командной строки
	configPath := flag.String("c", "", "Path to config file")
	flag.Parse()

	// Загрузка конфигурации
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Валидация конфигурации
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid config: %v\n", err)
		os.Exit(1)
	}

	// Инициализация логгера
	log := logger.New(cfg.Logger.Level)
	log.Info("Starting travel-wallet bot...")
	log.Infof("Configuration loaded from: %s", *configPath)

	// Хранилище поездок
	ledger, states := openStorage(cfg, log)
	defer ledger.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := ledger.Ping(ctx); err != nil {
		cancel()
		log.Fatalf("Storage ping failed: %v", err)
	}
	cancel()
	log.Infof("Storage %s is ready", cfg.Storage.Backend)

	// Хранилище состояний диалогов
	if cfg.Storage.StateBackend == config.StateRedis {
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		redisStates, client, err := redis.New(ctx, &redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			StateTTL: cfg.Redis.StateTTL,
		}, log)
		cancel()
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer client.Close()
		states = redisStates
	}

	// Провайдер курсов и кеш
	provider, closeProvider := openRatesProvider(cfg, log)
	defer closeProvider()

	ratesCache := cache.NewRatesCache(cfg.Rates.CacheTTL)
	cachedProvider := cache.NewCachedProvider(provider, ratesCache, log)
	log.Info("Rates cache initialized")

	// Kafka producer событий поездок
	kafkaProducer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
	defer kafkaProducer.Close()

	var events service.EventPublisher
	if kafkaProducer.Enabled() {
		events = kafkaProducer
	}

	// Сервисный слой и автомат диалога
	tripService := service.NewTripService(ledger, events, log)
	jwtMiddleware := middleware.NewJWTMiddleware(cfg.JWT.Secret, cfg.JWT.Expiration, log)

	machine := dialogue.NewMachine(
		states,
		tripService,
		cachedProvider,
		currency.Resolver{},
		jwtMiddleware,
		cfg.Telegram.HistoryLimit,
		log,
	)

	tgBot, err := telegram.New(telegram.Config{
		Token: cfg.Telegram.Token,
		Debug: cfg.Telegram.Debug,
	}, machine, log)
	if err != nil {
		log.Fatalf("Failed to create Telegram bot: %v", err)
	}

	// HTTP сервер
	router := api.SetupRouter(tripService, cachedProvider, jwtMiddleware, cfg.Telegram.HistoryLimit, log, cfg.Server.GinMode)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("HTTP server is listening on port %s", cfg.Server.HTTPPort)
		log.Infof("Swagger documentation available at: http://localhost:%s/swagger/index.html", cfg.Server.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// gRPC сервер курсов
	var grpcServer *googlegrpc.Server
	if cfg.Server.GRPCPort != "" {
		grpcServer = startRatesServer(cfg.Server.GRPCPort, cachedProvider, log)
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	botDone := make(chan error, 1)
	go func() {
		botDone <- tgBot.Start(ctx)
	}()

	select {
	case <-ctx.Done():
		log.Info("Received shutdown signal...")
	case err := <-botDone:
		if err != nil {
			log.Errorf("Telegram bot error: %v", err)
		}
		stop()
	}

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	if grpcServer != nil {
		grpcServer.GracefulStop()
	}

	log.Info("Server stopped gracefully")
}

// openStorage открывает хранилище поездок; оно же по умолчанию хранит состояния диалогов
func openStorage(cfg *config.Config, log *logrus.Logger) (storages.Ledger, storages.StateStore) {
	if cfg.Storage.Backend != config.StoragePostgres {
		store := memory.New(log)
		log.Warn("Using in-memory storage, data will be lost on restart")
		return store, store
	}

	dbConfig := &postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	if err := postgres.RunMigrations(dbConfig.DSN(), log); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	store, err := postgres.New(dbConfig, log)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	return store, store
}

// openRatesProvider выбирает источник курсов
func openRatesProvider(cfg *config.Config, log *logrus.Logger) (rates.Provider, func()) {
	if cfg.Rates.Backend == config.RatesGRPC {
		client, err := grpc.NewExchangerClient(cfg.Exchanger.Host, cfg.Exchanger.Port, cfg.Exchanger.Timeout, log)
		if err != nil {
			log.Fatalf("Failed to connect to exchanger service: %v", err)
		}
		return client, func() { client.Close() }
	}

	if cfg.Rates.APIKey == "" {
		log.Warn("CURRENCY_API_KEY is not set, rates will be entered manually")
		return rates.Unavailable{}, func() {}
	}

	client := exchangerate.New(&exchangerate.Config{
		BaseURL:         cfg.Rates.BaseURL,
		APIKey:          cfg.Rates.APIKey,
		Timeout:         cfg.Rates.Timeout,
		AmbiguityFactor: cfg.Rates.AmbiguityFactor,
	}, log)
	return client, func() {}
}

func startRatesServer(port string, provider rates.Provider, log *logrus.Logger) *googlegrpc.Server {
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		log.Fatalf("Failed to listen on gRPC port %s: %v", port, err)
	}

	server := googlegrpc.NewServer(googlegrpc.UnaryInterceptor(grpc.LoggingInterceptor(log)))
	grpc.RegisterRatesServer(server, grpc.NewExchangeServer(provider, log))

	go func() {
		log.Infof("gRPC rates server is listening on port %s", port)
		if err := server.Serve(lis); err != nil {
			log.Errorf("gRPC server stopped: %v", err)
		}
	}()

	return server
}
