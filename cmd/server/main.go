package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/munderdifflin/fulfillment-service/config"
	"github.com/munderdifflin/fulfillment-service/pkg/broker"
	"github.com/munderdifflin/fulfillment-service/pkg/cache"
	"github.com/munderdifflin/fulfillment-service/pkg/logger"
	"github.com/munderdifflin/fulfillment-service/pkg/postgres"
	"github.com/munderdifflin/fulfillment-service/pkg/search"

	"github.com/munderdifflin/fulfillment-service/internal/catalog"
	catRepoPkg "github.com/munderdifflin/fulfillment-service/internal/catalog/repository"
	eventsKafka "github.com/munderdifflin/fulfillment-service/internal/events/kafka"
	"github.com/munderdifflin/fulfillment-service/internal/feasibility"
	fulfillH "github.com/munderdifflin/fulfillment-service/internal/fulfillment/handler"
	fulfillListenerPkg "github.com/munderdifflin/fulfillment-service/internal/fulfillment/listener"
	fulfillUCPkg "github.com/munderdifflin/fulfillment-service/internal/fulfillment/usecase"
	ledgerPkg "github.com/munderdifflin/fulfillment-service/internal/ledger"
	ledgerRepoPkg "github.com/munderdifflin/fulfillment-service/internal/ledger/repository"
	ledgerUCPkg "github.com/munderdifflin/fulfillment-service/internal/ledger/usecase"
	"github.com/munderdifflin/fulfillment-service/internal/model"
	"github.com/munderdifflin/fulfillment-service/internal/pricing"
	quotesPkg "github.com/munderdifflin/fulfillment-service/internal/quotes"
	quotesRepoPkg "github.com/munderdifflin/fulfillment-service/internal/quotes/repository"
	quotesUCPkg "github.com/munderdifflin/fulfillment-service/internal/quotes/usecase"
	reportingUCPkg "github.com/munderdifflin/fulfillment-service/internal/reporting/usecase"
)

// seedStock is the opening per-item stock when running on the in-memory
// store (no Postgres).
const seedStock = 400

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     false,
		DisableStacktrace: false,
	}
	if cfg.Server.AppEnv == "development" || cfg.Server.AppEnv == "dev" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = "console"
		logConfig.Level = "debug"
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	openingCash, err := decimal.NewFromString(cfg.Fulfillment.OpeningCashBalance)
	if err != nil {
		appLogger.Fatal("Invalid opening cash balance", zap.Error(err))
	}

	// 3. Connect to Database (falls back to the in-memory ledger when
	// Postgres is not reachable, e.g. local development)
	var (
		catRepo     catalog.Repository
		ledgerStore ledgerPkg.Store
		quotesRepo  quotesPkg.Repository
	)
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Warn("Could not connect to database, using in-memory ledger", zap.Error(err))
		items := catalog.SeedItems()
		records := make([]model.InventoryRecord, len(items))
		for i, item := range items {
			records[i] = model.InventoryRecord{
				ItemID:    item.ItemID,
				OnHand:    seedStock,
				UnitCost:  item.UnitCost,
				UnitPrice: item.UnitPrice,
			}
		}
		catRepo = catRepoPkg.NewMemoryRepository(items)
		ledgerStore = ledgerRepoPkg.NewMemoryStore(openingCash, records, cfg.Fulfillment.AllowNegativeCash)
		quotesRepo = quotesRepoPkg.NewMemoryRepository()
	} else {
		defer db.Close()
		appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))
		catRepo = catRepoPkg.NewPGRepository(db)
		ledgerStore = ledgerRepoPkg.NewPGStore(db, cfg.Fulfillment.AllowNegativeCash)
		quotesRepo = quotesRepoPkg.NewPGRepository(db)
	}

	// 4. Initialize Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Warn("Could not connect to Redis (commit lock and report cache disabled)", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close()
		appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}

	// 5. Initialize Kafka
	kafkaConsumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.OrdersTopic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer kafkaConsumer.Close()
	appLogger.Info("Connected to Kafka Consumer",
		zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.OrdersTopic))

	kafkaPublisher := broker.NewPublisher(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.TransactionTopic,
	})
	defer kafkaPublisher.Close()

	// 5.5 Initialize Elasticsearch
	esClient, err := search.NewClient(&search.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		appLogger.Warn("Could not connect to Elasticsearch (quote search falls back to SQL)", zap.Error(err))
		esClient = nil
	} else {
		appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
	}

	// 6. Initialize UseCases
	ledgerUC := ledgerUCPkg.NewLedgerUseCase(ledgerStore, redisClient, appLogger)
	pricer := pricing.NewEngine()
	decider := feasibility.NewDecider(
		feasibility.NewLeadTimeOracle(),
		cfg.Fulfillment.ReorderThreshold,
		cfg.Fulfillment.MinReorderQty,
	)
	quotesUC := quotesUCPkg.NewQuotesUseCase(quotesRepo, esClient, appLogger)
	publisher := eventsKafka.NewPublisher(kafkaPublisher)
	fulfillUC := fulfillUCPkg.NewFulfillmentUseCase(
		catRepo, ledgerUC, pricer, decider, quotesUC, publisher, appLogger,
	)
	reportingUC := reportingUCPkg.NewReportingUseCase(ledgerUC, redisClient, appLogger)

	// 6.5 Start Order Listener
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	orderListener := fulfillListenerPkg.NewOrderListener(kafkaConsumer, fulfillUC, appLogger)
	go orderListener.Start(ctx)

	// 7. Start HTTP Server
	if cfg.Server.AppEnv != "development" && cfg.Server.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	orderHandler := fulfillH.NewOrderHandler(fulfillUC, reportingUC, quotesUC, appLogger)
	orderHandler.Register(router)

	port := cfg.Server.HTTPPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	srv := &http.Server{
		Addr:    port,
		Handler: router,
	}

	appLogger.Info("Starting HTTP server", zap.String("port", port))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("forced shutdown", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
