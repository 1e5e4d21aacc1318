package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"fulfillment/cmd"
	httpin "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/adapters/out/kafka"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/redis"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/jobs"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	migrate(configs)

	gormDB := openDB(configs, configs.DBUser, configs.DBPassword)
	defer closeDB(gormDB)

	ledgerUser, ledgerPassword := configs.LedgerCredentials()
	ledgerDB := openDB(configs, ledgerUser, ledgerPassword)
	defer closeDB(ledgerDB)

	idempotency, closeRedis := newIdempotencyStore(configs, logger)
	defer closeRedis()

	writer, err := kafka.NewWriter(configs.KafkaHost, configs.KafkaOrderChangedTopic)
	if err != nil {
		log.Fatalf("Failed to create kafka writer: %v", err)
	}
	publisher := kafka.NewEventPublisher(writer)
	defer func() {
		if closeErr := publisher.Close(); closeErr != nil {
			logger.Error("close kafka writer", "error", closeErr)
		}
	}()

	app := cmd.NewCompositionRoot(configs, gormDB, ledgerDB, idempotency, publisher, logger)

	jobManager := jobs.NewJobManager(app.CreatePublishOutboxEventsCommandHandler(), configs.OutboxBatchSize, logger)
	if err = jobManager.StartAll(); err != nil {
		log.Fatalf("Failed to start jobs: %v", err)
	}
	defer jobManager.StopAll()

	startWebServer(ctx, app, configs, logger)
}

func getConfigs() cmd.Config {
	// A missing .env is fine: the variables may come from the environment.
	if err := godotenv.Load(".env"); err != nil {
		log.Infof("No .env file loaded: %v", err)
	}

	config := cmd.Config{
		HTTPPort:               goDotEnvVariable("HTTP_PORT", "8080"),
		DBHost:                 goDotEnvVariable("DB_HOST", "localhost"),
		DBPort:                 goDotEnvVariable("DB_PORT", "5432"),
		DBUser:                 goDotEnvVariable("DB_USER", ""),
		DBPassword:             goDotEnvVariable("DB_PASSWORD", ""),
		DBName:                 goDotEnvVariable("DB_NAME", ""),
		DBSslMode:              goDotEnvVariable("DB_SSLMODE", "disable"),
		LedgerDBUser:           goDotEnvVariable("LEDGER_DB_USER", ""),
		LedgerDBPassword:       goDotEnvVariable("LEDGER_DB_PASSWORD", ""),
		MigrationDBUser:        goDotEnvVariable("MIGRATION_DB_USER", ""),
		MigrationDBPassword:    goDotEnvVariable("MIGRATION_DB_PASSWORD", ""),
		RedisAddr:              goDotEnvVariable("REDIS_ADDR", ""),
		IdempotencyTTL:         durationVariable("IDEMPOTENCY_TTL", redis.DefaultTTL),
		KafkaHost:              goDotEnvVariable("KAFKA_HOST", ""),
		KafkaOrderChangedTopic: goDotEnvVariable("KAFKA_ORDER_CHANGED_TOPIC", "order.changed"),
		OutboxBatchSize:        intVariable("OUTBOX_BATCH_SIZE", 100),
		AgentHoldPercentage:    goDotEnvVariable("AGENT_HOLD_PERCENTAGE", "100"),
		FailedDeliveryFee:      goDotEnvVariable("FAILED_DELIVERY_FEE", "0"),
		BatchConcurrency:       intVariable("BATCH_CONCURRENCY", 4),
		HTTPRateLimit:          floatVariable("HTTP_RATE_LIMIT", 20),
		HTTPRateBurst:          intVariable("HTTP_RATE_BURST", 40),
	}
	return config
}

func goDotEnvVariable(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func intVariable(key string, fallback int) int {
	raw := goDotEnvVariable(key, "")
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Fatalf("Invalid %s: %v", key, err)
	}
	return value
}

func floatVariable(key string, fallback float64) float64 {
	raw := goDotEnvVariable(key, "")
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Fatalf("Invalid %s: %v", key, err)
	}
	return value
}

func durationVariable(key string, fallback time.Duration) time.Duration {
	raw := goDotEnvVariable(key, "")
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		log.Fatalf("Invalid %s: %v", key, err)
	}
	return value
}

func openDB(configs cmd.Config, user, password string) *gorm.DB {
	dsn, err := postgres.MakeConnectionString(
		configs.DBHost, configs.DBPort, user, password, configs.DBName, configs.DBSslMode)
	if err != nil {
		log.Fatalf("Invalid database configuration: %v", err)
	}
	db, err := postgres.Open(dsn)
	if err != nil {
		log.Fatalf("Failed to connect to database as %s: %v", user, err)
	}
	return db
}

// migrate runs the schema migration on a pool of its own, so the client role
// never needs DDL rights.
func migrate(configs cmd.Config) {
	user, password := configs.MigrationCredentials()
	db := openDB(configs, user, password)
	defer closeDB(db)
	if err := postgres.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
}

func closeDB(db *gorm.DB) {
	if err := postgres.Close(db); err != nil {
		log.Errorf("Failed to close database: %v", err)
	}
}

// newIdempotencyStore connects to Redis when REDIS_ADDR is set. Without it,
// idempotency keys are accepted but not deduplicated.
func newIdempotencyStore(configs cmd.Config, logger *slog.Logger) (ports.IdempotencyStore, func()) {
	if configs.RedisAddr == "" {
		logger.Warn("REDIS_ADDR is not set, idempotency keys are not deduplicated")
		return redis.NoopIdempotencyStore{}, func() {}
	}

	client := goredis.NewClient(&goredis.Options{Addr: configs.RedisAddr})
	return redis.NewIdempotencyStore(client, configs.IdempotencyTTL), func() {
		if err := client.Close(); err != nil {
			logger.Error("close redis client", "error", err)
		}
	}
}

func startWebServer(ctx context.Context, app cmd.CompositionRoot, configs cmd.Config, logger *slog.Logger) {
	changeStatus, err := app.CreateChangeOrderStatusCommandHandler()
	if err != nil {
		log.Fatalf("Failed to build status handler: %v", err)
	}

	server := httpin.NewServer(
		app.CreateCreateOrderCommandHandler(),
		changeStatus,
		app.CreateBatchChangeOrderStatusCommandHandler(changeStatus),
		app.CreateGetOrderQueryHandler(),
		app.CreateGetUncompletedOrdersQueryHandler(),
		logger,
	)

	doc, err := httpin.LoadOpenAPI(ctx)
	if err != nil {
		log.Fatalf("Failed to load API description: %v", err)
	}

	e, err := httpin.NewRouter(server, httpin.RouterConfig{
		RateLimit: configs.HTTPRateLimit,
		Burst:     configs.HTTPRateBurst,
	}, doc, logger)
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	go func() {
		logger.Info("HTTP server listening", "port", configs.HTTPPort)
		if startErr := e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)); startErr != nil &&
			!errors.Is(startErr, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", startErr)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = e.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown", "error", err)
	}
}
