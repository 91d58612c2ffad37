package config

import (
	"slotbook-service/internal/pkg/constvars"
	"slotbook-service/internal/pkg/utils"
	"time"

	"github.com/joho/godotenv"
)

func init() {
	godotenv.Load()
}

func NewDriverConfig() *DriverConfig {
	return &DriverConfig{
		Redis: Redis{
			Host:     utils.GetEnvString("REDIS_HOST", "localhost"),
			Port:     utils.GetEnvString("REDIS_PORT", "6379"),
			Password: utils.GetEnvString("REDIS_PASSWORD", ""),
			DB:       utils.GetEnvInt("REDIS_DB", 0),
		},
		Logger: Logger{
			Level:               utils.GetEnvString("LOGGER_LEVEL", "debug"),
			OutputFileName:      utils.GetEnvString("LOGGER_OUTPUT_FILENAME", "logger.log"),
			OutputErrorFileName: utils.GetEnvString("LOGGER_OUTPUT_ERROR_FILENAME", "logger_error.log"),
		},
		RabbitMQ: RabbitMQ{
			Port:     utils.GetEnvString("RABBITMQ_PORT", "5672"),
			Host:     utils.GetEnvString("RABBITMQ_HOST", "localhost"),
			Username: utils.GetEnvString("RABBITMQ_USERNAME", "guest"),
			Password: utils.GetEnvString("RABBITMQ_PASSWORD", "guest"),
		},
		Postgres: Postgres{
			Host:     utils.GetEnvString("POSTGRES_HOST", "localhost"),
			Port:     utils.GetEnvString("POSTGRES_PORT", "5432"),
			Username: utils.GetEnvString("POSTGRES_USERNAME", "slotbook"),
			Password: utils.GetEnvString("POSTGRES_PASSWORD", "slotbook"),
			DBName:   utils.GetEnvString("POSTGRES_DB_NAME", "slotbook"),
			SSLMode:  utils.GetEnvString("POSTGRES_SSL_MODE", "disable"),
			MaxConns: utils.GetEnvInt("POSTGRES_MAX_CONNS", 10),
		},
	}
}

func NewInternalConfig() *InternalConfig {
	return &InternalConfig{
		App: App{
			Env:                        utils.GetEnvString("APP_ENV", "development"),
			Port:                       utils.GetEnvString("APP_PORT", ":8080"),
			Version:                    utils.GetEnvString("APP_VERSION", "v1.0"),
			Address:                    utils.GetEnvString("APP_ADDRESS", "localhost"),
			Timezone:                   utils.GetEnvString("APP_TIMEZONE", "UTC"),
			EndpointPrefix:             utils.GetEnvString("APP_ENDPOINT_PREFIX", "/api/v1"),
			MaxRequests:                utils.GetEnvInt("APP_MAX_REQUEST", 100),
			ShutdownTimeoutInSeconds:   utils.GetEnvInt("APP_SHUTDOWN_TIMEOUT", 10),
			MaxTimeRequestsPerSeconds:  utils.GetEnvInt("APP_MAX_TIME_REQUESTS_PER_SECONDS", 60),
			RequestBodyLimitInMegabyte: utils.GetEnvInt("APP_REQUEST_BODY_LIMIT_IN_MEGABYTE", 1),
		},
		Engine: AppEngine{
			ConfirmationTimeout:  utils.GetEnvDuration("ENGINE_CONFIRMATION_TIMEOUT", 5*time.Second),
			SubscriberQueueSize:  utils.GetEnvInt("ENGINE_SUBSCRIBER_QUEUE_SIZE", 16),
			RefreshWorker:        utils.GetEnvBool("ENGINE_REFRESH_WORKER", false),
			RefreshCronSpec:      utils.GetEnvString("ENGINE_REFRESH_CRON_SPEC", "@every 5m"),
			RefreshRatePerSecond: utils.GetEnvInt("ENGINE_REFRESH_RATE_PER_SECOND", 20),
			LeaderLockTTL:        utils.GetEnvDuration("ENGINE_LEADER_LOCK_TTL", 2*time.Minute),
			RefreshInterval:      utils.GetEnvDuration("ENGINE_REFRESH_INTERVAL", 30*time.Second),
			SuggestionLimit:      utils.GetEnvInt("ENGINE_SUGGESTION_LIMIT", 3),
		},
		Transport: AppTransport{
			Kind:            utils.GetEnvString("TRANSPORT_KIND", constvars.TransportMemory),
			OutboundQueue:   utils.GetEnvString("TRANSPORT_OUTBOUND_QUEUE", "slotbook.outbound"),
			InboundQueue:    utils.GetEnvString("TRANSPORT_INBOUND_QUEUE", "slotbook.inbound"),
			OutboundChannel: utils.GetEnvString("TRANSPORT_OUTBOUND_CHANNEL", "slotbook:outbound"),
			InboundChannel:  utils.GetEnvString("TRANSPORT_INBOUND_CHANNEL", "slotbook:inbound"),
			InboundAPIKey:   utils.GetEnvString("TRANSPORT_INBOUND_API_KEY", ""),
			Prefetch:        utils.GetEnvInt("TRANSPORT_PREFETCH", 16),
		},
		Ledger: AppLedger{
			Enabled:     utils.GetEnvBool("LEDGER_ENABLED", false),
			AutoMigrate: utils.GetEnvBool("LEDGER_AUTO_MIGRATE", true),
		},
	}
}
