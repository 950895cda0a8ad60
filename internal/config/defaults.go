package config

import "time"

// Server defaults
const (
	DefaultHTTPPort = "8080"
	DefaultGRPCPort = ""
	DefaultGinMode  = "release"
	DefaultLogLevel = "info"
)

// Telegram defaults
const (
	DefaultBotDebug     = false
	DefaultHistoryLimit = 20
)

// Backend selection
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	StateStore = "store"
	StateRedis = "redis"

	RatesHTTP = "http"
	RatesGRPC = "grpc"

	DefaultStorageBackend = StorageMemory
	DefaultStateBackend   = StateStore
	DefaultRatesBackend   = RatesHTTP
)

// Database defaults
const (
	DefaultDBHost            = "localhost"
	DefaultDBPort            = 5432
	DefaultDBUser            = "travel_user"
	DefaultDBPassword        = "travel_password"
	DefaultDBName            = "travel_wallet"
	DefaultDBSSLMode         = "disable"
	DefaultDBMaxOpenConns    = 10
	DefaultDBMaxIdleConns    = 5
	DefaultDBConnMaxLifetime = 5 * time.Minute
)

// Redis defaults
const (
	DefaultRedisAddr     = "localhost:6379"
	DefaultRedisPassword = ""
	DefaultRedisDB       = 0
	DefaultRedisStateTTL = 24 * time.Hour
)

// Rates defaults
const (
	DefaultRatesBaseURL         = "https://api.exchangerate.host"
	DefaultRatesTimeout         = 10 * time.Second
	DefaultRatesAmbiguityFactor = 1000.0
	DefaultCacheRatesTTL        = 30 * time.Minute
)

// Exchanger gRPC defaults
const (
	DefaultExchangerHost    = "localhost"
	DefaultExchangerPort    = "50051"
	DefaultExchangerTimeout = 5 * time.Second
)

// JWT defaults
const (
	DefaultJWTSecret     = "change-me-in-production"
	DefaultJWTExpiration = 24 * time.Hour
)

// Kafka defaults
const (
	DefaultKafkaBrokers = ""
	DefaultKafkaTopic   = "ledger-events"
	DefaultKafkaGroupID = "travel-wallet-notifier"
)

// Notifier defaults
const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabase     = "travel_wallet"
	DefaultMongoCollection   = "ledger_events"
	DefaultMongoTimeout      = 10 * time.Second
	DefaultBatchSize         = 50
	DefaultWorkers           = 2
	DefaultFlushInterval     = 5 * time.Second
	DefaultRetryAttempts     = 3
	DefaultRetryDelay        = time.Second
	DefaultStatsInterval     = 30 * time.Second
	DefaultMaxProcessingTime = 15 * time.Second
)
