package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config содержит конфигурацию бота и сопутствующих сервисов
type Config struct {
	Server    ServerConfig
	Telegram  TelegramConfig
	Storage   StorageConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Rates     RatesConfig
	Exchanger ExchangerConfig
	JWT       JWTConfig
	Kafka     KafkaConfig
	Notifier  NotifierConfig
	Logger    LoggerConfig
}

// ServerConfig содержит конфигурацию HTTP и gRPC серверов
type ServerConfig struct {
	HTTPPort string
	// GRPCPort пустой, если сервер курсов не поднимается
	GRPCPort string
	GinMode  string
}

// TelegramConfig содержит конфигурацию Telegram бота
type TelegramConfig struct {
	Token        string
	Debug        bool
	HistoryLimit int
}

// StorageConfig задает выбор хранилищ
type StorageConfig struct {
	Backend      string // memory, postgres
	StateBackend string // store, redis
}

// DatabaseConfig содержит конфигурацию базы данных
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig содержит конфигурацию Redis для состояний диалогов
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	StateTTL time.Duration
}

// RatesConfig содержит конфигурацию провайдера курсов
type RatesConfig struct {
	Backend         string // http, grpc
	APIKey          string
	BaseURL         string
	Timeout         time.Duration
	AmbiguityFactor float64
	CacheTTL        time.Duration
}

// ExchangerConfig содержит адрес удаленного сервиса курсов
type ExchangerConfig struct {
	Host    string
	Port    string
	Timeout time.Duration
}

// JWTConfig содержит конфигурацию JWT
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

// KafkaConfig содержит конфигурацию Kafka
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// NotifierConfig содержит конфигурацию архиватора событий
type NotifierConfig struct {
	MongoURI          string
	MongoDatabase     string
	MongoCollection   string
	MongoTimeout      time.Duration
	BatchSize         int
	Workers           int
	FlushInterval     time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
	StatsInterval     time.Duration
	MaxProcessingTime time.Duration
}

// LoggerConfig содержит конфигурацию логгера
type LoggerConfig struct {
	Level string
}

// Load загружает конфигурацию из файла окружения и переменных окружения
func Load(configPath string) (*Config, error) {
	if configPath != "" {
		if err := godotenv.Load(configPath); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	cfg := &Config{}

	// Server
	cfg.Server.HTTPPort = getEnv("HTTP_PORT", DefaultHTTPPort)
	cfg.Server.GRPCPort = getEnv("GRPC_PORT", DefaultGRPCPort)
	cfg.Server.GinMode = getEnv("GIN_MODE", DefaultGinMode)

	// Telegram
	cfg.Telegram.Token = getEnv("BOT_TOKEN", "")
	cfg.Telegram.Debug = getEnvBool("BOT_DEBUG", DefaultBotDebug)
	cfg.Telegram.HistoryLimit = getEnvInt("HISTORY_LIMIT", DefaultHistoryLimit)

	// Storage
	cfg.Storage.Backend = getEnv("STORAGE_BACKEND", DefaultStorageBackend)
	cfg.Storage.StateBackend = getEnv("STATE_BACKEND", DefaultStateBackend)

	// Database
	cfg.Database.Host = getEnv("DB_HOST", DefaultDBHost)
	cfg.Database.Port = getEnvInt("DB_PORT", DefaultDBPort)
	cfg.Database.User = getEnv("DB_USER", DefaultDBUser)
	cfg.Database.Password = getEnv("DB_PASSWORD", DefaultDBPassword)
	cfg.Database.DBName = getEnv("DB_NAME", DefaultDBName)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", DefaultDBSSLMode)
	cfg.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", DefaultDBMaxOpenConns)
	cfg.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", DefaultDBMaxIdleConns)
	cfg.Database.ConnMaxLifetime = getEnvDuration("DB_CONN_MAX_LIFETIME", DefaultDBConnMaxLifetime)

	// Redis
	cfg.Redis.Addr = getEnv("REDIS_ADDR", DefaultRedisAddr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", DefaultRedisPassword)
	cfg.Redis.DB = getEnvInt("REDIS_DB", DefaultRedisDB)
	cfg.Redis.StateTTL = getEnvDuration("REDIS_STATE_TTL", DefaultRedisStateTTL)

	// Rates
	cfg.Rates.Backend = getEnv("RATES_BACKEND", DefaultRatesBackend)
	cfg.Rates.APIKey = getEnv("CURRENCY_API_KEY", "")
	cfg.Rates.BaseURL = getEnv("RATES_BASE_URL", DefaultRatesBaseURL)
	cfg.Rates.Timeout = getEnvDuration("RATES_TIMEOUT", DefaultRatesTimeout)
	cfg.Rates.AmbiguityFactor = getEnvFloat("RATES_AMBIGUITY_FACTOR", DefaultRatesAmbiguityFactor)
	cfg.Rates.CacheTTL = getEnvDuration("CACHE_RATES_TTL", DefaultCacheRatesTTL)

	// Exchanger gRPC
	cfg.Exchanger.Host = getEnv("EXCHANGER_GRPC_HOST", DefaultExchangerHost)
	cfg.Exchanger.Port = getEnv("EXCHANGER_GRPC_PORT", DefaultExchangerPort)
	cfg.Exchanger.Timeout = getEnvDuration("EXCHANGER_GRPC_TIMEOUT", DefaultExchangerTimeout)

	// JWT
	cfg.JWT.Secret = getEnv("JWT_SECRET", DefaultJWTSecret)
	cfg.JWT.Expiration = getEnvDuration("JWT_EXPIRATION", DefaultJWTExpiration)

	// Kafka
	cfg.Kafka.Brokers = splitList(getEnv("KAFKA_BROKERS", DefaultKafkaBrokers))
	cfg.Kafka.Topic = getEnv("KAFKA_TOPIC", DefaultKafkaTopic)
	cfg.Kafka.GroupID = getEnv("KAFKA_GROUP_ID", DefaultKafkaGroupID)

	// Notifier
	cfg.Notifier.MongoURI = getEnv("MONGO_URI", DefaultMongoURI)
	cfg.Notifier.MongoDatabase = getEnv("MONGO_DATABASE", DefaultMongoDatabase)
	cfg.Notifier.MongoCollection = getEnv("MONGO_COLLECTION", DefaultMongoCollection)
	cfg.Notifier.MongoTimeout = getEnvDuration("MONGO_TIMEOUT", DefaultMongoTimeout)
	cfg.Notifier.BatchSize = getEnvInt("NOTIFIER_BATCH_SIZE", DefaultBatchSize)
	cfg.Notifier.Workers = getEnvInt("NOTIFIER_WORKERS", DefaultWorkers)
	cfg.Notifier.FlushInterval = getEnvDuration("NOTIFIER_FLUSH_INTERVAL", DefaultFlushInterval)
	cfg.Notifier.RetryAttempts = getEnvInt("NOTIFIER_RETRY_ATTEMPTS", DefaultRetryAttempts)
	cfg.Notifier.RetryDelay = getEnvDuration("NOTIFIER_RETRY_DELAY", DefaultRetryDelay)
	cfg.Notifier.StatsInterval = getEnvDuration("NOTIFIER_STATS_INTERVAL", DefaultStatsInterval)
	cfg.Notifier.MaxProcessingTime = getEnvDuration("NOTIFIER_MAX_PROCESSING_TIME", DefaultMaxProcessingTime)

	// Logger
	cfg.Logger.Level = getEnv("LOG_LEVEL", DefaultLogLevel)

	return cfg, nil
}

// getEnv получает переменную окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// splitList разбивает список через запятую, пропуская пустые элементы
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Validate проверяет конфигурацию бота
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}

	if c.Server.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT is required")
	}

	switch c.Storage.Backend {
	case StorageMemory:
	case StoragePostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required for postgres storage")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND: %s", c.Storage.Backend)
	}

	switch c.Storage.StateBackend {
	case StateStore, StateRedis:
	default:
		return fmt.Errorf("unknown STATE_BACKEND: %s", c.Storage.StateBackend)
	}

	switch c.Rates.Backend {
	case RatesHTTP, RatesGRPC:
	default:
		return fmt.Errorf("unknown RATES_BACKEND: %s", c.Rates.Backend)
	}

	if c.Rates.AmbiguityFactor <= 0 {
		return fmt.Errorf("RATES_AMBIGUITY_FACTOR must be positive")
	}

	if c.Telegram.HistoryLimit <= 0 {
		return fmt.Errorf("HISTORY_LIMIT must be positive")
	}

	if c.JWT.Secret == "" || c.JWT.Secret == DefaultJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set to a secure value")
	}

	if _, err := logrus.ParseLevel(c.Logger.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", c.Logger.Level)
	}

	return nil
}

// ValidateNotifier проверяет конфигурацию архиватора событий
func (c *Config) ValidateNotifier() error {
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}

	if c.Notifier.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}

	if c.Notifier.BatchSize <= 0 || c.Notifier.Workers <= 0 {
		return fmt.Errorf("NOTIFIER_BATCH_SIZE and NOTIFIER_WORKERS must be positive")
	}

	if _, err := logrus.ParseLevel(c.Logger.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", c.Logger.Level)
	}

	return nil
}
