package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server      ServerConfig
	Logger      LoggerConfig
	Postgres    PostgresConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	Elastic     ElasticsearchConfig
	Fulfillment FulfillmentConfig
}

type ServerConfig struct {
	AppEnv   string
	HTTPPort string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers          []string
	OrdersTopic      string
	TransactionTopic string
	GroupID          string
}

type ElasticsearchConfig struct {
	Addresses []string
	Username  string
	Password  string
}

// FulfillmentConfig carries the ledger and reorder policy constants.
type FulfillmentConfig struct {
	// ReorderThreshold is the minimum shortfall, in units, that triggers a
	// supplier reorder for a line.
	ReorderThreshold int64
	// MinReorderQty is the floor applied to any reorder quantity.
	MinReorderQty int64
	// OpeningCashBalance seeds the ledger when no prior state exists.
	OpeningCashBalance string
	// AllowNegativeCash permits reorders to drive the cash balance below zero.
	AllowNegativeCash bool
}

func LoadEnv() *Config {
	// Basic config loading
	// In a real scenario, use structured config loader like viper or koanf
	return &Config{
		Server: ServerConfig{
			AppEnv:   getEnv("APP_ENV", "dev"),
			HTTPPort: getEnv("HTTP_PORT", ":8080"),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Postgres: PostgresConfig{
			Host:            getEnv("POSTGRES_HOST", "localhost"),
			Port:            getEnv("POSTGRES_PORT", "5432"),
			User:            getEnv("POSTGRES_USER", "fulfillment"),
			Password:        getEnv("POSTGRES_PASSWORD", "fulfillment"),
			DBName:          getEnv("POSTGRES_DB", "fulfillment"),
			SSLMode:         getEnv("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("POSTGRES_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvInt("POSTGRES_CONN_MAX_LIFETIME", 300),
			ConnMaxIdleTime: getEnvInt("POSTGRES_CONN_MAX_IDLE_TIME", 60),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers:          getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			OrdersTopic:      getEnv("KAFKA_TOPIC_ORDERS", "orders.requests"),
			TransactionTopic: getEnv("KAFKA_TOPIC_TRANSACTIONS", "transactions.committed"),
			GroupID:          getEnv("KAFKA_GROUP_FULFILLMENT", "fulfillment"),
		},
		Elastic: ElasticsearchConfig{
			Addresses: getEnvSlice("ELASTICSEARCH_ADDRESSES", []string{"http://localhost:9200"}),
			Username:  getEnv("ELASTICSEARCH_USERNAME", ""),
			Password:  getEnv("ELASTICSEARCH_PASSWORD", ""),
		},
		Fulfillment: FulfillmentConfig{
			ReorderThreshold:   int64(getEnvInt("REORDER_THRESHOLD", 100)),
			MinReorderQty:      int64(getEnvInt("MIN_REORDER_QTY", 500)),
			OpeningCashBalance: getEnv("OPENING_CASH_BALANCE", "50000"),
			AllowNegativeCash:  getEnvBool("ALLOW_NEGATIVE_CASH", false),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.Split(value, ",")
	}
	return fallback
}
