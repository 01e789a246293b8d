package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env      string `env:"ENV" env-default:"local"`
	HTTP     HTTPConfig
	Database DBConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

type HTTPConfig struct {
	Port    uint16        `env:"HTTP_PORT" env-default:"8080"`
	Timeout time.Duration `env:"HTTP_TIMEOUT" env-default:"30s"`
}

type DBConfig struct {
	Host     string `env:"POSTGRES_HOST" env-default:"localhost"`
	Port     uint16 `env:"POSTGRES_PORT" env-default:"5432"`
	User     string `env:"POSTGRES_USER" env-default:"postgres"`
	Password string `env:"POSTGRES_PASSWORD" env-default:"postgres"`
	DBName   string `env:"POSTGRES_DB" env-default:"cryptosphere"`
}

type RedisConfig struct {
	Enabled  bool          `env:"REDIS_ENABLED" env-default:"true"`
	Addr     string        `env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string        `env:"REDIS_PASSWORD" env-default:""`
	DB       int           `env:"REDIS_DB" env-default:"0"`
	CacheTTL time.Duration `env:"REDIS_CACHE_TTL" env-default:"10m"`
}

// KafkaConfig configures the applied-transaction event stream. Leaving
// Brokers empty disables publishing.
type KafkaConfig struct {
	Brokers      []string      `env:"KAFKA_BROKERS" env-separator:"," env-default:""`
	Topic        string        `env:"KAFKA_TOPIC" env-default:"cryptosphere.transactions"`
	BatchSize    int           `env:"KAFKA_BATCH_SIZE" env-default:"100"`
	BatchTimeout time.Duration `env:"KAFKA_BATCH_TIMEOUT" env-default:"2s"`
	WriteTimeout time.Duration `env:"KAFKA_WRITE_TIMEOUT" env-default:"10s"`
}

func MustLoad() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment variables")
	}

	var cfg Config

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("failed to read environment variables", "error", err)
		os.Exit(1)
	}

	return &cfg
}
