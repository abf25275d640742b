package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/wb-go/wbf/retry"
)

type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Minio   MinioConfig
	Kafka   KafkaConfig
	Redis   RedisConfig
	Matrix  MatrixConfig
	Convert ConvertConfig
	Worker  WorkerConfig

	// CacheBackend selects the upload dedup cache: postgres, redis, memory or none.
	CacheBackend string `env:"CACHE_BACKEND" env-default:"postgres"`
}

type ServerConfig struct {
	Addr            string        `env:"SERVER_ADDR" env-default:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" env-default:"30s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type DBConfig struct {
	Host            string        `env:"DB_HOST" env-default:"localhost"`
	Port            int           `env:"DB_PORT" env-default:"5432"`
	User            string        `env:"DB_USER" env-default:"postgres"`
	Password        string        `env:"DB_PASSWORD" env-default:"postgres"`
	Name            string        `env:"DB_NAME" env-default:"stickers"`
	SSLMode         string        `env:"DB_SSLMODE" env-default:"disable"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" env-default:"10"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"30m"`
}

type MinioConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT" env-default:"localhost:9000"`
	AccessKey string `env:"MINIO_ACCESS_KEY" env-default:"minioadmin"`
	SecretKey string `env:"MINIO_SECRET_KEY" env-default:"minioadmin"`
	Bucket    string `env:"MINIO_BUCKET" env-default:"stickers"`
	UseSSL    bool   `env:"MINIO_USE_SSL" env-default:"false"`
}

type KafkaConfig struct {
	Brokers     []string `env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	TaskTopic   string   `env:"KAFKA_TASK_TOPIC" env-default:"sticker-convert"`
	ResultTopic string   `env:"KAFKA_RESULT_TOPIC" env-default:"sticker-converted"`
	GroupID     string   `env:"KAFKA_GROUP_ID" env-default:"sticker-processor-group"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD" env-default:""`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

type MatrixConfig struct {
	HomeserverURL string `env:"MATRIX_HOMESERVER_URL" env-default:"http://localhost:8008"`
	AccessToken   string `env:"MATRIX_ACCESS_TOKEN" env-default:""`
}

type ConvertConfig struct {
	LottieBinary  string `env:"CONVERT_LOTTIE_BINARY" env-default:"lottieconverter"`
	FFmpegBinary  string `env:"CONVERT_FFMPEG_BINARY" env-default:"ffmpeg"`
	FFprobeBinary string `env:"CONVERT_FFPROBE_BINARY" env-default:"ffprobe"`
}

type WorkerConfig struct {
	Concurrency    int `env:"WORKER_CONCURRENCY" env-default:"4"`
	OffloadWorkers int `env:"WORKER_OFFLOAD_WORKERS" env-default:"0"`
}

func MustLoad() (*Config, error) {
	// A missing .env is fine; env vars may come from the environment itself.
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config from environment: %w", err)
	}

	return &cfg, nil
}

func (c *Config) DBDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name, c.DB.SSLMode)
}

func (c *Config) DefaultRetryStrategy() retry.Strategy {
	return retry.Strategy{
		Attempts: 3,
		Delay:    500 * time.Millisecond,
		Backoff:  2,
	}
}
