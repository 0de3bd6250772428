package config

import (
	"fmt"
	"os"
	"time"

	"panorama-ingest/internal/domain"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/wb-go/wbf/retry"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Upload  UploadConfig  `yaml:"upload"`
	Extract ExtractConfig `yaml:"extract"`
	Minio   MinioConfig   `yaml:"minio"`
	DB      DBConfig      `yaml:"db"`
	Kafka   KafkaConfig   `yaml:"kafka"`
	Retry   RetryConfig   `yaml:"retry"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"SERVER_ADDR" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"120s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"120s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type UploadConfig struct {
	MaxSize int64 `yaml:"max_size" env:"UPLOAD_MAX_SIZE" env-default:"209715200"`
}

// ExtractConfig carries the empirical size floors for embedded-preview
// extraction. They are tuned to observed camera output, not derived from
// any format specification.
type ExtractConfig struct {
	MinSegmentBytes int `yaml:"min_segment_bytes" env:"EXTRACT_MIN_SEGMENT_BYTES" env-default:"51200"`
	MinSourceBytes  int `yaml:"min_source_bytes" env:"EXTRACT_MIN_SOURCE_BYTES" env-default:"512000"`
}

// MinioConfig selects the storage mode: a non-empty AccessKey switches
// the service from inline data-URI fallback to persistent object storage.
type MinioConfig struct {
	Endpoint      string `yaml:"endpoint" env:"MINIO_ENDPOINT" env-default:"localhost:9000"`
	AccessKey     string `yaml:"access_key" env:"MINIO_ACCESS_KEY"`
	SecretKey     string `yaml:"secret_key" env:"MINIO_SECRET_KEY"`
	Bucket        string `yaml:"bucket" env:"MINIO_BUCKET" env-default:"panoramas"`
	UseSSL        bool   `yaml:"use_ssl" env:"MINIO_USE_SSL" env-default:"false"`
	PublicBaseURL string `yaml:"public_base_url" env:"MINIO_PUBLIC_BASE_URL"`
}

type DBConfig struct {
	Host            string        `yaml:"host" env:"PG_HOST"`
	Port            string        `yaml:"port" env:"PG_PORT" env-default:"5432"`
	User            string        `yaml:"user" env:"PG_USER" env-default:"postgres"`
	Password        string        `yaml:"password" env:"PG_PASSWORD"`
	Name            string        `yaml:"name" env:"PG_NAME" env-default:"panoramas"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"PG_MAX_OPEN_CONNS" env-default:"10"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"PG_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"PG_CONN_MAX_LIFETIME" env-default:"30m"`
}

type KafkaConfig struct {
	Brokers      []string `yaml:"brokers" env:"KAFKA_BROKERS"`
	ResultsTopic string   `yaml:"results_topic" env:"KAFKA_RESULTS_TOPIC" env-default:"panorama-ingested"`
}

type RetryConfig struct {
	Attempts int           `yaml:"attempts" env:"RETRY_ATTEMPTS" env-default:"3"`
	Delay    time.Duration `yaml:"delay" env:"RETRY_DELAY" env-default:"500ms"`
	Backoff  float64       `yaml:"backoff" env:"RETRY_BACKOFF" env-default:"2"`
}

func MustLoad() (*Config, error) {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read config from env: %w", err)
		}
	}

	if cfg.Upload.MaxSize <= 0 {
		cfg.Upload.MaxSize = domain.DefaultMaxUploadSize
	}
	if cfg.Extract.MinSegmentBytes <= 0 {
		cfg.Extract.MinSegmentBytes = domain.DefaultMinSegmentBytes
	}
	if cfg.Extract.MinSourceBytes <= 0 {
		cfg.Extract.MinSourceBytes = domain.DefaultMinSourceBytes
	}

	return &cfg, nil
}

func (c *Config) DBDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// DBEnabled reports whether an ingest-history database is configured.
func (c *Config) DBEnabled() bool {
	return c.DB.Host != ""
}

// KafkaEnabled reports whether result events should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}

// StorageEnabled reports whether the persistent sink is configured; when
// false the service falls back to inline data URIs.
func (c *Config) StorageEnabled() bool {
	return c.Minio.AccessKey != ""
}

func (c *Config) DefaultRetryStrategy() retry.Strategy {
	return retry.Strategy{
		Attempts: c.Retry.Attempts,
		Delay:    c.Retry.Delay,
		Backoff:  c.Retry.Backoff,
	}
}
