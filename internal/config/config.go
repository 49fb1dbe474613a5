package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/wb-go/wbf/retry"
)

const (
	BackendLocal = "local"
	BackendMinIO = "minio"
)

type Config struct {
	Env     string        `yaml:"env" env:"APP_ENV" env-default:"development"`
	Log     LogConfig     `yaml:"log"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Media   MediaConfig   `yaml:"media"`
	Upload  UploadConfig  `yaml:"upload"`
	DB      DBConfig      `yaml:"db"`
	Kafka   KafkaConfig   `yaml:"kafka"`
	Retry   RetryConfig   `yaml:"retry"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"SERVER_ADDR" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"120s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS" env-default:"*" env-separator:","`
}

type StorageConfig struct {
	Backend string      `yaml:"backend" env:"STORAGE_BACKEND" env-default:"local"`
	Dir     string      `yaml:"dir" env:"STORAGE_DIR" env-default:"./uploads"`
	MinIO   MinIOConfig `yaml:"minio"`
}

type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint" env:"MINIO_ENDPOINT" env-default:"localhost:9000"`
	AccessKey string `yaml:"access_key" env:"MINIO_ACCESS_KEY" env-default:"minioadmin"`
	SecretKey string `yaml:"secret_key" env:"MINIO_SECRET_KEY" env-default:"minioadmin"`
	Bucket    string `yaml:"bucket" env:"MINIO_BUCKET" env-default:"uploads"`
	UseSSL    bool   `yaml:"use_ssl" env:"MINIO_USE_SSL" env-default:"false"`
}

// MediaConfig drives public URL resolution.
type MediaConfig struct {
	BaseURL      string `yaml:"base_url" env:"MEDIA_BASE_URL" env-default:""`
	PublicPrefix string `yaml:"public_prefix" env:"MEDIA_PUBLIC_PREFIX" env-default:"/uploads"`
	Placeholder  string `yaml:"placeholder" env:"MEDIA_PLACEHOLDER" env-default:"/placeholder.png"`
}

type UploadConfig struct {
	WatermarkText    string  `yaml:"watermark_text" env:"UPLOAD_WATERMARK_TEXT" env-default:""`
	WatermarkOpacity float64 `yaml:"watermark_opacity" env:"UPLOAD_WATERMARK_OPACITY" env-default:"0.5"`
}

type DBConfig struct {
	DSN             string        `yaml:"dsn" env:"DB_DSN" env-default:""`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"10"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"30m"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	Topic   string   `yaml:"topic" env:"KAFKA_TOPIC" env-default:"media-artifacts"`
}

type RetryConfig struct {
	Attempts int           `yaml:"attempts" env:"RETRY_ATTEMPTS" env-default:"3"`
	Delay    time.Duration `yaml:"delay" env:"RETRY_DELAY" env-default:"500ms"`
	Backoff  float64       `yaml:"backoff" env:"RETRY_BACKOFF" env-default:"2"`
}

// MustLoad reads CONFIG_PATH (if set) and the environment, with a .env file
// loaded first when present.
func MustLoad() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case BackendLocal:
		if c.Storage.Dir == "" {
			return errors.New("storage dir is required for local backend")
		}
	case BackendMinIO:
		if c.Storage.MinIO.Endpoint == "" || c.Storage.MinIO.Bucket == "" {
			return errors.New("minio endpoint and bucket are required")
		}
	default:
		return fmt.Errorf("unsupported storage backend: %s", c.Storage.Backend)
	}
	if strings.Trim(c.Media.PublicPrefix, "/") == "" {
		return errors.New("media public prefix must not be empty")
	}
	return nil
}

func (c *Config) DefaultRetryStrategy() retry.Strategy {
	return retry.Strategy{
		Attempts: c.Retry.Attempts,
		Delay:    c.Retry.Delay,
		Backoff:  c.Retry.Backoff,
	}
}

func (c *Config) DBDSN() string {
	return c.DB.DSN
}

func (c *Config) CatalogEnabled() bool {
	return c.DB.DSN != ""
}

func (c *Config) EventsEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}
