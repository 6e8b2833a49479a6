package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "PETANDCO"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	StorageRedis  = "redis"
	StorageBolt   = "bolt"
	StorageMemory = "memory"
)

type Config struct {
	App         AppConfig
	CommerceAPI CommerceAPIConfig
	Catalog     CatalogConfig
	Storage     StorageConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	Auth        AuthConfig
	Sync        SyncConfig
	RateLimit   RateLimitConfig
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.CommerceAPI.BaseURL) == "" {
		return fmt.Errorf("PETANDCO_COMMERCE_API_URL is required")
	}
	switch c.Storage.Driver {
	case StorageRedis:
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return fmt.Errorf("storage driver %q requires PETANDCO_REDIS_URL or PETANDCO_REDIS_ADDR", c.Storage.Driver)
		}
	case StorageBolt:
		if strings.TrimSpace(c.Storage.BoltPath) == "" {
			return fmt.Errorf("storage driver %q requires PETANDCO_BOLT_PATH", c.Storage.Driver)
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Sync.RetryInterval <= 0 {
		return fmt.Errorf("sync retry interval must be positive")
	}
	return nil
}

type AppConfig struct {
	Env      string `envconfig:"PETANDCO_APP_ENV" default:"development"`
	Port     string `envconfig:"PETANDCO_APP_PORT" default:"3000"`
	LogLevel string `envconfig:"PETANDCO_LOG_LEVEL" default:"info"`
	// CORSOrigins lists browser origins allowed to call the API with
	// credentials. Empty disables CORS handling.
	CORSOrigins     []string      `envconfig:"PETANDCO_CORS_ORIGINS"`
	ShutdownTimeout time.Duration `envconfig:"PETANDCO_SHUTDOWN_TIMEOUT" default:"10s"`
	// ConnectAttempts bounds startup retries against Redis and Kafka.
	ConnectAttempts int `envconfig:"PETANDCO_CONNECT_ATTEMPTS" default:"5"`
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type CommerceAPIConfig struct {
	BaseURL string        `envconfig:"PETANDCO_COMMERCE_API_URL" required:"true"`
	Timeout time.Duration `envconfig:"PETANDCO_COMMERCE_API_TIMEOUT" default:"10s"`
}

type CatalogConfig struct {
	CacheTTL time.Duration `envconfig:"PETANDCO_CATALOG_CACHE_TTL" default:"1m"`
}

type StorageConfig struct {
	Driver    string `envconfig:"PETANDCO_STORAGE_DRIVER" default:"redis"`
	BoltPath  string `envconfig:"PETANDCO_BOLT_PATH" default:"petandco.db"`
	Namespace string `envconfig:"PETANDCO_STORAGE_NAMESPACE" default:"petandco"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PETANDCO_REDIS_URL"`
	Address      string        `envconfig:"PETANDCO_REDIS_ADDR"`
	Password     string        `envconfig:"PETANDCO_REDIS_PASSWORD"`
	DB           int           `envconfig:"PETANDCO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PETANDCO_REDIS_POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"PETANDCO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PETANDCO_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"PETANDCO_REDIS_WRITE_TIMEOUT" default:"3s"`
	// TTL applied to visitor records; zero keeps them forever.
	RecordTTL time.Duration `envconfig:"PETANDCO_REDIS_RECORD_TTL" default:"720h"`
}

type KafkaConfig struct {
	Broker     string `envconfig:"PETANDCO_KAFKA_BROKER"`
	OrderTopic string `envconfig:"PETANDCO_KAFKA_ORDER_TOPIC" default:"order.events"`
	CartTopic  string `envconfig:"PETANDCO_KAFKA_CART_TOPIC" default:"cart.events"`
	GroupID    string `envconfig:"PETANDCO_KAFKA_GROUP_ID" default:"storefront-cart-consumer"`

	PublishInterval time.Duration `envconfig:"PETANDCO_KAFKA_PUBLISH_INTERVAL" default:"2s"`
	OutboxSize      int           `envconfig:"PETANDCO_KAFKA_OUTBOX_SIZE" default:"1024"`
}

func (k KafkaConfig) Enabled() bool {
	return strings.TrimSpace(k.Broker) != ""
}

type AuthConfig struct {
	// JWTSecret enables verification of the role claim carried by session
	// tokens. Without it the persisted role record is the only admin proof.
	JWTSecret    string `envconfig:"PETANDCO_JWT_SECRET"`
	CookieSecure bool   `envconfig:"PETANDCO_COOKIE_SECURE" default:"false"`
}

type SyncConfig struct {
	RetryInterval time.Duration `envconfig:"PETANDCO_SYNC_RETRY_INTERVAL" default:"15s"`
	VisitorIdle   time.Duration `envconfig:"PETANDCO_VISITOR_IDLE_TTL" default:"30m"`
}

type RateLimitConfig struct {
	LoginRPS   float64 `envconfig:"PETANDCO_LOGIN_RPS" default:"0.2"`
	LoginBurst int     `envconfig:"PETANDCO_LOGIN_BURST" default:"5"`
}
