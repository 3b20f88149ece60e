package config

import (
	"bearer-auth-server/internal/util"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultAccessTokenTTL  = 60 * time.Minute
	defaultRefreshTokenTTL = 30 * 24 * time.Hour
	defaultKeyCacheTTL     = 30 * 24 * time.Hour
	defaultFetchTimeout    = 5 * time.Second
	defaultPurgeInterval   = time.Hour
	defaultPrincipalTTL    = 5 * time.Minute
	defaultPresignTTL      = 15 * time.Minute
)

type AppConfig struct {
	ServerAddr string `yaml:"serverAddr"`
	// BaseURL : используется и как iss, и как aud access-токенов
	BaseURL        string               `yaml:"baseURL"`
	Storage        StorageConfig        `yaml:"storage"`
	DatabaseConfig DatabaseConfig       `yaml:"databaseConfig"`
	RedisConfig    RedisConfig          `yaml:"redisConfig"`
	S3Config       S3Config             `yaml:"s3Config"`
	AMQP           AMQPConfig           `yaml:"amqp"`
	JWT            JWTConfig            `yaml:"jwt"`
	RefreshToken   RefreshTokenConfig   `yaml:"refreshToken"`
	KeyCache       KeyCacheConfig       `yaml:"keyCache"`
	RateLimit      RateLimitConfig      `yaml:"rateLimit"`
	PrincipalCache PrincipalCacheConfig `yaml:"principalCache"`
	Logging        LoggingConfig        `yaml:"logging"`
}

// LoadConfig : читает yaml, затем .env и переменные окружения, затем проверяет значения
func LoadConfig(path string) (*AppConfig, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg, err := ParseConfig(file)
	if err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("не удалось прочитать .env", "error", err)
	}
	cfg.ApplyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ParseConfig : разбор yaml без обращения к окружению
func ParseConfig(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyEnv : переменные окружения имеют приоритет над yaml
func (c *AppConfig) ApplyEnv(lookup func(string) (string, bool)) {
	overrides := map[string]*string{
		"SERVER_ADDR":     &c.ServerAddr,
		"BASE_URL":        &c.BaseURL,
		"STORAGE_DRIVER":  &c.Storage.Driver,
		"DATABASE_DSN":    &c.DatabaseConfig.DSN,
		"REDIS_ADDR":      &c.RedisConfig.Addr,
		"REDIS_PASSWORD":  &c.RedisConfig.Password,
		"AMQP_URL":        &c.AMQP.URL,
		"JWT_PRIVATE_KEY": &c.JWT.PrivateKey,
		"JWT_KEY_ID":      &c.JWT.KeyID,
		"JWKS_URL":        &c.KeyCache.JWKSURL,
		"S3_BUCKET":       &c.S3Config.Bucket,
		"S3_ENDPOINT":     &c.S3Config.Endpoint,
		"LOG_LEVEL":       &c.Logging.Level,
	}

	for key, target := range overrides {
		if value, ok := lookup(key); ok && value != "" {
			*target = value
		}
	}
}

// Validate : разбирает все TTL и проверяет обязательные поля.
// Пустой BaseURL только логируется: издатель и middleware откажут на уровне запроса.
func (c *AppConfig) Validate() error {
	var err error

	if c.JWT.AccessTokenTTLDuration, err = util.ParseTTL(c.JWT.AccessTokenTTL, defaultAccessTokenTTL); err != nil {
		return fmt.Errorf("jwt.access_token_ttl: %w", err)
	}
	if c.RefreshToken.TTLDuration, err = util.ParseTTL(c.RefreshToken.TTL, defaultRefreshTokenTTL); err != nil {
		return fmt.Errorf("refreshToken.ttl: %w", err)
	}
	if c.RefreshToken.PurgeInterval == "0" {
		c.RefreshToken.PurgeIntervalDuration = 0
	} else if c.RefreshToken.PurgeIntervalDuration, err = util.ParseTTL(c.RefreshToken.PurgeInterval, defaultPurgeInterval); err != nil {
		return fmt.Errorf("refreshToken.purge_interval: %w", err)
	}
	if c.KeyCache.TTLDuration, err = util.ParseTTL(c.KeyCache.TTL, defaultKeyCacheTTL); err != nil {
		return fmt.Errorf("keyCache.ttl: %w", err)
	}
	if c.KeyCache.FetchTimeoutDuration, err = util.ParseTTL(c.KeyCache.FetchTimeout, defaultFetchTimeout); err != nil {
		return fmt.Errorf("keyCache.fetch_timeout: %w", err)
	}
	if c.RateLimit.RefillIntervalDuration, err = util.ParseTTL(c.RateLimit.RefillInterval, time.Second); err != nil {
		return fmt.Errorf("rateLimit.refill_interval: %w", err)
	}
	if c.PrincipalCache.TTLDuration, err = util.ParseTTL(c.PrincipalCache.TTL, defaultPrincipalTTL); err != nil {
		return fmt.Errorf("principalCache.ttl: %w", err)
	}
	if c.S3Config.PresignTTLDuration, err = util.ParseTTL(c.S3Config.PresignTTL, defaultPresignTTL); err != nil {
		return fmt.Errorf("s3Config.presign_ttl: %w", err)
	}

	if c.RateLimit.Enabled && c.RateLimit.Capacity <= 0 {
		return fmt.Errorf("rateLimit.capacity должен быть положительным")
	}
	if c.RateLimit.RefillTokens <= 0 {
		c.RateLimit.RefillTokens = 1
	}
	if c.RateLimit.Prefix == "" {
		c.RateLimit.Prefix = "rl"
	}

	switch c.Storage.Driver {
	case "", "postgres":
		c.Storage.Driver = "postgres"
		if c.DatabaseConfig.DSN == "" {
			return fmt.Errorf("databaseConfig.dsn обязателен для storage.driver=postgres")
		}
	case "memory":
	default:
		return fmt.Errorf("неизвестный storage.driver: %q", c.Storage.Driver)
	}

	if c.AMQP.Queue == "" {
		c.AMQP.Queue = "email-queue"
	}
	if c.AMQP.Locale == "" {
		c.AMQP.Locale = "en"
	}

	if c.BaseURL == "" {
		slog.Warn("baseURL не задан: выдача и проверка access-токенов будут отклоняться")
	}

	return nil
}

func SetupServer(serverAddress string) (*http.Server, *chi.Mux) {
	router := chi.NewRouter()
	server := &http.Server{
		Addr:              serverAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return server, router
}

func SetupDatabase(dsn string) (*Database, error) {
	return NewDatabaseConnection("postgres", dsn)
}

func SetupRedis(cfg *RedisConfig) (*RedisClient, error) {
	return NewRedisClient(cfg)
}
