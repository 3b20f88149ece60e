package config

import "time"

type StorageConfig struct {
	// Driver : postgres или memory
	Driver string `yaml:"driver"`
}

type DatabaseConfig struct {
	DSN     string `yaml:"dsn"`
	Migrate bool   `yaml:"migrate"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type S3Config struct {
	Bucket     string `yaml:"bucket"`
	Region     string `yaml:"region"`
	Endpoint   string `yaml:"endpoint"`
	Local      bool   `yaml:"local"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	PresignTTL string `yaml:"presign_ttl"`

	PresignTTLDuration time.Duration `yaml:"-"`
}

type AMQPConfig struct {
	URL    string `yaml:"url"`
	Queue  string `yaml:"queue"`
	Locale string `yaml:"locale"`
}

type JWTConfig struct {
	// PrivateKey : Ed25519 ключ в PEM (PKCS#8). Если пусто, читается PrivateKeyPath.
	PrivateKey     string `yaml:"private_key"`
	PrivateKeyPath string `yaml:"private_key_path"`
	KeyID          string `yaml:"key_id"`
	// PreviousPublicKeys : публичные ключи после ротации, остаются в JWKS до истечения выданных токенов
	PreviousPublicKeys []string `yaml:"previous_public_keys"`
	AccessTokenTTL     string   `yaml:"access_token_ttl"`

	AccessTokenTTLDuration time.Duration `yaml:"-"`
}

type RefreshTokenConfig struct {
	TTL           string `yaml:"ttl"`
	Rotate        *bool  `yaml:"rotate"`
	DeleteExpired bool   `yaml:"delete_expired"`
	PurgeInterval string `yaml:"purge_interval"`

	TTLDuration           time.Duration `yaml:"-"`
	PurgeIntervalDuration time.Duration `yaml:"-"`
}

// RotateOnRefresh : ротация включена, если явно не выключена
func (c RefreshTokenConfig) RotateOnRefresh() bool {
	return c.Rotate == nil || *c.Rotate
}

type KeyCacheConfig struct {
	TTL string `yaml:"ttl"`
	// JWKSURL : адрес JWKS издателя; пусто значит ключи берутся из процесса
	JWKSURL      string `yaml:"jwks_url"`
	FetchTimeout string `yaml:"fetch_timeout"`

	TTLDuration          time.Duration `yaml:"-"`
	FetchTimeoutDuration time.Duration `yaml:"-"`
}

type RateLimitConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Prefix         string `yaml:"prefix"`
	Capacity       int    `yaml:"capacity"`
	RefillTokens   int    `yaml:"refill_tokens"`
	RefillInterval string `yaml:"refill_interval"`

	RefillIntervalDuration time.Duration `yaml:"-"`
}

type PrincipalCacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	TTL     string `yaml:"ttl"`

	TTLDuration time.Duration `yaml:"-"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}
