package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Storage   StorageConfig
	Tracing   TracingConfig `mapstructure:"tracing"`
	Redis     RedisConfig
	Payment   PaymentConfig   `mapstructure:"payment"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`

	// 配置文件所在目录，由 LoadConfig 填充，供热加载使用
	Path string `mapstructure:"-"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Driver    string `mapstructure:"driver"`
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
	// SQLitePath 仅在 driver=sqlite 时使用
	SQLitePath string `mapstructure:"sqlite_path"`
}

// JWTConfig 身份提供方签发的会话令牌校验参数。
// 配置了 PublicKey 时按 RS256 校验，否则按 HS256 使用 Secret 校验。
type JWTConfig struct {
	Secret    string `mapstructure:"secret"`
	PublicKey string `mapstructure:"public_key"`
	Issuer    string `mapstructure:"issuer"`
}

type StorageConfig struct {
	Type          string        `mapstructure:"type"`
	LocalPath     string        `mapstructure:"local_path"`
	MinioEndpoint string        `mapstructure:"minio_endpoint"`
	MinioAccessID string        `mapstructure:"minio_access_key"`
	MinioSecret   string        `mapstructure:"minio_secret_key"`
	MinioBucket   string        `mapstructure:"minio_bucket"`
	MinioSecure   bool          `mapstructure:"minio_secure"`
	OSSEndpoint   string        `mapstructure:"oss_endpoint"`
	OSSAccessKey  string        `mapstructure:"oss_access_key"`
	OSSSecretKey  string        `mapstructure:"oss_secret_key"`
	OSSBucket     string        `mapstructure:"oss_bucket"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
}

type TracingConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	CollectorEndpoint string  `mapstructure:"collector_endpoint"`
	SampleRatio       float64 `mapstructure:"sample_ratio"`
}

type RedisConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	Host     string
	Port     int
	Password string
	DB       int
	// PurchaseLockTTL 同一 transactionId 的购买锁有效期
	PurchaseLockTTL time.Duration `mapstructure:"purchase_lock_ttl"`
}

const (
	CurrencyModeCaller = "caller"
	CurrencyModeFixed  = "fixed"
)

type PaymentConfig struct {
	Provider        string `mapstructure:"provider"`
	StripeSecretKey string `mapstructure:"stripe_secret_key"`
	// CurrencyMode 为 caller 时使用请求中的币种，为 fixed 时始终使用 FixedCurrency
	CurrencyMode    string `mapstructure:"currency_mode"`
	DefaultCurrency string `mapstructure:"default_currency"`
	FixedCurrency   string `mapstructure:"fixed_currency"`
}

type LogConfig struct {
	// Level 为空时按 server.mode 决定
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "3001")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parsetime", true)
	v.SetDefault("database.sqlite_path", "course_market.db")
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "uploads")
	v.SetDefault("storage.presign_expiry", 15*time.Minute)
	v.SetDefault("redis.purchase_lock_ttl", 30*time.Second)
	v.SetDefault("payment.provider", "stripe")
	v.SetDefault("payment.currency_mode", CurrencyModeCaller)
	v.SetDefault("payment.default_currency", "usd")
	v.SetDefault("payment.fixed_currency", "inr")
	v.SetDefault("rate_limit.max_requests", 6000)
	v.SetDefault("rate_limit.window_minutes", 1)
	v.SetDefault("tracing.sample_ratio", 1.0)
	v.SetDefault("log.file", "logs/app.log")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age", 30)
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("COURSE_MARKET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	// Database
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// Identity
	v.BindEnv("jwt.secret", "JWT_SECRET")
	v.BindEnv("jwt.public_key", "JWT_PUBLIC_KEY")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.mode", "SERVER_MODE")

	// Payment
	v.BindEnv("payment.stripe_secret_key", "STRIPE_SECRET_KEY")
	v.BindEnv("payment.currency_mode", "PAYMENT_CURRENCY_MODE")

	// Storage
	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.oss_endpoint", "OSS_ENDPOINT")
	v.BindEnv("storage.oss_access_key", "OSS_ACCESS_KEY")
	v.BindEnv("storage.oss_secret_key", "OSS_SECRET_KEY")
	v.BindEnv("storage.oss_bucket", "OSS_BUCKET")
	v.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	v.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	// Log
	v.BindEnv("log.level", "LOG_LEVEL")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Path = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Storage.Type == "local" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, 0755)
		}
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	// 生产环境校验 JWT 配置
	if c.Server.Mode == "release" && c.JWT.PublicKey == "" && len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(c.JWT.Secret))
	}

	if c.Payment.Provider == "stripe" && c.Payment.StripeSecretKey == "" {
		return fmt.Errorf("stripe secret key is not configured")
	}

	switch c.Payment.CurrencyMode {
	case CurrencyModeCaller, CurrencyModeFixed:
	default:
		return fmt.Errorf("unknown payment currency mode %q", c.Payment.CurrencyMode)
	}

	if c.Payment.CurrencyMode == CurrencyModeFixed && c.Payment.FixedCurrency == "" {
		return fmt.Errorf("payment.fixed_currency is required when currency_mode is fixed")
	}

	return nil
}
