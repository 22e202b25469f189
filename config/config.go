package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Mode selects the storage tier the server runs against.
type Mode string

const (
	// ModePostgres talks SQL to the hosted database directly.
	ModePostgres Mode = "postgres"
	// ModePostgrest goes through the hosted REST surface with the anon key.
	ModePostgrest Mode = "postgrest"
	// ModeDemo runs entirely on the local JSON store with seeded data.
	ModeDemo Mode = "demo"
)

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// BackendConfig points at the hosted REST surface. Both values must be set
// for the connected mode; anything less means demo mode.
type BackendConfig struct {
	URL     string `mapstructure:"url"`
	AnonKey string `mapstructure:"anon_key"`
}

type DatabaseConfig struct {
	DSN      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// ConnString returns the DSN, building one from parts when not given whole.
func (d DatabaseConfig) ConnString() string {
	if d.DSN != "" {
		return d.DSN
	}
	if d.Host == "" {
		return ""
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	URL          string `mapstructure:"url"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

type MessagingConfig struct {
	Driver       string `mapstructure:"driver"` // redis, kafka or empty
	KafkaBrokers string `mapstructure:"kafka_brokers"`
	KafkaGroupID string `mapstructure:"kafka_group_id"`
}

type JWTConfig struct {
	Secret        string        `mapstructure:"secret"`
	AccessExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshExpiry time.Duration `mapstructure:"refresh_expiry"`
	Issuer        string        `mapstructure:"issuer"`
}

type CacheConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type StorageConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// DemoConfig is the credential pair that authenticates the seeded owner
// when no backend is configured.
type DemoConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type SecurityConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Messaging MessagingConfig `mapstructure:"messaging"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Demo      DemoConfig      `mapstructure:"demo"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Security  SecurityConfig  `mapstructure:"security"`
	LogLevel  string          `mapstructure:"log_level"`
}

// Mode derives the storage tier from what is configured. A direct database
// connection wins over the REST surface; neither means demo.
func (c *Config) Mode() Mode {
	if c.Database.ConnString() != "" {
		return ModePostgres
	}
	if c.Backend.URL != "" && c.Backend.AnonKey != "" {
		return ModePostgrest
	}
	return ModeDemo
}

func LoadConfig() (*Config, error) {
	// Optional .env for local development.
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/app")
	viper.AddConfigPath("/app/config")

	setDefaults()
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A missing file is fine: defaults plus env carry demo mode.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(&config)

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 15*time.Second)
	viper.SetDefault("server.write_timeout", 15*time.Second)
	viper.SetDefault("server.request_timeout", 30*time.Second)
	viper.SetDefault("database.sslmode", "require")
	viper.SetDefault("jwt.secret", "")
	viper.SetDefault("jwt.access_expiry", time.Hour)
	viper.SetDefault("jwt.refresh_expiry", 7*24*time.Hour)
	viper.SetDefault("jwt.issuer", "agenda-api")
	viper.SetDefault("cache.ttl", 5*time.Minute)
	viper.SetDefault("cache.cleanup_interval", 10*time.Minute)
	viper.SetDefault("storage.data_dir", "./data")
	viper.SetDefault("demo.email", "demo@agendahub.app")
	viper.SetDefault("demo.password", "demo1234")
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests_per_second", 50.0)
	viper.SetDefault("rate_limit.burst", 100)
	viper.SetDefault("log_level", "info")
}

func applyEnvOverrides(config *Config) {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		config.Database.DSN = dsn
	}
	if url := os.Getenv("BACKEND_URL"); url != "" {
		config.Backend.URL = url
	}
	if key := os.Getenv("BACKEND_ANON_KEY"); key != "" {
		config.Backend.AnonKey = key
	}
	if url := os.Getenv("REDIS_URL"); url != "" {
		config.Redis.URL = url
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.JWT.Secret = secret
	}
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		config.Storage.DataDir = dir
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		config.Messaging.Driver = "kafka"
		config.Messaging.KafkaBrokers = brokers
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.LogLevel = level
	}
}
