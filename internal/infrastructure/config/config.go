package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	once     sync.Once
	instance *Config
)

// DefaultSessionSecret is the development signing secret. Production refuses it.
const DefaultSessionSecret = "change-this-secret-in-production"

// Config holds all application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	MongoDB   MongoDBConfig   `mapstructure:"mongodb"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Session   SessionConfig   `mapstructure:"session"`
	Matching  MatchingConfig  `mapstructure:"matching"`
	Search    SearchConfig    `mapstructure:"search"`
	Vision    VisionConfig    `mapstructure:"vision"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	CORS      CORSConfig      `mapstructure:"cors"`
}

type AppConfig struct {
	Name  string `mapstructure:"name"`
	Env   string `mapstructure:"env"`
	Debug bool   `mapstructure:"debug"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
}

// StorageConfig selects the backends for the catalog and session state.
// Recipes: "memory" (built-in seed) or "mongodb". Sessions: "memory" or "redis".
type StorageConfig struct {
	Recipes  string `mapstructure:"recipes"`
	Sessions string `mapstructure:"sessions"`
}

type MongoDBConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	MaxPoolSize    uint64        `mapstructure:"max_pool_size"`
	MinPoolSize    uint64        `mapstructure:"min_pool_size"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type RedisConfig struct {
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	TTL       time.Duration `mapstructure:"ttl"`
}

type SessionConfig struct {
	Secret   string        `mapstructure:"secret"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
	Issuer   string        `mapstructure:"issuer"`
}

// MatchingConfig controls how pantry ingredients are compared with recipe
// ingredients. Policy is "substring" or "exact".
type MatchingConfig struct {
	Policy string `mapstructure:"policy"`
}

type SearchConfig struct {
	DefaultLimit   int `mapstructure:"default_limit"`
	QuickSearchMin int `mapstructure:"quick_search_min"`
}

type VisionConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Endpoint   string        `mapstructure:"endpoint"`
	APIKey     string        `mapstructure:"api_key"`
	MaxResults int           `mapstructure:"max_results"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Fallback   []string      `mapstructure:"fallback"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

// Initialize sets up Viper with default configuration paths and environment bindings
func Initialize() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/flavorfusion")
	viper.AddConfigPath("$HOME/.flavorfusion")

	viper.SetEnvPrefix("FLAVORFUSION")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// The vision credential is commonly provided under its vendor name.
	_ = viper.BindEnv("vision.api_key", "FLAVORFUSION_VISION_API_KEY", "GOOGLE_VISION_API_KEY")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("app.name", "flavorfusion")
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 5000)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.shutdown_timeout", "10s")
	viper.SetDefault("server.max_upload_bytes", 10<<20)

	viper.SetDefault("storage.recipes", "memory")
	viper.SetDefault("storage.sessions", "memory")

	viper.SetDefault("mongodb.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongodb.database", "flavorfusion")
	viper.SetDefault("mongodb.max_pool_size", 50)
	viper.SetDefault("mongodb.min_pool_size", 5)
	viper.SetDefault("mongodb.connect_timeout", "10s")

	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.key_prefix", "flavorfusion:session:")
	viper.SetDefault("redis.ttl", "720h")

	viper.SetDefault("session.secret", DefaultSessionSecret)
	viper.SetDefault("session.token_ttl", "720h")
	viper.SetDefault("session.issuer", "flavorfusion")

	viper.SetDefault("matching.policy", "substring")

	viper.SetDefault("search.default_limit", 0)
	viper.SetDefault("search.quick_search_min", 2)

	viper.SetDefault("vision.enabled", false)
	viper.SetDefault("vision.endpoint", "https://vision.googleapis.com/v1/images:annotate")
	viper.SetDefault("vision.max_results", 10)
	viper.SetDefault("vision.timeout", "15s")
	viper.SetDefault("vision.fallback", []string{"tomato", "onion", "garlic", "bell pepper"})

	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests_per_second", 20)
	viper.SetDefault("rate_limit.burst", 40)

	viper.SetDefault("logging.level", "debug")
	viper.SetDefault("logging.format", "console")
	viper.SetDefault("logging.output", "stdout")

	viper.SetDefault("cors.allowed_origins", []string{"*"})
	viper.SetDefault("cors.allowed_methods", []string{"GET", "POST", "DELETE", "OPTIONS"})
	viper.SetDefault("cors.allowed_headers", []string{"Authorization", "Content-Type", "X-Request-ID"})
}

// Load returns the singleton config instance
func Load() (*Config, error) {
	var err error
	once.Do(func() {
		if err = Initialize(); err != nil {
			return
		}
		instance = &Config{}
		if err = viper.Unmarshal(instance); err != nil {
			err = fmt.Errorf("failed to unmarshal config: %w", err)
			return
		}
		if err = instance.Validate(); err != nil {
			err = fmt.Errorf("invalid config: %w", err)
		}
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

// Validate checks values that would otherwise fail at request time
func (c *Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server port is required")
	}
	switch c.Storage.Recipes {
	case "memory", "mongodb":
	default:
		return fmt.Errorf("unknown recipe storage %q", c.Storage.Recipes)
	}
	switch c.Storage.Sessions {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown session storage %q", c.Storage.Sessions)
	}
	switch c.Matching.Policy {
	case "substring", "exact":
	default:
		return fmt.Errorf("unknown matching policy %q", c.Matching.Policy)
	}
	if c.Session.Secret == "" {
		return fmt.Errorf("session secret is required")
	}
	if c.IsProduction() && c.Session.Secret == DefaultSessionSecret {
		return fmt.Errorf("session secret must be changed in production")
	}
	if c.Vision.Enabled && c.Vision.APIKey == "" {
		return fmt.Errorf("vision api key is required when vision is enabled")
	}
	return nil
}

// GetAddress returns the server address string
func (c *Config) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}
