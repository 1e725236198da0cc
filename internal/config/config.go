package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store backend selectors.
const (
	BackendFile       = "file"
	BackendObject     = "object"
	BackendWideColumn = "widecolumn"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// StoreConfig selects and parameterizes the record store backend.
type StoreConfig struct {
	Backend   string        // file | object | widecolumn
	FilePath  string        // flat-file backend: path of the JSON database
	CachePath string        // object backend: local cache file mirroring the remote object
	ObjectKey string        // object backend: key of the remote object
	Timeout   time.Duration // bound on remote backend calls
}

type MongoDBConfig struct {
	URI      string
	Database string
	Table    string // wide-column collection holding the single database row
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "5001")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("STORE_BACKEND", BackendFile)
	viper.SetDefault("STORE_FILE_PATH", "./db.json")
	viper.SetDefault("STORE_CACHE_PATH", "/tmp/docvault-db.json")
	viper.SetDefault("STORE_OBJECT_KEY", "db.json")
	viper.SetDefault("STORE_TIMEOUT", 10)
	viper.SetDefault("MONGODB_DATABASE", "docvault")
	viper.SetDefault("MONGODB_TABLE", "dms")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("RATE_LIMIT_RPS", 25.0)
	viper.SetDefault("RATE_LIMIT_BURST", 50)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Store: StoreConfig{
			Backend:   viper.GetString("STORE_BACKEND"),
			FilePath:  viper.GetString("STORE_FILE_PATH"),
			CachePath: viper.GetString("STORE_CACHE_PATH"),
			ObjectKey: viper.GetString("STORE_OBJECT_KEY"),
			Timeout:   time.Duration(viper.GetInt("STORE_TIMEOUT")) * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:      viper.GetString("MONGODB_URI"),
			Database: viper.GetString("MONGODB_DATABASE"),
			Table:    viper.GetString("MONGODB_TABLE"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
		},
		RateLimit: RateLimitConfig{
			Enabled:       viper.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      viper.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         viper.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
	}

	switch cfg.Store.Backend {
	case BackendFile, BackendObject, BackendWideColumn:
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.Store.Backend)
	}
	if cfg.Store.Backend == BackendWideColumn && cfg.MongoDB.URI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required when STORE_BACKEND=widecolumn")
	}

	return cfg, nil
}
