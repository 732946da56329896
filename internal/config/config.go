package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  Database
	Redis     RedisConfig
	JWT       JWTConfig
	Catalog   CatalogConfig
	Slug      SlugConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

// CatalogConfig carries the hard business ceilings of the curated catalog
type CatalogConfig struct {
	MaxProducts         int // non-soft-deleted products, enforced at creation
	MaxActiveCategories int // active categories, enforced at activation
	MaxBatchSize        int // ids per bulk operation
	DailyCreateQuota    int // product creations per admin per day
}

// RateLimitConfig throttles the admin API per client
type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
}

// SlugConfig bounds slug shape and the uniqueness cache
type SlugConfig struct {
	MinLength          int
	MaxLength          int
	MaxSuffixAttempts  int
	UniquenessCacheTTL time.Duration
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CATALOG_MAX_PRODUCTS", 300)
	viper.SetDefault("CATALOG_MAX_ACTIVE_CATEGORIES", 15)
	viper.SetDefault("CATALOG_MAX_BATCH_SIZE", 100)
	viper.SetDefault("CATALOG_DAILY_CREATE_QUOTA", 50)
	viper.SetDefault("SLUG_MIN_LENGTH", 3)
	viper.SetDefault("SLUG_MAX_LENGTH", 100)
	viper.SetDefault("SLUG_MAX_SUFFIX_ATTEMPTS", 10)
	viper.SetDefault("SLUG_CACHE_TTL_SECONDS", 300)
	viper.SetDefault("RATE_LIMIT_REQUESTS", 120)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
			Env:  viper.GetString("SERVER_ENV"),
		},
		Database: Database{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("JWT_SECRET"),
		},
		Catalog: CatalogConfig{
			MaxProducts:         viper.GetInt("CATALOG_MAX_PRODUCTS"),
			MaxActiveCategories: viper.GetInt("CATALOG_MAX_ACTIVE_CATEGORIES"),
			MaxBatchSize:        viper.GetInt("CATALOG_MAX_BATCH_SIZE"),
			DailyCreateQuota:    viper.GetInt("CATALOG_DAILY_CREATE_QUOTA"),
		},
		Slug: SlugConfig{
			MinLength:          viper.GetInt("SLUG_MIN_LENGTH"),
			MaxLength:          viper.GetInt("SLUG_MAX_LENGTH"),
			MaxSuffixAttempts:  viper.GetInt("SLUG_MAX_SUFFIX_ATTEMPTS"),
			UniquenessCacheTTL: time.Duration(viper.GetInt("SLUG_CACHE_TTL_SECONDS")) * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Window:            time.Duration(viper.GetInt("RATE_LIMIT_WINDOW_SECONDS")) * time.Second,
		},
	}
}
