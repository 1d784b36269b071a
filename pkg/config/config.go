package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig
	Engine      EngineConfig
	Scoring     ScoringConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	SerpAPI     SerpAPIConfig
	Pricez      PricezConfig
	PriceTable  PriceTableConfig
	Geolocation GeolocationConfig
	OpenAI      OpenAIConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
	Env  string
}

// EngineConfig holds the candidate aggregation engine parameters.
type EngineConfig struct {
	MaxCandidatesPerItem  int
	ConcurrencyLimit      int
	TrustedSourceWeight   float64
	ConsensusTolerancePct float64
	OutlierMinPoolSize    int
	EnrichTopK            int
	CacheTTLSeconds       int
	MaxSupermarkets       int
	DefaultRadiusKm       float64
}

// ScoringConfig holds the confidence scorer rule increments. The defaults
// are empirically tuned, not derived from a model, so they stay configurable.
type ScoringConfig struct {
	BaseStructuredShopping int
	BaseSiteScopedWeb      int
	BaseEstimated          int
	PricePresentBonus      int
	PriceAbsentBonus       int
	ChainMatchBonus        int
	BrandMatchBonus        int
	SizeMatchBonus         int
	StructuredIDBonus      int
	ConsensusBonus         int
	NoMatchConfidence      int
}

// DatabaseConfig holds the optional Postgres price-table configuration
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// SerpAPIConfig holds the structured shopping search provider configuration
type SerpAPIConfig struct {
	APIKey         string
	BaseURL        string
	Language       string
	Country        string
	TimeoutSeconds int
	RateLimitRPS   float64
}

// PricezConfig holds the site-scoped comparison vendor configuration
type PricezConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// PriceTableConfig holds the on-disk price table configuration
type PriceTableConfig struct {
	Path string
}

// GeolocationConfig holds geolocation provider configuration
type GeolocationConfig struct {
	Provider string
	APIKey   string
}

// OpenAIConfig holds the optional LLM re-selection configuration
type OpenAIConfig struct {
	Enabled bool
	APIKey  string
	Model   string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
			Env:  getEnv("APP_ENV", "development"),
		},
		Engine: EngineConfig{
			MaxCandidatesPerItem:  getEnvAsInt("MAX_CANDIDATES_PER_ITEM", 24),
			ConcurrencyLimit:      getEnvAsInt("CONCURRENCY_LIMIT", 6),
			TrustedSourceWeight:   getEnvAsFloat("TRUSTED_SOURCE_WEIGHT", 1.15),
			ConsensusTolerancePct: getEnvAsFloat("CONSENSUS_TOLERANCE_PCT", 5),
			OutlierMinPoolSize:    getEnvAsInt("OUTLIER_MIN_POOL_SIZE", 6),
			EnrichTopK:            getEnvAsInt("ENRICH_TOP_K", 2),
			CacheTTLSeconds:       getEnvAsInt("CACHE_TTL_SECONDS", 60),
			MaxSupermarkets:       getEnvAsInt("MAX_SUPERMARKETS", 6),
			DefaultRadiusKm:       getEnvAsFloat("DEFAULT_RADIUS_KM", 3),
		},
		Scoring: ScoringConfig{
			BaseStructuredShopping: getEnvAsInt("SCORE_BASE_STRUCTURED", 30),
			BaseSiteScopedWeb:      getEnvAsInt("SCORE_BASE_SITE_SCOPED", 26),
			BaseEstimated:          getEnvAsInt("SCORE_BASE_ESTIMATED", 15),
			PricePresentBonus:      getEnvAsInt("SCORE_PRICE_PRESENT", 25),
			PriceAbsentBonus:       getEnvAsInt("SCORE_PRICE_ABSENT", 8),
			ChainMatchBonus:        getEnvAsInt("SCORE_CHAIN_MATCH", 15),
			BrandMatchBonus:        getEnvAsInt("SCORE_BRAND_MATCH", 10),
			SizeMatchBonus:         getEnvAsInt("SCORE_SIZE_MATCH", 8),
			StructuredIDBonus:      getEnvAsInt("SCORE_STRUCTURED_ID", 10),
			ConsensusBonus:         getEnvAsInt("SCORE_CONSENSUS", 10),
			NoMatchConfidence:      getEnvAsInt("SCORE_NO_MATCH", 20),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("DB_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "basketcompare"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		SerpAPI: SerpAPIConfig{
			APIKey:         getEnv("SERPAPI_KEY", ""),
			BaseURL:        getEnv("SERPAPI_BASE_URL", "https://serpapi.com"),
			Language:       getEnv("SERPAPI_LANGUAGE", "he"),
			Country:        getEnv("SERPAPI_COUNTRY", "il"),
			TimeoutSeconds: getEnvAsInt("SERPAPI_TIMEOUT_SECONDS", 10),
			RateLimitRPS:   getEnvAsFloat("SERPAPI_RATE_LIMIT_RPS", 3),
		},
		Pricez: PricezConfig{
			BaseURL:        getEnv("PRICEZ_BASE_URL", "https://www.pricez.co.il"),
			TimeoutSeconds: getEnvAsInt("PRICEZ_TIMEOUT_SECONDS", 8),
		},
		PriceTable: PriceTableConfig{
			Path: getEnv("PRICE_TABLE_PATH", ""),
		},
		Geolocation: GeolocationConfig{
			Provider: getEnv("GEOLOCATION_PROVIDER", "mock"),
			APIKey:   getEnv("GOOGLE_MAPS_API_KEY", ""),
		},
		OpenAI: OpenAIConfig{
			Enabled: getEnvAsBool("OPENAI_ENABLED", false),
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			Model:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		},
	}, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
