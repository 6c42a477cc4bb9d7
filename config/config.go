package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	AWS       AWSConfig
	RateLimit RateLimitConfig
	Feeding   FeedingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string // if set, used as-is (e.g. postgres://localhost:5432/gap?sslmode=disable)
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds brand session token signing and validation settings.
type JWTConfig struct {
	Secret      string
	ExpireHours int
}

// AWSConfig holds AWS credentials and the ad media bucket.
type AWSConfig struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	MediaBucket          string
	PresignExpireMinutes int
}

// RateLimitConfig holds the per-credential ingestion rate limit window.
type RateLimitConfig struct {
	WindowSeconds int
	MaxRequests   int
}

// FeedingConfig holds the feeding engine tuning knobs. Defaults keep the
// hand-tuned production values; every threshold is overridable via env.
type FeedingConfig struct {
	MaxAdsPerContainer   int     // cap when a container config supplies none
	OverexposedRatio     float64 // impression share above which weight is penalized
	OverexposedPenalty   float64
	UnderexposedRatio    float64 // impression share below which weight is boosted
	UnderexposedBoost    float64
	VisibilityBoost      float64
	DemographicThreshold int // player-context demographic total above which score is boosted
	DemographicBoost     float64
	FreshDays            int // ads younger than this get FreshBoost
	FreshBoost           float64
	StaleDays            int // ads older than this get StalePenalty
	StalePenalty         float64
	BaseRotationSeconds  int
	NextUpdateSeconds    int // process-wide poll cadence returned to callers
	PerformanceLookback  int // days of rollups read for fallback performance scores
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (e.g. DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "gap"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 10),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "change-me-in-production"),
			ExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 24),
		},
		AWS: AWSConfig{
			Region:               getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:          getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
			MediaBucket:          getEnv("AWS_S3_MEDIA_BUCKET", "gap-ad-media"),
			PresignExpireMinutes: getEnvInt("AWS_PRESIGN_EXPIRE_MINUTES", 15),
		},
		RateLimit: RateLimitConfig{
			WindowSeconds: getEnvInt("RATE_LIMIT_WINDOW_SEC", 60),
			MaxRequests:   getEnvInt("RATE_LIMIT_MAX_REQUESTS", 100),
		},
		Feeding: FeedingConfig{
			MaxAdsPerContainer:   getEnvInt("FEEDING_MAX_ADS_PER_CONTAINER", 5),
			OverexposedRatio:     getEnvFloat("FEEDING_OVEREXPOSED_RATIO", 0.4),
			OverexposedPenalty:   getEnvFloat("FEEDING_OVEREXPOSED_PENALTY", 0.5),
			UnderexposedRatio:    getEnvFloat("FEEDING_UNDEREXPOSED_RATIO", 0.1),
			UnderexposedBoost:    getEnvFloat("FEEDING_UNDEREXPOSED_BOOST", 1.5),
			VisibilityBoost:      getEnvFloat("FEEDING_VISIBILITY_BOOST", 1.2),
			DemographicThreshold: getEnvInt("FEEDING_DEMOGRAPHIC_THRESHOLD", 10),
			DemographicBoost:     getEnvFloat("FEEDING_DEMOGRAPHIC_BOOST", 1.1),
			FreshDays:            getEnvInt("FEEDING_FRESH_DAYS", 7),
			FreshBoost:           getEnvFloat("FEEDING_FRESH_BOOST", 1.15),
			StaleDays:            getEnvInt("FEEDING_STALE_DAYS", 30),
			StalePenalty:         getEnvFloat("FEEDING_STALE_PENALTY", 0.9),
			BaseRotationSeconds:  getEnvInt("FEEDING_BASE_ROTATION_SEC", 300),
			NextUpdateSeconds:    getEnvInt("FEEDING_NEXT_UPDATE_SEC", 120),
			PerformanceLookback:  getEnvInt("FEEDING_PERFORMANCE_LOOKBACK_DAYS", 7),
		},
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
