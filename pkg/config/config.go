package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Log           LogConfig
	Intake        IntakeConfig
	FAQ           FAQConfig
	Notifications NotificationsConfig
	Ratings       RatingsConfig
	Audit         AuditConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// IntakeConfig tunes the submission-time pipeline: duplicate matching,
// content moderation and subject relevance checking.
type IntakeConfig struct {
	SimilarityThreshold     float64
	SimilarityCandidates    int
	SubjectValidation       bool
	SubjectThreshold        float64
	ModerationSpamThreshold float64
	ExtraBadWords           []string
}

// FAQConfig bounds the answered-query projections and their cache.
type FAQConfig struct {
	CourseLimit int
	GlobalLimit int
	CacheTTL    time.Duration
}

// NotificationsConfig bounds notification listings.
type NotificationsConfig struct {
	ListLimit int
}

// RatingsConfig tunes the teacher rating summary cache.
type RatingsConfig struct {
	CacheTTL time.Duration
}

// AuditConfig sizes the background intake-event writer.
type AuditConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Intake = IntakeConfig{
		SimilarityThreshold:     v.GetFloat64("INTAKE_SIMILARITY_THRESHOLD"),
		SimilarityCandidates:    v.GetInt("INTAKE_SIMILARITY_CANDIDATES"),
		SubjectValidation:       v.GetBool("INTAKE_SUBJECT_VALIDATION"),
		SubjectThreshold:        v.GetFloat64("INTAKE_SUBJECT_THRESHOLD"),
		ModerationSpamThreshold: v.GetFloat64("INTAKE_SPAM_THRESHOLD"),
		ExtraBadWords:           splitAndTrim(v.GetString("INTAKE_EXTRA_BAD_WORDS")),
	}

	cfg.FAQ = FAQConfig{
		CourseLimit: v.GetInt("FAQ_COURSE_LIMIT"),
		GlobalLimit: v.GetInt("FAQ_GLOBAL_LIMIT"),
		CacheTTL:    parseDuration(v.GetString("FAQ_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Notifications = NotificationsConfig{
		ListLimit: v.GetInt("NOTIFICATIONS_LIST_LIMIT"),
	}

	cfg.Ratings = RatingsConfig{
		CacheTTL: parseDuration(v.GetString("RATINGS_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Audit = AuditConfig{
		Workers:    v.GetInt("AUDIT_WORKERS"),
		BufferSize: v.GetInt("AUDIT_BUFFER_SIZE"),
		MaxRetries: v.GetInt("AUDIT_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("AUDIT_RETRY_DELAY"), time.Second),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8000)
	v.SetDefault("API_PREFIX", "")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "query_engine")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "query-engine-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("INTAKE_SIMILARITY_THRESHOLD", 0.82)
	v.SetDefault("INTAKE_SIMILARITY_CANDIDATES", 50)
	v.SetDefault("INTAKE_SUBJECT_VALIDATION", true)
	v.SetDefault("INTAKE_SUBJECT_THRESHOLD", 0.6)
	v.SetDefault("INTAKE_SPAM_THRESHOLD", 0.6)
	v.SetDefault("INTAKE_EXTRA_BAD_WORDS", "")

	v.SetDefault("FAQ_COURSE_LIMIT", 50)
	v.SetDefault("FAQ_GLOBAL_LIMIT", 200)
	v.SetDefault("FAQ_CACHE_TTL", "5m")

	v.SetDefault("NOTIFICATIONS_LIST_LIMIT", 50)

	v.SetDefault("RATINGS_CACHE_TTL", "5m")

	v.SetDefault("AUDIT_WORKERS", 1)
	v.SetDefault("AUDIT_BUFFER_SIZE", 64)
	v.SetDefault("AUDIT_MAX_RETRIES", 3)
	v.SetDefault("AUDIT_RETRY_DELAY", "1s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
