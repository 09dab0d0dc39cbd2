package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	DBUrl             string
	RunMigrations     bool
	SupabaseUrl       string
	SupabaseKey       string
	SupabaseJWTSecret string
	FrontendURL       string
	LogLevel          string
	// SMTP Configuration
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromEmail string // Verified sender address, may differ from the SMTP login
	SMTPFromName  string
	// Redis/Upstash Configuration
	UpstashRedisURL      string
	UpstashRedisPassword string
	// Rate Limiting Configuration
	RateLimitWindowSeconds   int
	RateLimitGlobalThreshold int
	RateLimitLoginThreshold  int
	UploadLimitPerMinute     int
	UploadLimitPerDay        int
	// Object storage (S3 compatible: AWS, Wasabi, Supabase Storage)
	S3Provider          string
	S3AccessKeyID       string
	S3SecretAccessKey   string
	S3Region            string
	S3Bucket            string
	S3Endpoint          string
	StorageVisibility   string
	SignedURLTTLSeconds int
	// Upload policy
	MaxUploadBytes int64
	ClamAVAddress  string
	// Review workflow
	AllowReReview        bool
	NotifyTimeoutSeconds int
}

const (
	defaultSignedURLTTL = 60
	minSignedURLTTL     = 5
	maxSignedURLTTL     = 600
	defaultMaxUpload    = 5 * 1024 * 1024
)

func LoadConfig() (*Config, error) {
	// .env is only present locally; a missing file is fine in production
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		DBUrl:         getEnv("DATABASE_URL", ""),
		RunMigrations: getEnvBool("RUN_MIGRATIONS", true),
		// Trailing slash would produce double slashes in provider URLs (.co//auth)
		SupabaseUrl:       strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseKey:       getEnv("SUPABASE_KEY", getEnv("SUPABASE_ANON_KEY", "")),
		SupabaseJWTSecret: getEnv("SUPABASE_JWT_SECRET", getEnv("SUPABASE_JWT_KEY", "")),
		FrontendURL:       strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		// SMTP Configuration
		SMTPHost:      getEnv("SMTP_HOST", "smtp-relay.brevo.com"),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail: getEnv("SMTP_FROM_EMAIL", "noreply@resume-review.app"),
		SMTPFromName:  getEnv("SMTP_FROM_NAME", "Resume Platform"),
		// Redis/Upstash Configuration
		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),
		// Rate Limiting Configuration
		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),
		RateLimitLoginThreshold:  getEnvInt("RATE_LIMIT_LOGIN_THRESHOLD", 5),
		UploadLimitPerMinute:     getEnvInt("UPLOAD_LIMIT_PER_MINUTE", 10),
		UploadLimitPerDay:        getEnvInt("UPLOAD_LIMIT_PER_DAY", 50),
		// Object storage
		S3Provider:          getEnv("S3_PROVIDER", "supabase"),
		S3AccessKeyID:       getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey:   getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Region:            getEnv("S3_REGION", "us-east-1"),
		S3Bucket:            getEnv("S3_BUCKET", "resumes"),
		S3Endpoint:          strings.TrimRight(getEnv("S3_ENDPOINT", ""), "/"),
		StorageVisibility:   strings.Trim(getEnv("STORAGE_VISIBILITY", "private"), "/"),
		SignedURLTTLSeconds: clampTTL(getEnvInt("SIGNED_URL_TTL_SECONDS", defaultSignedURLTTL)),
		// Upload policy
		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", defaultMaxUpload),
		ClamAVAddress:  getEnv("CLAMAV_ADDRESS", ""),
		// Review workflow
		AllowReReview:        getEnvBool("REVIEW_ALLOW_REREVIEW", false),
		NotifyTimeoutSeconds: getEnvInt("NOTIFY_TIMEOUT_SECONDS", 10),
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}

	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}

	if cfg.MaxUploadBytes <= 0 {
		log.Printf("WARNING: MAX_UPLOAD_BYTES must be positive, using %d", defaultMaxUpload)
		cfg.MaxUploadBytes = defaultMaxUpload
	}

	if cfg.S3Provider == "supabase" && cfg.S3Endpoint == "" && cfg.SupabaseUrl != "" {
		cfg.S3Endpoint = cfg.SupabaseUrl + "/storage/v1/s3"
	}

	return cfg, nil
}

// clampTTL keeps signed URLs short-lived but long enough to open a preview.
// Non-positive values mean unset.
func clampTTL(seconds int) int {
	switch {
	case seconds <= 0:
		return defaultSignedURLTTL
	case seconds < minSignedURLTTL:
		return minSignedURLTTL
	case seconds > maxSignedURLTTL:
		return maxSignedURLTTL
	}
	return seconds
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil && intVal > 0 {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
