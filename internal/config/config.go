package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppHost        string
	AppPort        string
	AppEnv         string
	AllowedOrigins []string // CORS allowed origins
	PublicBaseURL  string   // prefix for avatar URLs handed back to clients
	TrustProxy     bool     // take the client IP from X-Forwarded-For/X-Real-Ip

	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	OpenRouterModel   string
	GenerationTimeout time.Duration

	UnsplashAccessKey  string // empty disables external image search
	UnsplashBaseURL    string
	ImageSearchTimeout time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string
	MailTimeout  time.Duration

	CodeStore      string // "memory" | "redis"
	CodeTTL        time.Duration
	CodeTTLEnabled bool
	RedisAddr      string
	RedisPassword  string
	RedisDB        int

	ProfileBackend   string // "file" | "s3" | "dynamo"
	ProfileStorePath string

	UploadBackend           string // "local" | "s3"
	UploadDir               string
	UploadMaxBytes          int64
	UploadAllowedExtensions []string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	S3BucketName   string
	S3SnapshotKey  string
	S3UploadPrefix string
	DynamoTables   DynamoTables

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Snapshots string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppHost:        getEnv("APP_HOST", "0.0.0.0"),
		AppPort:        getEnv("APP_PORT", getEnv("PORT", "5000")),
		AppEnv:         getEnv("APP_ENV", "development"),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		PublicBaseURL:  strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:5000"), "/"),
		TrustProxy:     getEnvBool("TRUST_PROXY", false),

		OpenRouterAPIKey:  getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		OpenRouterModel:   getEnv("OPENROUTER_MODEL", "openai/gpt-3.5-turbo"),
		GenerationTimeout: getEnvDuration("GENERATION_TIMEOUT", 30*time.Second),

		UnsplashAccessKey:  getEnv("UNSPLASH_ACCESS_KEY", ""),
		UnsplashBaseURL:    getEnv("UNSPLASH_BASE_URL", "https://api.unsplash.com"),
		ImageSearchTimeout: getEnvDuration("IMAGE_SEARCH_TIMEOUT", 10*time.Second),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnvInt("SMTP_PORT", 1025),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		MailTimeout:  getEnvDuration("MAIL_TIMEOUT", 10*time.Second),

		CodeStore:      getEnv("CODE_STORE", "memory"),
		CodeTTL:        getEnvDuration("CODE_TTL", 10*time.Minute),
		CodeTTLEnabled: getEnvBool("CODE_TTL_ENABLED", true),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),

		ProfileBackend:   getEnv("PROFILE_BACKEND", "file"),
		ProfileStorePath: getEnv("PROFILE_STORE_PATH", "./data/users.json"),

		UploadBackend:           getEnv("UPLOAD_BACKEND", "local"),
		UploadDir:               getEnv("UPLOAD_DIR", "./static/uploads"),
		UploadMaxBytes:          int64(getEnvInt("UPLOAD_MAX_BYTES", 2*1024*1024)),
		UploadAllowedExtensions: splitList(getEnv("UPLOAD_ALLOWED_EXTENSIONS", "png,jpg,jpeg,gif,webp")),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		S3BucketName:   getEnv("S3_BUCKET_NAME", "travel-planner"),
		S3SnapshotKey:  getEnv("S3_SNAPSHOT_KEY", "profiles/users.json"),
		S3UploadPrefix: getEnv("S3_UPLOAD_PREFIX", "uploads/"),
		DynamoTables: DynamoTables{
			Snapshots: getEnv("DYNAMO_TABLE_SNAPSHOTS", "profile_snapshots"),
		},

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         getEnvDuration("JWT_EXPIRY", 7*24*time.Hour),
	}
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

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// splitList splits a comma-separated value, trimming blanks and leading dots
// so "png, .JPG" and "png,jpg" configure the same policy.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(part), "."))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
