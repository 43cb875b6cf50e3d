package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EngineAuto     = "auto"
	EnginePostgres = "postgres"
	EngineFile     = "file"

	SessionMemory = "memory"
	SessionRedis  = "redis"
)

// SeedUser is a non-admin identity provisioned at startup.
type SeedUser struct {
	Username   string
	Credential string
}

type Config struct {
	ServerPort string

	// Storage
	StorageEngine string
	DBUrl         string
	DataDir       string

	// Sessions
	SessionBackend string
	RedisURL       string
	SessionTTL     time.Duration
	CookieSecure   bool

	// Legacy admin cookie
	JWTSecret string

	ShopTimezone string

	// Provisioning
	AdminUsername string
	AdminPassword string
	SeedUsers     []SeedUser

	CORSAllowedOrigin  string
	RateLimitPerMinute int
	LogLevel           string

	// Snapshot mirror
	BackupBucket   string
	BackupRegion   string
	BackupEndpoint string
	BackupPrefix   string
	AWSAccessKey   string
	AWSSecretKey   string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is honoured when present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),

		StorageEngine: strings.ToLower(getEnv("STORAGE_ENGINE", EngineAuto)),
		DBUrl:         os.Getenv("DATABASE_URL"),
		DataDir:       getEnv("DATA_DIR", "./data"),

		SessionBackend: strings.ToLower(getEnv("SESSION_BACKEND", SessionMemory)),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379/0"),
		SessionTTL:     getEnvDuration("SESSION_TTL", 0),
		CookieSecure:   getEnvBool("COOKIE_SECURE", false),

		JWTSecret: getEnv("JWT_SECRET", "changeme"),

		ShopTimezone: getEnv("SHOP_TIMEZONE", "America/Argentina/Buenos_Aires"),

		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
		SeedUsers:     parseSeedUsers(getEnv("SEED_USERS", "juan:juan123,maria:maria123")),

		CORSAllowedOrigin:  getEnv("CORS_ALLOWED_ORIGIN", ""),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		LogLevel:           getEnv("LOG_LEVEL", "info"),

		BackupBucket:   os.Getenv("BACKUP_S3_BUCKET"),
		BackupRegion:   getEnv("BACKUP_S3_REGION", "us-east-1"),
		BackupEndpoint: os.Getenv("BACKUP_S3_ENDPOINT"),
		BackupPrefix:   getEnv("BACKUP_S3_PREFIX", "barber-turnos/"),
		AWSAccessKey:   os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretKey:   os.Getenv("AWS_SECRET_ACCESS_KEY"),
	}
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%s", c.ServerPort)
}

// parseSeedUsers reads "name:credential" pairs separated by commas.
// Malformed pairs are skipped.
func parseSeedUsers(raw string) []SeedUser {
	var out []SeedUser
	for _, pair := range strings.Split(raw, ",") {
		name, cred, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || name == "" || cred == "" {
			continue
		}
		out = append(out, SeedUser{Username: name, Credential: cred})
	}
	return out
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
