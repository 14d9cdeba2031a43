package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"galaxy-airline/internal/pkg/jwt"
)

// AppConfig configures the identity service.
type AppConfig struct {
	// Server
	HTTPAddr        string
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	// Storage. Empty DatabaseURL keeps accounts in memory; empty RedisAddr
	// disables token revocation and login throttling.
	DatabaseURL string
	RedisAddr   string
	RedisPass   string

	// JWT. Empty key paths generate an ephemeral key at startup.
	JWT jwt.Config

	// Accounts
	PrivilegedEmails []string
	SeedAccounts     bool
	AdminEmail       string
	AdminPassword    string
	AdminName        string
	DemoEmail        string
	DemoPassword     string
	DemoName         string
	BcryptCost       int
}

// Load loads environment variables into AppConfig.
func Load() AppConfig {
	adminEmail := getEnv("SEED_ADMIN_EMAIL", "admin@galaxy.com")
	return AppConfig{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8000"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		CORSOrigins:     getEnvSlice("CORS_ORIGINS", []string{"*"}),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisAddr:   getEnv("REDIS_ADDR", ""),
		RedisPass:   getEnv("REDIS_PASS", ""),

		JWT: jwt.Config{
			PrivPath: getEnv("JWT_PRIVATE_KEY_PATH", ""),
			PubPath:  getEnv("JWT_PUBLIC_KEY_PATH", ""),
			Issuer:   getEnv("JWT_ISSUER", "galaxy-identity"),
			Audience: getEnv("JWT_AUDIENCE", "galaxy-app"),
			TTL:      getEnvDuration("JWT_TTL", 720*time.Hour),
			KID:      getEnv("JWT_KID", "galaxy-key"),
		},

		PrivilegedEmails: getEnvSlice("PRIVILEGED_EMAILS", []string{adminEmail}),
		SeedAccounts:     getEnvBool("SEED_ACCOUNTS", true),
		AdminEmail:       adminEmail,
		AdminPassword:    getEnv("SEED_ADMIN_PASSWORD", "admin123"),
		AdminName:        getEnv("SEED_ADMIN_NAME", "Galaxy Admin"),
		DemoEmail:        getEnv("SEED_DEMO_EMAIL", "demo@galaxy.com"),
		DemoPassword:     getEnv("SEED_DEMO_PASSWORD", "demo123"),
		DemoName:         getEnv("SEED_DEMO_NAME", "Demo User"),
		BcryptCost:       getEnvInt("BCRYPT_COST", 0),
	}
}

// --- Helper functions ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}
