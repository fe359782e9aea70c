package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Env  string
	Port string

	// Database
	DatabaseURL string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Registration keys per role
	RegistrationKeyUser  string
	RegistrationKeyAdmin string

	// Maintenance endpoints (scheduled jobs)
	MaintenanceAPIKey string

	// Desk
	Sectors []string

	// Mirror
	MirrorPath        string
	MirrorS3Region    string
	MirrorS3Endpoint  string
	MirrorS3PathStyle bool

	// Catalog cache
	CatalogCacheSize int
	CatalogCacheTTL  time.Duration
}

// DefaultSectors is used when SECTORS is not configured.
var DefaultSectors = []string{
	"Produção",
	"Recebimento",
	"Armazenagem e Ressuprimento",
	"SME - Logistica reversa",
	"Controle de Estoque",
	"Efacil",
	"Qualidade",
	"Expedição",
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8080"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", "sqlite://stockdesk.db"),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		// Registration keys; legacy names are accepted as fallbacks
		RegistrationKeyUser:  firstEnv("REGISTRATION_API_KEY_USER", "REGISTRATION_API_KEY"),
		RegistrationKeyAdmin: firstEnv("REGISTRATION_API_KEY_ADMIN", "REGISTRATION_API_KEY_ADM"),

		MaintenanceAPIKey: getEnv("MAINTENANCE_API_KEY", ""),

		Sectors: parseEnvList("SECTORS", DefaultSectors),

		// Mirror
		MirrorPath:        getEnv("MIRROR_PATH", ""),
		MirrorS3Region:    getEnv("MIRROR_S3_REGION", "us-east-1"),
		MirrorS3Endpoint:  getEnv("MIRROR_S3_ENDPOINT", ""),
		MirrorS3PathStyle: strings.EqualFold(getEnv("MIRROR_S3_PATH_STYLE", "false"), "true"),
	}

	config.JWTExpirationDur = getDuration("JWT_EXPIRES_IN", 12*time.Hour)
	config.CatalogCacheTTL = getDuration("CATALOG_CACHE_TTL", 10*time.Minute)

	sizeStr := getEnv("CATALOG_CACHE_SIZE", "512")
	size, err := strconv.Atoi(sizeStr)
	if err != nil || size <= 0 {
		log.Printf("Warning: invalid CATALOG_CACHE_SIZE value '%s', falling back to 512\n", sizeStr)
		size = 512
	}
	config.CatalogCacheSize = size

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// Set replaces the process configuration. Used by tests that need a known JWT secret.
func Set(cfg *Config) {
	appConfig = cfg
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// firstEnv returns the first non-empty value among keys.
func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, fallback)
		return fallback
	}
	return d
}

// parseEnvList reads a list from KEY (JSON array or CSV), then KEY_JSON, then the default.
func parseEnvList(key string, fallback []string) []string {
	raw, ok := os.LookupEnv(key)
	if !ok {
		raw, ok = os.LookupEnv(key + "_JSON")
		if !ok {
			return append([]string(nil), fallback...)
		}
		if list, ok := parseJSONList(raw); ok {
			return list
		}
		return append([]string(nil), fallback...)
	}

	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		if list, ok := parseJSONList(s); ok {
			return list
		}
	}
	return splitCSV(s)
}

func parseJSONList(raw string) ([]string, bool) {
	var data []any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, false
	}
	out := make([]string, 0, len(data))
	for _, v := range data {
		var s string
		switch t := v.(type) {
		case string:
			s = t
		default:
			b, _ := json.Marshal(t)
			s = string(b)
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, true
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
