package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	RedisURL    string
	MetricsPort string

	DataDir       string
	Pages         int
	RequestDelay  time.Duration
	FetchMode     string
	ChromeBin     string
	UserAgent     string
	HTTPTimeout   time.Duration
	PageCacheTTL  time.Duration
	SelectorsFile string
	DebugDump     bool

	SQLitePath         string
	StorageDefaultGB   int
	DisplayDefaultInch float64
	RAMFallbackGB      int
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func Load() *Config {
	// Carrega .env da raiz do projeto
	_ = godotenv.Load("../../.env")
	// Se não encontrar, tenta no diretório atual
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", "data")
	return &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		MetricsPort: getEnv("METRICS_PORT", "9090"),

		DataDir:       dataDir,
		Pages:         getEnvInt("PAGES", 40),
		RequestDelay:  getEnvDuration("REQUEST_DELAY", 2*time.Second),
		FetchMode:     getEnv("FETCH_MODE", "http"), // "http" ou "browser"
		ChromeBin:     os.Getenv("CHROME_BIN"),
		UserAgent:     getEnv("USER_AGENT", defaultUserAgent),
		HTTPTimeout:   getEnvDuration("HTTP_TIMEOUT", 60*time.Second),
		PageCacheTTL:  getEnvDuration("PAGE_CACHE_TTL", 6*time.Hour),
		SelectorsFile: os.Getenv("SELECTORS_FILE"),
		DebugDump:     getEnvBool("DEBUG_DUMP", true),

		SQLitePath:         getEnv("SQLITE_PATH", filepath.Join(dataDir, "laptops.sqlite")),
		StorageDefaultGB:   getEnvInt("STORAGE_DEFAULT_GB", 512),
		DisplayDefaultInch: getEnvFloat("DISPLAY_DEFAULT_INCH", 15.6),
		RAMFallbackGB:      getEnvInt("RAM_FALLBACK_GB", 8),
	}
}

// RawCSVPath is where the crawler exports one source and the cleaner reads it back.
func (c *Config) RawCSVPath(source string) string {
	return filepath.Join(c.DataDir, source+"_laptops.csv")
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getEnvInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config] %s=%q inválido, usando %d", k, v, d)
		return d
	}
	return n
}

func getEnvFloat(k string, d float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("[config] %s=%q inválido, usando %g", k, v, d)
		return d
	}
	return f
}

func getEnvBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return d
	}
	return b
}

func getEnvDuration(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	dur, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[config] %s=%q inválido, usando %s", k, v, d)
		return d
	}
	return dur
}
