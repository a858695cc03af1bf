package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel string

	GRPCPort int
	HTTPPort int

	DatabaseURL string
	Postgres    PostgresConfig

	EnableAuth bool
	JWTSecret  string

	POS POSConfig
}

type PostgresConfig struct {
	Host string
	Port int
	User string
	Pass string
	DB   string
}

// POSConfig is read by the cashier side only.
type POSConfig struct {
	APIURL        string
	GRPCAddr      string
	Transport     string
	StatePath     string
	StoreID       int64
	APIToken      string
	SubmitTimeout time.Duration
}

func Load() Config {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	return Config{
		AppEnv:      getEnv("APP_ENV", "dev"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		HTTPPort:    getEnvInt("HTTP_PORT", 8080),
		GRPCPort:    getEnvInt("GRPC_PORT", 8081),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Postgres: PostgresConfig{
			Host: getEnv("POSTGRES_HOST", "localhost"),
			Port: getEnvInt("POSTGRES_PORT", 5432),
			User: getEnv("POSTGRES_USER", "venezia"),
			Pass: getEnv("POSTGRES_PASSWORD", "venezia"),
			DB:   getEnv("POSTGRES_DB", "venezia"),
		},
		EnableAuth: getEnvBool("ENABLE_AUTH", false),
		JWTSecret:  getEnv("JWT_SECRET", "change-me"),
		POS: POSConfig{
			APIURL:        strings.TrimRight(getEnv("POS_API_URL", "http://localhost:8080/api"), "/"),
			GRPCAddr:      getEnv("POS_GRPC_ADDR", "localhost:8081"),
			Transport:     strings.ToLower(getEnv("POS_TRANSPORT", "http")),
			StatePath:     getEnv("POS_STATE_PATH", "venezia-pos.db"),
			StoreID:       int64(getEnvInt("POS_STORE_ID", 1)),
			APIToken:      getEnv("POS_API_TOKEN", ""),
			SubmitTimeout: getEnvDuration("POS_SUBMIT_TIMEOUT", 10*time.Second),
		},
	}
}

// PostgresDSN prefers DATABASE_URL and falls back to the discrete POSTGRES_* keys.
func (c Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	p := c.Postgres
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		p.Host, p.Port, p.User, p.Pass, p.DB)
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

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
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
	if err != nil || d <= 0 {
		return def
	}
	return d
}
