package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	LogLevel    slog.Level
	HTTPTimeout time.Duration

	DBDriver    string
	DatabaseURL string

	KVBackend     string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	BadgerDir     string

	JWTSecret   string
	CORSOrigins []string

	ClosedStagePrefixes []string
	ClosedStages        []string

	StartupRetries int
}

// Load reads an optional .env file (existing variables win) and then the environment.
func Load(files ...string) Config {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		// .env es opcional
		_ = godotenv.Load(f)
	}
	return FromEnv()
}

func FromEnv() Config {
	to := 15 * time.Second
	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			to = d
		}
	}
	return Config{
		Port:                envOr("PORT", "8080"),
		LogLevel:            parseLevel(os.Getenv("LOG_LEVEL")),
		HTTPTimeout:         to,
		DBDriver:            envOr("DB_DRIVER", "pgx"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		KVBackend:           envOr("KV_BACKEND", "memory"),
		RedisAddr:           envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		RedisDB:             atoiOr("REDIS_DB", 0),
		BadgerDir:           envOr("BADGER_DIR", "./data/layouts"),
		JWTSecret:           os.Getenv("AUTH_JWT_SECRET"),
		CORSOrigins:         csv(envOr("CORS_ORIGINS", "*")),
		ClosedStagePrefixes: csv(envOr("CLOSED_STAGE_PREFIXES", "Fechad")),
		ClosedStages:        csv(envOr("CLOSED_STAGES", "Perdida,Perdido")),
		StartupRetries:      atoiOr("STARTUP_RETRIES", 5),
	}
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func atoiOr(k string, def int) int {
	v, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return v
}

func csv(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
