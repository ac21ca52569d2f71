package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port          string
	MongoURI      string // empty means in-memory room store
	MongoDatabase string
	DatabaseURL   string // optional Postgres game-history archive
	JoinDelay     time.Duration
	ReportURL     string
	ReportSign    string
}

func Load() Config {
	cfg := Config{
		Port:          getEnv("PORT", "3000"),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDatabase: getEnv("MONGO_DATABASE", "unoroom"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JoinDelay:     time.Duration(getEnvInt("JOIN_DELAY_MS", 5000)) * time.Millisecond,
		ReportURL:     getEnv("REPORT_URL", "https://html5-gaming-bot.web.app/unogame"),
		ReportSign:    getEnv("REPORT_SIGN", "EvzuKF61x9oKOQwh9xrmEmyFIulPNh"),
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
