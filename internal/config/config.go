package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr     string
	DatabaseDSN  string
	JWTSecret    string
	AdminEmail   string
	AdminPass    string
	UploadDir    string
	KafkaBrokers []string
	KafkaTopic   string
	GelfAddr     string
	LogLevel     string
}

func Load() *Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		HTTPAddr:     getEnv("CMS_ADDR", ":8080"),
		DatabaseDSN:  getEnv("CMS_DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=studio_cms port=5432 sslmode=disable"),
		JWTSecret:    getEnv("CMS_JWT_SECRET", "studio-cms-dev-secret-change-me"),
		AdminEmail:   getEnv("CMS_ADMIN_EMAIL", "admin@studio.local"),
		AdminPass:    getEnv("CMS_ADMIN_PASS", "admin123"),
		UploadDir:    getEnv("CMS_UPLOAD_DIR", "./uploads"),
		KafkaBrokers: getEnvList("CMS_KAFKA_BROKERS"),
		KafkaTopic:   getEnv("CMS_KAFKA_TOPIC", "cms.submissions"),
		GelfAddr:     getEnv("CMS_GELF_ADDR", ""),
		LogLevel:     getEnv("CMS_LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
