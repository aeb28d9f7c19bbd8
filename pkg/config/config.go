package config

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

type Config struct {
	CompletionsAPIURL string
	CompletionsAPIKey string
	CompletionsModel  string
	Port              string
	StorageBackend    string
	DBPath            string
	SessionSecret     string
	SessionTTL        time.Duration
	TTSEndpoint       string
	TTSModel          string
	TTSVoice          string
	AllowedOrigins    string
}

func getEnv(key, defaultValue string, printEnv bool) string {
	logger := log.Default()
	value := os.Getenv(key)
	if printEnv {
		logger.Info("Env", "key", key, "value", value)
	}
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvOrPanic(key string, printEnv bool) string {
	value := getEnv(key, "", printEnv)
	if value == "" {
		panic(fmt.Sprintf("Environment variable %s is not set", key))
	}
	return value
}

func LoadConfig(printEnv bool) (*Config, error) {
	_ = godotenv.Load()

	sessionTTL, err := time.ParseDuration(getEnv("SESSION_TTL", "720h", printEnv))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	conf := &Config{
		CompletionsAPIURL: getEnv("COMPLETIONS_API_URL", "https://api.openai.com/v1", printEnv),
		CompletionsAPIKey: getEnv("COMPLETIONS_API_KEY", "", printEnv),
		CompletionsModel:  getEnv("COMPLETIONS_MODEL", "gpt-4.1-mini", printEnv),
		Port:              getEnv("PORT", "5000", printEnv),
		StorageBackend:    getEnv("STORAGE_BACKEND", "sqlite", printEnv),
		DBPath:            getEnv("DB_PATH", "./output/sqlite/lumen.db", printEnv),
		SessionSecret:     getEnvOrPanic("SESSION_SECRET", printEnv),
		SessionTTL:        sessionTTL,
		TTSEndpoint:       getEnv("TTS_ENDPOINT", "https://api.openai.com/v1/audio/speech", printEnv),
		TTSModel:          getEnv("TTS_MODEL", "tts-1", printEnv),
		TTSVoice:          getEnv("TTS_VOICE", "nova", printEnv),
		AllowedOrigins:    getEnv("ALLOWED_ORIGINS", "*", printEnv),
	}

	return conf, nil
}
