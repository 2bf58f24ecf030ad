package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ResendAPIKeyEnv holds the email provider secret. It is read on every relay
// invocation, never cached in Config.
const ResendAPIKeyEnv = "RESEND_API_KEY"

type Config struct {
	Port          string
	AssistantPort string
	AllowedOrigin string
	StaticDir     string
	// Logging
	LogLevel string
	LogFile  string
	// Contact relay
	MailProvider string
	ContactFrom  string
	ContactTo    string
	SMTP         SMTPConfig
	// Assistant (OpenAI-compatible local endpoints)
	OpenAIBaseURL     string
	OpenAIAPIKey      string
	Model             string
	Temperature       float32
	EmbeddingBaseURL  string
	EmbeddingModel    string
	ResumePath        string
	PromptFile        string
	RetrievalK        int
	ChunkSize         int
	ChunkOverlap      int
	MaxSessionHistory int
	AssistantToken    string
	// Contact archive
	SubmissionsFile string
	DatabaseURL     string
	MigrationsDir   string
	// Chat widget
	AssistantURL  string
	ChatStateFile string
}

type SMTPConfig struct {
	Host           string
	Port           int
	Username       string
	Password       string
	UseTLS         bool
	TimeoutSeconds int
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Port:          getEnvDefault("PORT", "8080"),
		AssistantPort: getEnvDefault("ASSISTANT_PORT", "7860"),
		AllowedOrigin: getEnvDefault("ALLOWED_ORIGIN", "*"),
		StaticDir:     getEnvDefault("STATIC_DIR", "./public"),
		LogLevel:      getEnvDefault("LOG_LEVEL", "INFO"),
		LogFile:       os.Getenv("LOG_FILE"),
		MailProvider:  strings.ToLower(getEnvDefault("MAIL_PROVIDER", "resend")),
		ContactFrom:   getEnvDefault("CONTACT_FROM", "Portfolio Contact <onboarding@resend.dev>"),
		ContactTo:     getEnvDefault("CONTACT_TO", "ayush.t.2010@gmail.com"),
		SMTP: SMTPConfig{
			Host:           os.Getenv("SMTP_HOST"),
			Port:           getEnvIntDefault("SMTP_PORT", 587),
			Username:       os.Getenv("SMTP_USERNAME"),
			Password:       os.Getenv("SMTP_PASSWORD"),
			UseTLS:         getEnvBoolDefault("SMTP_USE_TLS", false),
			TimeoutSeconds: getEnvIntDefault("SMTP_TIMEOUT_SECONDS", 30),
		},
		OpenAIBaseURL:     getEnvDefault("OPENAI_BASE_URL", "http://localhost:1234/v1"),
		OpenAIAPIKey:      getEnvDefault("OPENAI_API_KEY", "ollama"),
		Model:             getEnvDefault("OPENAI_MODEL", "qwen/qwen3-4b-2507"),
		Temperature:       getEnvFloatDefault("OPENAI_TEMPERATURE", 0.2),
		EmbeddingBaseURL:  getEnvDefault("EMBEDDING_BASE_URL", "http://localhost:11434/v1"),
		EmbeddingModel:    getEnvDefault("EMBEDDING_MODEL", "mxbai-embed-large:latest"),
		ResumePath:        getEnvDefault("RESUME_PATH", "./sources/resume.md"),
		PromptFile:        getEnvDefault("PROMPT_FILE", "./prompts/assistant.yaml"),
		RetrievalK:        getEnvIntDefault("RETRIEVAL_K", 4),
		ChunkSize:         getEnvIntDefault("CHUNK_SIZE", 400),
		ChunkOverlap:      getEnvIntDefault("CHUNK_OVERLAP", 20),
		MaxSessionHistory: getEnvIntDefault("MAX_SESSION_HISTORY", 20),
		AssistantToken:    os.Getenv("ASSISTANT_TOKEN"),
		SubmissionsFile:   getEnvDefault("SUBMISSIONS_FILE", "contact_submissions.json"),
		DatabaseURL:       os.Getenv("DB_URL"),
		MigrationsDir:     getEnvDefault("MIGRATIONS_DIR", "./migrations"),
		AssistantURL:      getEnvDefault("ASSISTANT_URL", "http://localhost:7860/api/chat"),
		ChatStateFile:     getEnvDefault("CHAT_STATE_FILE", "data/chat_state.json"),
	}
	if cfg.MailProvider == "smtp" && cfg.SMTP.Host == "" {
		slog.Warn("MAIL_PROVIDER is smtp but SMTP_HOST is not set; relay sends will fail")
	}
	return cfg
}

// ResendAPIKey returns the current provider secret from the process environment.
func ResendAPIKey() string {
	return os.Getenv(ResendAPIKeyEnv)
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvIntDefault(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		slog.Warn("ignoring invalid integer env value", "key", key, "value", v)
	}
	return def
}

func getEnvFloatDefault(key string, def float32) float32 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			return float32(f)
		}
		slog.Warn("ignoring invalid float env value", "key", key, "value", v)
	}
	return def
}

func getEnvBoolDefault(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}
