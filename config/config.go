package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	FrontendURL     string
	MongoDBURI      string
	MongoDBDatabase string

	// LLM generation provider ("openai" or "gemini")
	LLMProvider  string
	LLMAPIKey    string
	LLMModel     string
	GeminiAPIKey string
	GeminiModel  string

	// Embedding provider ("openai" or "gemini")
	EmbeddingProvider string
	EmbeddingAPIKey   string
	EmbeddingModel    string

	// Classification probabilities at or above this threshold become decisions.
	DecisionThreshold float64

	// Directory where the semantic index is persisted.
	IndexDir string

	// Identity used when storing outbound replies.
	SenderName  string
	SenderEmail string

	// Gmail ingestion
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRefreshToken string
	GmailSyncMax       int
}

func Load() *Config {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	threshold, err := strconv.ParseFloat(getEnv("DECISION_THRESHOLD", "0.5"), 64)
	if err != nil {
		threshold = 0.5
	}

	syncMax, err := strconv.Atoi(getEnv("GMAIL_SYNC_MAX", "25"))
	if err != nil {
		syncMax = 25
	}

	return &Config{
		Port:               getEnv("PORT", "8080"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:3000"),
		MongoDBURI:         getEnv("MONGODB_URI", ""),
		MongoDBDatabase:    getEnv("MONGODB_DATABASE", "mailpilot"),
		LLMProvider:        getEnv("LLM_PROVIDER", "openai"),
		LLMAPIKey:          getEnv("OPENAI_API_KEY", ""),
		LLMModel:           getEnv("OPENAI_MODEL", "gpt-4o"),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		EmbeddingProvider:  getEnv("EMBEDDING_PROVIDER", "openai"),
		EmbeddingAPIKey:    getEnv("EMBEDDING_API_KEY", os.Getenv("OPENAI_API_KEY")),
		EmbeddingModel:     getEnv("EMBEDDING_MODEL", ""),
		DecisionThreshold:  threshold,
		IndexDir:           getEnv("INDEX_DIR", "index"),
		SenderName:         getEnv("USER_NAME", "Adrian"),
		SenderEmail:        getEnv("USER_EMAIL", "example@example.com"),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRefreshToken: getEnv("GOOGLE_REFRESH_TOKEN", ""),
		GmailSyncMax:       syncMax,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
