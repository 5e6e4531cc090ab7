package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration
type Config struct {
	// Server
	ServerPort string

	// Store selection: "memory", "dynamo", or "postgres"
	StoreBackend string

	// Postgres
	DatabaseURL string

	// AWS / DynamoDB
	AWSRegion      string
	JobsTable      string
	GuestbookTable string
	GuestbookIndex string

	// Bedrock agent; when AgentID is empty the scripted engine is used
	BedrockAgentID      string
	BedrockAgentAliasID string

	// Orchestration
	RejectResubmit  bool
	AnalysisTimeout time.Duration

	// Optional presentation YAML (loading messages, reaction emojis)
	PresentationPath string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		ServerPort:          getEnv("SERVER_PORT", "8080"),
		StoreBackend:        getEnv("STORE_BACKEND", "memory"),
		DatabaseURL:         getEnv("DATABASE_URL", "postgres://localhost/doomsday?sslmode=disable"),
		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		JobsTable:           getEnv("JOBS_TABLE", "doomsday-surveys"),
		GuestbookTable:      getEnv("GUESTBOOK_TABLE", "doomsday-guestbook"),
		GuestbookIndex:      getEnv("GUESTBOOK_INDEX", "created_at-index"),
		BedrockAgentID:      getEnv("BEDROCK_AGENT_ID", ""),
		BedrockAgentAliasID: getEnv("BEDROCK_AGENT_ALIAS_ID", ""),
		RejectResubmit:      getBool("REJECT_RESUBMIT", false),
		AnalysisTimeout:     getDuration("ANALYSIS_TIMEOUT", 2*time.Minute),
		PresentationPath:    getEnv("PRESENTATION_CONFIG", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
