// Package config centralizes the environment configuration read once at
// startup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds every external setting the service needs. Immutable after Load.
type Config struct {
	// Pinecone
	PineconeAPIKey    string
	PineconeIndexHost string
	PineconeNamespace string
	EmbedModel        string

	// OpenAI
	OpenAIAPIKey string
	ChatModel    string

	// Retrieval
	TopKDefault int

	// Session memory
	MaxSessionTurns int

	// Optional SSM Parameter Store prefix for resolving missing API keys.
	ParamPrefix string
}

// Load reads all environment variables and applies defaults.
func Load() *Config {
	return &Config{
		PineconeAPIKey:    os.Getenv("PINECONE_API_KEY"),
		PineconeIndexHost: os.Getenv("PINECONE_INDEX_HOST"),
		PineconeNamespace: getEnv("PINECONE_NAMESPACE", "resume-v1"),
		EmbedModel:        getEnv("PINECONE_EMBED_MODEL", "llama-text-embed-v2"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		ChatModel:         getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		TopKDefault:       getIntEnv("RAG_TOP_K", 5),
		MaxSessionTurns:   getIntEnv("MAX_SESSION_TURNS", 20),
		ParamPrefix:       os.Getenv("PARAM_PREFIX"),
	}
}

// Validate returns the names of required variables that are still unset.
// API keys are only required when no Parameter Store prefix is configured to
// resolve them later.
func (c *Config) Validate() []string {
	var missing []string
	if strings.TrimSpace(c.PineconeIndexHost) == "" {
		missing = append(missing, "PINECONE_INDEX_HOST")
	}
	if c.ParamPrefix == "" {
		if strings.TrimSpace(c.PineconeAPIKey) == "" {
			missing = append(missing, "PINECONE_API_KEY")
		}
		if strings.TrimSpace(c.OpenAIAPIKey) == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	}
	return missing
}

// MissingError formats the Validate result as one operator-readable error.
func (c *Config) MissingError() error {
	missing := c.Validate()
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("config: missing required environment variables: %s", strings.Join(missing, ", "))
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
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
