// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime configuration for the relay service.
type Config struct {
	HTTPPort    string
	MetricsPort string

	OpenAI   OpenAIConfig
	Supabase SupabaseConfig
	Kafka    KafkaConfig
}

// OpenAIConfig holds credentials and endpoints for the OpenAI APIs.
type OpenAIConfig struct {
	APIKey      string
	RealtimeURL string
	ChatModel   string
}

// SupabaseConfig holds the Supabase project endpoint and keys.
type SupabaseConfig struct {
	URL       string
	AnonKey   string
	JWTSecret string
}

// KafkaConfig holds the turn-event publisher configuration.
type KafkaConfig struct {
	Enabled   bool
	Brokers   []string
	Topic     string
	Principal string
}

// Load reads configuration from environment variables, applying defaults
// for everything except credentials.
func Load() *Config {
	return &Config{
		HTTPPort:    envOrDefault("HTTP_PORT", "8000"),
		MetricsPort: envOrDefault("METRICS_PORT", "9090"),
		OpenAI: OpenAIConfig{
			APIKey:      os.Getenv("OPENAI_API_KEY"),
			RealtimeURL: envOrDefault("OPENAI_REALTIME_URL", "wss://api.openai.com/v1/realtime?model=gpt-4o-realtime-preview-2024-10-01"),
			ChatModel:   envOrDefault("OPENAI_CHAT_MODEL", "gpt-4o"),
		},
		Supabase: SupabaseConfig{
			URL:       os.Getenv("SUPABASE_URL"),
			AnonKey:   os.Getenv("SUPABASE_ANON_KEY"),
			JWTSecret: os.Getenv("SUPABASE_JWT_SECRET"),
		},
		Kafka: KafkaConfig{
			Enabled:   envBool("KAFKA_ENABLED", false),
			Brokers:   envList("KAFKA_BROKERS", "localhost:9092"),
			Topic:     envOrDefault("KAFKA_TOPIC_TURN_COMPLETED", "translation.turn.completed"),
			Principal: envOrDefault("KAFKA_PRINCIPAL", "svc-translation-relay"),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
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

func envList(key, def string) []string {
	v := envOrDefault(key, def)
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
