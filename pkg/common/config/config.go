package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	ServerHost           string
	DashboardServicePort string
	CompanionServicePort string
	ArchiverServicePort  string
	ReadTimeout          time.Duration
	WriteTimeout         time.Duration
	MaxRequestBody       int64
	RateLimitRPS         int
	RateLimitBurst       int

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers     []string
	KafkaGroupID     string
	DashboardTopic   string
	PublishEvents    bool
	NotesHistorySize int

	// Roster
	RosterSource string // mock, file, postgres
	RosterPath   string

	// Dashboard session
	PickTTL time.Duration

	// Clinics
	ClinicCatalogPath string

	// Image analysis
	AnalysisBaseURL string
	AnalysisToken   string
	AnalysisTimeout time.Duration

	// Chat
	ChatAPIKey          string
	ChatBaseURL         string
	ChatModelName       string
	ChatTimeout         time.Duration
	ChatRedactRulesPath string

	// Outbound retries
	OutboundRetryAttempts int
	OutboundRetryDelay    time.Duration
}

func Load() *Config {
	return &Config{
		ServerHost:           getEnv("SERVER_HOST", "0.0.0.0"),
		DashboardServicePort: getEnv("DASHBOARD_SERVICE_PORT", "8080"),
		CompanionServicePort: getEnv("COMPANION_SERVICE_PORT", "8081"),
		ArchiverServicePort:  getEnv("ARCHIVER_SERVICE_PORT", "8082"),
		ReadTimeout:          getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:         getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody:       int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 10*1024*1024)),
		RateLimitRPS:         getIntEnv("RATE_LIMIT_RPS", 50),
		RateLimitBurst:       getIntEnv("RATE_LIMIT_BURST", 100),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "mouthwatch"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "mouthwatch"),
		PostgresDB:       getEnv("POSTGRES_DB", "mouthwatch"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers:     getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID:     getEnv("KAFKA_GROUP_ID", "mouthwatch-notes-archiver"),
		DashboardTopic:   getEnv("DASHBOARD_EVENTS_TOPIC", "dashboard-events"),
		PublishEvents:    getBoolEnv("PUBLISH_EVENTS", false),
		NotesHistorySize: getIntEnv("NOTES_HISTORY_SIZE", 20),

		RosterSource: strings.ToLower(getEnv("ROSTER_SOURCE", "mock")),
		RosterPath:   getEnv("ROSTER_PATH", ""),

		PickTTL: getDuration("PICK_TTL", 5*time.Minute),

		ClinicCatalogPath: getEnv("CLINIC_CATALOG_PATH", ""),

		AnalysisBaseURL: getEnv("ANALYSIS_BASE_URL", "http://localhost:8090"),
		AnalysisToken:   getEnv("ANALYSIS_TOKEN", ""),
		AnalysisTimeout: getDuration("ANALYSIS_TIMEOUT", 30*time.Second),

		ChatAPIKey:          getEnv("CHAT_API_KEY", ""),
		ChatBaseURL:         getEnv("CHAT_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		ChatModelName:       getEnv("CHAT_MODEL_NAME", "gemini-1.5-flash-latest"),
		ChatTimeout:         getDuration("CHAT_TIMEOUT", 30*time.Second),
		ChatRedactRulesPath: getEnv("CHAT_REDACT_RULES_PATH", ""),

		OutboundRetryAttempts: getIntEnv("OUTBOUND_RETRY_ATTEMPTS", 1),
		OutboundRetryDelay:    getDuration("OUTBOUND_RETRY_DELAY", 250*time.Millisecond),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getStringSliceEnv splits a comma separated list, e.g. KAFKA_BROKERS=a:9092,b:9092.
func getStringSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
