package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP Configuration
	HTTPAddr        string
	ShutdownTimeout time.Duration

	// ML Model Configuration
	ModelPath       string
	LabelPolicy     string
	LabelThreshold  float64
	ExitOnLoadError bool

	// Session Configuration
	SessionCookie        string
	SessionTTL           time.Duration
	SessionSweepInterval time.Duration

	// Logging Configuration
	LogLevel  string
	LogFormat string

	// MQTT Configuration (publishing is disabled when MQTTBroker is empty)
	MQTTBroker          string
	MQTTClientID        string
	MQTTUsername        string
	MQTTPassword        string
	MQTTTopicPrediction string
	MQTTTopicSprinkler  string
	MQTTQueueSize       int

	// Metrics
	MetricsEnabled bool
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		// HTTP Configuration
		HTTPAddr:        getEnv("HTTP_ADDR", ":8501"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 5*time.Second),

		// ML Model Configuration
		ModelPath:       getEnv("MODEL_PATH", "./model/irrigation_model.json"),
		LabelPolicy:     getEnv("LABEL_POLICY", "equal"),
		LabelThreshold:  getEnvFloat("LABEL_THRESHOLD", 0.5),
		ExitOnLoadError: getEnvBool("EXIT_ON_LOAD_ERROR", false),

		// Session Configuration
		SessionCookie:        getEnv("SESSION_COOKIE", "irrigation_session"),
		SessionTTL:           getEnvDuration("SESSION_TTL", 2*time.Hour),
		SessionSweepInterval: getEnvDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute),

		// Logging Configuration
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// MQTT Configuration
		MQTTBroker:          getEnv("MQTT_BROKER", ""),
		MQTTClientID:        getEnv("MQTT_CLIENT_ID", "smart-irrigation"),
		MQTTUsername:        getEnv("MQTT_USERNAME", ""),
		MQTTPassword:        getEnv("MQTT_PASSWORD", ""),
		MQTTTopicPrediction: getEnv("MQTT_TOPIC_PREDICTION", "irrigation/{session_id}/prediction"),
		MQTTTopicSprinkler:  getEnv("MQTT_TOPIC_SPRINKLER", "irrigation/sprinkler/{index}/command"),
		MQTTQueueSize:       getEnvInt("MQTT_QUEUE_SIZE", 50),

		// Metrics
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Warning: failed to parse %s as float, using default: %v", key, err)
		return defaultValue
	}
	return floatValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: failed to parse %s as int, using default: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Warning: failed to parse %s as bool, using default: %v", key, err)
		return defaultValue
	}
	return boolValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	durationValue, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Warning: failed to parse %s as duration, using default: %v", key, err)
		return defaultValue
	}
	return durationValue
}
