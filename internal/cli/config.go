package cli

import "os"

// Settings are process settings read from the environment
type Settings struct {
	DBDriver     string
	DBDSN        string
	TemporalHost string
	TaskQueue    string
	JWTSecret    string
}

// DefaultTaskQueue is the queue builds and the worker meet on
const DefaultTaskQueue = "builds"

// LoadSettings reads settings from the environment with defaults
func LoadSettings() Settings {
	return Settings{
		DBDriver:     getEnvOrDefault("SCRIPTSTEP_DB_DRIVER", "sqlite"),
		DBDSN:        getEnvOrDefault("SCRIPTSTEP_DB_DSN", "scriptstep.db"),
		TemporalHost: getEnvOrDefault("TEMPORAL_HOST", "localhost:7233"),
		TaskQueue:    getEnvOrDefault("SCRIPTSTEP_TASK_QUEUE", DefaultTaskQueue),
		JWTSecret:    os.Getenv("SCRIPTSTEP_JWT_SECRET"),
	}
}

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
