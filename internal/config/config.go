package config

import (
	"os"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	CORSOrigins string
	TablePrefix string
	// Policy enforcement mode: "enforced" or "permissive". Permissive
	// must be opted into explicitly; it is never derived from
	// Environment.
	PolicyMode string
	// JWT signing secret for session tokens.
	JWTSecret string
	// TokenTTLHours is the session token lifetime.
	TokenTTLHours int
	// LogDir, when set, mirrors logs to timestamped files in that
	// directory. Stdout logging is always on.
	LogDir string
	// LogMaxFiles caps how many rotated log files are kept.
	LogMaxFiles int
	// CapabilitiesFile optionally points to a YAML schema descriptor.
	// When empty, capabilities are probed against the live schema at
	// startup.
	CapabilitiesFile string
	// SMTP settings for approval notifications. Empty host disables
	// outbound mail.
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:             getEnv("PORT", "8080"),
		Environment:      env,
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		CORSOrigins:      getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:      getTablePrefix(env),
		PolicyMode:       getEnv("POLICY_MODE", "enforced"),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		TokenTTLHours:    24,
		LogDir:           getEnv("LOG_DIR", ""),
		LogMaxFiles:      10,
		CapabilitiesFile: getEnv("CAPABILITIES_FILE", ""),
		SMTPHost:         getEnv("SMTP_HOST", ""),
		SMTPPort:         getEnv("SMTP_PORT", "587"),
		SMTPUser:         getEnv("SMTP_USER", ""),
		SMTPPass:         getEnv("SMTP_PASS", ""),
		SMTPFrom:         getEnv("SMTP_FROM", "no-reply@dochub.local"),
		// Debug defaults to true outside prod
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
