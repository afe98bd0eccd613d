package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devSecretKey = "dev-secret-key-change-in-production"

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Session       SessionConfig
	Mongo         MongoConfig
	Notifications NotificationConfig
	Booking       BookingConfig

	// UseExternalStore selects the MongoDB backend instead of process memory.
	UseExternalStore bool
	SeedDemoData     bool
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

// SessionConfig holds session cookie and signing configuration
type SessionConfig struct {
	SecretKey    string
	TTL          time.Duration
	CookieSecure bool
}

// MongoConfig holds the external store configuration
type MongoConfig struct {
	URI               string
	Database          string
	OpTimeout         time.Duration
	UsersTable        string
	AppointmentsTable string
	RecordsTable      string
}

// NotificationConfig holds the notification topic configuration
type NotificationConfig struct {
	RedisURL string
	Topic    string
	Timeout  time.Duration
}

// BookingConfig holds account and appointment policy switches
type BookingConfig struct {
	HashPasswords bool
	CancelDeletes bool
}

// Load reads .env when present, then builds the configuration from environment variables.
func Load() *Config {
	_ = godotenv.Load()

	port := getEnv("API_PORT", getEnv("PORT", "8080"))

	return &Config{
		Server: ServerConfig{
			Port:           port,
			Env:            getEnv("APP_ENV", "development"),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		},
		Session: SessionConfig{
			SecretKey:    getEnv("SECRET_KEY", devSecretKey),
			TTL:          getEnvAsDuration("SESSION_TTL", 0),
			CookieSecure: getEnvAsBool("SESSION_COOKIE_SECURE", false),
		},
		Mongo: MongoConfig{
			URI:               getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database:          getEnv("MONGO_DATABASE", "medtrack"),
			OpTimeout:         getEnvAsDuration("MONGO_OP_TIMEOUT", 5*time.Second),
			UsersTable:        getEnv("USERS_TABLE", "MedTrack_Users"),
			AppointmentsTable: getEnv("APPOINTMENTS_TABLE", "MedTrack_Appointments"),
			RecordsTable:      getEnv("RECORDS_TABLE", "MedTrack_MedicalRecords"),
		},
		Notifications: NotificationConfig{
			RedisURL: getEnv("REDIS_URL", ""),
			Topic:    getEnv("NOTIFY_TOPIC", ""),
			Timeout:  getEnvAsDuration("NOTIFY_TIMEOUT", 3*time.Second),
		},
		Booking: BookingConfig{
			HashPasswords: getEnvAsBool("HASH_PASSWORDS", false),
			CancelDeletes: getEnvAsBool("CANCEL_DELETES_APPOINTMENT", false),
		},
		UseExternalStore: getEnvAsBool("USE_EXTERNAL_STORE", getEnvAsBool("USE_AWS", false)),
		SeedDemoData:     getEnvAsBool("SEED_DEMO_DATA", true),
	}
}

// UsingDevSecret reports whether sessions are signed with the built-in development key.
func (c *SessionConfig) UsingDevSecret() bool {
	return c.SecretKey == devSecretKey
}

// NotificationsEnabled reports whether a topic publisher should be wired.
func (c *NotificationConfig) NotificationsEnabled() bool {
	return c.RedisURL != "" && c.Topic != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("5s") or a bare number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
