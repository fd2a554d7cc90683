package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

var AppEnv Config

type Config struct {
	Port            string
	MongoURI        string
	DBName          string
	StoreDriver     string
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	RedisAddr    string
	KafkaBrokers []string
	KafkaTopic   string

	UploadDir     string
	PublicBaseURL string

	LogLevel  string
	LogPretty bool

	CancelThreshold int
	CancelWindow    time.Duration
	CodeMaxAttempts int

	RateLimitRPS   float64
	RateLimitBurst int

	StaffEmail    string
	StaffPassword string
}

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg(".env not loaded")
	}
	AppEnv = FromEnv()
}

// FromEnv reads the configuration from the process environment.
func FromEnv() Config {
	return Config{
		Port:            getEnvOrDefault("PORT", "8080"),
		MongoURI:        getEnvOrDefault("MONGO_URI", ""),
		DBName:          getEnvOrDefault("DB_NAME", "time2eat"),
		StoreDriver:     strings.ToLower(getEnvOrDefault("STORE_DRIVER", DriverMongo)),
		JWTSecret:       getEnvOrDefault("JWT_SECRET", ""),
		AccessTokenTTL:  getDurationEnv("ACCESS_TOKEN_TTL", 20, time.Minute),
		RefreshTokenTTL: getDurationEnv("REFRESH_TOKEN_TTL", 7, 24*time.Hour),

		RedisAddr:    getEnvOrDefault("REDIS_ADDR", ""),
		KafkaBrokers: getListEnv("KAFKA_BROKERS"),
		KafkaTopic:   getEnvOrDefault("KAFKA_TOPIC", "canteen.orders"),

		UploadDir:     getEnvOrDefault("UPLOAD_DIR", "./public"),
		PublicBaseURL: getEnvOrDefault("PUBLIC_BASE_URL", ""),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogPretty: getBoolEnv("LOG_PRETTY", false),

		CancelThreshold: getIntEnv("CANCEL_THRESHOLD", 3),
		CancelWindow:    getDurationEnv("CANCEL_WINDOW_HOURS", 24, time.Hour),
		CodeMaxAttempts: getIntEnv("CODE_MAX_ATTEMPTS", 10),

		RateLimitRPS:   getFloatEnv("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 10),

		StaffEmail:    strings.ToLower(getEnvOrDefault("STAFF_EMAIL", "")),
		StaffPassword: getEnvOrDefault("STAFF_PASSWORD", ""),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}

func getIntEnv(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getListEnv(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
