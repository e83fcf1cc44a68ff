package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App          *AppConfig          `yaml:"app"`
	Database     *DatabaseConfig     `yaml:"database"`
	Redis        *RedisConfig        `yaml:"redis"`
	WebSocket    *WebSocketConfig    `yaml:"websocket"`
	Security     *SecurityConfig     `yaml:"security"`
	Subscription *SubscriptionConfig `yaml:"subscription"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
	Port        int    `yaml:"port"`
	Host        string `yaml:"host"`
	BaseURL     string `yaml:"base_url"`
	Debug       bool   `yaml:"debug"`
	LogLevel    string `yaml:"log_level"`
	Timezone    string `yaml:"timezone"`
	Language    string `yaml:"language"`
	Currency    string `yaml:"currency"`
}

// WebSocketConfig only carries the mount path; buffer sizes and ping
// timings live as constants next to the hub in pkg/websocket.
type WebSocketConfig struct {
	Path string `yaml:"path"`
}

type SecurityConfig struct {
	JWTSecret          string        `yaml:"jwt_secret"`
	JWTAccessTokenTTL  time.Duration `yaml:"jwt_access_token_ttl"`
	PasswordMinLength  int           `yaml:"password_min_length"`
	CORSAllowedOrigins []string      `yaml:"cors_allowed_origins"`
	TrustedProxies     []string      `yaml:"trusted_proxies"`
	RateLimitPerMinute int           `yaml:"rate_limit_per_minute"`
}

// SubscriptionConfig carries the driver-subscription pricing knobs.
// Yape/Plin payment numbers are displayed to drivers verbatim; the app
// never talks to a payment gateway.
type SubscriptionConfig struct {
	PricePEN    float64 `yaml:"price_pen"`
	PeriodDays  int     `yaml:"period_days"`
	YapeNumber  string  `yaml:"yape_number"`
	PlinNumber  string  `yaml:"plin_number"`
	HolderName  string  `yaml:"holder_name"`
}

func Load() (*Config, error) {
	config := &Config{
		App:          loadAppConfig(),
		Database:     loadDatabaseConfig(),
		Redis:        loadRedisConfig(),
		WebSocket:    &WebSocketConfig{Path: getEnv("WEBSOCKET_PATH", "/ws")},
		Security:     loadSecurityConfig(),
		Subscription: loadSubscriptionConfig(),
	}

	return config, nil
}

func loadAppConfig() *AppConfig {
	return &AppConfig{
		Name:        getEnv("APP_NAME", "Halador"),
		Version:     getEnv("APP_VERSION", "1.0.0"),
		Environment: getEnv("APP_ENV", "development"),
		Port:        getEnvAsInt("APP_PORT", 8080),
		Host:        getEnv("APP_HOST", "localhost"),
		BaseURL:     getEnv("APP_BASE_URL", "http://localhost:8080"),
		Debug:       getEnvAsBool("APP_DEBUG", true),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Timezone:    getEnv("APP_TIMEZONE", "America/Lima"),
		Language:    getEnv("APP_LANGUAGE", "es"),
		Currency:    getEnv("APP_CURRENCY", "PEN"),
	}
}

func loadSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		JWTSecret:          getEnv("JWT_SECRET", "your-super-secret-jwt-key"),
		JWTAccessTokenTTL:  getEnvAsDuration("JWT_ACCESS_TOKEN_TTL", 24*time.Hour),
		PasswordMinLength:  getEnvAsInt("PASSWORD_MIN_LENGTH", 8),
		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		TrustedProxies:     getEnvAsSlice("TRUSTED_PROXIES", []string{}),
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 100),
	}
}

func loadSubscriptionConfig() *SubscriptionConfig {
	return &SubscriptionConfig{
		PricePEN:   getEnvAsFloat64("SUBSCRIPTION_PRICE_PEN", 15.00),
		PeriodDays: getEnvAsInt("SUBSCRIPTION_PERIOD_DAYS", 30),
		YapeNumber: getEnv("SUBSCRIPTION_YAPE_NUMBER", ""),
		PlinNumber: getEnv("SUBSCRIPTION_PLIN_NUMBER", ""),
		HolderName: getEnv("SUBSCRIPTION_HOLDER_NAME", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func IsProduction() bool {
	return getEnv("APP_ENV", "development") == "production"
}

func IsDevelopment() bool {
	return getEnv("APP_ENV", "development") == "development"
}

func IsTest() bool {
	return getEnv("APP_ENV", "development") == "test"
}
