package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort          string        `toml:"http_port"`
	DBDriver          string        `toml:"db_driver"`
	DBHost            string        `toml:"db_host"`
	DBPort            string        `toml:"db_port"`
	DBUser            string        `toml:"db_user"`
	DBPassword        string        `toml:"db_password"`
	DBName            string        `toml:"db_name"`
	RedisHost         string        `toml:"redis_host"`
	RedisPort         string        `toml:"redis_port"`
	RedisPassword     string        `toml:"redis_password"`
	SessionSecret     string        `toml:"session_secret"`
	JWTSecret         string        `toml:"jwt_secret"`
	TokenTTL          time.Duration `toml:"-"`
	TokenTTLText      string        `toml:"token_ttl"`
	GinMode           string        `toml:"gin_mode"`
	OpenAIAPIKey      string        `toml:"openai_api_key"`
	LogLevel          string        `toml:"log_level"`
	LogFormat         string        `toml:"log_format"`
	LogFile           string        `toml:"log_file"`
	DirectoryCacheTTL time.Duration `toml:"-"`
	DirectoryTTLText  string        `toml:"directory_cache_ttl"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:         getEnv("HTTP_PORT", "8080"),
		DBDriver:         getEnv("DB_DRIVER", "mysql"),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "3306"),
		DBUser:           getEnv("DB_USER", "taskuser"),
		DBPassword:       getEnv("DB_PASSWORD", "taskpassword"),
		DBName:           getEnv("DB_NAME", "task_tracker"),
		RedisHost:        getEnv("REDIS_HOST", "localhost"),
		RedisPort:        getEnv("REDIS_PORT", "6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		SessionSecret:    getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		JWTSecret:        getEnv("JWT_SECRET", "default-jwt-secret-change-me"),
		TokenTTLText:     getEnv("TOKEN_TTL", "24h"),
		GinMode:          getEnv("GIN_MODE", "debug"),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
		LogFile:          getEnv("LOG_FILE", ""),
		DirectoryTTLText: getEnv("DIRECTORY_CACHE_TTL", "5m"),
	}
	cfg.resolveDurations()
	return cfg
}

// LoadFile loads the environment configuration and then overlays the values
// set in the TOML file at path.
func LoadFile(path string) (*Config, error) {
	cfg := Load()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.resolveDurations()
	return cfg, nil
}

// DSN builds the connection string for the configured driver.
func (c *Config) DSN() string {
	if strings.EqualFold(c.DBDriver, "postgres") {
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// RedisAddr returns host:port for the redis server.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func (c *Config) resolveDurations() {
	c.TokenTTL = parseDuration(c.TokenTTLText, 24*time.Hour)
	c.DirectoryCacheTTL = parseDuration(c.DirectoryTTLText, 5*time.Minute)
}

func parseDuration(value string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
