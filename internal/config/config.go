/**
 * @description
 * This package handles the configuration management for the service. It uses the
 * Viper library to read configuration from environment variables, providing a
 * centralized and straightforward way to manage application settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the pension-service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort               string `mapstructure:"SERVER_PORT"`
	DatabaseURL              string `mapstructure:"DATABASE_URL"`
	RedisURL                 string `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix     string `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	RabbitMQURL              string `mapstructure:"RABBITMQ_URL"`
	JWTSecret                string `mapstructure:"JWT_SECRET"`
	TokenTTLHours            int    `mapstructure:"TOKEN_TTL_HOURS"`
	LoginRateLimitPerMinute  int    `mapstructure:"LOGIN_RATE_LIMIT_PER_MINUTE"`
	AdminRegistrationEnabled bool   `mapstructure:"ADMIN_REGISTRATION_ENABLED"`
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "pensiontrack:rate_limit")
	viper.SetDefault("TOKEN_TTL_HOURS", 24)
	viper.SetDefault("LOGIN_RATE_LIMIT_PER_MINUTE", 10)
	viper.SetDefault("ADMIN_REGISTRATION_ENABLED", false)

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL", "REDIS_URL", "PENSION_REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("JWT_SECRET", "JWT_SECRET", "PENSION_SERVICE_JWT_SECRET")
	_ = viper.BindEnv("TOKEN_TTL_HOURS")
	_ = viper.BindEnv("LOGIN_RATE_LIMIT_PER_MINUTE")
	_ = viper.BindEnv("ADMIN_REGISTRATION_ENABLED")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		// If the config file is not found, we can ignore the error.
		// For other errors, we should return them.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}
	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RedisRateLimitPrefix = strings.TrimSpace(config.RedisRateLimitPrefix)
	if config.RedisRateLimitPrefix == "" {
		config.RedisRateLimitPrefix = "pensiontrack:rate_limit"
	}
	config.JWTSecret = strings.TrimSpace(config.JWTSecret)

	if config.TokenTTLHours <= 0 {
		log.Printf("level=warn component=config msg=\"non-positive token ttl configured; using default\" ttl_hours=%d", config.TokenTTLHours)
		config.TokenTTLHours = 24
	}
	if config.LoginRateLimitPerMinute < 0 {
		log.Printf("level=warn component=config msg=\"negative login rate limit configured; disabling limiter\" limit=%d", config.LoginRateLimitPerMinute)
		config.LoginRateLimitPerMinute = 0
	}

	return
}
