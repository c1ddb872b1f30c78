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

// Config holds all the configuration variables for the revenue-service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort             string `mapstructure:"SERVER_PORT"`
	DatabaseURL            string `mapstructure:"DATABASE_URL"`
	RedisURL               string `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix   string `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	RabbitMQURL            string `mapstructure:"RABBITMQ_URL"`
	AuthJWKSURL            string `mapstructure:"AUTH_JWKS_URL"`
	AuthAudience           string `mapstructure:"AUTH_AUDIENCE"`
	AuthIssuer             string `mapstructure:"AUTH_ISSUER"`
	AppBaseURL             string `mapstructure:"APP_BASE_URL"`
	AllowedOrigins         string `mapstructure:"ALLOWED_ORIGINS"`
	FacebookClientID       string `mapstructure:"FACEBOOK_CLIENT_ID"`
	FacebookClientSecret   string `mapstructure:"FACEBOOK_CLIENT_SECRET"`
	GraphAPIBaseURL        string `mapstructure:"GRAPH_API_BASE_URL"`
	OAuthDialogURL         string `mapstructure:"OAUTH_DIALOG_URL"`
	InstagramRedirectURI   string `mapstructure:"INSTAGRAM_REDIRECT_URI"`
	SyncCronSchedule       string `mapstructure:"SYNC_CRON_SCHEDULE"`
	SyncRateLimitPerMinute int    `mapstructure:"SYNC_RATE_LIMIT_PER_MINUTE"`
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
	viper.SetDefault("APP_BASE_URL", "http://localhost:3000")
	viper.SetDefault("GRAPH_API_BASE_URL", "https://graph.facebook.com/v18.0")
	viper.SetDefault("OAUTH_DIALOG_URL", "https://www.facebook.com/v18.0/dialog/oauth")
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "creatorhq:rate_limit")
	viper.SetDefault("SYNC_CRON_SCHEDULE", "0 * * * *") // hourly
	viper.SetDefault("SYNC_RATE_LIMIT_PER_MINUTE", 6)

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("AUTH_JWKS_URL")
	_ = viper.BindEnv("AUTH_AUDIENCE")
	_ = viper.BindEnv("AUTH_ISSUER")
	_ = viper.BindEnv("APP_BASE_URL")
	_ = viper.BindEnv("ALLOWED_ORIGINS")
	_ = viper.BindEnv("FACEBOOK_CLIENT_ID")
	_ = viper.BindEnv("FACEBOOK_CLIENT_SECRET")
	_ = viper.BindEnv("GRAPH_API_BASE_URL")
	_ = viper.BindEnv("OAUTH_DIALOG_URL")
	_ = viper.BindEnv("INSTAGRAM_REDIRECT_URI")
	_ = viper.BindEnv("SYNC_CRON_SCHEDULE")
	_ = viper.BindEnv("SYNC_RATE_LIMIT_PER_MINUTE")

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
		config.RedisRateLimitPrefix = "creatorhq:rate_limit"
	}
	config.AppBaseURL = strings.TrimSuffix(strings.TrimSpace(config.AppBaseURL), "/")

	// Default the redirect URI to this service's own callback behind the app origin.
	if strings.TrimSpace(config.InstagramRedirectURI) == "" {
		config.InstagramRedirectURI = config.AppBaseURL + "/api/social/instagram/callback"
	}

	if config.SyncRateLimitPerMinute <= 0 {
		config.SyncRateLimitPerMinute = 6
	}

	return
}

// Origins splits the ALLOWED_ORIGINS list into the slice the CORS middleware
// expects, falling back to the app base URL.
func (c Config) Origins() []string {
	raw := strings.TrimSpace(c.AllowedOrigins)
	if raw == "" {
		return []string{c.AppBaseURL}
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
