package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Tenant    TenantConfig
	Push      PushConfig
	Heartbeat HeartbeatConfig
	Cache     CacheConfig
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host        string
	Port        int
	MetricsPort int // Port for Prometheus metrics HTTP server
	APIPrefix   string
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// TenantConfig represents the default tenant seeded at startup
type TenantConfig struct {
	DefaultID   string
	DefaultName string
}

// PushConfig represents Firebase Cloud Messaging configuration
type PushConfig struct {
	Enabled         bool
	ProjectID       string
	CredentialsJSON string // Service account key as a JSON string
}

// HeartbeatConfig represents the heartbeat publisher configuration
type HeartbeatConfig struct {
	Enabled   bool
	ChannelID string
}

// CacheConfig represents recipient token cache configuration
type CacheConfig struct {
	Enabled        bool
	MaxMemoryBytes int64 // Maximum memory usage in bytes (e.g., 104857600 = 100MB)
	Metrics        bool
	TTLMinutes     int // Time-to-live for cache entries in minutes
}

// findProjectRoot finds the project root directory by looking for go.mod
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	// Walk up the directory tree until we find go.mod
	for {
		goModPath := filepath.Join(dir, "go.mod")
		if _, err := os.Stat(goModPath); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached the root directory
			return "", fmt.Errorf("go.mod not found in any parent directory")
		}
		dir = parent
	}
}

// InitConfig initializes viper configuration
// env: environment name (dev, test, prod)
func InitConfig(env string) error {
	if env == "" {
		env = "dev"
	}

	// Find project root
	projectRoot, err := findProjectRoot()
	if err != nil {
		return fmt.Errorf("failed to find project root: %w", err)
	}

	// Set config file name based on environment
	viper.SetConfigName(fmt.Sprintf(".env.%s", env))
	viper.SetConfigType("env")
	viper.AddConfigPath(projectRoot) // Project root

	// Read config file (optional, ignore error if not found)
	_ = viper.ReadInConfig()

	// Environment variables take precedence over config file
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("METRICS_PORT", 9090)
	viper.SetDefault("API_PREFIX", "/api")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 15432)
	viper.SetDefault("DB_USER", "j26")
	viper.SetDefault("DB_NAME", "j26_notifications_dev")
	viper.SetDefault("DB_SSLMODE", "disable")

	// Tenant defaults
	viper.SetDefault("DEFAULT_TENANT", "jamboree26")
	viper.SetDefault("DEFAULT_TENANT_NAME", "J26 Notifications")

	// Push defaults
	viper.SetDefault("FCM_ENABLED", true)

	// Heartbeat defaults
	viper.SetDefault("HEARTBEAT_ENABLED", true)
	viper.SetDefault("HEARTBEAT_CHANNEL", "heartbeat")

	// Cache defaults
	viper.SetDefault("CACHE_ENABLED", true)
	viper.SetDefault("CACHE_MAX_MEMORY_BYTES", 100*1024*1024) // 100MB
	viper.SetDefault("CACHE_METRICS", true)
	viper.SetDefault("CACHE_TTL_MINUTES", 5) // 5 minutes TTL

	return nil
}

// Load loads configuration from viper
func Load() (*Config, error) {
	// DB_PASSWORD is required for security
	dbPassword := viper.GetString("DB_PASSWORD")
	if dbPassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required (set via environment variable or .env file)")
	}

	config := &Config{
		Server: ServerConfig{
			Host:        viper.GetString("SERVER_HOST"),
			Port:        viper.GetInt("SERVER_PORT"),
			MetricsPort: viper.GetInt("METRICS_PORT"),
			APIPrefix:   viper.GetString("API_PREFIX"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetInt("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: dbPassword,
			Database: viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		Tenant: TenantConfig{
			DefaultID:   viper.GetString("DEFAULT_TENANT"),
			DefaultName: viper.GetString("DEFAULT_TENANT_NAME"),
		},
		Push: PushConfig{
			Enabled:         viper.GetBool("FCM_ENABLED"),
			ProjectID:       viper.GetString("FCM_PROJECT_ID"),
			CredentialsJSON: viper.GetString("FCM_CREDENTIALS_JSON"),
		},
		Heartbeat: HeartbeatConfig{
			Enabled:   viper.GetBool("HEARTBEAT_ENABLED"),
			ChannelID: viper.GetString("HEARTBEAT_CHANNEL"),
		},
		Cache: CacheConfig{
			Enabled:        viper.GetBool("CACHE_ENABLED"),
			MaxMemoryBytes: viper.GetInt64("CACHE_MAX_MEMORY_BYTES"),
			Metrics:        viper.GetBool("CACHE_METRICS"),
			TTLMinutes:     viper.GetInt("CACHE_TTL_MINUTES"),
		},
	}

	// FCM credentials are required when push delivery is enabled
	if config.Push.Enabled && config.Push.CredentialsJSON == "" {
		return nil, fmt.Errorf("FCM_CREDENTIALS_JSON is required when FCM_ENABLED is true")
	}

	return config, nil
}

// ConnectionString returns PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Database,
		c.SSLMode,
	)
}
