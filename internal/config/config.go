package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// VaultConfig holds the connection settings for the Vault KV store that
// provides the AWS credentials.
type VaultConfig struct {
	Address string `mapstructure:"address"`
	Token   string `mapstructure:"token"`
	Mount   string `mapstructure:"mount"`
	Path    string `mapstructure:"path"`
}

// S3Config holds S3 session configuration. Credentials are not configured
// here; they are fetched from Vault at startup.
type S3Config struct {
	Region string `mapstructure:"region"`
}

// MonitoringConfig holds monitoring configuration
type MonitoringConfig struct {
	Enabled     bool   `mapstructure:"enabled"`      // Enable/disable monitoring
	BindAddress string `mapstructure:"bind_address"` // Address to bind monitoring server (default: :9090)
	MetricsPath string `mapstructure:"metrics_path"` // Path for metrics endpoint (default: /metrics)
}

// Config holds the application configuration
type Config struct {
	// Server configuration
	BindAddress       string `mapstructure:"bind_address"`
	LogLevel          string `mapstructure:"log_level"`
	LogFormat         string `mapstructure:"log_format"` // "text" (default) or "json"
	LogHealthRequests bool   `mapstructure:"log_health_requests"`
	ShutdownTimeout   int    `mapstructure:"shutdown_timeout"` // Graceful shutdown timeout in seconds

	// Monitoring configuration
	Monitoring MonitoringConfig `mapstructure:"monitoring"`

	// Vault configuration
	Vault VaultConfig `mapstructure:"vault"`

	// S3 configuration
	S3 S3Config `mapstructure:"s3"`
}

// InitConfig initializes the configuration system
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			os.Exit(1)
		}

		// Search config in home directory with name ".s3-bucket-manager" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".s3-bucket-manager")
	}

	// Environment variable configuration
	viper.SetEnvPrefix("S3BM") // S3 Bucket Manager
	viper.AutomaticEnv()

	// Also accept the conventional Vault/AWS environment variables so the
	// service picks them up without a config file.
	_ = viper.BindEnv("vault.address", "S3BM_VAULT_ADDRESS", "VAULT_ADDR")
	_ = viper.BindEnv("vault.token", "S3BM_VAULT_TOKEN", "VAULT_SERVICE_TOKEN")
	_ = viper.BindEnv("vault.mount", "S3BM_VAULT_MOUNT")
	_ = viper.BindEnv("vault.path", "S3BM_VAULT_PATH")
	_ = viper.BindEnv("s3.region", "S3BM_S3_REGION", "AWS_REGION")

	// Set defaults
	setDefaults()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// Load loads the configuration from viper
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate required fields
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("bind_address", "0.0.0.0:8000")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")
	viper.SetDefault("log_health_requests", false)
	viper.SetDefault("shutdown_timeout", 30)

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", false)
	viper.SetDefault("monitoring.bind_address", ":9090")
	viper.SetDefault("monitoring.metrics_path", "/metrics")

	// Vault defaults
	viper.SetDefault("vault.address", "http://127.0.0.1:8200")
	viper.SetDefault("vault.mount", "secrets")
	viper.SetDefault("vault.path", "aws/credentials")

	// S3 defaults
	viper.SetDefault("s3.region", "us-east-1")
}

// validate checks that the configuration is complete enough to start.
// A missing Vault token is fatal: the service must not come up without a way
// to obtain AWS credentials.
func validate(cfg *Config) error {
	if cfg.BindAddress == "" {
		return fmt.Errorf("bind_address must not be empty")
	}
	if cfg.Vault.Address == "" {
		return fmt.Errorf("vault.address must not be empty")
	}
	if cfg.Vault.Token == "" {
		return fmt.Errorf("vault.token must be provided (set S3BM_VAULT_TOKEN or VAULT_SERVICE_TOKEN)")
	}
	if cfg.Vault.Mount == "" {
		return fmt.Errorf("vault.mount must not be empty")
	}
	if cfg.Vault.Path == "" {
		return fmt.Errorf("vault.path must not be empty")
	}
	if cfg.S3.Region == "" {
		return fmt.Errorf("s3.region must not be empty")
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive, got %d", cfg.ShutdownTimeout)
	}
	return nil
}
