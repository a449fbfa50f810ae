package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config application configuration structure
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	NATS     NATSConfig     `yaml:"nats"`
	Treasury TreasuryConfig `yaml:"treasury"`
	Auth     AuthConfig     `yaml:"auth"`
	Swap     SwapConfig     `yaml:"swap"`
	Bridge   BridgeConfig   `yaml:"bridge"`
	Crypto   CryptoConfig   `yaml:"crypto"`
	CORS     CORSConfig     `yaml:"cors"`
}

// ServerConfig server configuration
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig database configuration
type DatabaseConfig struct {
	DSN    string `yaml:"dsn"`
	Driver string `yaml:"driver"`
}

// NATSConfig event stream configuration
type NATSConfig struct {
	URL        string `yaml:"url"`
	Timeout    int    `yaml:"timeout"` // connect timeout in seconds
	StreamName string `yaml:"streamName"`
}

// TreasuryConfig custody service configuration
type TreasuryConfig struct {
	BaseURL   string `yaml:"baseUrl"`
	AuthToken string `yaml:"authToken"`
	Timeout   int    `yaml:"timeout"` // request timeout in seconds
}

// AuthConfig authentication configuration
type AuthConfig struct {
	JWTSecret  string `yaml:"jwtSecret"`
	TOTPSecret string `yaml:"totpSecret"`
}

// SwapConfig swap pool bootstrap parameters, applied on first startup
type SwapConfig struct {
	Authority string `yaml:"authority"`
	FeeBps    uint32 `yaml:"feeBps"`
}

// BridgeConfig bridge bootstrap parameters, applied on first startup
type BridgeConfig struct {
	Authority         string `yaml:"authority"`
	MinConfirmations  uint32 `yaml:"minConfirmations"`
	FeeBps            uint32 `yaml:"feeBps"`
	RefundWindowHours int    `yaml:"refundWindowHours"`
}

// CryptoConfig commitment and proof backend selection
type CryptoConfig struct {
	Scheme  string `yaml:"scheme"` // "pedersen" or "stub"
	KeysDir string `yaml:"keysDir"`
}

// CORSConfig cross-origin request configuration
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowedOrigins"`
	AllowCredentials bool     `yaml:"allowCredentials"`
	MaxAge           int      `yaml:"maxAge"` // preflight cache duration in seconds
}

// AppConfig global configuration instance
var AppConfig *Config

// LoadConfig loads configuration from the given path. When path is empty it
// prefers config.local.yaml over config.yaml so local overrides never need to
// be committed.
func LoadConfig(configPath string) error {
	if configPath == "" {
		if _, err := os.Stat("config.local.yaml"); err == nil {
			configPath = "config.local.yaml"
			log.Println("Using local configuration file: config.local.yaml")
		} else {
			configPath = "config.yaml"
		}
	}

	var config Config
	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
		log.Printf("Config file %s not found, using defaults and environment", configPath)
	} else {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
	}

	applyDefaults(&config)
	overrideFromEnv(&config)

	if err := validate(&config); err != nil {
		return err
	}

	AppConfig = &config
	return nil
}

// applyDefaults fills zero values with workable development defaults.
func applyDefaults(config *Config) {
	if config.Server.Host == "" {
		config.Server.Host = "0.0.0.0"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Database.Driver == "" {
		config.Database.Driver = "postgres"
	}
	if config.Database.DSN == "" {
		config.Database.DSN = "host=localhost user=zkdex password=zkdex dbname=zkdex port=5432 sslmode=disable"
	}
	if config.NATS.URL == "" {
		config.NATS.URL = "nats://localhost:4222"
	}
	if config.NATS.Timeout == 0 {
		config.NATS.Timeout = 10
	}
	if config.NATS.StreamName == "" {
		config.NATS.StreamName = "ZKDEX_EVENTS"
	}
	if config.Treasury.Timeout == 0 {
		config.Treasury.Timeout = 30
	}
	if config.Swap.FeeBps == 0 {
		config.Swap.FeeBps = 30
	}
	if config.Bridge.MinConfirmations == 0 {
		config.Bridge.MinConfirmations = 2
	}
	if config.Bridge.FeeBps == 0 {
		config.Bridge.FeeBps = 25
	}
	if config.Bridge.RefundWindowHours == 0 {
		config.Bridge.RefundWindowHours = 24
	}
	if config.Crypto.Scheme == "" {
		config.Crypto.Scheme = "pedersen"
	}
	if config.Crypto.KeysDir == "" {
		config.Crypto.KeysDir = "keys"
	}
	if len(config.CORS.AllowedOrigins) == 0 {
		config.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if config.CORS.MaxAge == 0 {
		config.CORS.MaxAge = 43200
	}
}

// overrideFromEnv applies environment variable overrides on top of file values.
func overrideFromEnv(config *Config) {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		config.Database.DSN = dsn
	}
	if driver := os.Getenv("DATABASE_DRIVER"); driver != "" {
		config.Database.Driver = driver
	}
	if url := os.Getenv("NATS_URL"); url != "" {
		config.NATS.URL = url
	}
	if timeout := os.Getenv("NATS_TIMEOUT"); timeout != "" {
		if t, err := strconv.Atoi(timeout); err == nil {
			config.NATS.Timeout = t
		}
	}
	if baseURL := os.Getenv("TREASURY_BASE_URL"); baseURL != "" {
		config.Treasury.BaseURL = baseURL
	}
	if token := os.Getenv("TREASURY_AUTH_TOKEN"); token != "" {
		config.Treasury.AuthToken = token
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		config.Auth.JWTSecret = secret
	}
	if secret := os.Getenv("ADMIN_TOTP_SECRET"); secret != "" {
		config.Auth.TOTPSecret = secret
	}
	if authority := os.Getenv("SWAP_AUTHORITY"); authority != "" {
		config.Swap.Authority = authority
	}
	if authority := os.Getenv("BRIDGE_AUTHORITY"); authority != "" {
		config.Bridge.Authority = authority
	}
	if scheme := os.Getenv("CRYPTO_SCHEME"); scheme != "" {
		config.Crypto.Scheme = scheme
	}
	if dir := os.Getenv("ZK_KEYS_DIR"); dir != "" {
		config.Crypto.KeysDir = dir
	}
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		config.CORS.AllowedOrigins = splitAndTrim(origins)
	}
}

// validate rejects configurations the server cannot run with.
func validate(config *Config) error {
	switch config.Crypto.Scheme {
	case "pedersen", "stub":
	default:
		return fmt.Errorf("unknown crypto scheme %q, expected pedersen or stub", config.Crypto.Scheme)
	}
	switch config.Database.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unknown database driver %q, expected postgres or memory", config.Database.Driver)
	}
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", config.Server.Port)
	}
	if config.Swap.FeeBps > 1000 {
		return fmt.Errorf("swap feeBps %d exceeds maximum 1000", config.Swap.FeeBps)
	}
	if config.Bridge.FeeBps > 1000 {
		return fmt.Errorf("bridge feeBps %d exceeds maximum 1000", config.Bridge.FeeBps)
	}
	return nil
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// GetServerAddress returns the host:port pair the HTTP server binds to.
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// NATSConnectTimeout returns the NATS connect timeout as a duration.
func (c *Config) NATSConnectTimeout() time.Duration {
	return time.Duration(c.NATS.Timeout) * time.Second
}

// RefundWindow returns the duration a bridge transaction must age before the
// sender may reclaim locked assets.
func (c *Config) RefundWindow() time.Duration {
	return time.Duration(c.Bridge.RefundWindowHours) * time.Hour
}
