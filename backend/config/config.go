package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// MinTokenSecretLength is the shortest signing secret Validate accepts.
const MinTokenSecretLength = 32

// weakSecrets are well-known placeholder secrets that must never sign tokens.
var weakSecrets = map[string]bool{
	"your-secret-key":                 true,
	"super-secret-key-change-in-prod": true,
	"change-me":                       true,
}

type Config struct {
	Listen       string         `yaml:"listen"`
	DatabasePath string         `yaml:"database_path"`
	Token        TokenConfig    `yaml:"token"`
	TOTP         TOTPConfig     `yaml:"totp"`
	Password     PasswordConfig `yaml:"password"`
	CORS         CORSConfig     `yaml:"cors"`
	Logging      LoggingConfig  `yaml:"logging"`
	TLS          TLSConfig      `yaml:"tls"`
}

type TLSConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cert    string `yaml:"cert"`
	Key     string `yaml:"key"`
}

// TokenConfig controls bearer token signing. A zero TTL issues tokens without expiry.
type TokenConfig struct {
	Secret string        `yaml:"secret"`
	Issuer string        `yaml:"issuer"`
	TTL    time.Duration `yaml:"ttl"`
}

type TOTPConfig struct {
	Issuer string `yaml:"issuer"`
	Skew   uint   `yaml:"skew"` // accepted steps on either side of the current one
}

type PasswordConfig struct {
	BcryptCost int `yaml:"bcrypt_cost"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

var C Config

// Defaults returns the configuration used before any file or environment override.
func Defaults() Config {
	return Config{
		Listen:       ":3001",
		DatabasePath: "app.db",
		Token: TokenConfig{
			Issuer: "go-totp-auth",
		},
		TOTP: TOTPConfig{
			Issuer: "TwoFactorAuth",
			Skew:   1,
		},
		Password: PasswordConfig{
			BcryptCost: 10,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func Load() error {
	C = Defaults()

	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// Load from YAML if exists
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &C); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	// Environment overrides
	if v := os.Getenv("PORT"); v != "" {
		C.Listen = ":" + v
	}
	if v := os.Getenv("LISTEN"); v != "" {
		C.Listen = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		C.DatabasePath = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		C.Token.Secret = v
	}
	if v := os.Getenv("TOKEN_ISSUER"); v != "" {
		C.Token.Issuer = v
	}
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TOKEN_TTL is invalid: %w", err)
		}
		C.Token.TTL = d
	}
	if v := os.Getenv("TOTP_ISSUER"); v != "" {
		C.TOTP.Issuer = v
	}
	if v := os.Getenv("TOTP_SKEW"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("TOTP_SKEW is invalid: %w", err)
		}
		C.TOTP.Skew = uint(n)
	}
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("BCRYPT_COST is invalid: %w", err)
		}
		C.Password.BcryptCost = n
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		C.CORS.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		C.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		C.Logging.Format = v
	}
	if v := os.Getenv("TLS_ENABLED"); v == "true" {
		C.TLS.Enabled = true
	}
	if v := os.Getenv("TLS_CERT"); v != "" {
		C.TLS.Cert = v
	}
	if v := os.Getenv("TLS_KEY"); v != "" {
		C.TLS.Key = v
	}

	return nil
}

// Validate checks the loaded configuration before the server starts.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen is required")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path is required")
	}

	if c.Token.Secret == "" {
		return fmt.Errorf("token.secret is required (set JWT_SECRET)")
	}
	if len(c.Token.Secret) < MinTokenSecretLength {
		return fmt.Errorf("token.secret must be at least %d characters", MinTokenSecretLength)
	}
	if weakSecrets[c.Token.Secret] {
		return fmt.Errorf("token.secret uses a well-known placeholder value")
	}
	if c.Token.Issuer == "" {
		return fmt.Errorf("token.issuer is required")
	}
	if c.Token.TTL < 0 {
		return fmt.Errorf("token.ttl must not be negative")
	}

	if c.TOTP.Issuer == "" {
		return fmt.Errorf("totp.issuer is required")
	}
	if c.TOTP.Skew > 2 {
		return fmt.Errorf("totp.skew must be 0, 1 or 2")
	}

	if c.Password.BcryptCost < 4 || c.Password.BcryptCost > 31 {
		return fmt.Errorf("password.bcrypt_cost must be between 4 and 31")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("logging.format must be 'json' or 'text'")
	}

	if c.TLS.Enabled && (c.TLS.Cert == "" || c.TLS.Key == "") {
		return fmt.Errorf("tls.cert and tls.key are required when tls is enabled")
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
