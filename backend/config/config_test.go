package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "test-secret-key-32-chars-long!!!"

func validConfig() Config {
	c := Defaults()
	c.Token.Secret = testSecret
	return c
}

// RED: Test that the default listen address matches the SPA's API_URL port
func TestConfig_DefaultListen(t *testing.T) {
	C = Config{}
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	for _, key := range []string{"PORT", "LISTEN", "TOKEN_TTL", "TOTP_SKEW"} {
		t.Setenv(key, "")
	}

	if err := Load(); err != nil {
		t.Fatal(err)
	}

	if C.Listen != ":3001" {
		t.Errorf("Expected default listen :3001, got %q", C.Listen)
	}
	if C.TOTP.Skew != 1 {
		t.Errorf("Expected default TOTP skew 1, got %d", C.TOTP.Skew)
	}
	if C.Token.TTL != 0 {
		t.Errorf("Expected tokens without expiry by default, got %v", C.Token.TTL)
	}
}

// RED: Test that PORT env var sets the listen address
func TestConfig_PortOverride(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("PORT", "4000")

	if err := Load(); err != nil {
		t.Fatal(err)
	}

	if C.Listen != ":4000" {
		t.Errorf("Expected listen :4000, got %q", C.Listen)
	}
}

// RED: Test that token TTL can be configured
func TestConfig_TokenTTL(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("TOKEN_TTL", "1h")

	if err := Load(); err != nil {
		t.Fatal(err)
	}

	if C.Token.TTL != time.Hour {
		t.Errorf("Expected token TTL %v, got %v", time.Hour, C.Token.TTL)
	}
}

func TestConfig_InvalidTokenTTL(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("TOKEN_TTL", "forever")

	if err := Load(); err == nil {
		t.Error("Load should fail on an unparseable TOKEN_TTL")
	}
}

func TestConfig_YAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlDoc := `
listen: ":9000"
database_path: "/tmp/users.db"
token:
  secret: "yaml-secret-that-is-long-enough-to-pass"
totp:
  issuer: "Acme"
cors:
  allowed_origins: ["http://localhost:3000"]
`
	if err := os.WriteFile(path, []byte(yamlDoc), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("PORT", "")
	t.Setenv("LISTEN", "")
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	if err := Load(); err != nil {
		t.Fatal(err)
	}

	if C.Listen != ":9000" || C.DatabasePath != "/tmp/users.db" || C.TOTP.Issuer != "Acme" {
		t.Errorf("YAML values not applied: %+v", C)
	}
	if C.Token.Secret != testSecret {
		t.Error("JWT_SECRET should override token.secret from YAML")
	}
	if len(C.CORS.AllowedOrigins) != 2 || C.CORS.AllowedOrigins[1] != "http://b.test" {
		t.Errorf("Unexpected CORS origins %v", C.CORS.AllowedOrigins)
	}
	// Unset YAML keys keep their defaults
	if C.Token.Issuer != "go-totp-auth" {
		t.Errorf("Expected default token issuer, got %q", C.Token.Issuer)
	}
}

// RED: Test that an empty signing secret is rejected
func TestValidate_FailsOnEmptySecret(t *testing.T) {
	c := validConfig()
	c.Token.Secret = ""

	if err := c.Validate(); err == nil {
		t.Error("Validate should fail when token secret is empty")
	}
}

// RED: Test that a weak signing secret (too short) is rejected
func TestValidate_FailsOnShortSecret(t *testing.T) {
	c := validConfig()
	c.Token.Secret = "short"

	if err := c.Validate(); err == nil {
		t.Error("Validate should fail when token secret is too short")
	}
}

func TestValidate_FailsOnPlaceholderSecret(t *testing.T) {
	c := validConfig()
	c.Token.Secret = "your-secret-key"

	err := c.Validate()
	if err == nil {
		t.Fatal("Validate should reject the placeholder secret")
	}
}

func TestValidate_Enumerations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"log level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"skew", func(c *Config) { c.TOTP.Skew = 5 }, "totp.skew"},
		{"bcrypt cost", func(c *Config) { c.Password.BcryptCost = 2 }, "bcrypt_cost"},
		{"tls", func(c *Config) { c.TLS.Enabled = true }, "tls.cert"},
		{"negative ttl", func(c *Config) { c.Token.TTL = -time.Minute }, "token.ttl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(&c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestValidate_Valid(t *testing.T) {
	c := validConfig()
	if err := c.Validate(); err != nil {
		t.Errorf("Valid config rejected: %v", err)
	}
}
