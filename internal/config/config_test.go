package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var configKeys = []string{
	"APP_PORT", "MYSQL_HOST", "MYSQL_PORT", "MYSQL_DB", "MYSQL_USER", "MYSQL_PASS",
	"REDIS_ADDR", "REDIS_DB", "RATE_LIMIT_REQUESTS", "RATE_LIMIT_WINDOW_SECONDS",
	"LOG_LEVEL", "LOG_FORMAT", "POLICY_NAME",
}

// cleanEnv runs the test from an empty directory with every config key unset.
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}

	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoad_Defaults(t *testing.T) {
	cleanEnv(t)

	c := Load()
	if c.AppPort != "8080" || c.MySQLHost != "mysql" || c.RedisAddr != "redis:6379" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.RateLimitRequests != 60 || c.RateLimitWindow() != time.Minute {
		t.Fatalf("unexpected rate limit defaults: %+v", c)
	}
	if c.LogLevel != "info" || c.LogFormat != "json" || c.PolicyName != "za-vehicle-finance" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	cleanEnv(t)
	t.Setenv("APP_PORT", "9090")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("RATE_LIMIT_REQUESTS", "5")
	t.Setenv("RATE_LIMIT_WINDOW_SECONDS", "10")
	t.Setenv("POLICY_NAME", "pilot")

	c := Load()
	if c.AppPort != "9090" || c.RedisDB != 3 || c.PolicyName != "pilot" {
		t.Fatalf("env not applied: %+v", c)
	}
	if c.RateLimitRequests != 5 || c.RateLimitWindow() != 10*time.Second {
		t.Fatalf("rate limit not applied: %+v", c)
	}
}

func TestLoad_BadIntKeepsDefault(t *testing.T) {
	cleanEnv(t)
	t.Setenv("REDIS_DB", "two")
	t.Setenv("RATE_LIMIT_REQUESTS", "lots")

	c := Load()
	if c.RedisDB != 0 || c.RateLimitRequests != 60 {
		t.Fatalf("expected defaults, got %+v", c)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	cleanEnv(t)
	dir, _ := os.Getwd()
	body := "LOG_LEVEL=debug\nMYSQL_DB=from_file\nAPP_PORT=7000\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(body), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("APP_PORT", "7001")

	c := Load()
	if c.LogLevel != "debug" || c.MySQLDB != "from_file" {
		t.Fatalf(".env not applied: %+v", c)
	}
	if c.AppPort != "7001" {
		t.Fatalf("environment should win over .env, got %q", c.AppPort)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cleanEnv(t)
		return Load()
	}

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing host", func(c *Config) { c.MySQLHost = "" }, "missing MySQL config"},
		{"bad port", func(c *Config) { c.MySQLPort = "not-a-port" }, "invalid MYSQL_PORT"},
		{"missing app port", func(c *Config) { c.AppPort = "" }, "missing APP_PORT"},
		{"missing redis", func(c *Config) { c.RedisAddr = "" }, "missing REDIS_ADDR"},
		{"zero window", func(c *Config) { c.RateLimitWindowSecs = 0 }, "invalid rate limit"},
		{"negative limit", func(c *Config) { c.RateLimitRequests = -1 }, "invalid rate limit"},
		{"missing policy", func(c *Config) { c.PolicyName = "" }, "missing POLICY_NAME"},
	}
	for _, tc := range cases {
		c := base()
		tc.mutate(c)
		err := c.Validate()
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: err = %v, want %q", tc.name, err, tc.want)
		}
	}
}

func TestMySQLDSN(t *testing.T) {
	c := &Config{MySQLUser: "u", MySQLPass: "p", MySQLHost: "db", MySQLPort: "3306", MySQLDB: "afford"}
	want := "u:p@tcp(db:3306)/afford?parseTime=true&charset=utf8mb4,utf8"
	if got := c.MySQLDSN(); got != want {
		t.Fatalf("MySQLDSN = %q, want %q", got, want)
	}
}
