package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ClientConfig configures the galaxy command line client.
type ClientConfig struct {
	APIURL         string          `yaml:"api_url"`
	RequestTimeout time.Duration   `yaml:"request_timeout"`
	Session        SessionConfig   `yaml:"session"`
	AdminDemo      AdminDemoConfig `yaml:"admin_demo"`
}

type SessionConfig struct {
	Backend   string `yaml:"backend"`
	Path      string `yaml:"path"`
	Scope     string `yaml:"scope"`
	RedisAddr string `yaml:"redis_addr"`
	RedisPass string `yaml:"redis_pass"`
}

// AdminDemoConfig holds the credentials tried by the admin demo flow and the
// local identity used when the identity service is unreachable.
type AdminDemoConfig struct {
	Email      string `yaml:"email"`
	Password   string `yaml:"password"`
	Name       string `yaml:"name"`
	LocalID    string `yaml:"local_id"`
	LocalToken string `yaml:"local_token"`
}

// DefaultClient returns the built-in client settings.
func DefaultClient() ClientConfig {
	return ClientConfig{
		APIURL:         "http://localhost:8000",
		RequestTimeout: 15 * time.Second,
		Session: SessionConfig{
			Backend: "file",
			Path:    defaultSessionPath(),
			Scope:   "galaxy_airline_session",
		},
		AdminDemo: AdminDemoConfig{
			Email:      "admin@galaxy.com",
			Password:   "admin123",
			Name:       "Galaxy Admin",
			LocalID:    "admin-id",
			LocalToken: "demo-token",
		},
	}
}

// LoadClient builds the client config from defaults, then the YAML file at
// path (or GALAXY_CONFIG), then GALAXY_* environment variables.
func LoadClient(path string) (ClientConfig, error) {
	cfg := DefaultClient()

	if path == "" {
		path = os.Getenv("GALAXY_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return ClientConfig{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return ClientConfig{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.APIURL = getEnv("GALAXY_API_URL", cfg.APIURL)
	cfg.RequestTimeout = getEnvDuration("GALAXY_REQUEST_TIMEOUT", cfg.RequestTimeout)

	cfg.Session.Backend = getEnv("GALAXY_SESSION_BACKEND", cfg.Session.Backend)
	cfg.Session.Path = getEnv("GALAXY_SESSION_PATH", cfg.Session.Path)
	cfg.Session.Scope = getEnv("GALAXY_SESSION_SCOPE", cfg.Session.Scope)
	cfg.Session.RedisAddr = getEnv("GALAXY_REDIS_ADDR", cfg.Session.RedisAddr)
	cfg.Session.RedisPass = getEnv("GALAXY_REDIS_PASS", cfg.Session.RedisPass)

	cfg.AdminDemo.Email = getEnv("GALAXY_ADMIN_DEMO_EMAIL", cfg.AdminDemo.Email)
	cfg.AdminDemo.Password = getEnv("GALAXY_ADMIN_DEMO_PASSWORD", cfg.AdminDemo.Password)
	cfg.AdminDemo.Name = getEnv("GALAXY_ADMIN_DEMO_NAME", cfg.AdminDemo.Name)
	cfg.AdminDemo.LocalID = getEnv("GALAXY_ADMIN_DEMO_LOCAL_ID", cfg.AdminDemo.LocalID)
	cfg.AdminDemo.LocalToken = getEnv("GALAXY_ADMIN_DEMO_LOCAL_TOKEN", cfg.AdminDemo.LocalToken)

	if err := cfg.Validate(); err != nil {
		return ClientConfig{}, err
	}
	return cfg, nil
}

func (c ClientConfig) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api_url is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	if c.Session.Scope == "" {
		return fmt.Errorf("session.scope is required")
	}
	d := c.AdminDemo
	if d.Email == "" || d.Password == "" || d.Name == "" || d.LocalID == "" || d.LocalToken == "" {
		return fmt.Errorf("admin_demo requires email, password, name, local_id and local_token")
	}
	return nil
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".galaxy", "session.json")
	}
	return filepath.Join(dir, "galaxy-airline", "session.json")
}
