package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	APIPort  int            `mapstructure:"apiPort"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	CORS     struct {
		AllowedOrigin string `mapstructure:"allowedOrigin"`
	} `mapstructure:"cors"`
	Server struct {
		// RedactErrors hides raw store errors from response bodies.
		RedactErrors bool `mapstructure:"redactErrors"`
	} `mapstructure:"server"`
}

type DatabaseConfig struct {
	Type            string        `mapstructure:"type"`
	Path            string        `mapstructure:"path"`
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"sslMode"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"`
}

type AuthConfig struct {
	JWTSecret    string        `mapstructure:"jwtSecret"`
	TokenTTL     time.Duration `mapstructure:"tokenTTL"`
	CookieName   string        `mapstructure:"cookieName"`
	CookieSecure bool          `mapstructure:"cookieSecure"`
	// LoginOnSignup also sets the session cookie on a successful signup.
	LoginOnSignup bool `mapstructure:"loginOnSignup"`
	// RequireSessionForPosts puts /api/posts behind a valid session cookie.
	RequireSessionForPosts bool `mapstructure:"requireSessionForPosts"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("apiPort", 3000)

	v.SetDefault("database.type", "postgres")
	v.SetDefault("database.path", "data/postsvc.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "postsvc")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 0)
	v.SetDefault("database.maxIdleConns", 0)
	v.SetDefault("database.connMaxLifetime", "0s")

	v.SetDefault("auth.jwtSecret", "")
	v.SetDefault("auth.tokenTTL", "1h")
	v.SetDefault("auth.cookieName", "jwt")
	v.SetDefault("auth.loginOnSignup", false)
	v.SetDefault("auth.requireSessionForPosts", false)

	v.SetDefault("cors.allowedOrigin", "http://localhost:8080")
	v.SetDefault("server.redactErrors", false)
}

// LoadConfig loads the configuration from file and environment variables.
// An empty path skips the file and relies on defaults and the environment.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		log.Println("No config file given, using defaults and environment variables")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Only derive the cookie Secure flag if it wasn't specified
	if v.IsSet("auth.cookieSecure") {
		// env-only keys without a default are invisible to Unmarshal
		cfg.Auth.CookieSecure = v.GetBool("auth.cookieSecure")
	} else {
		env := os.Getenv("POSTSVC_ENV")
		cfg.Auth.CookieSecure = env == "prod"
		log.Printf("Cookie security not specified, defaulting to %v based on environment", cfg.Auth.CookieSecure)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	log.Printf("Configuration loaded: port=%d database=%s origin=%s", cfg.APIPort, cfg.Database.Type, cfg.CORS.AllowedOrigin)
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.APIPort <= 0 {
		return fmt.Errorf("invalid apiPort %d", c.APIPort)
	}
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("auth.jwtSecret is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("invalid auth.tokenTTL %s", c.Auth.TokenTTL)
	}
	if c.Auth.CookieName == "" {
		return errors.New("auth.cookieName must not be empty")
	}
	switch c.Database.Type {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}
	return nil
}
