package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Development-only secrets. Validate rejects them when server.env is "production".
const (
	DefaultAccessSecret  = "supersecretjwt"
	DefaultRefreshSecret = "superrefreshsecret"
)

type Config struct {
	Database struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
	} `mapstructure:"database"`
	Server struct {
		Port         string `mapstructure:"port"`
		Env          string `mapstructure:"env"`
		CookieSecure bool   `mapstructure:"cookie_secure"`
		TrustProxy   bool   `mapstructure:"trust_proxy"`
	} `mapstructure:"server"`
	Redis struct {
		Enabled  bool          `mapstructure:"enabled"`
		Host     string        `mapstructure:"host"`
		Port     string        `mapstructure:"port"`
		Password string        `mapstructure:"password"`
		DB       int           `mapstructure:"db"`
		TTL      time.Duration `mapstructure:"ttl"`
	} `mapstructure:"redis"`
	JWT struct {
		AccessSecret  string        `mapstructure:"access_secret"`
		RefreshSecret string        `mapstructure:"refresh_secret"`
		AccessTTL     time.Duration `mapstructure:"access_ttl"`
		RefreshTTL    time.Duration `mapstructure:"refresh_ttl"`
	} `mapstructure:"jwt"`
	Auth struct {
		BcryptCost int `mapstructure:"bcrypt_cost"`
	} `mapstructure:"auth"`
	CORS struct {
		AllowedOrigin string `mapstructure:"allowed_origin"`
	} `mapstructure:"cors"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// legacyEnv maps config keys to the environment variable names older deployments use.
var legacyEnv = map[string][]string{
	"server.port":         {"PORT"},
	"server.env":          {"NODE_ENV", "APP_ENV"},
	"database.host":       {"DB_HOST"},
	"database.port":       {"DB_PORT"},
	"database.user":       {"DB_USER"},
	"database.password":   {"DB_PASS", "DB_PASSWORD"},
	"database.name":       {"DB_NAME"},
	"jwt.access_secret":   {"JWT_SECRET"},
	"jwt.refresh_secret":  {"JWT_REFRESH_SECRET"},
	"cors.allowed_origin": {"CLIENT_URL"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "auth")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("server.port", "4000")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.cookie_secure", false)
	v.SetDefault("server.trust_proxy", false)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 10*time.Minute)

	v.SetDefault("jwt.access_secret", DefaultAccessSecret)
	v.SetDefault("jwt.refresh_secret", DefaultRefreshSecret)
	v.SetDefault("jwt.access_ttl", time.Hour)
	v.SetDefault("jwt.refresh_ttl", 7*24*time.Hour)

	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("cors.allowed_origin", "http://localhost:5173")
	v.SetDefault("log.level", "info")
}

// LoadConfig reads config.yml from path (if present) and overlays the environment.
// The returned Config is built once at startup and passed explicitly to every component.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range legacyEnv {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(append([]string{key, envKey}, names...)...); err != nil {
			return nil, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether the process runs with production settings.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Env, "production")
}

// Validate checks invariants that must hold before the server starts.
func (c *Config) Validate() error {
	if c.JWT.AccessSecret == "" || c.JWT.RefreshSecret == "" {
		return errors.New("jwt secrets must not be empty")
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return errors.New("jwt token lifetimes must be positive")
	}
	if !c.IsProduction() {
		return nil
	}
	if c.JWT.AccessSecret == DefaultAccessSecret || c.JWT.RefreshSecret == DefaultRefreshSecret {
		return errors.New("development jwt secrets are not allowed in production")
	}
	if c.JWT.AccessSecret == c.JWT.RefreshSecret {
		return errors.New("access and refresh secrets must differ")
	}
	if c.Auth.BcryptCost < 10 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("bcrypt cost %d out of range for production", c.Auth.BcryptCost)
	}
	return nil
}

// DSN returns the lib/pq connection string. WithPassword=false is safe to log.
func (c *Config) DSN(withPassword bool) string {
	db := c.Database
	if withPassword {
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			db.Host, db.Port, db.User, db.Password, db.Name, db.SSLMode)
	}
	return fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=%s",
		db.Host, db.Port, db.User, db.Name, db.SSLMode)
}

// MigrationURL returns the URL form golang-migrate expects.
func (c *Config) MigrationURL() string {
	db := c.Database
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(db.User, db.Password),
		Host:     net.JoinHostPort(db.Host, db.Port),
		Path:     "/" + db.Name,
		RawQuery: "sslmode=" + url.QueryEscape(db.SSLMode),
	}
	return u.String()
}
