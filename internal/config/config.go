package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Batch   BatchConfig   `mapstructure:"batch"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Mirror  MirrorConfig  `mapstructure:"mirror"`
	Server  ServerConfig  `mapstructure:"server"`
}

// FetchConfig controls the HTML fetch layer.
type FetchConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
}

// Timeout returns the fetch timeout as a duration.
func (c *FetchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// BatchConfig controls the shared drive loop.
type BatchConfig struct {
	CheckpointEvery int `mapstructure:"checkpoint_every"`
}

// CatalogConfig controls the document catalog database.
type CatalogConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Driver      string `mapstructure:"driver"` // sqlite, postgres
	Path        string `mapstructure:"path"`   // sqlite file path
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	Name        string `mapstructure:"name"`
	SSLMode     string `mapstructure:"ssl_mode"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`

	MaxIdleConns       int `mapstructure:"max_idle_conns"`
	MaxOpenConns       int `mapstructure:"max_open_conns"`
	ConnMaxLifetimeMin int `mapstructure:"conn_max_lifetime_minutes"`
}

// DSN builds the connection string for the configured driver.
func (c *CatalogConfig) DSN() string {
	if c.Driver == "postgres" {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
	}
	return c.Path
}

// ConnMaxLifetime returns the connection lifetime as a duration.
func (c *CatalogConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetimeMin) * time.Minute
}

// MirrorConfig controls the optional S3-compatible archive mirror.
type MirrorConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Type      string `mapstructure:"type"` // s3, r2, s3compatible; empty auto-detects
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	PublicURL string `mapstructure:"public_url"`
}

// ServerConfig controls the archive serving API.
type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("fetch.timeout_seconds", 30)
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	v.SetDefault("batch.checkpoint_every", 10)
	v.SetDefault("catalog.enabled", true)
	v.SetDefault("catalog.driver", "sqlite")
	v.SetDefault("catalog.path", "./data/catalog.db")
	v.SetDefault("catalog.ssl_mode", "disable")
	v.SetDefault("catalog.auto_migrate", true)
	v.SetDefault("catalog.max_idle_conns", 2)
	v.SetDefault("catalog.max_open_conns", 10)
	v.SetDefault("catalog.conn_max_lifetime_minutes", 60)
	v.SetDefault("mirror.enabled", false)
	v.SetDefault("mirror.use_ssl", true)
	v.SetDefault("mirror.bucket", "docpack")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("catalog.host", "CATALOG_DB_HOST")
	v.BindEnv("catalog.user", "CATALOG_DB_USER")
	v.BindEnv("catalog.password", "CATALOG_DB_PASSWORD")
	v.BindEnv("mirror.endpoint", "MIRROR_ENDPOINT")
	v.BindEnv("mirror.access_key", "MIRROR_ACCESS_KEY")
	v.BindEnv("mirror.secret_key", "MIRROR_SECRET_KEY")
	v.BindEnv("mirror.bucket", "MIRROR_BUCKET")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
