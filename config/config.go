// Package config loads connection settings and table declarations from
// config files and the environment.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/abushkanya/connector/schema"
)

var AppFs = afero.NewOsFs()

// Config holds everything needed to open a client: the connection target,
// the locale set, and the declared tables.
type Config struct {
	Provider string             `mapstructure:"provider"`
	Host     string             `mapstructure:"host"`
	Port     int                `mapstructure:"port"`
	User     string             `mapstructure:"user"`
	Password string             `mapstructure:"password"`
	Database string             `mapstructure:"database"`
	Locales  []string           `mapstructure:"locales"`
	Tables   []schema.TableSpec `mapstructure:"tables"`
}

// Load reads configuration from the standard locations: a .connector.yaml
// in the working directory, the home directory, or ~/.config/connector,
// overlaid with CONNECTOR_* environment variables and any .env file.
func Load() (*Config, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetFs(AppFs)
	v.SetConfigName(".connector")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(home)
	v.AddConfigPath(filepath.Join(home, ".config", "connector"))

	loadDotEnv()

	v.SetEnvPrefix("CONNECTOR")
	v.AutomaticEnv()
	setDefaults(v)

	// A missing config file is fine; env vars may carry everything.
	_ = v.ReadInConfig()

	return unmarshal(v)
}

// LoadFile reads configuration from an explicit path.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetFs(AppFs)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	loadDotEnv()

	v.SetEnvPrefix("CONNECTOR")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	return unmarshal(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", "sqlite")
	v.SetDefault("host", "localhost")
	v.SetDefault("locales", schema.DefaultLocales)
}

func loadDotEnv() {
	if _, err := AppFs.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
	if _, err := AppFs.Stat(".env.local"); err == nil {
		_ = godotenv.Overload(".env.local")
	}
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Port == 0 {
		cfg.Port = defaultPort(cfg.Provider)
	}
	return &cfg, nil
}

func defaultPort(provider string) int {
	switch provider {
	case "postgresql", "postgres":
		return 5432
	case "mysql":
		return 3306
	default:
		return 0
	}
}

// DSN builds the driver connection string for the configured provider.
func (c *Config) DSN() string {
	switch c.Provider {
	case "postgresql", "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable",
			c.Host, c.Port, c.User, c.Database)
		if c.Password != "" {
			dsn += " password=" + c.Password
		}
		return dsn
	case "mysql":
		cred := c.User
		if c.Password != "" {
			cred += ":" + c.Password
		}
		return fmt.Sprintf("%s@tcp(%s:%d)/%s?parseTime=true", cred, c.Host, c.Port, c.Database)
	default:
		// SQLite takes a file path or :memory: in the database field.
		return c.Database
	}
}
