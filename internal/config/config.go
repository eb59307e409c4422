// Package config provides the maintenance tool configuration loaded from environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all tool configuration.
type Config struct {
	Database  DatabaseConfig
	LocalDB   string
	Tenant    TenantConfig
	Reference ReferenceConfig
	Geocoding GeocodingConfig
	Redis     RedisConfig
	Log       LogConfig
	Logins    LoginsConfig
}

// DatabaseConfig holds the hosted PostgreSQL connection settings.
// RawURL, when set, takes precedence over the individual fields.
type DatabaseConfig struct {
	RawURL   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// TenantConfig selects the organization every query is scoped to.
type TenantConfig struct {
	OrganizationID uint
}

// ReferenceConfig points at the fasit file and the column layout it uses.
type ReferenceConfig struct {
	Path   string
	Layout string
}

// GeocodingConfig holds the external geocoder settings.
type GeocodingConfig struct {
	KartverketURL string
	NominatimURL  string
	UserAgent     string
	Delay         time.Duration
	Timeout       time.Duration
	CacheTTL      time.Duration
}

// RedisConfig is optional; an empty URL disables the shared cache and the run lock.
type RedisConfig struct {
	URL string
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string
	Format string
}

// LoginsConfig controls the login tail.
type LoginsConfig struct {
	Window time.Duration
	Limit  int
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	if d.RawURL != "" {
		return d.RawURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format.
func (d DatabaseConfig) URL() string {
	if d.RawURL != "" {
		return d.RawURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Load reads configuration from the environment, after merging a .env file if present.
func Load() *Config {
	_ = godotenv.Load()
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "kunder")
	v.SetDefault("DB_NAME", "kunder")
	v.SetDefault("DB_SSLMODE", "require")
	v.SetDefault("LOCAL_DB_PATH", "kunder.db")
	v.SetDefault("FASIT_LAYOUT", "v2")
	v.SetDefault("KARTVERKET_URL", "https://ws.geonorge.no/adresser/v1")
	v.SetDefault("NOMINATIM_URL", "https://nominatim.openstreetmap.org")
	v.SetDefault("GEOCODE_USER_AGENT", "kunder-tools/1.0")
	v.SetDefault("GEOCODE_DELAY", "500ms")
	v.SetDefault("GEOCODE_TIMEOUT", "15s")
	v.SetDefault("GEOCODE_CACHE_TTL", "24h")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "auto")
	v.SetDefault("LOGIN_TAIL_WINDOW", "24h")
	v.SetDefault("LOGIN_TAIL_LIMIT", 50)
	return v
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Database: DatabaseConfig{
			RawURL:   strings.TrimSpace(v.GetString("DATABASE_URL")),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		LocalDB: v.GetString("LOCAL_DB_PATH"),
		Tenant: TenantConfig{
			OrganizationID: v.GetUint("ORGANIZATION_ID"),
		},
		Reference: ReferenceConfig{
			Path:   v.GetString("FASIT_PATH"),
			Layout: v.GetString("FASIT_LAYOUT"),
		},
		Geocoding: GeocodingConfig{
			KartverketURL: strings.TrimRight(v.GetString("KARTVERKET_URL"), "/"),
			NominatimURL:  strings.TrimRight(v.GetString("NOMINATIM_URL"), "/"),
			UserAgent:     v.GetString("GEOCODE_USER_AGENT"),
			Delay:         v.GetDuration("GEOCODE_DELAY"),
			Timeout:       v.GetDuration("GEOCODE_TIMEOUT"),
			CacheTTL:      v.GetDuration("GEOCODE_CACHE_TTL"),
		},
		Redis: RedisConfig{
			URL: v.GetString("REDIS_URL"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Logins: LoginsConfig{
			Window: v.GetDuration("LOGIN_TAIL_WINDOW"),
			Limit:  v.GetInt("LOGIN_TAIL_LIMIT"),
		},
	}
}

// Setting names accepted by Require.
const (
	KeyDatabase     = "database"
	KeyOrganization = "organization"
	KeyReference    = "reference"
	KeyLocalDB      = "local_db"
)

// Require checks that the named settings are present. Values are not validated beyond presence.
func (c *Config) Require(keys ...string) error {
	var missing []string
	for _, k := range keys {
		switch k {
		case KeyDatabase:
			if c.Database.RawURL == "" && c.Database.Password == "" {
				missing = append(missing, "DATABASE_URL or DB_PASSWORD")
			}
		case KeyOrganization:
			if c.Tenant.OrganizationID == 0 {
				missing = append(missing, "ORGANIZATION_ID")
			}
		case KeyReference:
			if c.Reference.Path == "" {
				missing = append(missing, "FASIT_PATH")
			}
		case KeyLocalDB:
			if c.LocalDB == "" {
				missing = append(missing, "LOCAL_DB_PATH")
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}
