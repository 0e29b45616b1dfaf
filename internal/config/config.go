package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port       string `mapstructure:"PORT"`
	Env        string `mapstructure:"ENV"`
	AppVersion string `mapstructure:"APP_VERSION"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`

	DHIS2BaseURL    string `mapstructure:"DHIS2_BASE_URL"`
	DHIS2Username   string `mapstructure:"DHIS2_USERNAME"`
	DHIS2Password   string `mapstructure:"DHIS2_PASSWORD"`
	DHIS2APIVersion string `mapstructure:"DHIS2_API_VERSION"`
	DHIS2OrgUnit    string `mapstructure:"DHIS2_ORG_UNIT"`
	DHIS2Timeout    time.Duration

	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int      `mapstructure:"RATE_LIMIT_BURST"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8001")
	v.SetDefault("ENV", "development")
	v.SetDefault("APP_VERSION", "1.0.0")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("DHIS2_BASE_URL", "https://play.dhis2.org/dev")
	v.SetDefault("DHIS2_USERNAME", "admin")
	v.SetDefault("DHIS2_API_VERSION", "40")
	v.SetDefault("DHIS2_ORG_UNIT", "blood_bank")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("APP_VERSION")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("DHIS2_BASE_URL")
	v.BindEnv("DHIS2_USERNAME")
	v.BindEnv("DHIS2_PASSWORD")
	v.BindEnv("DHIS2_API_VERSION")
	v.BindEnv("DHIS2_ORG_UNIT")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	// Fixed per-call budget for the DHIS2 transport.
	cfg.DHIS2Timeout = 30 * time.Second

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is safe to run. Outside development
// mode the DHIS2 password must be set so exports authenticate against a real
// instance instead of posting with an empty credential.
func (c *Config) Validate() error {
	if c.DHIS2BaseURL == "" {
		return fmt.Errorf("DHIS2_BASE_URL is required")
	}
	if !c.IsDev() && c.DHIS2Password == "" {
		return fmt.Errorf("DHIS2_PASSWORD is required when ENV is not development")
	}
	if c.DBMaxConns < c.DBMinConns {
		return fmt.Errorf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)", c.DBMaxConns, c.DBMinConns)
	}
	return nil
}
