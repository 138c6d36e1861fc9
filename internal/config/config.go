package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const minSecretLen = 32

type Config struct {
	Port              string        `mapstructure:"PORT"`
	Env               string        `mapstructure:"ENV"`
	SessionSecret     string        `mapstructure:"SESSION_SECRET"`
	SessionTTL        time.Duration `mapstructure:"SESSION_TTL"`
	CORSOrigins       []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS      float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst    int           `mapstructure:"RATE_LIMIT_BURST"`
	RequestTimeout    time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	BodyLimit         string        `mapstructure:"BODY_LIMIT"`
	UploadLimit       string        `mapstructure:"UPLOAD_LIMIT"`
	ExpiryHorizonDays int           `mapstructure:"EXPIRY_HORIZON_DAYS"`
	DeletePolicy      string        `mapstructure:"DELETE_POLICY"`
	SeedDemoData      bool          `mapstructure:"SEED_DEMO_DATA"`
	BcryptCost        int           `mapstructure:"BCRYPT_COST"`

	PhotoStore        string `mapstructure:"PHOTO_STORE"`
	PhotoMaxBytes     int64  `mapstructure:"PHOTO_MAX_BYTES"`
	S3Bucket          string `mapstructure:"S3_BUCKET"`
	S3Region          string `mapstructure:"S3_REGION"`
	S3Endpoint        string `mapstructure:"S3_ENDPOINT"`
	S3PathStyle       bool   `mapstructure:"S3_PATH_STYLE"`
	S3Prefix          string `mapstructure:"S3_PREFIX"`
	S3AccessKeyID     string `mapstructure:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `mapstructure:"S3_SECRET_ACCESS_KEY"`
}

var keys = []string{
	"PORT", "ENV", "SESSION_SECRET", "SESSION_TTL", "CORS_ORIGINS",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "REQUEST_TIMEOUT", "BODY_LIMIT", "UPLOAD_LIMIT",
	"EXPIRY_HORIZON_DAYS", "DELETE_POLICY", "SEED_DEMO_DATA", "BCRYPT_COST",
	"PHOTO_STORE", "PHOTO_MAX_BYTES", "S3_BUCKET", "S3_REGION", "S3_ENDPOINT",
	"S3_PATH_STYLE", "S3_PREFIX", "S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "5000")
	v.SetDefault("ENV", "development")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("UPLOAD_LIMIT", "64M")
	v.SetDefault("EXPIRY_HORIZON_DAYS", 30)
	v.SetDefault("DELETE_POLICY", "orphan")
	v.SetDefault("SEED_DEMO_DATA", true)
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("PHOTO_STORE", "memory")
	v.SetDefault("PHOTO_MAX_BYTES", 10<<20)
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_PREFIX", "treatment-photos/")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. Outside
// development a session secret of at least 32 bytes is required.
func (c *Config) Validate() error {
	if !c.IsDev() {
		if c.SessionSecret == "" {
			return fmt.Errorf("SESSION_SECRET is required when ENV=%q", c.Env)
		}
		if len(c.SessionSecret) < minSecretLen {
			return fmt.Errorf("SESSION_SECRET must be at least %d bytes, got %d", minSecretLen, len(c.SessionSecret))
		}
	}

	switch c.DeletePolicy {
	case "orphan", "cascade", "restrict":
	default:
		return fmt.Errorf("DELETE_POLICY must be \"orphan\", \"cascade\", or \"restrict\", got %q", c.DeletePolicy)
	}

	if c.ExpiryHorizonDays <= 0 {
		return fmt.Errorf("EXPIRY_HORIZON_DAYS must be positive, got %d", c.ExpiryHorizonDays)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}

	switch c.PhotoStore {
	case "memory":
	case "s3":
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when PHOTO_STORE is \"s3\"")
		}
		if (c.S3AccessKeyID == "") != (c.S3SecretAccessKey == "") {
			return fmt.Errorf("S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY must be set together")
		}
	default:
		return fmt.Errorf("PHOTO_STORE must be \"memory\" or \"s3\", got %q", c.PhotoStore)
	}

	return nil
}
