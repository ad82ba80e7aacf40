// Package config builds the typed server configuration from environment
// variables, which come from a local .env file in development and from AWS SSM
// Parameter Store in production.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// MinSecretLength is the shortest accepted JWT_SECRET, in bytes.
const MinSecretLength = 32

type Config struct {
	HTTPAddr        string
	DBPath          string
	JWTSecret       []byte
	TokenTTL        time.Duration
	BcryptCost      int
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	BodyLimit       string
	LogLevel        string
	AWSRegion       string

	// AdminName and AdminPassword seed a bootstrap administrator when both are set.
	AdminName     string
	AdminPassword string
}

// LoadDefaults populates every optional setting. JWTSecret has no default.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":7070"
	c.DBPath = "database.db"
	c.TokenTTL = 30 * time.Minute
	c.BcryptCost = bcrypt.DefaultCost
	c.RequestTimeout = 10 * time.Second
	c.ShutdownTimeout = 10 * time.Second
	c.BodyLimit = "1M"
	c.LogLevel = "info"
	c.AWSRegion = "us-east-2"
}

// FromEnv reads the configuration from the process environment.
func FromEnv() (*Config, error) {
	return FromLookup(os.LookupEnv)
}

// FromLookup reads the configuration through lookup, which has the
// signature of os.LookupEnv.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	dur := func(key string, dst *time.Duration) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("%s: expected a positive duration, got %q", key, v))
			return
		}
		*dst = d
	}

	str("HTTP_ADDR", &cfg.HTTPAddr)
	str("DB_PATH", &cfg.DBPath)
	str("BODY_LIMIT", &cfg.BodyLimit)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("AWS_REGION", &cfg.AWSRegion)
	str("ADMIN_NAME", &cfg.AdminName)
	dur("TOKEN_TTL", &cfg.TokenTTL)
	dur("REQUEST_TIMEOUT", &cfg.RequestTimeout)
	dur("SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout)

	if v, ok := lookup("ADMIN_PASSWORD"); ok {
		cfg.AdminPassword = v
	}

	if v, ok := lookup("BCRYPT_COST"); ok && strings.TrimSpace(v) != "" {
		cost, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
			errs = append(errs, fmt.Errorf("BCRYPT_COST: expected an integer in [%d, %d], got %q",
				bcrypt.MinCost, bcrypt.MaxCost, v))
		} else {
			cfg.BcryptCost = cost
		}
	}

	secret, _ := lookup("JWT_SECRET")
	switch {
	case secret == "":
		errs = append(errs, errors.New("JWT_SECRET: required"))
	case len(secret) < MinSecretLength:
		errs = append(errs, fmt.Errorf("JWT_SECRET: must be at least %d bytes", MinSecretLength))
	default:
		cfg.JWTSecret = []byte(secret)
	}

	if (cfg.AdminName == "") != (cfg.AdminPassword == "") {
		errs = append(errs, errors.New("ADMIN_NAME and ADMIN_PASSWORD must be set together"))
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// HasAdmin reports whether a bootstrap administrator is configured.
func (c *Config) HasAdmin() bool {
	return c.AdminName != "" && c.AdminPassword != ""
}
