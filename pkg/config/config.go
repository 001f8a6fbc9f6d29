package config

import (
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

type Config struct {
	BookstoreDatabasePath     string
	BookstorePort             int
	BookstoreURL              string
	DatabaseBusyTimeout       time.Duration
	DatabaseConnectRetryCount int
	DatabaseConnectRetryDelay time.Duration
	DatabaseDebug             bool
	Environment               string
	GatewayPort               int
	Hostname                  string
	IdentityDatabasePath      string
	IdentityPort              int
	IdentityURL               string
	InternalTokenExpiry       time.Duration
	JWTSecret                 string
	LibraryDatabasePath       string
	LibraryPort               int
	LibraryURL                string
	NotifyTimeout             time.Duration
	ServerHost                string
	SessionTokenExpiry        time.Duration
	TokenCacheSize            int
	ValidateTimeout           time.Duration
}

const environmentENV = "ENVIRONMENT"

func New() (*Config, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cfg := &Config{
		BookstorePort:             3701,
		DatabaseBusyTimeout:       5 * time.Second,
		DatabaseConnectRetryCount: 5,
		DatabaseConnectRetryDelay: 2 * time.Second,
		GatewayPort:               3700,
		Hostname:                  hostname,
		IdentityPort:              3703,
		InternalTokenExpiry:       2 * time.Minute,
		LibraryPort:               3702,
		NotifyTimeout:             10 * time.Second,
		SessionTokenExpiry:        7 * 24 * time.Hour,
		TokenCacheSize:            1024,
		ValidateTimeout:           5 * time.Second,
	}

	switch os.Getenv(environmentENV) {
	case "development", "":
		cfg.Environment = "development"
		loadDevelopmentConfig(cfg)
	case "test":
		cfg.Environment = "test"
		loadTestConfig(cfg)
	case "production":
		cfg.Environment = "production"
		loadProductionConfig(cfg)
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}

	return cfg, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}
