package config

import (
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // Cloud Run images ship without a zoneinfo database

	"github.com/GregMSThompson/wallet-sync/internal/dto"
)

const (
	EnvSandbox    = "sandbox"
	EnvProduction = "production"
)

const (
	defaultPort     = "8080"
	defaultTimezone = "America/Sao_Paulo"
	defaultPageSize = 200
	defaultTimeout  = 30 * time.Second
	defaultMaxYear  = 2030
	defaultCertDir  = "/etc/bb-certs"
)

type Config struct {
	ProjectID     string
	Region        string
	LogLevel      string
	Port          string
	KMSKeyName    string
	BBEnvironment string
	BBOAuthURL    string // overrides the OAuth URL of BBEnvironment
	BBAPIURL      string // overrides the API base URL of BBEnvironment
	BBCertDir     string
	BBPageSize    int
	BBTimeout     time.Duration
	SyncMaxYear   int
	Timezone      string
}

func New() *Config {
	return &Config{
		ProjectID:     os.Getenv("PROJECTID"),
		Region:        os.Getenv("REGION"),
		LogLevel:      os.Getenv("LOGLEVEL"),
		Port:          getString("PORT", defaultPort),
		KMSKeyName:    os.Getenv("KMSKEYNAME"),
		BBEnvironment: getBBEnvironment(os.Getenv("BBENVIRONMENT")),
		BBOAuthURL:    os.Getenv("BBOAUTHURL"),
		BBAPIURL:      os.Getenv("BBAPIURL"),
		BBCertDir:     getString("BBCERTDIR", defaultCertDir),
		BBPageSize:    getInt("BBPAGESIZE", defaultPageSize),
		BBTimeout:     getDuration("BBTIMEOUT", defaultTimeout),
		SyncMaxYear:   getInt("SYNCMAXYEAR", defaultMaxYear),
		Timezone:      getString("TIMEZONE", defaultTimezone),
	}
}

// BankEndpoints returns the Banco do Brasil hosts per environment, with
// BBOAUTHURL / BBAPIURL applied to the configured one.
func (c *Config) BankEndpoints() map[string]dto.BankEndpoints {
	eps := map[string]dto.BankEndpoints{
		EnvProduction: {
			OAuthURL:   "https://oauth.bb.com.br/oauth/token",
			APIBaseURL: "https://api-extratos.bb.com.br",
		},
		EnvSandbox: {
			OAuthURL:   "https://oauth.hm.bb.com.br/oauth/token",
			APIBaseURL: "https://api.hm.bb.com.br",
		},
	}
	ep := eps[c.BBEnvironment]
	if c.BBOAuthURL != "" {
		ep.OAuthURL = c.BBOAuthURL
	}
	if c.BBAPIURL != "" {
		ep.APIBaseURL = c.BBAPIURL
	}
	eps[c.BBEnvironment] = ep
	return eps
}

// Location is the timezone sync periods are computed in. An unknown zone
// falls back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getBBEnvironment(env string) string {
	switch env {
	case EnvProduction:
		return EnvProduction
	default: // "sandbox"
		return EnvSandbox
	}
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
