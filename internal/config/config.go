package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/imposter-project/imposter-expect/internal/store"
)

const (
	defaultPort           = "8080"
	defaultForwardTimeout = 30 * time.Second
)

// CorsConfig controls CORS headers on the admin API
type CorsConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	MaxAge           int
	AllowCredentials bool
}

// Application-wide configuration
type ImposterConfig struct {
	ServerPort string

	ForwardTimeout     time.Duration
	ForwardTLSInsecure bool

	// InitFile holds expectations registered at startup
	InitFile string

	TLSCertFile string
	TLSKeyFile  string

	Store store.Options

	// Cors is nil when CORS is disabled
	Cors *CorsConfig
}

// TLSEnabled reports whether both a certificate and key are configured.
func (c *ImposterConfig) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// LoadImposterConfig loads configuration from environment variables
func LoadImposterConfig() (*ImposterConfig, error) {
	port := os.Getenv("IMPOSTER_PORT")
	if port == "" {
		port = defaultPort
	}

	forwardTimeout, err := durationFromEnv("IMPOSTER_FORWARD_TIMEOUT", defaultForwardTimeout)
	if err != nil {
		return nil, err
	}
	tlsInsecure, err := boolFromEnv("IMPOSTER_FORWARD_TLS_INSECURE", true)
	if err != nil {
		return nil, err
	}
	redisExpiry, err := durationFromEnv("IMPOSTER_STORE_REDIS_EXPIRY", 0)
	if err != nil {
		return nil, err
	}
	cors, err := loadCorsConfig()
	if err != nil {
		return nil, err
	}

	return &ImposterConfig{
		ServerPort:         port,
		ForwardTimeout:     forwardTimeout,
		ForwardTLSInsecure: tlsInsecure,
		InitFile:           os.Getenv("IMPOSTER_INIT_FILE"),
		TLSCertFile:        os.Getenv("IMPOSTER_TLS_CERT_FILE"),
		TLSKeyFile:         os.Getenv("IMPOSTER_TLS_KEY_FILE"),
		Store: store.Options{
			Driver:        os.Getenv("IMPOSTER_STORE_DRIVER"),
			KeyPrefix:     os.Getenv("IMPOSTER_STORE_KEY_PREFIX"),
			RedisAddr:     os.Getenv("REDIS_ADDR"),
			RedisPassword: os.Getenv("REDIS_PASSWORD"),
			RedisExpiry:   redisExpiry,
			DynamoDBTable: os.Getenv("IMPOSTER_DYNAMODB_TABLE"),
			AWSRegion:     os.Getenv("AWS_REGION"),
		},
		Cors: cors,
	}, nil
}

func loadCorsConfig() (*CorsConfig, error) {
	origins := splitList(os.Getenv("IMPOSTER_CORS_ALLOW_ORIGINS"))
	if len(origins) == 0 {
		return nil, nil
	}
	credentials, err := boolFromEnv("IMPOSTER_CORS_ALLOW_CREDENTIALS", false)
	if err != nil {
		return nil, err
	}
	maxAge := 0
	if v := os.Getenv("IMPOSTER_CORS_MAX_AGE"); v != "" {
		if maxAge, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("invalid IMPOSTER_CORS_MAX_AGE %q: %w", v, err)
		}
	}
	return &CorsConfig{
		AllowOrigins:     origins,
		AllowMethods:     splitList(os.Getenv("IMPOSTER_CORS_ALLOW_METHODS")),
		AllowHeaders:     splitList(os.Getenv("IMPOSTER_CORS_ALLOW_HEADERS")),
		MaxAge:           maxAge,
		AllowCredentials: credentials,
	}, nil
}

func durationFromEnv(name string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	return d, nil
}

func boolFromEnv(name string, fallback bool) (bool, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	return b, nil
}

func splitList(v string) []string {
	var items []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
