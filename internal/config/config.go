package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Amund211/vidcat/internal/coordinator"
	"github.com/Amund211/vidcat/internal/domain"
)

var ErrMissingRequiredValue = errors.New("missing required value")
var ErrInvalidValue = errors.New("invalid value")

type environment string

const (
	production  environment = "production"
	staging     environment = "staging"
	development environment = "development"
)

const defaultPort = "8080"
const defaultVideoCacheTTL = 5 * time.Minute

type Config struct {
	port                  string
	catalogAPIURL         string
	catalogAPIKey         string
	sentryDSN             string
	allowedOriginSuffixes []string
	coordinator           coordinator.Config
	videoCacheTTL         time.Duration
	env                   environment
}

func (c *Config) Port() string {
	return c.port
}

func (c *Config) CatalogAPIURL() string {
	return c.catalogAPIURL
}

func (c *Config) CatalogAPIKey() string {
	return c.catalogAPIKey
}

func (c *Config) SentryDSN() string {
	return c.sentryDSN
}

func (c *Config) AllowedOriginSuffixes() []string {
	return c.allowedOriginSuffixes
}

func (c *Config) Coordinator() coordinator.Config {
	return c.coordinator
}

func (c *Config) VideoCacheTTL() time.Duration {
	return c.videoCacheTTL
}

func (c *Config) EnvironmentName() string {
	return string(c.env)
}

func (c *Config) IsProduction() bool {
	return c.env == production
}

func (c *Config) IsStaging() bool {
	return c.env == staging
}

func (c *Config) IsDevelopment() bool {
	return c.env == development
}

// Return a string representation suitable for logging etc
func (c *Config) NonSensitiveString() string {
	return fmt.Sprintf(
		"Config{env: %s, port: %s, catalogAPIURL: %s, allowedOriginSuffixes: %v, batchDelay: %s, maxBatchSize: %d, maxConcurrentRequests: %d, ...}",
		string(c.env),
		c.port,
		c.catalogAPIURL,
		c.allowedOriginSuffixes,
		c.coordinator.BatchDelay,
		c.coordinator.MaxBatchSize,
		c.coordinator.MaxConcurrentRequests,
	)
}

func ConfigFromEnv() (Config, error) {
	missingKey := func(key string) (Config, error) {
		return Config{}, fmt.Errorf("%w: %s", ErrMissingRequiredValue, key)
	}
	invalidValue := func(key, value string) (Config, error) {
		return Config{}, fmt.Errorf("%w: %s (%s)", ErrInvalidValue, key, value)
	}

	var env environment
	rawEnv, ok := os.LookupEnv("VIDCAT_ENVIRONMENT")
	if !ok {
		return missingKey("VIDCAT_ENVIRONMENT")
	}
	switch rawEnv {
	case "production":
		env = production
	case "staging":
		env = staging
	case "development":
		env = development
	default:
		return invalidValue("VIDCAT_ENVIRONMENT", rawEnv)
	}
	if string(env) == "" {
		panic("logic error: env is empty")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}
	if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return invalidValue("PORT", port)
	}

	catalogAPIURL := strings.TrimSuffix(os.Getenv("CATALOG_API_URL"), "/")
	catalogAPIKey := os.Getenv("CATALOG_API_KEY")
	sentryDSN := os.Getenv("SENTRY_DSN")

	var allowedOriginSuffixes []string
	for suffix := range strings.SplitSeq(os.Getenv("VIDCAT_ALLOWED_ORIGIN_SUFFIXES"), ",") {
		suffix = strings.TrimSpace(suffix)
		if suffix == "" {
			continue
		}
		allowedOriginSuffixes = append(allowedOriginSuffixes, suffix)
	}

	coordinatorConfig := coordinator.DefaultConfig()
	if raw := os.Getenv("VIDCAT_BATCH_DELAY"); raw != "" {
		batchDelay, err := time.ParseDuration(raw)
		if err != nil {
			return invalidValue("VIDCAT_BATCH_DELAY", raw)
		}
		coordinatorConfig.BatchDelay = batchDelay
	}
	if raw := os.Getenv("VIDCAT_MAX_BATCH_SIZE"); raw != "" {
		maxBatchSize, err := strconv.Atoi(raw)
		// The catalog rejects larger batches
		if err != nil || maxBatchSize > domain.MaxLikeStatusBatchSize {
			return invalidValue("VIDCAT_MAX_BATCH_SIZE", raw)
		}
		coordinatorConfig.MaxBatchSize = maxBatchSize
	}
	if raw := os.Getenv("VIDCAT_MAX_CONCURRENT_REQUESTS"); raw != "" {
		maxConcurrentRequests, err := strconv.Atoi(raw)
		if err != nil {
			return invalidValue("VIDCAT_MAX_CONCURRENT_REQUESTS", raw)
		}
		coordinatorConfig.MaxConcurrentRequests = maxConcurrentRequests
	}
	if err := coordinatorConfig.Validate(); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}

	videoCacheTTL := defaultVideoCacheTTL
	if raw := os.Getenv("VIDCAT_VIDEO_CACHE_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			return invalidValue("VIDCAT_VIDEO_CACHE_TTL", raw)
		}
		videoCacheTTL = ttl
	}

	if env == production || env == staging {
		if catalogAPIURL == "" {
			return missingKey("CATALOG_API_URL")
		}
		if sentryDSN == "" {
			return missingKey("SENTRY_DSN")
		}
	}

	return Config{
		port:                  port,
		catalogAPIURL:         catalogAPIURL,
		catalogAPIKey:         catalogAPIKey,
		sentryDSN:             sentryDSN,
		allowedOriginSuffixes: allowedOriginSuffixes,
		coordinator:           coordinatorConfig,
		videoCacheTTL:         videoCacheTTL,
		env:                   env,
	}, nil
}
