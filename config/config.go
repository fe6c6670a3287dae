package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	// Site configuration
	BaseURL             string
	CategoryStartOffset int

	// Browser configuration
	Headless      bool
	ProxyEnabled  bool
	ProxyHostname string
	ProxyPort     int
	LoginEnabled  bool
	CredEmail     string
	CredPass      string

	// Timeout profile
	NavTimeout   time.Duration // long waits: navigation, main content
	ProbeTimeout time.Duration // short waits: classification probes
	SettleDelay  time.Duration // pause before classification probes
	TabPause     time.Duration // pause after closing a tab

	// Session retry loop
	RetryMaxAttempts int
	RetryDelay       time.Duration

	// Skip set
	SkipFile string

	// MongoDB configuration
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
	MongoTimeout    time.Duration

	// Redis publisher configuration (disabled when RedisAddr is empty)
	RedisAddr         string
	RedisDB           int
	RedisStream       string
	RedisStreamMaxLen int

	// Memcache seen-link cache (disabled when MemcacheAddr is empty)
	MemcacheAddr string
	SeenLinkTTL  time.Duration

	// Prometheus metrics listener (disabled when empty)
	MetricsAddr string

	// Environment
	Environment string

	// Selectors for the crawled site
	Selectors Selectors
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	return Config{
		BaseURL:             getEnv("BASE_URL", "https://www.mcmaster.com/"),
		CategoryStartOffset: getEnvInt("CATEGORY_START_OFFSET", 0),

		Headless:      getEnvBool("HEADLESS", true),
		ProxyEnabled:  getEnvBool("PROXY_ENABLED", false),
		ProxyHostname: getEnv("PROXY_HOSTNAME", "gate.smartproxy.com"),
		ProxyPort:     getEnvInt("PROXY_PORT", 10005),
		LoginEnabled:  getEnvBool("LOGIN_ENABLED", false),
		CredEmail:     getEnv("CRED_EMAIL", ""),
		CredPass:      getEnv("CRED_PASS", ""),

		NavTimeout:   getEnvDuration("NAV_TIMEOUT_SECONDS", 60),
		ProbeTimeout: getEnvDuration("PROBE_TIMEOUT_SECONDS", 2),
		SettleDelay:  getEnvDuration("SETTLE_DELAY_SECONDS", 2),
		TabPause:     getEnvDuration("TAB_PAUSE_SECONDS", 1),

		RetryMaxAttempts: getEnvInt("RETRY_MAX_ATTEMPTS", 5),
		RetryDelay:       getEnvDuration("RETRY_DELAY_SECONDS", 60),

		SkipFile: getEnv("SKIP_LIST_FILE", "skip_list.json"),

		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("DB_NAME", "catalog"),
		MongoCollection: getEnv("COLLECTION_NAME", "products"),
		MongoTimeout:    getEnvDuration("MONGO_TIMEOUT_SECONDS", 10),

		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		RedisStream:       getEnv("REDIS_STREAM", "products"),
		RedisStreamMaxLen: getEnvInt("REDIS_STREAM_MAXLEN", 10000),

		MemcacheAddr: getEnv("MEMCACHE_ADDR", ""),
		SeenLinkTTL:  getEnvDuration("SEEN_LINK_TTL_SECONDS", 3600),

		MetricsAddr: getEnv("METRICS_ADDR", ""),

		Environment: getEnv("CRAWLER_ENVIRONMENT", "development"),

		Selectors: DefaultSelectors(),
	}
}

// Validate checks the configuration for inconsistencies
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("BASE_URL must not be empty")
	}
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI must not be empty")
	}
	if c.SkipFile == "" {
		return fmt.Errorf("SKIP_LIST_FILE must not be empty")
	}
	if c.RetryMaxAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be at least 1, got %d", c.RetryMaxAttempts)
	}
	if c.CategoryStartOffset < 0 {
		return fmt.Errorf("CATEGORY_START_OFFSET must not be negative, got %d", c.CategoryStartOffset)
	}
	if c.LoginEnabled && (c.CredEmail == "" || c.CredPass == "") {
		return fmt.Errorf("LOGIN_ENABLED requires CRED_EMAIL and CRED_PASS")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// getEnvBool retrieves a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

// getEnvDuration retrieves a duration in seconds or returns a default value
func getEnvDuration(key string, defaultSeconds int) time.Duration {
	return time.Duration(getEnvInt(key, defaultSeconds)) * time.Second
}
