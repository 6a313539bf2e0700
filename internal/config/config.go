package config

import (
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress         string
	AuthServiceURL     string
	CatalogServiceURL  string
	BookingServiceURL  string
	OrderServiceURL    string
	PaymentServiceURL  string
	SessionDatabaseURI string
	SessionSecret      string
	Currency           string
	LogLevel           string

	RequestTimeout          time.Duration
	RefreshTimeout          time.Duration
	VendorLookupConcurrency int

	SettlementPollInterval time.Duration
	SettlementTimeout      time.Duration
	SettlementWorkers      int

	ShutdownTimeout  time.Duration
	TraceSampleRatio float64
}

const (
	defaultRunAddress              = ":8080"
	defaultCurrency                = "INR"
	defaultLogLevel                = "info"
	defaultRequestTimeout          = 10 * time.Second
	defaultRefreshTimeout          = 5 * time.Second
	defaultVendorLookupConcurrency = 4
	defaultSettlementPollInterval  = 2 * time.Second
	defaultSettlementTimeout       = 2 * time.Minute
	defaultSettlementWorkers       = 2
	defaultShutdownTimeout         = 10 * time.Second
	defaultTraceSampleRatio        = 1.0
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:              getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		AuthServiceURL:          getString(lookup, "AUTH_SERVICE_URL", ""),
		CatalogServiceURL:       getString(lookup, "CATALOG_SERVICE_URL", ""),
		BookingServiceURL:       getString(lookup, "BOOKING_SERVICE_URL", ""),
		OrderServiceURL:         getString(lookup, "ORDER_SERVICE_URL", ""),
		PaymentServiceURL:       getString(lookup, "PAYMENT_SERVICE_URL", ""),
		SessionDatabaseURI:      getString(lookup, "SESSION_DATABASE_URI", ""),
		SessionSecret:           getString(lookup, "SESSION_SECRET", ""),
		Currency:                getString(lookup, "CURRENCY", defaultCurrency),
		LogLevel:                getString(lookup, "LOG_LEVEL", defaultLogLevel),
		RequestTimeout:          getDuration(lookup, "REQUEST_TIMEOUT", defaultRequestTimeout),
		RefreshTimeout:          getDuration(lookup, "REFRESH_TIMEOUT", defaultRefreshTimeout),
		VendorLookupConcurrency: getInt(lookup, "VENDOR_LOOKUP_CONCURRENCY", defaultVendorLookupConcurrency),
		SettlementPollInterval:  getDuration(lookup, "SETTLEMENT_POLL_INTERVAL", defaultSettlementPollInterval),
		SettlementTimeout:       getDuration(lookup, "SETTLEMENT_TIMEOUT", defaultSettlementTimeout),
		SettlementWorkers:       getInt(lookup, "SETTLEMENT_WORKERS", defaultSettlementWorkers),
		ShutdownTimeout:         getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		TraceSampleRatio:        getFloat(lookup, "TRACE_SAMPLE_RATIO", defaultTraceSampleRatio),
	}

	fs := flag.NewFlagSet("eventmart", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		requestTimeoutStr  = cfg.RequestTimeout.String()
		refreshTimeoutStr  = cfg.RefreshTimeout.String()
		pollIntervalStr    = cfg.SettlementPollInterval.String()
		settleTimeoutStr   = cfg.SettlementTimeout.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "Local API listen address")
	fs.StringVar(&cfg.AuthServiceURL, "auth", cfg.AuthServiceURL, "Auth service base URL")
	fs.StringVar(&cfg.CatalogServiceURL, "catalog", cfg.CatalogServiceURL, "Catalog service base URL")
	fs.StringVar(&cfg.BookingServiceURL, "booking", cfg.BookingServiceURL, "Booking service base URL")
	fs.StringVar(&cfg.OrderServiceURL, "orders", cfg.OrderServiceURL, "Order service base URL")
	fs.StringVar(&cfg.PaymentServiceURL, "payment", cfg.PaymentServiceURL, "Payment service base URL")
	fs.StringVar(&cfg.SessionDatabaseURI, "d", cfg.SessionDatabaseURI, "PostgreSQL DSN for persisted credentials")
	fs.StringVar(&cfg.SessionSecret, "session-secret", cfg.SessionSecret, "Secret used to seal persisted credentials")
	fs.StringVar(&cfg.Currency, "currency", cfg.Currency, "Settlement currency")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&requestTimeoutStr, "request-timeout", requestTimeoutStr, "Outbound request timeout")
	fs.StringVar(&refreshTimeoutStr, "refresh-timeout", refreshTimeoutStr, "Credential renewal timeout")
	fs.IntVar(&cfg.VendorLookupConcurrency, "vendor-lookups", cfg.VendorLookupConcurrency, "Concurrent vendor name lookups")
	fs.StringVar(&pollIntervalStr, "settlement-poll", pollIntervalStr, "Interval between settlement checks")
	fs.StringVar(&settleTimeoutStr, "settlement-timeout", settleTimeoutStr, "How long to wait for settlement")
	fs.IntVar(&cfg.SettlementWorkers, "settlement-workers", cfg.SettlementWorkers, "Number of settlement tracking workers")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.Float64Var(&cfg.TraceSampleRatio, "trace-ratio", cfg.TraceSampleRatio, "Trace sampling ratio")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.RequestTimeout, err = time.ParseDuration(requestTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid request timeout: %w", err)
	}

	if cfg.RefreshTimeout, err = time.ParseDuration(refreshTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid refresh timeout: %w", err)
	}

	if cfg.SettlementPollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid settlement poll interval: %w", err)
	}

	if cfg.SettlementTimeout, err = time.ParseDuration(settleTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid settlement timeout: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("SESSION_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read session secret file: %w", err)
		}
		cfg.SessionSecret = strings.TrimSpace(string(content))
	}

	cfg.normalize()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) normalize() {
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.RefreshTimeout <= 0 {
		c.RefreshTimeout = defaultRefreshTimeout
	}
	if c.VendorLookupConcurrency <= 0 {
		c.VendorLookupConcurrency = defaultVendorLookupConcurrency
	}
	if c.SettlementPollInterval <= 0 {
		c.SettlementPollInterval = defaultSettlementPollInterval
	}
	if c.SettlementTimeout <= 0 {
		c.SettlementTimeout = defaultSettlementTimeout
	}
	if c.SettlementWorkers <= 0 {
		c.SettlementWorkers = defaultSettlementWorkers
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = defaultShutdownTimeout
	}
	if c.TraceSampleRatio < 0 || c.TraceSampleRatio > 1 {
		c.TraceSampleRatio = defaultTraceSampleRatio
	}
	if c.Currency == "" {
		c.Currency = defaultCurrency
	}
	c.Currency = strings.ToUpper(c.Currency)
}

func (c *Config) validate() error {
	services := []struct {
		name  string
		value string
	}{
		{"auth service", c.AuthServiceURL},
		{"catalog service", c.CatalogServiceURL},
		{"booking service", c.BookingServiceURL},
		{"order service", c.OrderServiceURL},
		{"payment service", c.PaymentServiceURL},
	}
	for _, svc := range services {
		if svc.value == "" {
			return fmt.Errorf("%s URL must be provided", svc.name)
		}
		parsed, err := url.Parse(svc.value)
		if err != nil || !parsed.IsAbs() {
			return fmt.Errorf("%s URL must be absolute: %q", svc.name, svc.value)
		}
	}

	if c.SessionDatabaseURI != "" && c.SessionSecret == "" {
		return fmt.Errorf("session secret must be provided when credentials are persisted")
	}

	return nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(lookup envLookup, key string, def float64) float64 {
	if v, ok := lookup(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
