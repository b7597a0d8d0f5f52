package config

import (
	"fmt"
	"time"
)

const (
	TransportGRPC = "grpc"
	TransportREST = "rest"
)

// Config holds runtime settings for the POS terminal.
//
// Units: all intervals are time.Duration.
type Config struct {
	// ServerEndpointAddr is host:port of the intake gRPC endpoint.
	ServerEndpointAddr string
	// RestBaseURL is the intake REST base URL, used when Transport is "rest".
	RestBaseURL string
	Transport   string

	// DatabasePath is the SQLite file of the local store. Its directory must exist.
	DatabasePath string
	TerminalID   string

	OnlineCheckInterval time.Duration
	SubmitTimeout       time.Duration
	SyncInterval        time.Duration
	SyncMaxBackoff      time.Duration
	MaxRetries          int

	LogLevel  string
	LogFormat string

	// Dead-letter archive; disabled while S3Bucket is empty.
	S3Region       string
	S3AccessKey    string
	S3SecretKey    string
	S3BaseEndpoint string
	S3Bucket       string
	S3Prefix       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.RestBaseURL = "http://127.0.0.1:8080"
	c.Transport = TransportGRPC
	c.DatabasePath = "posqueue.db"
	c.TerminalID = "terminal-1"
	c.OnlineCheckInterval = 3 * time.Second
	c.SubmitTimeout = 15 * time.Second
	c.SyncInterval = 30 * time.Second
	c.SyncMaxBackoff = 5 * time.Minute
	c.MaxRetries = 3
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.S3Region = "us-east-1"
	c.S3Prefix = "failed-orders"
}

// Validate reports settings the terminal cannot run with.
func (c *Config) Validate() error {
	switch c.Transport {
	case TransportGRPC, TransportREST:
	default:
		return fmt.Errorf("unknown transport %q (want %s or %s)", c.Transport, TransportGRPC, TransportREST)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max retries must be positive, got %d", c.MaxRetries)
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database path is required")
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the config file (if any) and command-line flags. Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}
