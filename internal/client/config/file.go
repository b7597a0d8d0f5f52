package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/posqueue/internal/flagx"
	"github.com/dmitrijs2005/posqueue/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is a DTO used exclusively for file unmarshalling. Intervals use
// timex.Duration, so they may be written as "3s" or as integer nanoseconds.
// Only keys present in the file override the current values.
type FileConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr" yaml:"server_endpoint_addr"`
	RestBaseURL         string         `json:"rest_base_url" yaml:"rest_base_url"`
	Transport           string         `json:"transport" yaml:"transport"`
	DatabasePath        string         `json:"database_path" yaml:"database_path"`
	TerminalID          string         `json:"terminal_id" yaml:"terminal_id"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval" yaml:"online_check_interval"`
	SubmitTimeout       timex.Duration `json:"submit_timeout" yaml:"submit_timeout"`
	SyncInterval        timex.Duration `json:"sync_interval" yaml:"sync_interval"`
	SyncMaxBackoff      timex.Duration `json:"sync_max_backoff" yaml:"sync_max_backoff"`
	MaxRetries          int            `json:"max_retries" yaml:"max_retries"`
	LogLevel            string         `json:"log_level" yaml:"log_level"`
	LogFormat           string         `json:"log_format" yaml:"log_format"`

	DeadLetter struct {
		Region       string `json:"region" yaml:"region"`
		AccessKey    string `json:"access_key" yaml:"access_key"`
		SecretKey    string `json:"secret_key" yaml:"secret_key"`
		BaseEndpoint string `json:"base_endpoint" yaml:"base_endpoint"`
		Bucket       string `json:"bucket" yaml:"bucket"`
		Prefix       string `json:"prefix" yaml:"prefix"`
	} `json:"dead_letter" yaml:"dead_letter"`
}

// readFile decodes path as YAML when the extension is .yaml or .yml and as
// JSON otherwise.
func readFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &fc, nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func (fc *FileConfig) apply(cfg *Config) {
	setString(&cfg.ServerEndpointAddr, fc.ServerEndpointAddr)
	setString(&cfg.RestBaseURL, fc.RestBaseURL)
	setString(&cfg.Transport, fc.Transport)
	setString(&cfg.DatabasePath, fc.DatabasePath)
	setString(&cfg.TerminalID, fc.TerminalID)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFormat, fc.LogFormat)

	if fc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = fc.OnlineCheckInterval.Duration
	}
	if fc.SubmitTimeout.Duration > 0 {
		cfg.SubmitTimeout = fc.SubmitTimeout.Duration
	}
	if fc.SyncInterval.Duration > 0 {
		cfg.SyncInterval = fc.SyncInterval.Duration
	}
	if fc.SyncMaxBackoff.Duration > 0 {
		cfg.SyncMaxBackoff = fc.SyncMaxBackoff.Duration
	}
	if fc.MaxRetries > 0 {
		cfg.MaxRetries = fc.MaxRetries
	}

	dl := fc.DeadLetter
	setString(&cfg.S3Region, dl.Region)
	setString(&cfg.S3AccessKey, dl.AccessKey)
	setString(&cfg.S3SecretKey, dl.SecretKey)
	setString(&cfg.S3BaseEndpoint, dl.BaseEndpoint)
	setString(&cfg.S3Bucket, dl.Bucket)
	setString(&cfg.S3Prefix, dl.Prefix)
}

// parseFile overlays Config with values loaded from the config file named
// by -c/-config or $POSQUEUE_CONFIG. Without one it does nothing. Read or
// decode errors panic, like flag errors.
func parseFile(cfg *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	fc, err := readFile(path)
	if err != nil {
		panic(err)
	}
	fc.apply(cfg)
}
