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

// FileConfig is the DTO read from the config file. Token validity uses
// timex.Duration, so both "12h" and integer nanoseconds are accepted.
// Keys missing from the file leave the current value untouched.
type FileConfig struct {
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	EndpointAddrHTTP            string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	DatabaseDSN                 string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey                   string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	BootstrapUser               string         `json:"bootstrap_user" yaml:"bootstrap_user"`
	BootstrapPassword           string         `json:"bootstrap_password" yaml:"bootstrap_password"`
	BootstrapDisplayName        string         `json:"bootstrap_display_name" yaml:"bootstrap_display_name"`
	LogLevel                    string         `json:"log_level" yaml:"log_level"`
	LogFormat                   string         `json:"log_format" yaml:"log_format"`
}

func readFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func (c *FileConfig) apply(config *Config) {
	overlay(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	overlay(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	overlay(&config.DatabaseDSN, c.DatabaseDSN)
	overlay(&config.SecretKey, c.SecretKey)
	overlay(&config.BootstrapUser, c.BootstrapUser)
	overlay(&config.BootstrapPassword, c.BootstrapPassword)
	overlay(&config.BootstrapDisplayName, c.BootstrapDisplayName)
	overlay(&config.LogLevel, c.LogLevel)
	overlay(&config.LogFormat, c.LogFormat)
	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
}

// parseFile loads the file named by -c/-config or $POSQUEUE_CONFIG into
// config. It panics if the file cannot be read or decoded.
func parseFile(config *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	c, err := readFile(path)
	if err != nil {
		panic(err)
	}
	c.apply(config)
}
