package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "127.0.0.1:50051", c.ServerEndpointAddr)
	assert.Equal(t, TransportGRPC, c.Transport)
	assert.Equal(t, 3*time.Second, c.OnlineCheckInterval)
	assert.Equal(t, 15*time.Second, c.SubmitTimeout)
	assert.Equal(t, 3, c.MaxRetries)
	assert.Empty(t, c.S3Bucket)
	require.NoError(t, c.Validate())
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = []string{"cmd"}
	t.Setenv("POSQUEUE_CONFIG", "")

	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "127.0.0.1:50051", cfg.ServerEndpointAddr)
	assert.Equal(t, 3*time.Second, cfg.OnlineCheckInterval)
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := writeTemp(t, "cfg.json", `{"server_endpoint_addr":"10.0.0.1:1","max_retries":7}`)

	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = []string{"cmd", "-c", path, "-a", "10.0.0.2:2"}

	cfg := LoadConfig()

	assert.Equal(t, "10.0.0.2:2", cfg.ServerEndpointAddr)
	assert.Equal(t, 7, cfg.MaxRetries)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "rest", mutate: func(c *Config) { c.Transport = TransportREST }},
		{name: "unknown transport", mutate: func(c *Config) { c.Transport = "carrier-pigeon" }, wantErr: true},
		{name: "zero retries", mutate: func(c *Config) { c.MaxRetries = 0 }, wantErr: true},
		{name: "no database", mutate: func(c *Config) { c.DatabasePath = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)
			if tt.wantErr {
				assert.Error(t, c.Validate())
			} else {
				assert.NoError(t, c.Validate())
			}
		})
	}
}
