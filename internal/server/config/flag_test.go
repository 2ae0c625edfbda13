package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", "127.0.0.1:9090", "-d", "postgres://db/a2hand", "-s", "secret",
			"-t", "60", "-k", "11", "-m", "s3", "-f", "/tmp/up", "-z", "2048",
			"-q", "false", "-o", "https://a.example,https://b.example", "-l", "zap",
			"-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
		}, expectPanic: false,
			expected: &Config{
				EndpointAddrHTTP:            "127.0.0.1:9090",
				DatabaseDSN:                 "postgres://db/a2hand",
				SecretKey:                   "secret",
				AccessTokenValidityDuration: 60 * time.Minute,
				BcryptCost:                  11,
				StorageBackend:              "s3",
				UploadDir:                   "/tmp/up",
				MaxUploadSize:               2048,
				RequireAuth:                 false,
				CORSAllowedOrigins:          []string{"https://a.example", "https://b.example"},
				LogBackend:                  "zap",
				S3RootUser:                  "user",
				S3RootPassword:              "password",
				S3Bucket:                    "bucket",
				S3Region:                    "us-west-1",
				S3BaseEndpoint:              "http://endpoint",
			}},
		{name: "foreign flags ignored", args: []string{"cmd", "-c", "cfg.json", "-env", ".env", "-a", ":1"},
			expected: &Config{EndpointAddrHTTP: ":1"}},
		{name: "bad int panics", args: []string{"cmd", "-k", "many"}, expectPanic: true},
		{name: "bad bool panics", args: []string{"cmd", "-q", "sometimes"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(tt.expected, config))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}

func TestParseFlags_TTLUntouchedWithoutFlag(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"cmd"}

	config := &Config{AccessTokenValidityDuration: 90 * time.Second}
	parseFlags(config)
	assert.Equal(t, 90*time.Second, config.AccessTokenValidityDuration)
}
