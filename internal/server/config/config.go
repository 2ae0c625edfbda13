// Package config handles configuration for the marketplace server:
// defaults, then environment (optionally from a .env file), then a JSON
// file, then command-line flags. Later layers win.
package config

import "time"

// Config holds runtime settings for the marketplace server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the HTTP API.
//   - DatabaseDSN: "postgres://..." for PostgreSQL (pgx), "sqlite://path" for SQLite.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use the default in prod.
//   - AccessTokenValidityDuration: session token lifetime.
//   - BcryptCost: password hashing work factor, never below 10.
//   - StorageBackend: "disk" (UploadDir) or "s3".
//   - MaxUploadSize: request body limit for multipart endpoints, in bytes.
//   - RequireAuth: when false, requests without a bearer token may act as
//     the user named in their form fields. The legacy browser UI sends no
//     Authorization header and needs REQUIRE_AUTH=false (or -q false).
//   - CORSAllowedOrigins: origins allowed for browser clients.
//   - LogBackend: "slog" or "zap".
//   - S3RootUser / S3RootPassword / S3Bucket / S3Region / S3BaseEndpoint:
//     object storage settings for the "s3" backend.
type Config struct {
	EndpointAddrHTTP            string
	DatabaseDSN                 string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	BcryptCost                  int
	StorageBackend              string
	UploadDir                   string
	MaxUploadSize               int64
	RequireAuth                 bool
	CORSAllowedOrigins          []string
	LogBackend                  string
	S3RootUser                  string
	S3RootPassword              string
	S3Bucket                    string
	S3Region                    string
	S3BaseEndpoint              string
}

const (
	StorageDisk = "disk"
	StorageS3   = "s3"

	minBcryptCost = 10
)

// LoadDefaults populates Config with development defaults.
// NOTE: SecretKey and the S3 credentials must be overridden in production.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8000"
	c.DatabaseDSN = "sqlite://a2hand.db"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 24 * time.Hour
	c.BcryptCost = 12
	c.StorageBackend = StorageDisk
	c.UploadDir = "uploads"
	c.MaxUploadSize = 32 << 20
	c.RequireAuth = true
	c.CORSAllowedOrigins = []string{"*"}
	c.LogBackend = "slog"
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "a2hand"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
}

// normalize clamps values that would weaken the server.
func (c *Config) normalize() {
	if c.BcryptCost < minBcryptCost {
		c.BcryptCost = minBcryptCost
	}
}

// LoadConfig builds a Config by applying defaults, then overlaying the
// environment, an optional JSON file and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	cfg.normalize()
	return cfg
}
