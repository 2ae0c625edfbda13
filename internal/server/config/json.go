package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/a2hand/internal/flagx"
)

// JsonConfig is the on-disk shape of the configuration file. Fields left out
// of the file keep the value from earlier layers.
type JsonConfig struct {
	EndpointAddrHTTP            string   `json:"endpoint_addr_http"`
	DatabaseDSN                 string   `json:"database_dsn"`
	SecretKey                   string   `json:"secret_key"`
	AccessTokenValidityDuration Duration `json:"access_token_validity_duration"`
	BcryptCost                  int      `json:"bcrypt_cost"`
	StorageBackend              string   `json:"storage_backend"`
	UploadDir                   string   `json:"upload_dir"`
	MaxUploadSize               int64    `json:"max_upload_bytes"`
	RequireAuth                 *bool    `json:"require_auth"`
	CORSAllowedOrigins          []string `json:"cors_allowed_origins"`
	LogBackend                  string   `json:"log_backend"`
	S3RootUser                  string   `json:"s3_root_user"`
	S3RootPassword              string   `json:"s3_root_password"`
	S3Bucket                    string   `json:"s3_bucket"`
	S3Region                    string   `json:"s3_region"`
	S3BaseEndpoint              string   `json:"s3_base_endpoint"`
}

// parseJson loads the file named by -c/-config, if any, into config.
// An unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	overlay(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	overlay(&config.DatabaseDSN, c.DatabaseDSN)
	overlay(&config.SecretKey, c.SecretKey)
	overlay(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration.Duration)
	overlay(&config.BcryptCost, c.BcryptCost)
	overlay(&config.StorageBackend, c.StorageBackend)
	overlay(&config.UploadDir, c.UploadDir)
	overlay(&config.MaxUploadSize, c.MaxUploadSize)
	overlay(&config.LogBackend, c.LogBackend)
	overlay(&config.S3RootUser, c.S3RootUser)
	overlay(&config.S3RootPassword, c.S3RootPassword)
	overlay(&config.S3Bucket, c.S3Bucket)
	overlay(&config.S3Region, c.S3Region)
	overlay(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.RequireAuth != nil {
		config.RequireAuth = *c.RequireAuth
	}
	if len(c.CORSAllowedOrigins) > 0 {
		config.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
}

func overlay[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}
