package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/a2hand/internal/flagx"
	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// parseEnv overlays Config with environment variables. A dotenv file named
// by -env (or ./.env when present) is loaded first; variables already set in
// the process environment take precedence over the file.
//
// Recognised variables:
//
//	HTTP_ADDR, DATABASE_DSN, SECRET_KEY, ACCESS_TOKEN_TTL ("24h" or minutes),
//	BCRYPT_COST, STORAGE_BACKEND, UPLOAD_DIR, MAX_UPLOAD_BYTES, REQUIRE_AUTH,
//	CORS_ALLOWED_ORIGINS (comma separated), LOG_BACKEND, S3_ROOT_USER,
//	S3_ROOT_PASSWORD, S3_BUCKET, S3_REGION, S3_BASE_ENDPOINT
//
// Malformed values panic, like the other configuration layers.
func parseEnv(config *Config) {
	if err := loadEnvFile(flagx.EnvFileFlags()); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, "HTTP_ADDR")
	setString(&config.DatabaseDSN, "DATABASE_DSN")
	setString(&config.SecretKey, "SECRET_KEY")
	setString(&config.StorageBackend, "STORAGE_BACKEND")
	setString(&config.UploadDir, "UPLOAD_DIR")
	setString(&config.LogBackend, "LOG_BACKEND")
	setString(&config.S3RootUser, "S3_ROOT_USER")
	setString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	setString(&config.S3Bucket, "S3_BUCKET")
	setString(&config.S3Region, "S3_REGION")
	setString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")

	if v, ok := os.LookupEnv("ACCESS_TOKEN_TTL"); ok && v != "" {
		d, err := parseTTL(v)
		if err != nil {
			panic(fmt.Errorf("ACCESS_TOKEN_TTL: %w", err))
		}
		config.AccessTokenValidityDuration = d
	}
	if v, ok := os.LookupEnv("BCRYPT_COST"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(fmt.Errorf("BCRYPT_COST: %w", err))
		}
		config.BcryptCost = n
	}
	if v, ok := os.LookupEnv("MAX_UPLOAD_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			panic(fmt.Errorf("MAX_UPLOAD_BYTES: %w", err))
		}
		config.MaxUploadSize = n
	}
	if v, ok := os.LookupEnv("REQUIRE_AUTH"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(fmt.Errorf("REQUIRE_AUTH: %w", err))
		}
		config.RequireAuth = b
	}
	if v, ok := os.LookupEnv("CORS_ALLOWED_ORIGINS"); ok && v != "" {
		config.CORSAllowedOrigins = splitList(v)
	}
}

func loadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(defaultEnvFile); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		path = defaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func setString(dst *string, name string) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		*dst = v
	}
}

// parseTTL accepts a Go duration or a bare number of minutes.
func parseTTL(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Minute, nil
	}
	return time.ParseDuration(v)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
