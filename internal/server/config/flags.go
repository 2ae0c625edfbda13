package config

import (
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/a2hand/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8000")
//	-d string   database DSN (postgres://... or sqlite://path)
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-k int      bcrypt cost
//	-m string   storage backend: disk or s3
//	-f string   upload directory for the disk backend
//	-z int      max upload size, bytes
//	-q string   require a bearer token on acting requests (true/false)
//	-o string   comma separated CORS origins
//	-l string   log backend: slog or zap
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// os.Args is filtered with flagx.FilterArgs first, so -c/-config and -env
// do not trip the parser.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-d", "-s", "-t", "-k", "-m", "-f", "-z", "-q", "-o", "-l",
		"-u", "-p", "-b", "-g", "-e",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.IntVar(&config.BcryptCost, "k", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.StorageBackend, "m", config.StorageBackend, "storage backend (disk|s3)")
	fs.StringVar(&config.UploadDir, "f", config.UploadDir, "upload directory")
	fs.Int64Var(&config.MaxUploadSize, "z", config.MaxUploadSize, "max upload size (bytes)")
	requireAuth := fs.String("q", strconv.FormatBool(config.RequireAuth), "require bearer token (true|false)")
	origins := fs.String("o", "", "comma separated CORS origins")
	fs.StringVar(&config.LogBackend, "l", config.LogBackend, "log backend (slog|zap)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
		}
	})

	b, err := strconv.ParseBool(*requireAuth)
	if err != nil {
		panic(err)
	}
	config.RequireAuth = b

	if *origins != "" {
		config.CORSAllowedOrigins = splitList(*origins)
	}
}
