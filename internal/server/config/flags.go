package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/posqueue/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-h string   REST bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-u string   bootstrap user name
//	-p string   bootstrap user password
//	-l string   log level
//
// os.Args is filtered with flagx.FilterArgs first, so flags owned by other
// components do not collide.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-h", "-d", "-s", "-t", "-u", "-p", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run gRPC server")
	fs.StringVar(&config.EndpointAddrHTTP, "h", config.EndpointAddrHTTP, "address and port to run REST server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.StringVar(&config.BootstrapUser, "u", config.BootstrapUser, "bootstrap user name")
	fs.StringVar(&config.BootstrapPassword, "p", config.BootstrapPassword, "bootstrap user password")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
}
