package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/posqueue/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string    address:port of the intake gRPC server
//	-u string    intake REST base URL
//	-t string    transport: grpc or rest
//	-d string    local database file
//	-i int       online check interval (seconds)
//	-s duration  background sync interval
//	-r int       delivery attempts before an order is parked as failed
//	-l string    log level
//
// os.Args is filtered with flagx.FilterArgs so flags owned by other
// components do not break parsing.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-u", "-t", "-d", "-i", "-s", "-r", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.RestBaseURL, "u", cfg.RestBaseURL, "REST base URL of the server")
	fs.StringVar(&cfg.Transport, "t", cfg.Transport, "transport: grpc or rest")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database file")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.DurationVar(&cfg.SyncInterval, "s", cfg.SyncInterval, "background sync interval")
	fs.IntVar(&cfg.MaxRetries, "r", cfg.MaxRetries, "delivery attempts per order")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
