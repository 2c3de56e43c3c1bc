package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/flagx"
)

var serverFlags = []string{"-a", "-g", "-l", "-s", "-d", "-n", "-k", "-f", "-m", "-t", "-b", "-u", "-p", "-i"}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   webhook bind address (e.g., ":8000")
//	-g string   gRPC health bind address (e.g., ":50051")
//	-l string   log level (debug, info, warn, error)
//	-s string   storage backend (file, memory, postgres, sqlite, s3)
//	-d string   data directory for the file backend
//	-n string   database DSN for postgres/sqlite
//	-k string   snapshot codec (json, cbor)
//	-f string   catalog file (JSON or YAML)
//	-m int      daily query quota per verified user
//	-t int      one-time code validity, minutes
//	-b string   admin bind code
//	-u string   comma separated super-admin codes
//	-p string   keep-alive URL (empty disables)
//	-i int      keep-alive interval, seconds
//
// Fields whose flag is absent keep the value they already had, so durations
// set in the JSON file are never rounded to the flag's unit. A malformed
// flag is returned as an error.
func parseFlags(config *Config) error {
	args := flagx.FilterArgs(os.Args[1:], serverFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "webhook address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC health address and port")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.StorageBackend, "s", config.StorageBackend, "storage backend")
	fs.StringVar(&config.DataDir, "d", config.DataDir, "data directory")
	fs.StringVar(&config.DatabaseDSN, "n", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SnapshotCodec, "k", config.SnapshotCodec, "snapshot codec")
	fs.StringVar(&config.CatalogFile, "f", config.CatalogFile, "catalog file")
	fs.IntVar(&config.MaxDaily, "m", config.MaxDaily, "daily query quota")

	ttl := fs.Int("t", int(config.OneTimeCodeTTL.Minutes()), "one-time code validity (in minutes)")

	fs.StringVar(&config.AdminBindCode, "b", config.AdminBindCode, "admin bind code")
	superCodes := fs.String("u", strings.Join(config.SuperAdminCodes, ","), "super-admin codes, comma separated")
	fs.StringVar(&config.KeepAliveURL, "p", config.KeepAliveURL, "keep-alive URL")
	interval := fs.Int("i", int(config.KeepAliveInterval.Seconds()), "keep-alive interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("error parsing flags: %w", err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.OneTimeCodeTTL = time.Duration(*ttl) * time.Minute
		case "u":
			config.SuperAdminCodes = flagx.SplitList(*superCodes)
		case "i":
			config.KeepAliveInterval = time.Duration(*interval) * time.Second
		}
	})

	return nil
}
