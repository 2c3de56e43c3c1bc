// Package config handles configuration for the gateway server,
// including defaults, environment, a JSON overlay and command-line flags.
package config

import (
	"os"
	"time"
)

// Storage backends understood by repomanager.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendS3       = "s3"
)

// Config holds runtime settings for the gateway.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the webhook.
//   - EndpointAddrGRPC: bind address for the gRPC health endpoint.
//   - StorageBackend / DataDir / DatabaseDSN / SnapshotCodec: where and how
//     state snapshots are persisted.
//   - CatalogFile: JSON or YAML catalog served to verified users.
//   - MaxDaily / OneTimeCodeTTL / AdminBindCode / SuperAdminCodes: access rules.
//   - KeepAliveURL / KeepAliveInterval: optional self-ping.
//   - S3*: settings for the S3-compatible snapshot backend.
type Config struct {
	EndpointAddrHTTP  string
	EndpointAddrGRPC  string
	LogLevel          string
	StorageBackend    string
	DataDir           string
	DatabaseDSN       string
	SnapshotCodec     string
	CatalogFile       string
	MaxDaily          int
	OneTimeCodeTTL    time.Duration
	AdminBindCode     string
	SuperAdminCodes   []string
	KeepAliveURL      string
	KeepAliveInterval time.Duration
	S3RootUser        string
	S3RootPassword    string
	S3Bucket          string
	S3Region          string
	S3BaseEndpoint    string
}

// LoadDefaults populates Config with development defaults.
// NOTE: the bind codes are well known and must be overridden in production.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8000"
	c.EndpointAddrGRPC = ":50051"
	c.LogLevel = "info"
	c.StorageBackend = BackendFile
	c.DataDir = "data"
	c.DatabaseDSN = ""
	c.SnapshotCodec = "json"
	c.CatalogFile = "games.json"
	c.MaxDaily = 10
	c.OneTimeCodeTTL = 24 * time.Hour
	c.AdminBindCode = "asdfg123456"
	c.SuperAdminCodes = []string{"super123456"}
	c.KeepAliveURL = ""
	c.KeepAliveInterval = 5 * time.Minute
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "gatekeeper"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
}

// applyEnv honours the PORT variable set by most hosting platforms.
func applyEnv(c *Config) {
	if port := os.Getenv("PORT"); port != "" {
		c.EndpointAddrHTTP = ":" + port
	}
}

// LoadConfig builds a Config by applying defaults, the environment, an
// optional JSON file and finally command-line flags. Later sources win; a
// source that does not mention a field leaves it alone.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	applyEnv(cfg)
	if err := parseJson(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
