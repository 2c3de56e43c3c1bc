package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gatekeeper/internal/flagx"
	"github.com/dmitrijs2005/gatekeeper/internal/timex"
	"github.com/tidwall/jsonc"
)

// JsonConfig is the on-disk shape of the configuration file. Durations accept
// both "10s" strings and integer nanoseconds. Absent fields keep the values
// already present in Config.
type JsonConfig struct {
	EndpointAddrHTTP  string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC  string         `json:"endpoint_addr_grpc"`
	LogLevel          string         `json:"log_level"`
	StorageBackend    string         `json:"storage_backend"`
	DataDir           string         `json:"data_dir"`
	DatabaseDSN       string         `json:"database_dsn"`
	SnapshotCodec     string         `json:"snapshot_codec"`
	CatalogFile       string         `json:"catalog_file"`
	MaxDaily          int            `json:"max_daily"`
	OneTimeCodeTTL    timex.Duration `json:"one_time_code_ttl"`
	AdminBindCode     string         `json:"admin_bind_code"`
	SuperAdminCodes   []string       `json:"super_admin_codes"`
	KeepAliveURL      string         `json:"keep_alive_url"`
	KeepAliveInterval timex.Duration `json:"keep_alive_interval"`
	S3RootUser        string         `json:"s3_root_user"`
	S3RootPassword    string         `json:"s3_root_password"`
	S3Bucket          string         `json:"s3_bucket"`
	S3Region          string         `json:"s3_region"`
	S3BaseEndpoint    string         `json:"s3_base_endpoint"`
}

// parseJson overlays values from the file named by -c/-config. Comments and
// trailing commas are stripped before decoding. A missing flag means no file
// is read; an unreadable or invalid file is returned as an error.
func parseJson(config *Config) error {
	path := flagx.ConfigFilePath()
	if path == "" {
		return nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(jsonc.ToJSON(raw), c); err != nil {
		return fmt.Errorf("error parsing config file %s: %w", path, err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.StorageBackend, c.StorageBackend)
	setString(&config.DataDir, c.DataDir)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SnapshotCodec, c.SnapshotCodec)
	setString(&config.CatalogFile, c.CatalogFile)
	setString(&config.AdminBindCode, c.AdminBindCode)
	setString(&config.KeepAliveURL, c.KeepAliveURL)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.MaxDaily > 0 {
		config.MaxDaily = c.MaxDaily
	}
	if c.OneTimeCodeTTL.Duration > 0 {
		config.OneTimeCodeTTL = c.OneTimeCodeTTL.Duration
	}
	if c.KeepAliveInterval.Duration > 0 {
		config.KeepAliveInterval = c.KeepAliveInterval.Duration
	}
	if len(c.SuperAdminCodes) > 0 {
		config.SuperAdminCodes = c.SuperAdminCodes
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
