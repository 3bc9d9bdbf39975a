/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// Package config loads gbyte settings from defaults, an optional config file,
// a .env file, GHOSTBYTE_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/gitrgoliveira/go-ghostbyte/internal/core"
	"github.com/gitrgoliveira/go-ghostbyte/internal/link"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "GHOSTBYTE"

// LegacyAPIURLEnv is the variable the browser build reads its upload API from.
const LegacyAPIURLEnv = "REACT_APP_API_URL"

// Storage backends.
const (
	BackendHTTP  = "http"
	BackendS3    = "s3"
	BackendGCS   = "gcs"
	BackendMinio = "minio"
)

type Config struct {
	APIURL         string        `mapstructure:"api_url" validate:"omitempty,url"`
	Backend        string        `mapstructure:"backend" validate:"oneof=http s3 gcs minio"`
	DecryptPageURL string        `mapstructure:"decrypt_page_url" validate:"required,url"`
	AllowedDomains []string      `mapstructure:"allowed_domains" validate:"required,min=1,dive,hostname_rfc1123"`
	SizeLimit      string        `mapstructure:"size_limit"`
	Timeout        time.Duration `mapstructure:"timeout" validate:"gt=0"`

	Log   LogConfig   `mapstructure:"log"`
	S3    S3Config    `mapstructure:"s3" validate:"-"`
	GCS   GCSConfig   `mapstructure:"gcs" validate:"-"`
	Minio MinioConfig `mapstructure:"minio" validate:"-"`

	// MaxSize is SizeLimit in bytes, filled in by Load.
	MaxSize int64 `mapstructure:"-"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
}

// S3Config addresses any S3-compatible store, Backblaze B2 included.
type S3Config struct {
	Endpoint      string        `mapstructure:"endpoint" validate:"omitempty,url"`
	Region        string        `mapstructure:"region" validate:"required"`
	Bucket        string        `mapstructure:"bucket" validate:"required"`
	AccessKey     string        `mapstructure:"access_key" validate:"required"`
	SecretKey     string        `mapstructure:"secret_key" validate:"required"`
	Prefix        string        `mapstructure:"prefix"`
	PathStyle     bool          `mapstructure:"path_style"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry" validate:"gt=0,max=168h"`
}

type GCSConfig struct {
	Bucket          string `mapstructure:"bucket" validate:"required"`
	CredentialsFile string `mapstructure:"credentials_file" validate:"omitempty,file"`
	Prefix          string `mapstructure:"prefix"`
}

type MinioConfig struct {
	Endpoint      string        `mapstructure:"endpoint" validate:"required"`
	Region        string        `mapstructure:"region"`
	Bucket        string        `mapstructure:"bucket" validate:"required"`
	AccessKey     string        `mapstructure:"access_key" validate:"required"`
	SecretKey     string        `mapstructure:"secret_key" validate:"required"`
	UseSSL        bool          `mapstructure:"use_ssl"`
	Prefix        string        `mapstructure:"prefix"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry" validate:"gt=0,max=168h"`
}

// Options tells Load where to look.
type Options struct {
	// ConfigFile is read if set; a missing file is an error. Otherwise
	// ghostbyte.{yaml,json,toml} is searched for in the working directory
	// and the user config directory.
	ConfigFile string
	// EnvFile defaults to ".env". A missing file is ignored.
	EnvFile string
	// Flags, if set, override every other source for the keys in FlagKeys.
	Flags *pflag.FlagSet
}

// FlagKeys maps command-line flag names to config keys.
var FlagKeys = map[string]string{
	"api-url":    "api_url",
	"backend":    "backend",
	"size-limit": "size_limit",
	"timeout":    "timeout",
	"log-level":  "log.level",
	"log-format": "log.format",
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_url", "")
	v.SetDefault("backend", BackendHTTP)
	v.SetDefault("decrypt_page_url", link.DefaultDecryptPage)
	v.SetDefault("allowed_domains", link.DefaultAllowedDomains)
	v.SetDefault("size_limit", "")
	v.SetDefault("timeout", 5*time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.prefix", "")
	v.SetDefault("s3.path_style", false)
	v.SetDefault("s3.presign_expiry", 24*time.Hour)

	v.SetDefault("gcs.bucket", "")
	v.SetDefault("gcs.credentials_file", "")
	v.SetDefault("gcs.prefix", "")

	v.SetDefault("minio.endpoint", "")
	v.SetDefault("minio.region", "us-east-1")
	v.SetDefault("minio.bucket", "")
	v.SetDefault("minio.access_key", "")
	v.SetDefault("minio.secret_key", "")
	v.SetDefault("minio.use_ssl", true)
	v.SetDefault("minio.prefix", "")
	v.SetDefault("minio.presign_expiry", 24*time.Hour)
}

// Load assembles and validates the configuration.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("api_url", EnvPrefix+"_API_URL", LegacyAPIURLEnv); err != nil {
		return nil, err
	}

	if err := readConfigFile(v, opts.ConfigFile); err != nil {
		return nil, err
	}

	if opts.Flags != nil {
		for flag, key := range FlagKeys {
			if f := opts.Flags.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", flag, err)
				}
			}
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config parse error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	maxSize, err := parseSizeLimit(cfg.SizeLimit)
	if err != nil {
		return nil, err
	}
	cfg.MaxSize = maxSize
	return cfg, nil
}

func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file: %w", err)
		}
		return nil
	}

	v.SetConfigName("ghostbyte")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "ghostbyte"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	return nil
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// ValidateBackend checks the settings of the selected upload backend only.
func (c *Config) ValidateBackend() error {
	var err error
	switch c.Backend {
	case BackendHTTP:
		if c.APIURL == "" {
			err = fmt.Errorf("api_url is required (set %s_API_URL or %s)", EnvPrefix, LegacyAPIURLEnv)
		}
	case BackendS3:
		err = validate.Struct(c.S3)
	case BackendGCS:
		err = validate.Struct(c.GCS)
	case BackendMinio:
		err = validate.Struct(c.Minio)
	default:
		err = fmt.Errorf("unknown backend %q", c.Backend)
	}
	if err != nil {
		return fmt.Errorf("config validation failed for %s backend: %w", c.Backend, err)
	}
	return nil
}

// DownloadDomains is AllowedDomains plus the hosts that links from the
// configured S3, GCS and MinIO buckets are served from, so decrypt accepts
// what upload prints.
func (c *Config) DownloadDomains() []string {
	domains := slices.Clone(c.AllowedDomains)
	if c.S3.Bucket != "" {
		if host := s3Host(c.S3); host != "" {
			domains = append(domains, host)
		}
	}
	if c.GCS.Bucket != "" {
		domains = append(domains, GCSHost)
	}
	if c.Minio.Bucket != "" && c.Minio.Endpoint != "" {
		host := c.Minio.Endpoint
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		domains = append(domains, host)
	}
	return domains
}

// GCSHost serves public Cloud Storage objects.
const GCSHost = "storage.googleapis.com"

// s3Host is the host presigned URLs for cfg point at. Virtual-hosted links
// live on a subdomain of the endpoint host.
func s3Host(cfg S3Config) string {
	if cfg.Endpoint != "" {
		u, err := url.Parse(cfg.Endpoint)
		if err != nil {
			return ""
		}
		return u.Hostname()
	}
	if cfg.PathStyle {
		return "s3." + cfg.Region + ".amazonaws.com"
	}
	return cfg.Bucket + ".s3." + cfg.Region + ".amazonaws.com"
}

// parseSizeLimit reads a humanized byte count; empty falls back to the
// codec's own environment variable and default.
func parseSizeLimit(s string) (int64, error) {
	if strings.TrimSpace(s) == "" {
		return core.MaxSizeFromEnv()
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size_limit %q: %w", s, err)
	}
	if n == 0 || n > math.MaxInt64 {
		return 0, fmt.Errorf("invalid size_limit %q: out of range", s)
	}
	return int64(n), nil
}
