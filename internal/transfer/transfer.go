/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// Package transfer moves sealed envelopes to and from remote storage. Only
// ciphertext ever leaves the process: callers hand over envelope bytes, never
// plaintext or passwords.
//
// Every transfer is a single attempt. There is no retry, chunking or resume.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gitrgoliveira/go-ghostbyte/internal/config"
	"github.com/gitrgoliveira/go-ghostbyte/internal/core"
)

var (
	ErrUploadFailed   = errors.New("upload failed")
	ErrNoDownloadURL  = errors.New("upload response has no download URL")
	ErrDownloadFailed = errors.New("download failed")
)

// Uploader stores one envelope and returns where it can be fetched.
type Uploader interface {
	Upload(ctx context.Context, envelope []byte, originalName string) (*UploadResult, error)
}

type UploadResult struct {
	DownloadURL  string
	OriginalName string
	// ObjectKey is the storage key; empty for the HTTP backend.
	ObjectKey string
	Size      int64
}

const contentType = "application/octet-stream"

// Option configures an Uploader or Downloader.
type Option func(*settings)

type settings struct {
	logger        zerolog.Logger
	httpClient    *http.Client
	presignExpiry time.Duration
	prefix        string
}

func newSettings(opts []Option) *settings {
	s := &settings{
		logger:        zerolog.Nop(),
		httpClient:    http.DefaultClient,
		presignExpiry: 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) {
		if c != nil {
			s.httpClient = c
		}
	}
}

// WithPresignExpiry sets how long presigned download URLs stay valid.
func WithPresignExpiry(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.presignExpiry = d
		}
	}
}

// WithPrefix places objects under a key prefix, e.g. "uploads/".
func WithPrefix(p string) Option {
	return func(s *settings) { s.prefix = p }
}

// objectKey is random so the original filename never appears in storage.
func objectKey(prefix string) string {
	return path.Join(prefix, uuid.NewString()+core.FileExtension)
}

// NewUploader builds the Uploader selected by cfg.Backend.
func NewUploader(ctx context.Context, cfg *config.Config, opts ...Option) (Uploader, error) {
	if err := cfg.ValidateBackend(); err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case config.BackendHTTP:
		return NewHTTPUploader(cfg.APIURL, opts...), nil
	case config.BackendS3:
		opts = append([]Option{WithPrefix(cfg.S3.Prefix), WithPresignExpiry(cfg.S3.PresignExpiry)}, opts...)
		return NewS3Uploader(cfg.S3, opts...)
	case config.BackendGCS:
		opts = append([]Option{WithPrefix(cfg.GCS.Prefix)}, opts...)
		return NewGCSUploader(ctx, cfg.GCS, opts...)
	case config.BackendMinio:
		opts = append([]Option{WithPrefix(cfg.Minio.Prefix), WithPresignExpiry(cfg.Minio.PresignExpiry)}, opts...)
		return NewMinioUploader(cfg.Minio, opts...)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
