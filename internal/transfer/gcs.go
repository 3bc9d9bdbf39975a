/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package transfer

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/gitrgoliveira/go-ghostbyte/internal/config"
)

// GCSUploader stores envelopes in a Google Cloud Storage bucket. The bucket
// is expected to serve objects publicly; the returned URL is the plain object URL.
type GCSUploader struct {
	bucket    string
	newWriter func(ctx context.Context, object string) io.WriteCloser
	client    *storage.Client
	s         *settings
	logger    zerolog.Logger
}

// NewGCSUploader uses CredentialsFile when set and application default
// credentials otherwise.
func NewGCSUploader(ctx context.Context, cfg config.GCSConfig, opts ...Option) (*GCSUploader, error) {
	s := newSettings(opts)

	var clientOpts []option.ClientOption
	if cfg.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}

	bucket := client.Bucket(cfg.Bucket)
	u := newGCSUploader(cfg.Bucket, func(ctx context.Context, object string) io.WriteCloser {
		w := bucket.Object(object).Retryer(storage.WithPolicy(storage.RetryNever)).NewWriter(ctx)
		w.ContentType = contentType
		return w
	}, s)
	u.client = client
	return u, nil
}

func newGCSUploader(bucket string, newWriter func(context.Context, string) io.WriteCloser, s *settings) *GCSUploader {
	return &GCSUploader{
		bucket:    bucket,
		newWriter: newWriter,
		s:         s,
		logger:    s.logger.With().Str("backend", "gcs").Str("bucket", bucket).Logger(),
	}
}

func (u *GCSUploader) Upload(ctx context.Context, envelope []byte, originalName string) (*UploadResult, error) {
	key := objectKey(u.s.prefix)

	// A canceled ctx aborts the writer; Close then reports the failure.
	w := u.newWriter(ctx, key)
	if _, err := w.Write(envelope); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("%w: write gs://%s/%s: %w", ErrUploadFailed, u.bucket, key, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: finalize gs://%s/%s: %w", ErrUploadFailed, u.bucket, key, err)
	}

	u.logger.Debug().Str("key", key).Int("bytes", len(envelope)).Msg("envelope uploaded")

	return &UploadResult{
		DownloadURL:  gcsObjectURL(u.bucket, key),
		OriginalName: originalName,
		ObjectKey:    key,
		Size:         int64(len(envelope)),
	}, nil
}

// Close releases the underlying client.
func (u *GCSUploader) Close() error {
	if u.client == nil {
		return nil
	}
	return u.client.Close()
}

func gcsObjectURL(bucket, key string) string {
	return (&url.URL{Scheme: "https", Host: config.GCSHost, Path: "/" + bucket + "/" + key}).String()
}
