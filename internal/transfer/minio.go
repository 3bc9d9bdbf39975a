/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package transfer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"github.com/gitrgoliveira/go-ghostbyte/internal/config"
)

type minioAPI interface {
	PutObject(ctx context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	PresignedGetObject(ctx context.Context, bucket, object string, expires time.Duration, params url.Values) (*url.URL, error)
}

// MinioUploader stores envelopes on a MinIO server and shares them through
// presigned GET URLs.
type MinioUploader struct {
	bucket string
	client minioAPI
	s      *settings
	logger zerolog.Logger
}

func NewMinioUploader(cfg config.MinioConfig, opts ...Option) (*MinioUploader, error) {
	s := newSettings(opts)

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: s.httpClient.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return newMinioUploader(cfg.Bucket, client, s), nil
}

func newMinioUploader(bucket string, client minioAPI, s *settings) *MinioUploader {
	return &MinioUploader{
		bucket: bucket,
		client: client,
		s:      s,
		logger: s.logger.With().Str("backend", "minio").Str("bucket", bucket).Logger(),
	}
}

func (u *MinioUploader) Upload(ctx context.Context, envelope []byte, originalName string) (*UploadResult, error) {
	key := objectKey(u.s.prefix)

	info, err := u.client.PutObject(ctx, u.bucket, key, bytes.NewReader(envelope), int64(len(envelope)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return nil, fmt.Errorf("%w: put %s/%s: %w", ErrUploadFailed, u.bucket, key, err)
	}

	presigned, err := u.client.PresignedGetObject(ctx, u.bucket, key, u.s.presignExpiry, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: presign %s/%s: %w", ErrUploadFailed, u.bucket, key, err)
	}

	u.logger.Debug().Str("key", key).Str("etag", info.ETag).Int("bytes", len(envelope)).Msg("envelope uploaded")

	return &UploadResult{
		DownloadURL:  presigned.String(),
		OriginalName: originalName,
		ObjectKey:    key,
		Size:         int64(len(envelope)),
	}, nil
}
