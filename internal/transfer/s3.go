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

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"

	"github.com/gitrgoliveira/go-ghostbyte/internal/config"
)

type s3PutAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type s3PresignAPI interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Uploader stores envelopes in an S3-compatible bucket (AWS, Backblaze B2,
// Wasabi, ...) and shares them through presigned GET URLs.
type S3Uploader struct {
	bucket    string
	client    s3PutAPI
	presigner s3PresignAPI
	s         *settings
	logger    zerolog.Logger
}

// NewS3Uploader builds a client with static credentials. A custom Endpoint
// selects a non-AWS provider.
func NewS3Uploader(cfg config.S3Config, opts ...Option) (*S3Uploader, error) {
	s := newSettings(opts)

	awsCfg := aws.Config{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		HTTPClient:  s.httpClient,
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
		o.RetryMaxAttempts = 1
	})

	return newS3Uploader(cfg.Bucket, client, s3.NewPresignClient(client), s), nil
}

func newS3Uploader(bucket string, client s3PutAPI, presigner s3PresignAPI, s *settings) *S3Uploader {
	return &S3Uploader{
		bucket:    bucket,
		client:    client,
		presigner: presigner,
		s:         s,
		logger:    s.logger.With().Str("backend", "s3").Str("bucket", bucket).Logger(),
	}
}

func (u *S3Uploader) Upload(ctx context.Context, envelope []byte, originalName string) (*UploadResult, error) {
	key := objectKey(u.s.prefix)

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(envelope),
		ContentLength: aws.Int64(int64(len(envelope))),
		ContentType:   aws.String(contentType),
		ACL:           types.ObjectCannedACLPrivate,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: put s3://%s/%s: %w", ErrUploadFailed, u.bucket, key, err)
	}

	presigned, err := u.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(u.s.presignExpiry))
	if err != nil {
		return nil, fmt.Errorf("%w: presign s3://%s/%s: %w", ErrUploadFailed, u.bucket, key, err)
	}

	u.logger.Debug().Str("key", key).Int("bytes", len(envelope)).Msg("envelope uploaded")

	return &UploadResult{
		DownloadURL:  presigned.URL,
		OriginalName: originalName,
		ObjectKey:    key,
		Size:         int64(len(envelope)),
	}, nil
}
