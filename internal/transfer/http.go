/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gitrgoliveira/go-ghostbyte/internal/link"
)

// maxResponseBody bounds the JSON read back from the upload API.
const maxResponseBody = 1 << 20

// HTTPUploader posts envelopes to the GhostByte upload API, which stores them
// and answers with a public download URL.
type HTTPUploader struct {
	endpoint string
	client   *http.Client
	logger   zerolog.Logger
}

// NewHTTPUploader targets <apiURL>/upload.
func NewHTTPUploader(apiURL string, opts ...Option) *HTTPUploader {
	s := newSettings(opts)
	return &HTTPUploader{
		endpoint: strings.TrimRight(apiURL, "/") + "/upload",
		client:   s.httpClient,
		logger:   s.logger.With().Str("backend", "http").Logger(),
	}
}

type uploadResponse struct {
	DownloadURL string `json:"downloadUrl"`
}

// Upload sends a multipart form with the envelope in "file" and the original
// name in "filename".
func (u *HTTPUploader) Upload(ctx context.Context, envelope []byte, originalName string) (*UploadResult, error) {
	body := new(bytes.Buffer)
	form := multipart.NewWriter(body)

	part, err := form.CreateFormFile("file", link.EnvelopeName(originalName))
	if err != nil {
		return nil, fmt.Errorf("%w: build form: %w", ErrUploadFailed, err)
	}
	if _, err := part.Write(envelope); err != nil {
		return nil, fmt.Errorf("%w: build form: %w", ErrUploadFailed, err)
	}
	if err := form.WriteField("filename", originalName); err != nil {
		return nil, fmt.Errorf("%w: build form: %w", ErrUploadFailed, err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("%w: build form: %w", ErrUploadFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrUploadFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		u.logger.Warn().Int("status", resp.StatusCode).Msg("upload rejected")
		return nil, fmt.Errorf("%w: server returned %s", ErrUploadFailed, resp.Status)
	}

	var out uploadResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrUploadFailed, err)
	}
	if out.DownloadURL == "" {
		return nil, ErrNoDownloadURL
	}

	u.logger.Debug().
		Int("bytes", len(envelope)).
		Dur("elapsed", time.Since(start)).
		Msg("envelope uploaded")

	return &UploadResult{
		DownloadURL:  out.DownloadURL,
		OriginalName: originalName,
		Size:         int64(len(envelope)),
	}, nil
}
