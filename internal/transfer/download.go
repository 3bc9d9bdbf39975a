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
	"math"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/gitrgoliveira/go-ghostbyte/internal/core"
	crypto "github.com/gitrgoliveira/go-ghostbyte/internal/crypto"
	"github.com/gitrgoliveira/go-ghostbyte/internal/link"
)

// Downloader fetches envelopes from validated share links.
type Downloader struct {
	validator *link.Validator
	client    *http.Client
	maxBytes  int64
	logger    zerolog.Logger
}

// NewDownloader accepts links the validator allows and envelopes that can
// carry at most maxSize bytes of plaintext.
func NewDownloader(validator *link.Validator, maxSize int64, opts ...Option) *Downloader {
	s := newSettings(opts)
	if validator == nil {
		validator = link.NewValidator()
	}
	return &Downloader{
		validator: validator,
		client:    s.httpClient,
		maxBytes:  core.MaxEnvelopeSize(maxSize),
		logger:    s.logger.With().Str("component", "download").Logger(),
	}
}

// Download validates rawURL and fetches it with a single GET.
func (d *Downloader) Download(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := d.validator.ValidateDownloadURL(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}

	start := time.Now()
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: server returned %s", ErrDownloadFailed, resp.Status)
	}
	if resp.ContentLength > d.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", crypto.ErrTooLarge, resp.ContentLength)
	}

	n := d.maxBytes
	if n < math.MaxInt64 {
		n++
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, n))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrDownloadFailed, err)
	}
	if int64(len(data)) > d.maxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", crypto.ErrTooLarge, d.maxBytes)
	}

	d.logger.Debug().
		Str("host", u.Host).
		Int("bytes", len(data)).
		Dur("elapsed", time.Since(start)).
		Msg("envelope downloaded")
	return data, nil
}
