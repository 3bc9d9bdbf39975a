/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// Package link validates where envelopes may be fetched from and builds the
// text, URLs and QR codes used to share them.
package link

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/gitrgoliveira/go-ghostbyte/internal/core"
)

// DefaultAllowedDomains are the storage hosts upload links are served from.
var DefaultAllowedDomains = []string{"supabase.co", "supabase.com"}

var (
	ErrInvalidURL       = errors.New("invalid download URL")
	ErrDomainNotAllowed = errors.New("download host not allowed")
	ErrNotEnvelope      = errors.New("not a .gbyte file")
)

// Validator checks download links and local paths before any bytes are read.
type Validator struct {
	allowed []string
}

// NewValidator returns a Validator accepting the given domains and their
// subdomains. No domains means DefaultAllowedDomains.
func NewValidator(domains ...string) *Validator {
	if len(domains) == 0 {
		domains = DefaultAllowedDomains
	}
	allowed := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.Trim(strings.TrimSpace(d), "."))
		if d != "" {
			allowed = append(allowed, d)
		}
	}
	return &Validator{allowed: allowed}
}

// ValidateDownloadURL accepts http(s) URLs on an allowed host whose path
// ends in .gbyte.
func (v *Validator) ValidateDownloadURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, fmt.Errorf("%w: scheme must be http or https", ErrInvalidURL)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	if !v.hostAllowed(u.Hostname()) {
		return nil, fmt.Errorf("%w: %s", ErrDomainNotAllowed, u.Hostname())
	}
	if !strings.HasSuffix(strings.ToLower(u.Path), core.FileExtension) {
		return nil, fmt.Errorf("%w: %s", ErrNotEnvelope, path.Base(u.Path))
	}
	return u, nil
}

// hostAllowed matches the host exactly or as a subdomain, so
// "supabase.co.evil.com" is rejected.
func (v *Validator) hostAllowed(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	for _, d := range v.allowed {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// ValidateEnvelopePath requires the .gbyte extension on a local file.
func ValidateEnvelopePath(p string) error {
	if !strings.EqualFold(filepath.Ext(p), core.FileExtension) {
		return fmt.Errorf("%w: %s", ErrNotEnvelope, filepath.Base(p))
	}
	return nil
}

// EnvelopeName is the name an encrypted copy of originalName is stored under.
func EnvelopeName(originalName string) string {
	return core.SafeFilename(originalName) + core.FileExtension
}

// HumanSize formats a byte count for display, e.g. "1.5 MiB".
func HumanSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}
