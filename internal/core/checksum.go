/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/gitrgoliveira/go-ghostbyte/secure"
)

// Checksum returns the SHA-256 of an envelope held in memory.
func Checksum(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// ChecksumHex returns Checksum as a lowercase hex string.
func ChecksumHex(data []byte) string {
	return hex.EncodeToString(Checksum(data))
}

// CalculateChecksum computes the SHA-256 checksum of a file.
func CalculateChecksum(path string) ([]byte, error) {
	// #nosec G304 -- file path provided by caller, library is designed for file operations
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

// CalculateChecksumHex computes the SHA-256 checksum of a file and returns it as hex string.
func CalculateChecksumHex(path string) (string, error) {
	sum, err := CalculateChecksum(path)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sum), nil
}

// VerifyChecksumHex reports whether data hashes to the hex-encoded hexSum.
func VerifyChecksumHex(data []byte, hexSum string) (bool, error) {
	sum, err := hex.DecodeString(hexSum)
	if err != nil {
		return false, fmt.Errorf("invalid hex checksum: %w", err)
	}
	return secure.Equal(Checksum(data), sum), nil
}
