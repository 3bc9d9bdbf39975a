/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package link

import (
	"encoding/base64"

	"github.com/skip2/go-qrcode"
)

// DefaultQRSize is the PNG edge length in pixels.
const DefaultQRSize = 256

// QRPNG encodes content as a PNG QR code with medium error correction.
func QRPNG(content string, size int) ([]byte, error) {
	return qrcode.Encode(content, qrcode.Medium, size)
}

// QRBase64 is QRPNG as a base64 string, ready for a data: URL.
func QRBase64(content string, size int) (string, error) {
	png, err := QRPNG(content, size)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(png), nil
}

// QRFile writes the QR code PNG to filename.
func QRFile(content string, size int, filename string) error {
	return qrcode.WriteFile(content, qrcode.Medium, size, filename)
}

// QRTerminal renders the QR code with half-block characters for a terminal.
func QRTerminal(content string) (string, error) {
	q, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return "", err
	}
	return q.ToSmallString(false), nil
}
