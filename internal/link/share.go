/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package link

import (
	"net/url"
	"strings"
)

// DefaultDecryptPage is the hosted page that decrypts envelopes in the browser.
const DefaultDecryptPage = "https://ghostbyte-mubi.vercel.app/decrypt"

// ShareURL points the decrypt page at downloadURL through its download query
// parameter. An empty downloadURL yields the bare page.
func ShareURL(decryptPage, downloadURL string) string {
	if decryptPage == "" {
		decryptPage = DefaultDecryptPage
	}
	if downloadURL == "" {
		return decryptPage
	}
	u, err := url.Parse(decryptPage)
	if err != nil {
		return decryptPage + "?download=" + url.QueryEscape(downloadURL)
	}
	q := u.Query()
	q.Set("download", downloadURL)
	u.RawQuery = q.Encode()
	return u.String()
}

// Share is what a recipient needs to open an uploaded envelope.
type Share struct {
	DownloadURL string
	DecryptPage string
	// Password is included in the message only when set. Sending it over
	// another channel is safer.
	Password string
}

// Message renders the text a sender pastes into a chat or email.
func (s Share) Message() string {
	page := s.DecryptPage
	if page == "" {
		page = DefaultDecryptPage
	}

	var b strings.Builder
	b.WriteString("ENCRYPTED FILE FROM GHOSTBYTE\n\n")
	b.WriteString("DIRECT DOWNLOAD (Encrypted File):\n")
	b.WriteString(s.DownloadURL + "\n")
	b.WriteString("Click to download the encrypted .gbyte file\n\n")
	b.WriteString("DECRYPT ONLINE:\n")
	b.WriteString(page + "\n")
	b.WriteString("Paste the download link above and enter password\n\n")
	if s.Password != "" {
		b.WriteString("PASSWORD: " + s.Password + "\n\n")
	} else {
		b.WriteString("PASSWORD: sent separately\n\n")
	}
	b.WriteString("----------------------------------------\n")
	b.WriteString("IMPORTANT INSTRUCTIONS:\n\n")
	b.WriteString("Option 1 - Direct Download:\n")
	b.WriteString("• Click the download link to get the .gbyte file\n")
	b.WriteString("• Go to " + page + "\n")
	b.WriteString("• Upload the .gbyte file and enter password\n\n")
	b.WriteString("Option 2 - Paste Link:\n")
	b.WriteString("• Go to " + page + "\n")
	b.WriteString("• Paste the download link in the URL field\n")
	b.WriteString("• Enter password to decrypt\n\n")
	b.WriteString("Keep this password safe. Without it, the file cannot be decrypted.\n")
	b.WriteString("----------------------------------------")
	return b.String()
}
