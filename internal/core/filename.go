/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package core

import (
	"strings"
	"unicode"
)

// DefaultFilename is used when an envelope's filename is empty or unusable.
const DefaultFilename = "decrypted-file"

// maxSafeFilename keeps names within common filesystem limits (255 bytes).
const maxSafeFilename = 255

// SafeFilename turns the untrusted filename stored in an envelope into a
// single path element. Directory parts and control characters are stripped
// and anything left empty becomes DefaultFilename. Windows device names such
// as CON or LPT1 get a leading underscore.
func SafeFilename(name string) string {
	name = strings.ToValidUTF8(name, "")
	// Both separators, whatever the host OS.
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || strings.ContainsRune(`<>:"|?*`, r) {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	name = strings.TrimRight(name, ". ")

	if name == "" || name == "." || name == ".." {
		return DefaultFilename
	}

	if isDeviceName(name) {
		name = "_" + name
	}
	if len(name) > maxSafeFilename {
		name = truncateUTF8(name, maxSafeFilename)
	}
	return name
}

// isDeviceName reports whether Windows would open a device instead of a file
// for name. The check applies to the part before the first dot, so "nul.txt"
// counts as well.
func isDeviceName(name string) bool {
	stem, _, _ := strings.Cut(name, ".")
	stem = strings.ToUpper(strings.TrimRight(stem, " "))
	switch stem {
	case "CON", "PRN", "AUX", "NUL", "CONIN$", "CONOUT$":
		return true
	}
	if len(stem) == 4 && (strings.HasPrefix(stem, "COM") || strings.HasPrefix(stem, "LPT")) {
		return stem[3] >= '1' && stem[3] <= '9'
	}
	return false
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
