/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package ghostbyte_test

import (
	"crypto/sha256"
	"os"
	"testing"

	"golang.org/x/crypto/pbkdf2"

	"github.com/gitrgoliveira/go-ghostbyte"
)

// quickKDF runs PBKDF2 at one iteration for tests that do many round trips.
var quickKDF = ghostbyte.WithKeyDerivation(func(password, salt []byte, _ int, keyLen int) ([]byte, error) {
	return pbkdf2.Key(password, salt, 1, keyLen, sha256.New), nil
})

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
}
