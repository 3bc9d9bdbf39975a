/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package ghostbyte_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gitrgoliveira/go-ghostbyte"
)

func TestIntegration_HelloWorld(t *testing.T) {
	ctx := context.Background()

	envelope, err := ghostbyte.EncryptFile(ctx, []byte("hello world"), "Str0ngPass!", "notes.txt")
	if err != nil {
		t.Fatalf("Encryption failed: %v", err)
	}
	if len(envelope) != ghostbyte.HeaderSize+9+11+ghostbyte.TagSize {
		t.Errorf("envelope is %d bytes, want 66", len(envelope))
	}

	payload, err := ghostbyte.DecryptFile(ctx, envelope, "Str0ngPass!")
	if err != nil {
		t.Fatalf("Decryption failed: %v", err)
	}
	if payload.OriginalFilename != "notes.txt" || string(payload.Plaintext) != "hello world" {
		t.Errorf("unexpected payload %q / %q", payload.OriginalFilename, payload.Plaintext)
	}

	// Decryption has no side effects and can be repeated.
	again, err := ghostbyte.DecryptFile(ctx, envelope, "Str0ngPass!")
	if err != nil || !bytes.Equal(again.Plaintext, payload.Plaintext) {
		t.Errorf("second decryption differs: %v", err)
	}
}

func TestIntegration_Inspect(t *testing.T) {
	envelope, err := ghostbyte.EncryptFile(context.Background(), make([]byte, 100), "pw", "report.pdf", quickKDF)
	if err != nil {
		t.Fatal(err)
	}

	env, err := ghostbyte.Inspect(envelope)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if env.Filename != "report.pdf" || env.PlaintextLen() != 100 {
		t.Errorf("unexpected header: %q, %d", env.Filename, env.PlaintextLen())
	}
	if !bytes.Equal(env.Salt, envelope[:ghostbyte.SaltSize]) {
		t.Error("salt not read from offset 0")
	}
}

func TestIntegration_PathWorkflow(t *testing.T) {
	tmpDir := t.TempDir()
	ctx := context.Background()

	srcPath := filepath.Join(tmpDir, "test.txt")
	plaintext := []byte("Integration test data for full workflow")
	writeFile(t, srcPath, plaintext)

	encPath := srcPath + ghostbyte.FileExtension
	if err := ghostbyte.EncryptPath(ctx, srcPath, encPath, "Str0ngPass!"); err != nil {
		t.Fatalf("Encryption failed: %v", err)
	}

	sum, err := ghostbyte.CalculateChecksumHex(encPath)
	if err != nil {
		t.Fatal(err)
	}
	envelope, err := os.ReadFile(encPath)
	if err != nil {
		t.Fatal(err)
	}
	if ok, err := ghostbyte.VerifyChecksumHex(envelope, sum); err != nil || !ok {
		t.Errorf("checksum verification failed: %v", err)
	}

	outDir := filepath.Join(tmpDir, "out")
	if err := os.Mkdir(outDir, 0700); err != nil {
		t.Fatal(err)
	}
	written, err := ghostbyte.DecryptPath(ctx, encPath, outDir, "Str0ngPass!")
	if err != nil {
		t.Fatalf("Decryption failed: %v", err)
	}
	if filepath.Base(written) != "test.txt" {
		t.Errorf("written as %s", written)
	}

	decrypted, err := os.ReadFile(written)
	if err != nil {
		t.Fatalf("Failed to read decrypted file: %v", err)
	}
	if !bytes.Equal(plaintext, decrypted) {
		t.Error("Decrypted data doesn't match original")
	}
}

func TestIntegration_LargePayload(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping large payload test in short mode")
	}

	plaintext := make([]byte, 8<<20)
	if _, err := rand.Read(plaintext); err != nil {
		t.Fatal(err)
	}

	envelope, err := ghostbyte.EncryptFile(context.Background(), plaintext, "pw", "big.bin", quickKDF)
	if err != nil {
		t.Fatalf("Encryption failed: %v", err)
	}
	payload, err := ghostbyte.DecryptFile(context.Background(), envelope, "pw", quickKDF)
	if err != nil {
		t.Fatalf("Decryption failed: %v", err)
	}
	if !bytes.Equal(payload.Plaintext, plaintext) {
		t.Error("large payload mismatch")
	}
}

func TestIntegration_SizeLimit(t *testing.T) {
	limit, err := ghostbyte.WithMaxSize(1024)
	if err != nil {
		t.Fatal(err)
	}
	_, err = ghostbyte.EncryptFile(context.Background(), make([]byte, 2048), "pw", "f", limit)
	if !errors.Is(err, ghostbyte.ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if got := ghostbyte.SanitizeError(err).Error(); got != "file is too large" {
		t.Errorf("unexpected sanitized message %q", got)
	}
}

func TestIntegration_ReusableEncryptor(t *testing.T) {
	enc, err := ghostbyte.NewEncryptor("shared", quickKDF)
	if err != nil {
		t.Fatal(err)
	}
	defer enc.Destroy()
	dec, err := ghostbyte.NewDecryptor("shared", quickKDF)
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Destroy()

	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		envelope, err := enc.Encrypt(context.Background(), []byte(name), name)
		if err != nil {
			t.Fatalf("Encrypt %s failed: %v", name, err)
		}
		payload, err := dec.Decrypt(context.Background(), envelope)
		if err != nil {
			t.Fatalf("Decrypt %s failed: %v", name, err)
		}
		if payload.OriginalFilename != name || string(payload.Plaintext) != name {
			t.Errorf("mismatch for %s", name)
		}
	}
}

func TestIntegration_ErrorRecovery(t *testing.T) {
	ctx := context.Background()
	envelope, err := ghostbyte.EncryptFile(ctx, []byte("recover"), "right", "r.txt", quickKDF)
	if err != nil {
		t.Fatal(err)
	}

	// A failed attempt leaves the envelope usable.
	if _, err := ghostbyte.DecryptFile(ctx, envelope, "wrong", quickKDF); err == nil {
		t.Fatal("expected failure with wrong password")
	}
	payload, err := ghostbyte.DecryptFile(ctx, envelope, "right", quickKDF)
	if err != nil {
		t.Fatalf("Decryption after failed attempt failed: %v", err)
	}
	if string(payload.Plaintext) != "recover" {
		t.Errorf("got %q", payload.Plaintext)
	}
}
