/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// key_test.go: Tests for key derivation and management
package core

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"testing"

	"golang.org/x/crypto/pbkdf2"

	crypto "github.com/gitrgoliveira/go-ghostbyte/internal/crypto"
	"github.com/gitrgoliveira/go-ghostbyte/secure"
)

var testSalt = []byte("0123456789abcdef")

func TestDeriveKeyPBKDF2_Deterministic(t *testing.T) {
	password := []byte("test-password-123")

	key, err := DeriveKeyPBKDF2(password, testSalt, PBKDF2Iterations, KeySize)
	if err != nil {
		t.Fatalf("DeriveKeyPBKDF2 failed: %v", err)
	}
	defer secure.Zero(key)

	if len(key) != KeySize {
		t.Errorf("Expected key length %d, got %d", KeySize, len(key))
	}

	key2, err := DeriveKeyPBKDF2(password, testSalt, PBKDF2Iterations, KeySize)
	if err != nil {
		t.Fatalf("DeriveKeyPBKDF2 second call failed: %v", err)
	}
	defer secure.Zero(key2)

	if !bytes.Equal(key, key2) {
		t.Error("PBKDF2 is not deterministic")
	}

	want := pbkdf2.Key(password, testSalt, 100000, 32, sha256.New)
	if !bytes.Equal(key, want) {
		t.Error("DeriveKeyPBKDF2 differs from PBKDF2-HMAC-SHA256 at 100,000 iterations")
	}
}

func TestDeriveKeyPBKDF2_InputsMatter(t *testing.T) {
	base, _ := DeriveKeyPBKDF2([]byte("password1"), testSalt, 1000, KeySize)
	otherPassword, _ := DeriveKeyPBKDF2([]byte("password2"), testSalt, 1000, KeySize)
	otherSalt, _ := DeriveKeyPBKDF2([]byte("password1"), []byte("fedcba9876543210"), 1000, KeySize)

	if bytes.Equal(base, otherPassword) {
		t.Error("different passwords produced the same key")
	}
	if bytes.Equal(base, otherSalt) {
		t.Error("different salts produced the same key")
	}
}

func TestDeriveKeyPBKDF2_Validation(t *testing.T) {
	tests := []struct {
		name       string
		salt       []byte
		iterations int
		keyLen     int
	}{
		{"empty salt", nil, 1, 32},
		{"zero iterations", testSalt, 0, 32},
		{"zero key length", testSalt, 1, 0},
		{"huge key length", testSalt, 1, 129},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DeriveKeyPBKDF2([]byte("pw"), tt.salt, tt.iterations, tt.keyLen); err == nil {
				t.Error("expected error")
			}
		})
	}

	// Browsers accept an empty password, so must we.
	if _, err := DeriveKeyPBKDF2(nil, testSalt, 1, 32); err != nil {
		t.Errorf("empty password rejected: %v", err)
	}
}

func TestNewAESGCM(t *testing.T) {
	if _, err := NewAESGCM(make([]byte, 16)); err == nil {
		t.Error("AES-128 key accepted")
	}
	aead, err := NewAESGCM(make([]byte, 32))
	if err != nil {
		t.Fatalf("NewAESGCM failed: %v", err)
	}
	if aead.NonceSize() != NonceSize || aead.Overhead() != TagSize {
		t.Errorf("unexpected GCM parameters: nonce %d, overhead %d", aead.NonceSize(), aead.Overhead())
	}
}

func TestDeriveKey_DeterministicAcrossCalls(t *testing.T) {
	ctx := context.Background()
	nonce := bytes.Repeat([]byte{7}, NonceSize)

	k1, err := DeriveKey(ctx, []byte("Str0ngPass!"), testSalt)
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}
	defer k1.Destroy()
	sealed, err := k1.Seal(nil, nonce, []byte("hello world"))
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	k2, err := DeriveKey(ctx, []byte("Str0ngPass!"), testSalt)
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}
	defer k2.Destroy()
	opened, err := k2.Open(nil, nonce, sealed)
	if err != nil {
		t.Fatalf("second derivation could not open first derivation's ciphertext: %v", err)
	}
	if string(opened) != "hello world" {
		t.Errorf("got %q", opened)
	}
}

func TestDeriveKey_Errors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("primitive rejected parameters")

	tests := []struct {
		name string
		salt []byte
		opts []Option
	}{
		{"short salt", testSalt[:8], nil},
		{"kdf failure", testSalt, []Option{WithKeyDerivation(func([]byte, []byte, int, int) ([]byte, error) { return nil, boom })}},
		{"cipher failure", testSalt, []Option{WithCipher(func([]byte) (cipher.AEAD, error) { return nil, boom })}},
		{"kdf returns wrong size", testSalt, []Option{WithKeyDerivation(func([]byte, []byte, int, int) ([]byte, error) { return make([]byte, 5), nil })}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DeriveKey(ctx, []byte("pw"), tt.salt, tt.opts...)
			if !errors.Is(err, crypto.ErrKeyDerivation) {
				t.Errorf("expected ErrKeyDerivation, got %v", err)
			}
		})
	}
}

func TestDeriveKey_PassesFixedParameters(t *testing.T) {
	var gotIterations, gotKeyLen int
	spy := func(password, salt []byte, iterations, keyLen int) ([]byte, error) {
		gotIterations, gotKeyLen = iterations, keyLen
		return make([]byte, keyLen), nil
	}

	k, err := DeriveKey(context.Background(), []byte("pw"), testSalt, WithKeyDerivation(spy))
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}
	k.Destroy()

	if gotIterations != 100000 || gotKeyLen != 32 {
		t.Errorf("KDF called with iterations=%d keyLen=%d", gotIterations, gotKeyLen)
	}
}

func TestKey_Destroy(t *testing.T) {
	k, err := DeriveKey(context.Background(), []byte("pw"), testSalt, WithKeyDerivation(fastKDF))
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}
	k.Destroy()
	k.Destroy()

	if _, err := k.Seal(nil, make([]byte, NonceSize), []byte("x")); err == nil {
		t.Error("Seal succeeded on destroyed key")
	}
	if _, err := k.Open(nil, make([]byte, NonceSize), make([]byte, TagSize)); !errors.Is(err, crypto.ErrDecryptionFailed) {
		t.Errorf("expected ErrDecryptionFailed, got %v", err)
	}
}

func TestKey_BadNonceDoesNotPanic(t *testing.T) {
	k, err := DeriveKey(context.Background(), []byte("pw"), testSalt, WithKeyDerivation(fastKDF))
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}
	defer k.Destroy()

	if _, err := k.Seal(nil, make([]byte, 8), []byte("x")); err == nil {
		t.Error("Seal accepted an 8-byte nonce")
	}
	if _, err := k.Open(nil, make([]byte, 8), make([]byte, 32)); !errors.Is(err, crypto.ErrDecryptionFailed) {
		t.Errorf("expected ErrDecryptionFailed, got %v", err)
	}
}

// TestDecrypt_InteropWithReferenceConstruction builds an envelope by hand from
// the raw primitives, the way the browser implementation does, and opens it.
func TestDecrypt_InteropWithReferenceConstruction(t *testing.T) {
	password := []byte("Str0ngPass!")
	salt := bytes.Repeat([]byte{0x11}, 16)
	iv := bytes.Repeat([]byte{0x22}, 12)
	name := []byte("notes.txt")

	raw := pbkdf2.Key(password, salt, 100000, 32, sha256.New)
	block, err := aes.NewCipher(raw)
	if err != nil {
		t.Fatal(err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		t.Fatal(err)
	}
	ct := gcm.Seal(nil, iv, []byte("hello world"), nil)

	var envelope []byte
	envelope = append(envelope, salt...)
	envelope = append(envelope, iv...)
	envelope = binary.BigEndian.AppendUint16(envelope, uint16(len(name)))
	envelope = append(envelope, name...)
	envelope = append(envelope, ct...)

	payload, err := decrypt(t, string(password), envelope)
	if err != nil {
		t.Fatalf("Decrypt failed on reference envelope: %v", err)
	}
	if payload.OriginalFilename != "notes.txt" || string(payload.Plaintext) != "hello world" {
		t.Errorf("unexpected payload: %q %q", payload.OriginalFilename, payload.Plaintext)
	}

	// And the other direction: our envelope opens with the raw primitives.
	ours := mustEncrypt(t, string(password), []byte("hello world"), "notes.txt")
	env, err := ParseEnvelope(ours)
	if err != nil {
		t.Fatal(err)
	}
	raw2 := pbkdf2.Key(password, env.Salt, 100000, 32, sha256.New)
	block2, _ := aes.NewCipher(raw2)
	gcm2, _ := cipher.NewGCM(block2)
	pt, err := gcm2.Open(nil, env.Nonce, env.Ciphertext, nil)
	if err != nil {
		t.Fatalf("reference construction could not open our envelope: %v", err)
	}
	if string(pt) != "hello world" {
		t.Errorf("got %q", pt)
	}
}

// webCryptoVector was produced in Node with SubtleCrypto: PBKDF2-SHA256 at
// 100000 iterations over "Str0ngPass!", then AES-GCM encrypt of "hello world"
// under salt 00..0f and IV a0..ab, framed with the name "notes.txt".
const webCryptoVector = "000102030405060708090a0b0c0d0e0f" +
	"a0a1a2a3a4a5a6a7a8a9aaab" +
	"0009" + "6e6f7465732e747874" +
	"d058dea773e23f17454d5c5fbb3b5b912e4bac4b61fa1d8e4b6793"

func TestEnvelope_WebCryptoKnownAnswer(t *testing.T) {
	want, err := hex.DecodeString(webCryptoVector)
	if err != nil {
		t.Fatal(err)
	}
	if len(want) != 66 {
		t.Fatalf("vector is %d bytes, want 66", len(want))
	}

	payload, err := decrypt(t, "Str0ngPass!", want)
	if err != nil {
		t.Fatalf("Decrypt failed on browser envelope: %v", err)
	}
	if payload.OriginalFilename != "notes.txt" || string(payload.Plaintext) != "hello world" {
		t.Errorf("unexpected payload: %q %q", payload.OriginalFilename, payload.Plaintext)
	}

	random := make([]byte, 0, SaltSize+NonceSize)
	for i := 0; i < SaltSize; i++ {
		random = append(random, byte(i))
	}
	for i := 0; i < NonceSize; i++ {
		random = append(random, byte(0xa0+i))
	}
	got := mustEncrypt(t, "Str0ngPass!", []byte("hello world"), "notes.txt", WithRandom(bytes.NewReader(random)))
	if !bytes.Equal(got, want) {
		t.Errorf("envelope mismatch\n got %x\nwant %x", got, want)
	}
}

func TestGenerateSaltAndNonce(t *testing.T) {
	r := &countingReader{}
	salt, err := GenerateSalt(r)
	if err != nil || len(salt) != SaltSize {
		t.Fatalf("GenerateSalt: %v, len %d", err, len(salt))
	}
	nonce, err := GenerateNonce(r)
	if err != nil || len(nonce) != NonceSize {
		t.Fatalf("GenerateNonce: %v, len %d", err, len(nonce))
	}
	if nonce[0] != SaltSize+1 {
		t.Error("nonce should be drawn after the salt from the same source")
	}

	if _, err := GenerateSalt(bytes.NewReader(make([]byte, 4))); err == nil {
		t.Error("expected error from exhausted randomness source")
	}
}
