/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

// Package password holds the password policy shown to users before encrypting
// and a generator for passwords that satisfy it.
package password

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinLength is the shortest password the policy accepts.
const MinLength = 8

// DefaultLength is the length of generated passwords.
const DefaultLength = 16

const (
	upper  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lower  = "abcdefghijklmnopqrstuvwxyz"
	digits = "0123456789"
)

// ErrWeakPassword is wrapped by Validate when a requirement is unmet.
var ErrWeakPassword = errors.New("password does not meet requirements")

// Requirement is one line of the policy and whether a password meets it.
type Requirement struct {
	Label string
	Met   bool
}

// Check evaluates pw against every requirement, in display order.
func Check(pw string) []Requirement {
	return []Requirement{
		{Label: "At least 8 characters", Met: utf8.RuneCountInString(pw) >= MinLength},
		{Label: "Contains a number", Met: strings.ContainsAny(pw, digits)},
		{Label: "Contains uppercase letter", Met: strings.ContainsFunc(pw, isASCIIUpper)},
		{Label: "Contains lowercase letter", Met: strings.ContainsFunc(pw, isASCIILower)},
	}
}

// Validate returns nil when pw meets every requirement, otherwise an error
// wrapping ErrWeakPassword that lists the unmet ones.
func Validate(pw string) error {
	var unmet []string
	for _, req := range Check(pw) {
		if !req.Met {
			unmet = append(unmet, strings.ToLower(req.Label))
		}
	}
	if len(unmet) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrWeakPassword, strings.Join(unmet, ", "))
}

// Generate returns a random password of the given length (normally DefaultLength)
// holding at least one uppercase letter, one lowercase letter and one digit.
func Generate(length int) (string, error) {
	return GenerateFrom(rand.Reader, length)
}

// GenerateFrom is Generate with an explicit randomness source.
func GenerateFrom(r io.Reader, length int) (string, error) {
	if length < 3 {
		return "", fmt.Errorf("password length must be at least 3, got %d", length)
	}

	all := upper + lower + digits
	out := make([]byte, 0, length)
	for _, set := range []string{upper, lower, digits} {
		c, err := pick(r, set)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}
	for len(out) < length {
		c, err := pick(r, all)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}

	// Fisher-Yates, so the guaranteed characters are not always first.
	for i := len(out) - 1; i > 0; i-- {
		j, err := randIndex(r, i+1)
		if err != nil {
			return "", err
		}
		out[i], out[j] = out[j], out[i]
	}
	return string(out), nil
}

func pick(r io.Reader, set string) (byte, error) {
	i, err := randIndex(r, len(set))
	if err != nil {
		return 0, err
	}
	return set[i], nil
}

func randIndex(r io.Reader, n int) (int, error) {
	v, err := rand.Int(r, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("read randomness: %w", err)
	}
	return int(v.Int64()), nil
}

func isASCIIUpper(r rune) bool { return r <= unicode.MaxASCII && unicode.IsUpper(r) }
func isASCIILower(r rune) bool { return r <= unicode.MaxASCII && unicode.IsLower(r) }
