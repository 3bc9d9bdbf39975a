/*
 * This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0.
 * If a copy of the MPL was not distributed with this file, You can obtain one at
 * https://mozilla.org/MPL/2.0/.
 */

package password

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		pw   string
		want []bool
	}{
		{"", []bool{false, false, false, false}},
		{"Str0ngPass!", []bool{true, true, true, true}},
		{"short1A", []bool{false, true, true, true}},
		{"alllowercase1", []bool{true, true, false, true}},
		{"ALLUPPERCASE1", []bool{true, true, true, false}},
		{"NoDigitsHere", []bool{true, false, true, true}},
		{"ÄÖÜäöü12", []bool{true, true, false, false}},
	}

	for _, tt := range tests {
		t.Run(tt.pw, func(t *testing.T) {
			reqs := Check(tt.pw)
			require.Len(t, reqs, 4)
			for i, req := range reqs {
				assert.Equal(t, tt.want[i], req.Met, req.Label)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("Str0ngPass!"))

	err := Validate("weak")
	require.ErrorIs(t, err, ErrWeakPassword)
	assert.Contains(t, err.Error(), "at least 8 characters")
	assert.Contains(t, err.Error(), "contains a number")
	assert.Contains(t, err.Error(), "contains uppercase letter")
	assert.NotContains(t, err.Error(), "lowercase")
}

func TestGenerate(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		pw, err := Generate(DefaultLength)
		require.NoError(t, err)
		assert.Len(t, pw, DefaultLength)
		assert.NoError(t, Validate(pw), pw)
		assert.Equal(t, -1, strings.IndexFunc(pw, func(r rune) bool {
			return !strings.ContainsRune(upper+lower+digits, r)
		}), "unexpected character in %q", pw)
		assert.False(t, seen[pw], "duplicate password %q", pw)
		seen[pw] = true
	}
}

func TestGenerate_ShortLengths(t *testing.T) {
	_, err := Generate(2)
	assert.Error(t, err)

	pw, err := Generate(3)
	require.NoError(t, err)
	assert.True(t, strings.ContainsAny(pw, upper))
	assert.True(t, strings.ContainsAny(pw, lower))
	assert.True(t, strings.ContainsAny(pw, digits))
}

func TestGenerateFrom_ExhaustedSource(t *testing.T) {
	_, err := GenerateFrom(bytes.NewReader(nil), DefaultLength)
	assert.Error(t, err)
}
