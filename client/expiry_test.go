// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// forgeToken builds an unsigned token with the given exp claim. The
// expiry check never verifies signatures, so a dummy third segment is
// enough.
func forgeToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshal claims: %v", err)
	}
	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".sig"
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		token   string
		expired bool
	}{
		{
			name:    "future exp is live",
			token:   forgeToken(t, map[string]any{"exp": now.Add(time.Hour).Unix(), "sub": "a1"}),
			expired: false,
		},
		{
			name:    "past exp is expired",
			token:   forgeToken(t, map[string]any{"exp": now.Add(-time.Hour).Unix(), "sub": "a1"}),
			expired: true,
		},
		{
			name:    "exp exactly now is expired",
			token:   forgeToken(t, map[string]any{"exp": now.Unix()}),
			expired: true,
		},
		{
			name:    "missing exp fails closed",
			token:   forgeToken(t, map[string]any{"sub": "a1"}),
			expired: true,
		},
		{
			name:    "two segments fail closed",
			token:   "abc.def",
			expired: true,
		},
		{
			name:    "four segments fail closed",
			token:   "a.b.c.d",
			expired: true,
		},
		{
			name:    "non-base64 claims fail closed",
			token:   "header.!!!not-base64!!!.sig",
			expired: true,
		},
		{
			name:    "non-JSON claims fail closed",
			token:   "h." + base64.RawURLEncoding.EncodeToString([]byte("plain text")) + ".s",
			expired: true,
		},
		{
			name:    "empty string fails closed",
			token:   "",
			expired: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expired, TokenExpired(tt.token, now))
		})
	}
}

func TestTokenExpiredAcceptsPaddedBase64(t *testing.T) {
	// Some encoders emit padded base64url; the check tolerates it
	now := time.Now()
	payload := base64.URLEncoding.EncodeToString([]byte(`{"exp":` + "9999999999" + `}`))
	token := "h." + payload + ".s"
	assert.False(t, TokenExpired(token, now))
}
