// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// TokenExpired reports whether the access token's exp claim is at or past
// now. It decodes the claims segment without verifying the signature; the
// check is advisory and saves a doomed round trip. Anything that does not
// decode as a three-segment token with a numeric exp counts as expired,
// so a corrupt token can never keep a session alive.
func TokenExpired(token string, now time.Time) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return true
	}

	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return true
	}

	var claims struct {
		Exp int64 `json:"exp"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return true
	}
	if claims.Exp == 0 {
		return true
	}

	return now.Unix() >= claims.Exp
}
