// Package crypto provides HMAC request signing and encrypted credential
// storage for the Binance API.
package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// HMACAuth holds the credentials for signed (SAPI/account) Binance requests.
type HMACAuth struct {
	Key    string // API key, sent in the X-MBX-APIKEY header
	Secret string // API secret, HMAC signing key
}

// Sign computes the Binance request signature: HMAC-SHA256 of the full query
// string (including the timestamp parameter) with the API secret, hex
// encoded. The result is appended to the query as the signature parameter.
func (h *HMACAuth) Sign(query string) string {
	mac := hmac.New(sha256.New, []byte(h.Secret))
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}

// String returns a redacted representation suitable for logging.
func (h *HMACAuth) String() string {
	redact := func(s string) string {
		if len(s) <= 4 {
			return "****"
		}
		return s[:4] + "****"
	}
	return fmt.Sprintf("HMACAuth{key=%s, secret=%s}", redact(h.Key), redact(h.Secret))
}
