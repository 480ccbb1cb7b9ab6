package exchange

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
)

// Sign returns hex(HMAC-SHA512(secret, payload)).
func Sign(secret, payload string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// encodeForm matches the body resty sends for SetFormData (sorted url encoding),
// so the signature covers exactly the bytes on the wire.
func encodeForm(form map[string]string) string {
	v := make(url.Values, len(form))
	for k, val := range form {
		v.Set(k, val)
	}
	return v.Encode()
}
