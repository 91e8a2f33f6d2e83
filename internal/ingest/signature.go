package ingest

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// VerifySignature checks the keyed digest the CRM sends with every delivery.
// The digest covers the raw, unparsed body. Comparison is constant-time; a
// missing secret or header always fails rather than defaulting to allow.
func VerifySignature(payload []byte, secret, header string) bool {
	header = strings.TrimSpace(header)
	if secret == "" || header == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(header)))
}

// SignPayload produces the hex digest for a body; used by tests and by the
// scheduler tooling that replays stored events.
func SignPayload(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
