package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/MagnumMax/skyluxse-sub003/pkg/config"
)

// Resolver turns opaque media references carried inside CRM payloads into
// time-limited signed URLs suitable for embedding in notification content.
// The document store verifies the signature on its side; this package only
// produces it.
type Resolver struct {
	baseURL    string
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
}

// NewResolver builds a Resolver from configuration.
func NewResolver(cfg config.MediaConfig) (*Resolver, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("media base url is required")
	}
	if cfg.SigningKey == "" {
		return nil, fmt.Errorf("media signing key is required")
	}
	ttl := cfg.URLTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Resolver{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		signingKey: []byte(cfg.SigningKey),
		ttl:        ttl,
		now:        time.Now,
	}, nil
}

// Resolve returns a signed URL for the given media reference. References that
// are already absolute URLs pass through untouched, since CRM payloads mix
// both forms.
func (r *Resolver) Resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("media reference is empty")
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref, nil
	}

	path := "/" + strings.TrimLeft(ref, "/")
	expires := r.now().Add(r.ttl).Unix()
	sig := r.sign(path, expires)

	q := url.Values{}
	q.Set("expires", strconv.FormatInt(expires, 10))
	q.Set("signature", sig)
	return r.baseURL + path + "?" + q.Encode(), nil
}

func (r *Resolver) sign(path string, expires int64) string {
	mac := hmac.New(sha256.New, r.signingKey)
	fmt.Fprintf(mac, "%s\n%d", path, expires)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
