package models

import "time"

// CachedPublicKey is the raw DER public key returned by the key-management
// service together with the time it was fetched.
type CachedPublicKey struct {
	KeyID     string
	RawBytes  []byte
	FetchedAt time.Time
}

// FreshAt reports whether the entry may still be served at now for keyID.
func (c *CachedPublicKey) FreshAt(keyID string, now time.Time, ttl time.Duration) bool {
	if c == nil || len(c.RawBytes) == 0 || c.KeyID != keyID {
		return false
	}
	return now.Sub(c.FetchedAt) < ttl
}
