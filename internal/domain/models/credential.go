package models

import "time"

// DelegatedCredential is a short-lived, scope-limited set of cloud access keys.
// It is produced by a CredentialBroker, handed to the key fetch path and never persisted.
type DelegatedCredential struct {
	AccessKeyID     string
	SecretAccessKey Secret
	SessionToken    Secret
	ExpiresAt       time.Time
}

// Expired reports whether the credential is past its stated expiry at now.
// A zero ExpiresAt means the issuer did not state one.
func (c *DelegatedCredential) Expired(now time.Time) bool {
	if c == nil {
		return true
	}
	if c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(c.ExpiresAt)
}

// StaticCredentials is the long-lived key pair used only to authorize an
// assumed-role hand-off, plus the role to assume.
type StaticCredentials struct {
	AccessKeyID     string
	SecretAccessKey Secret
	RoleARN         string
}

// ServiceConfig holds everything the credential and key stages need.
// It is built once at startup and treated as immutable.
type ServiceConfig struct {
	IdentityPoolID string
	Region         string
	KeyID          string
	AuthMode       AuthMode
	// Static is only consulted in AuthModeDelegatedRole.
	Static *StaticCredentials
	// EndpointURL overrides the AWS endpoint for every service (local stacks, tests).
	EndpointURL string
}
