package models

import (
	"fmt"
	"strings"
)

// AuthMode selects how delegated cloud credentials are obtained.
// The set is closed: every switch over AuthMode must handle both values.
type AuthMode int

const (
	// AuthModeAnonymous bootstraps an unauthenticated identity from an identity pool.
	AuthModeAnonymous AuthMode = iota + 1
	// AuthModeDelegatedRole exchanges a static key pair for an assumed-role session.
	AuthModeDelegatedRole
)

// String returns the canonical configuration name of the mode.
func (m AuthMode) String() string {
	switch m {
	case AuthModeAnonymous:
		return "anonymous"
	case AuthModeDelegatedRole:
		return "delegated-role"
	default:
		return fmt.Sprintf("AuthMode(%d)", int(m))
	}
}

// Valid reports whether m is one of the declared modes.
func (m AuthMode) Valid() bool {
	return m == AuthModeAnonymous || m == AuthModeDelegatedRole
}

// ParseAuthMode parses a configured mode name. The legacy names "guest" and "iam"
// are accepted as aliases.
func ParseAuthMode(s string) (AuthMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "anonymous", "guest":
		return AuthModeAnonymous, nil
	case "delegated-role", "delegated_role", "iam":
		return AuthModeDelegatedRole, nil
	default:
		return 0, fmt.Errorf("unknown auth mode %q: expected anonymous or delegated-role", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m AuthMode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid auth mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *AuthMode) UnmarshalText(text []byte) error {
	parsed, err := ParseAuthMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
