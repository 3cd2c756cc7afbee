package models

import "encoding/json"

// ClaimPayload is the plaintext claim encrypted into a chat token.
// It is built fresh per request and not modified afterwards.
type ClaimPayload struct {
	TenantID      string `json:"client_id"`
	ApplicationID string `json:"app_id"`
	RequestType   string `json:"request_type"`
	SubjectID     string `json:"userId"`
	SessionID     string `json:"sessionId"`
	// Timestamp is the issue time in Unix milliseconds.
	Timestamp int64 `json:"timestamp"`
	// IssuedAt and ExpiresAt are Unix seconds.
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
	Purpose   string `json:"purpose"`

	// Extra holds free-form fields. Keys colliding with the fields above are dropped.
	Extra map[string]interface{} `json:"-"`
}

var reservedClaimKeys = map[string]struct{}{
	"client_id":    {},
	"app_id":       {},
	"request_type": {},
	"userId":       {},
	"sessionId":    {},
	"timestamp":    {},
	"iat":          {},
	"exp":          {},
	"purpose":      {},
}

// IsReservedClaimKey reports whether key is owned by ClaimPayload itself.
func IsReservedClaimKey(key string) bool {
	_, ok := reservedClaimKeys[key]
	return ok
}

// MarshalJSON flattens Extra next to the fixed claim fields.
func (p ClaimPayload) MarshalJSON() ([]byte, error) {
	type plain ClaimPayload
	base, err := json.Marshal(plain(p))
	if err != nil {
		return nil, err
	}
	if len(p.Extra) == 0 {
		return base, nil
	}

	merged := make(map[string]interface{}, len(p.Extra)+len(reservedClaimKeys))
	for k, v := range p.Extra {
		if IsReservedClaimKey(k) {
			continue
		}
		merged[k] = v
	}
	if len(merged) == 0 {
		return base, nil
	}

	var fixed map[string]json.RawMessage
	if err := json.Unmarshal(base, &fixed); err != nil {
		return nil, err
	}
	for k, v := range fixed {
		merged[k] = v
	}
	return json.Marshal(merged)
}
