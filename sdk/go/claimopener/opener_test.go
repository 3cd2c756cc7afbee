package claimopener_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/chatclaim/sdk/go/claimopener"
)

var now = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func seal(t *testing.T, pub *rsa.PublicKey, payload map[string]interface{}) string {
	t.Helper()
	enc, err := jose.NewEncrypter(jose.A256GCM, jose.Recipient{Algorithm: jose.RSA_OAEP_256, Key: pub}, nil)
	require.NoError(t, err)
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	obj, err := enc.Encrypt(raw)
	require.NoError(t, err)
	token, err := obj.CompactSerialize()
	require.NoError(t, err)
	return token
}

func payload() map[string]interface{} {
	return map[string]interface{}{
		"client_id":    "acme",
		"app_id":       "ai-navi-chat",
		"request_type": "chat",
		"userId":       "chat-user-1792411200000",
		"sessionId":    "chat-session-1792411200000",
		"timestamp":    now.UnixMilli(),
		"iat":          now.Unix(),
		"exp":          now.Add(time.Hour).Unix(),
		"purpose":      claimopener.Purpose,
		"channel":      "web",
	}
}

func TestOpener_Open(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	opener := claimopener.NewOpener(key, claimopener.WithClock(func() time.Time { return now.Add(30 * time.Minute) }))

	claim, err := opener.Open(seal(t, &key.PublicKey, payload()))
	require.NoError(t, err)
	assert.Equal(t, "acme", claim.TenantID)
	assert.Equal(t, "ai-navi-chat", claim.ApplicationID)
	assert.Equal(t, int64(3600), claim.ExpiresAt-claim.IssuedAt)
	assert.Equal(t, "web", claim.Raw["channel"])
}

func TestOpener_Rejects(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	mutate := func(f func(p map[string]interface{})) map[string]interface{} {
		p := payload()
		f(p)
		return p
	}

	tests := []struct {
		name    string
		at      time.Time
		token   string
		wantErr error
	}{
		{"garbage", now, "a.b.c.d.e", claimopener.ErrInvalidToken},
		{"wrong key", now, seal(t, &other.PublicKey, payload()), claimopener.ErrInvalidToken},
		{"expired", now.Add(61 * time.Minute), seal(t, &key.PublicKey, payload()), claimopener.ErrExpired},
		{"future", now.Add(-time.Hour), seal(t, &key.PublicKey, payload()), claimopener.ErrNotYetValid},
		{"purpose", now, seal(t, &key.PublicKey, mutate(func(p map[string]interface{}) { p["purpose"] = "login" })), claimopener.ErrPurpose},
		{"tenant", now, seal(t, &key.PublicKey, mutate(func(p map[string]interface{}) { delete(p, "client_id") })), claimopener.ErrMissingClaim},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at := tt.at
			opener := claimopener.NewOpener(key, claimopener.WithClock(func() time.Time { return at }))
			_, err := opener.Open(tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestOpener_Leeway(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	token := seal(t, &key.PublicKey, payload())

	late := now.Add(time.Hour + 20*time.Second)
	_, err = claimopener.NewOpener(key, claimopener.WithClock(func() time.Time { return late })).Open(token)
	assert.ErrorIs(t, err, claimopener.ErrExpired)

	_, err = claimopener.NewOpener(key,
		claimopener.WithClock(func() time.Time { return late }),
		claimopener.WithLeeway(30*time.Second),
	).Open(token)
	assert.NoError(t, err)
}

func TestNewOpenerFromPEM(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)

	opener, err := claimopener.NewOpenerFromPEM(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}),
		claimopener.WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	_, err = opener.Open(seal(t, &key.PublicKey, payload()))
	assert.NoError(t, err)

	_, err = claimopener.NewOpenerFromPEM([]byte("not pem"))
	assert.Error(t, err)
}
