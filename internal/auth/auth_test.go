package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signingKeys(t *testing.T) (*Keys, *rsa.PrivateKey) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return NewSigningKeys(priv), priv
}

func TestRoundTrip(t *testing.T) {
	k, _ := signingKeys(t)
	tkn, err := k.GenerateToken(Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Roles: []string{RoleUser},
	})
	require.NoError(t, err)

	c, err := k.ValidateToken(tkn)
	require.NoError(t, err)
	assert.Equal(t, "user-1", c.Subject)
	assert.True(t, c.HasRole(RoleUser))
	assert.False(t, c.HasRole(RoleAdmin))
}

func TestVerifyWithPublicPEMOnly(t *testing.T) {
	signer, priv := signingKeys(t)
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)
	verifier, err := NewKeys(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
	require.NoError(t, err)

	tkn, err := signer.GenerateToken(Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u"}})
	require.NoError(t, err)
	_, err = verifier.ValidateToken(tkn)
	require.NoError(t, err)

	_, err = verifier.GenerateToken(Claims{})
	assert.Error(t, err)
}

func TestRejects(t *testing.T) {
	k, _ := signingKeys(t)
	other, _ := signingKeys(t)

	expired, err := k.GenerateToken(Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "u",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}})
	require.NoError(t, err)
	foreign, err := other.GenerateToken(Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u"}})
	require.NoError(t, err)
	anonymous, err := k.GenerateToken(Claims{})
	require.NoError(t, err)
	hmac, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u"},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	for name, tkn := range map[string]string{
		"expired":    expired,
		"wrong key":  foreign,
		"no subject": anonymous,
		"hmac":       hmac,
		"garbage":    "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := k.ValidateToken(tkn)
			assert.Error(t, err)
		})
	}
}
