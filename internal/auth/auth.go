// Package auth verifies the RS256 tokens issued by the identity service.
package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey int

const ClaimsKey ctxKey = 1

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles"`
}

func (c Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

type Keys struct {
	publicKey  *rsa.PublicKey
	privateKey *rsa.PrivateKey
}

// NewKeys builds a verifier from a PEM encoded RSA public key.
func NewKeys(publicPEM []byte) (*Keys, error) {
	pub, err := jwt.ParseRSAPublicKeyFromPEM(publicPEM)
	if err != nil {
		return nil, fmt.Errorf("parsing public key: %w", err)
	}
	return &Keys{publicKey: pub}, nil
}

// LoadKeys reads the public key PEM at path.
func LoadKeys(path string) (*Keys, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading public key: %w", err)
	}
	return NewKeys(data)
}

// NewSigningKeys can both issue and verify tokens.
func NewSigningKeys(private *rsa.PrivateKey) *Keys {
	return &Keys{publicKey: &private.PublicKey, privateKey: private}
}

// GenerateToken signs claims. It needs keys built with NewSigningKeys.
func (k *Keys) GenerateToken(claims Claims) (string, error) {
	if k.privateKey == nil {
		return "", errors.New("no private key configured")
	}
	if claims.IssuedAt == nil {
		claims.IssuedAt = jwt.NewNumericDate(time.Now())
	}
	tkn := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := tkn.SignedString(k.privateKey)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a token, rejecting anything but RS256.
func (k *Keys) ValidateToken(tokenStr string) (Claims, error) {
	var c Claims
	tkn, err := jwt.ParseWithClaims(tokenStr, &c, func(*jwt.Token) (any, error) {
		return k.publicKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	if err != nil {
		return Claims{}, fmt.Errorf("parsing token: %w", err)
	}
	if !tkn.Valid {
		return Claims{}, errors.New("invalid token")
	}
	if c.Subject == "" {
		return Claims{}, errors.New("token has no subject")
	}
	return c, nil
}
