// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec signs and verifies panel access tokens, hashes account
// passwords and defines the role ladder policies decide on.
package sec

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/panelkit/pkg/uuid"
)

// tokenAudience is the aud claim every panel token carries.
const tokenAudience = "panel"

// clockSkew tolerates small clock drift between the CLI that signs and the
// server that verifies.
const clockSkew = 30 * time.Second

// AuthClaims is the access token payload. The caller is rebuilt from it on
// every request without touching the users table.
type AuthClaims struct {
	jwt.RegisteredClaims

	UserID   string `json:"uid"`
	Username string `json:"unm"`
	Role     string `json:"rol"`
}

// UserRole returns the claimed role.
func (c *AuthClaims) UserRole() UserRole { return UserRole(c.Role) }

// TokenService issues and verifies RS256 tokens. The server only needs the
// public key to verify; panelctl holds the private key to issue.
type TokenService struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
	now        func() time.Time
}

// NewTokenService loads a PEM key pair from disk.
func NewTokenService(privateKeyPath, publicKeyPath, issuer string) (*TokenService, error) {
	privatePEM, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("sec: read private key: %w", err)
	}
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privatePEM)
	if err != nil {
		return nil, fmt.Errorf("sec: parse private key %s: %w", privateKeyPath, err)
	}

	publicPEM, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("sec: read public key: %w", err)
	}
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicPEM)
	if err != nil {
		return nil, fmt.Errorf("sec: parse public key %s: %w", publicKeyPath, err)
	}

	return NewTokenServiceFromKeys(privateKey, publicKey, issuer), nil
}

// NewTokenServiceFromKeys builds a service from parsed keys.
func NewTokenServiceFromKeys(privateKey *rsa.PrivateKey, publicKey *rsa.PublicKey, issuer string) *TokenService {
	return &TokenService{privateKey: privateKey, publicKey: publicKey, issuer: issuer, now: time.Now}
}

// GenerateAccessToken signs a token for the account valid for ttl. role
// must be a known [UserRole].
func (service *TokenService) GenerateAccessToken(userID, username, role string, ttl time.Duration) (string, error) {
	if _, err := ParseRole(role); err != nil {
		return "", fmt.Errorf("sec: %w", err)
	}
	if ttl <= 0 {
		return "", errors.New("sec: token ttl must be positive")
	}

	issued := service.now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New(),
			Subject:   userID,
			Issuer:    service.issuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			IssuedAt:  jwt.NewNumericDate(issued),
			NotBefore: jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(ttl)),
		},
		UserID:   userID,
		Username: username,
		Role:     role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(service.privateKey)
	if err != nil {
		return "", fmt.Errorf("sec: sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken checks the signature, issuer, audience and validity window.
func (service *TokenService) VerifyToken(tokenString string) (*AuthClaims, error) {
	claims := &AuthClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return service.publicKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(service.issuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(clockSkew),
		jwt.WithTimeFunc(service.now),
	)
	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}
	if claims.UserID == "" || claims.UserID != claims.Subject {
		return nil, errors.New("sec: token subject mismatch")
	}
	return claims, nil
}
