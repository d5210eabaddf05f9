// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor for stored account passwords.
const PasswordCost = 12

// maxPasswordBytes is the bcrypt input limit; longer input would be
// silently truncated by older implementations.
const maxPasswordBytes = 72

// ErrPasswordTooLong rejects passwords bcrypt cannot hash in full.
var ErrPasswordTooLong = errors.New("sec: password exceeds 72 bytes")

// HashPassword returns the bcrypt hash of plain.
func HashPassword(plain string) (string, error) {
	if len(plain) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("sec: hash password: %w", err)
	}
	return string(hashed), nil
}

// VerifyPassword reports whether plain matches the stored hash.
func VerifyPassword(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
