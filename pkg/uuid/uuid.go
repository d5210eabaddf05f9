// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid issues the identifiers used for record keys, version snapshots
and request ids.

Keys are UUIDv7, so a table's primary key index grows in insertion order.
*/
package uuid

import "github.com/google/uuid"

// New returns a fresh UUIDv7 string. It falls back to a random UUIDv4 if
// the clock sequence cannot be read.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// IsValid reports whether s is a UUID in canonical hyphenated form.
func IsValid(s string) bool {
	if len(s) != 36 {
		return false
	}
	return uuid.Validate(s) == nil
}

// Timestamp reports the creation time, in Unix milliseconds, encoded in a
// UUIDv7. ok is false for other versions.
func Timestamp(s string) (millis int64, ok bool) {
	id, err := uuid.Parse(s)
	if err != nil || id.Version() != 7 {
		return 0, false
	}
	// The leading 48 bits are the big-endian millisecond timestamp.
	for _, b := range id[:6] {
		millis = millis<<8 | int64(b)
	}
	return millis, true
}
