// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr classifies driver errors from both store backends (pgx and
// gorm) into the apperr vocabulary, so handlers never see SQL details.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/taibuivan/panelkit/internal/platform/apperr"
)

var (
	// ErrNotFound is returned when no row matches a key.
	ErrNotFound = apperr.NotFound("Resource")

	// ErrDuplicate is returned when a write violates a unique constraint.
	ErrDuplicate = apperr.Conflict("A record with the same unique value already exists")

	// ErrReferenced is returned when a write or delete breaks a foreign key.
	ErrReferenced = apperr.Conflict("The record is referenced by, or references, a missing record")
)

// Wrap classifies err. Errors already in the apperr vocabulary pass
// through; unknown failures become an internal error whose cause names op.
func Wrap(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case apperr.IsAppError(err):
		return err
	case IsNotFound(err):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), hasPgCode(err, pgerrcode.UniqueViolation):
		return ErrDuplicate
	case errors.Is(err, gorm.ErrForeignKeyViolated), hasPgCode(err, pgerrcode.ForeignKeyViolation):
		return ErrReferenced
	}
	return apperr.Internal(fmt.Errorf("%s: %w", op, err))
}

// IsNotFound reports whether err is, or wraps, a missing-row error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, pgx.ErrNoRows) || errors.Is(err, gorm.ErrRecordNotFound)
}

func hasPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
