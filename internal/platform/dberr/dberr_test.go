// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/taibuivan/panelkit/internal/platform/apperr"
	"github.com/taibuivan/panelkit/internal/platform/dberr"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"pgx_no_rows", fmt.Errorf("find: %w", pgx.ErrNoRows), dberr.ErrNotFound},
		{"gorm_not_found", gorm.ErrRecordNotFound, dberr.ErrNotFound},
		{"gorm_duplicate", gorm.ErrDuplicatedKey, dberr.ErrDuplicate},
		{"pg_unique", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, dberr.ErrDuplicate},
		{"gorm_foreign_key", gorm.ErrForeignKeyViolated, dberr.ErrReferenced},
		{"pg_foreign_key", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}, dberr.ErrReferenced},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Same(t, tt.want, dberr.Wrap(tt.in, "op"))
		})
	}
}

func TestWrapPassThroughAndInternal(t *testing.T) {
	assert.NoError(t, dberr.Wrap(nil, "op"))

	forbidden := apperr.Forbidden("no")
	assert.Same(t, forbidden, dberr.Wrap(forbidden, "op"))

	cause := errors.New("syntax error at or near")
	wrapped := apperr.As(dberr.Wrap(cause, "select_products"))
	assert.Equal(t, http.StatusInternalServerError, wrapped.HTTPStatus)
	assert.ErrorIs(t, wrapped, cause)
	assert.Contains(t, wrapped.Cause.Error(), "select_products")
}
