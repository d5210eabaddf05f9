// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/panelkit/internal/platform/apperr"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		err    *apperr.AppError
		status int
		code   string
	}{
		{apperr.NotFound("Product"), http.StatusNotFound, apperr.CodeNotFound},
		{apperr.Unauthorized("no"), http.StatusUnauthorized, apperr.CodeUnauthorized},
		{apperr.Forbidden("no"), http.StatusForbidden, apperr.CodeForbidden},
		{apperr.Conflict("dup"), http.StatusConflict, apperr.CodeConflict},
		{apperr.ValidationError("bad"), http.StatusUnprocessableEntity, apperr.CodeValidation},
		{apperr.BadRequest("bad"), http.StatusBadRequest, apperr.CodeBadRequest},
		{apperr.RateLimited(3), http.StatusTooManyRequests, apperr.CodeRateLimited},
		{apperr.Internal(nil), http.StatusInternalServerError, apperr.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.Equal(t, tt.code, tt.err.Code)
		})
	}
	assert.Equal(t, "Product not found", apperr.NotFound("Product").Error())
}

func TestAsUnwrapsChains(t *testing.T) {
	cause := errors.New("pq: duplicate key")
	wrapped := fmt.Errorf("store: insert: %w", apperr.Internal(cause))

	appErr := apperr.As(wrapped)
	require.NotNil(t, appErr)
	assert.ErrorIs(t, wrapped, cause)
	assert.True(t, apperr.IsAppError(wrapped))
	assert.Nil(t, apperr.As(cause))
}

func TestFieldMessages(t *testing.T) {
	err := apperr.ValidationError("Validation failed",
		apperr.FieldError{Field: "price", Message: "Must be a number"},
		apperr.FieldError{Field: "price", Message: "Must be at least 0"},
		apperr.FieldError{Field: "name", Message: "This field is required"},
	)
	assert.Equal(t, map[string][]string{
		"price": {"Must be a number", "Must be at least 0"},
		"name":  {"This field is required"},
	}, apperr.FieldMessages(err))
	assert.Nil(t, apperr.FieldMessages(apperr.Forbidden("no")))
}
