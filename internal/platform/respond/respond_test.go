// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package respond_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/panelkit/internal/platform/apperr"
	"github.com/taibuivan/panelkit/internal/platform/ctxutil"
	"github.com/taibuivan/panelkit/internal/platform/respond"
	"github.com/taibuivan/panelkit/pkg/pagination"
)

func TestPaginated(t *testing.T) {
	recorder := httptest.NewRecorder()
	respond.Paginated(recorder, []string{"a"}, pagination.Meta{Page: 2, Limit: 1, Total: 3, TotalPages: 3})

	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, []any{"a"}, body["data"])
	assert.Contains(t, body, "meta")
}

func TestFileQuotesFilename(t *testing.T) {
	recorder := httptest.NewRecorder()
	respond.File(recorder, "products 2026.csv", "text/csv", []byte("id\n1\n"))

	assert.Equal(t, `attachment; filename="products 2026.csv"`, recorder.Header().Get("Content-Disposition"))
	assert.Equal(t, "5", recorder.Header().Get("Content-Length"))
}

func TestErrorValidation(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/", nil)
	respond.Error(recorder, request, apperr.ValidationError("Validation failed",
		apperr.FieldError{Field: "price", Message: "Must be a number"}))

	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	var body respond.ErrorEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, apperr.CodeValidation, body.Code)
	assert.Equal(t, []string{"Must be a number"}, body.Errors["price"])
}

func TestErrorHidesInternalCause(t *testing.T) {
	var logs bytes.Buffer
	ctx := ctxutil.WithLogger(ctxutil.WithRequestID(t.Context(), "req-9"), slog.New(slog.NewJSONHandler(&logs, nil)))
	request := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	recorder := httptest.NewRecorder()

	respond.Error(recorder, request, errors.New("dial tcp: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "connection refused")
	assert.Contains(t, logs.String(), "connection refused")
	assert.Contains(t, logs.String(), `"request_id":"req-9"`)
}
