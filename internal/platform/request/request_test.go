// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package requestutil_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/panelkit/internal/platform/apperr"
	requestutil "github.com/taibuivan/panelkit/internal/platform/request"
)

func decode(body string) (map[string]any, error) {
	request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	return requestutil.DecodeMap(httptest.NewRecorder(), request)
}

func TestDecodeMap(t *testing.T) {
	input, err := decode(`{"name":"Desk","price":120.5}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Desk", "price": 120.5}, input)

	for _, empty := range []string{"", "null"} {
		input, err = decode(empty)
		require.NoError(t, err, empty)
		assert.Empty(t, input)
		assert.NotNil(t, input)
	}
}

func TestDecodeMapRejects(t *testing.T) {
	for _, body := range []string{`[1,2]`, `"name"`, `{"a":1}{"b":2}`, `{"a":`} {
		_, err := decode(body)
		appErr := apperr.As(err)
		require.NotNil(t, appErr, body)
		assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus, body)
	}

	_, err := decode(`{"blob":"` + strings.Repeat("x", requestutil.MaxBodyBytes) + `"}`)
	require.Error(t, err)
	assert.Equal(t, "Request body too large", err.Error())
}
