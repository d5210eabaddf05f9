// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/panelkit/internal/platform/constants"
	"github.com/taibuivan/panelkit/internal/platform/ctxutil"
	"github.com/taibuivan/panelkit/internal/platform/sec"
)

type staticVerifier map[string]*sec.AuthClaims

func (verifier staticVerifier) VerifyToken(token string) (*sec.AuthClaims, error) {
	if claims, ok := verifier[token]; ok {
		return claims, nil
	}
	return nil, errors.New("unknown token")
}

func chain(handler http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, recorder.Header().Get(constants.HeaderXRequestID))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(constants.HeaderXRequestID, "upstream-1")
	handler.ServeHTTP(httptest.NewRecorder(), request)
	assert.Equal(t, "upstream-1", seen)
}

func TestAccessLogRecordsCaller(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	verifier := staticVerifier{"tok": {UserID: "u-1", Role: string(sec.RoleEditor)}}

	handler := chain(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusTeapot)
	}), RequestID(), AccessLog(logger), Authenticate(verifier))

	request := httptest.NewRequest(http.MethodGet, "/products", nil)
	request.Header.Set("Authorization", "Bearer tok")
	handler.ServeHTTP(httptest.NewRecorder(), request)

	line := buf.String()
	assert.Contains(t, line, `"msg":"http_request_finished"`)
	assert.Contains(t, line, `"status":418`)
	assert.Contains(t, line, `"user_id":"u-1"`)
	assert.Contains(t, line, `"level":"WARN"`)
}

func TestAuthenticate(t *testing.T) {
	verifier := staticVerifier{"tok": {UserID: "u-1", Role: string(sec.RoleViewer)}}
	var caller *sec.AuthClaims
	handler := Authenticate(verifier)(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
		caller = ctxutil.GetAuthUser(request.Context())
	}))

	tests := []struct {
		name   string
		header string
		status int
		userID string
	}{
		{"anonymous", "", http.StatusOK, ""},
		{"valid", "bearer tok", http.StatusOK, "u-1"},
		{"wrong_scheme", "Basic tok", http.StatusUnauthorized, ""},
		{"unknown_token", "Bearer nope", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller = nil
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.status, recorder.Code)
			if tt.userID == "" {
				assert.Nil(t, caller)
			} else {
				require.NotNil(t, caller)
				assert.Equal(t, tt.userID, caller.UserID)
			}
		})
	}
}

func TestRecover(t *testing.T) {
	handler := Recover()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "INTERNAL_ERROR")
}

func TestRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := NewRateLimiter(ctx, 1, 2)
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return clock }

	handler := limiter.Handler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	hit := func(ip string) *httptest.ResponseRecorder {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set(constants.HeaderXForwardedFor, ip+", 10.0.0.1")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		return recorder
	}

	assert.Equal(t, http.StatusOK, hit("1.1.1.1").Code)
	assert.Equal(t, http.StatusOK, hit("1.1.1.1").Code)
	limited := hit("1.1.1.1")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, hit("2.2.2.2").Code, "buckets are per client")

	clock = clock.Add(time.Second)
	assert.Equal(t, http.StatusOK, hit("1.1.1.1").Code)

	clock = clock.Add(constants.RateLimitClientTTL + time.Second)
	limiter.evictIdle()
	assert.Empty(t, limiter.buckets)
}

type origins []string

func (origins) IsDevelopment() bool   { return false }
func (o origins) Origins() []string { return o }

func TestCORS(t *testing.T) {
	handler := CORS(origins{"https://admin.example.com"})(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	}))

	request := httptest.NewRequest(http.MethodOptions, "/", nil)
	request.Header.Set("Origin", "https://eu.admin.example.com")
	request.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, "https://eu.admin.example.com", recorder.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, recorder.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")

	request = httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Origin", "https://evil.test")
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
}
